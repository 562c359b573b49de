package models

import "time"

// SourceLog names the export an event was loaded from.
type SourceLog string

const (
	SourceSystem              SourceLog = "System"
	SourceApplication         SourceLog = "Application"
	SourceSystemProviderFocus SourceLog = "SystemProviderFocus"
	SourceReliability         SourceLog = "Reliability"
	SourceWEROperational      SourceLog = "WEROperational"
)

// UnknownField is the placeholder for a missing level or provider.
const UnknownField = "?"

// Event is one log entry from a structured export. Time and EventID carry
// explicit presence flags; an absent value is expected, not an error.
type Event struct {
	Time       time.Time
	HasTime    bool
	Source     SourceLog
	EventID    int
	HasEventID bool
	Level      string
	Provider   string
	Message    string
}

// TimeRange bounds the timed portion of an event stream.
type TimeRange struct {
	First time.Time `json:"first"`
	Last  time.Time `json:"last"`
}
