package extractors

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/miradorstack/mirador-crashkit/internal/models"
	"github.com/miradorstack/mirador-crashkit/internal/utils"
)

// DefaultKeyLineLimit caps the number of key lines in a report.
const DefaultKeyLineLimit = 25

// highSignalIDs are event IDs that point at crashes, reboots and hardware faults.
var highSignalIDs = map[int]struct{}{
	41: {}, 6008: {}, 1001: {}, 4101: {}, 14: {}, 13: {},
	161: {}, 219: {}, 1000: {}, 1002: {}, 1026: {},
}

var highSignalProvider = regexp.MustCompile(`(?i)(Kernel-Power|WHEA|nvlddmkm|Display|BugCheck|Windows Error Reporting|Application Error)`)

// KeyLineExtractor selects high-signal events and renders them as report lines.
type KeyLineExtractor struct{}

// NewKeyLineExtractor constructs a key-line extractor.
func NewKeyLineExtractor() *KeyLineExtractor {
	return &KeyLineExtractor{}
}

// Extract returns the last limit high-signal events as formatted lines, in
// the order given. A limit of zero or less yields no lines.
func (e *KeyLineExtractor) Extract(events []models.Event, limit int) []string {
	if limit <= 0 {
		return []string{}
	}

	picks := make([]models.Event, 0)
	for _, ev := range events {
		if IsHighSignal(ev) {
			picks = append(picks, ev)
		}
	}
	if len(picks) > limit {
		picks = picks[len(picks)-limit:]
	}

	lines := make([]string, 0, len(picks))
	for _, ev := range picks {
		lines = append(lines, FormatKeyLine(ev))
	}
	return lines
}

// IsHighSignal reports whether an event has a high-signal ID, or a provider
// or message naming a high-signal component.
func IsHighSignal(ev models.Event) bool {
	if ev.HasEventID {
		if _, ok := highSignalIDs[ev.EventID]; ok {
			return true
		}
	}
	return highSignalProvider.MatchString(ev.Provider) || highSignalProvider.MatchString(ev.Message)
}

// FormatKeyLine renders "[time] source ID=id provider: message".
func FormatKeyLine(ev models.Event) string {
	id := "none"
	if ev.HasEventID {
		id = strconv.Itoa(ev.EventID)
	}
	return fmt.Sprintf("[%s] %s ID=%s %s: %s", utils.FormatTime(ev.Time, ev.HasTime), ev.Source, id, ev.Provider, ev.Message)
}
