package models

// CrashReport is one parsed Report.wer file. Empty strings mean "unknown".
type CrashReport struct {
	Path              string            `json:"path"`
	EventType         string            `json:"event_type"`
	FriendlyEventName string            `json:"friendly_event_name"`
	SigValues         map[string]string `json:"sig_values"`
	SigNames          map[string]string `json:"sig_names"`
	NsValues          map[string]string `json:"ns_values"`
	StopCode          string            `json:"stop_code"`
	DumpFile          string            `json:"dump_file"`
	ReportID          string            `json:"report_id"`
	ProblemSignature  string            `json:"problem_signature"`
}

// SignatureGroup counts crash reports sharing a derived signature.
type SignatureGroup struct {
	Signature string `json:"signature"`
	Count     int    `json:"count"`
}
