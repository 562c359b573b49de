package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// naiveISOLayout renders wall-clock instants without a zone designator.
const naiveISOLayout = "2006-01-02T15:04:05.999999"

// Summary is the structured result of one summarize run.
type Summary struct {
	RunID           string           `json:"run_id"`
	GeneratedAt     string           `json:"generated_at"`
	BundleDir       string           `json:"bundle_dir"`
	ArtifactStats   ArtifactStats    `json:"artifact_stats"`
	EventCount      int              `json:"event_count"`
	TimeRange       *TimeRange       `json:"time_range"`
	Suspects        []SuspectScore   `json:"suspects"`
	KeyLines        []string         `json:"key_lines"`
	ReportCount     int              `json:"report_count"`
	SignatureCounts []SignatureGroup `json:"signature_counts"`
	Reports         []CrashReport    `json:"reports"`
	GPU             []EnvRecord      `json:"gpu"`
	OS              EnvRecord        `json:"os"`
	Sysinfo         *SysinfoSection  `json:"sysinfo"`
	MemoryCSV       *MemorySection   `json:"memory_csv"`
	Manifest        json.RawMessage  `json:"manifest"`
}

// Inspection is the short console report for a bundle.
type Inspection struct {
	BundleDir  string         `json:"bundle_dir"`
	EventCount int            `json:"event_count"`
	TimeRange  *TimeRange     `json:"time_range"`
	Suspects   []SuspectScore `json:"suspects"`
	KeyLines   []string       `json:"key_lines"`
}

// ArtifactStats counts collected artifacts per category.
type ArtifactStats struct {
	WERReportCount    int       `json:"wer_report_count"`
	LiveKernelFiles   int       `json:"livekernel_files"`
	MinidumpFiles     int       `json:"minidump_files"`
	LargestLiveKernel *FileInfo `json:"largest_livekernel_file,omitempty"`
	LargestMinidump   *FileInfo `json:"largest_minidump_file,omitempty"`
}

// FileInfo describes one artifact file.
type FileInfo struct {
	Path  string `json:"path"`
	Size  string `json:"size"`
	Bytes int64  `json:"bytes"`
}

// EnvRecord is one key/value record reported by an environment query.
type EnvRecord map[string]string

// SysinfoSection is the parsed sysinfo.txt found in the bundle.
type SysinfoSection struct {
	Path string      `json:"path"`
	Data SysinfoData `json:"data"`
}

// MemorySection is the parsed memory.csv found in the bundle.
type MemorySection struct {
	Path    string              `json:"path"`
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

// MarshalJSON renders the range as naive ISO timestamps.
func (r TimeRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		First string `json:"first"`
		Last  string `json:"last"`
	}{
		First: r.First.Format(naiveISOLayout),
		Last:  r.Last.Format(naiveISOLayout),
	})
}

// UnmarshalJSON reads the naive ISO timestamps written by MarshalJSON.
func (r *TimeRange) UnmarshalJSON(data []byte) error {
	var raw struct {
		First string `json:"first"`
		Last  string `json:"last"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	first, err := time.Parse(naiveISOLayout, raw.First)
	if err != nil {
		return fmt.Errorf("time_range.first: %w", err)
	}
	last, err := time.Parse(naiveISOLayout, raw.Last)
	if err != nil {
		return fmt.Errorf("time_range.last: %w", err)
	}
	r.First, r.Last = first, last
	return nil
}

// SysinfoData holds colon-separated fields in first-seen key order.
// A key seen more than once keeps every value in order.
type SysinfoData struct {
	Keys   []string
	Values map[string][]string
}

// NewSysinfoData returns an empty SysinfoData.
func NewSysinfoData() SysinfoData {
	return SysinfoData{Values: make(map[string][]string)}
}

// Add records a value for key, accumulating on repeats.
func (d *SysinfoData) Add(key, value string) {
	if d.Values == nil {
		d.Values = make(map[string][]string)
	}
	if _, ok := d.Values[key]; !ok {
		d.Keys = append(d.Keys, key)
	}
	d.Values[key] = append(d.Values[key], value)
}

// Extend appends continuation text to the latest value of key.
func (d *SysinfoData) Extend(key, extra string) {
	values := d.Values[key]
	if len(values) == 0 {
		d.Add(key, extra)
		return
	}
	last := len(values) - 1
	values[last] = strings.TrimSpace(values[last] + " " + extra)
}

// Get returns the value for key; repeated values are joined with "; ".
func (d SysinfoData) Get(key string) (string, bool) {
	values, ok := d.Values[key]
	if !ok {
		return "", false
	}
	return strings.Join(values, "; "), true
}

// Len reports the number of distinct keys.
func (d SysinfoData) Len() int { return len(d.Keys) }

// MarshalJSON emits an object in first-seen key order. Single values are
// strings, repeated values are arrays.
func (d SysinfoData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range d.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')

		var v []byte
		if values := d.Values[key]; len(values) == 1 {
			v, err = json.Marshal(values[0])
		} else {
			v, err = json.Marshal(values)
		}
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the object written by MarshalJSON, keeping key order.
func (d *SysinfoData) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*d = SysinfoData{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("sysinfo data: expected object, got %v", tok)
	}

	out := NewSysinfoData()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		var values []string
		if len(raw) > 0 && raw[0] == '[' {
			if err := json.Unmarshal(raw, &values); err != nil {
				return fmt.Errorf("sysinfo data %q: %w", key, err)
			}
		} else {
			var v string
			if err := json.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("sysinfo data %q: %w", key, err)
			}
			values = []string{v}
		}
		for _, v := range values {
			out.Add(key, v)
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*d = out
	return nil
}

// NewTimeRange returns the range of timed events, or nil when none carry a time.
func NewTimeRange(events []Event) *TimeRange {
	var r *TimeRange
	for _, e := range events {
		if !e.HasTime {
			continue
		}
		if r == nil {
			r = &TimeRange{First: e.Time, Last: e.Time}
			continue
		}
		if e.Time.Before(r.First) {
			r.First = e.Time
		}
		if e.Time.After(r.Last) {
			r.Last = e.Time
		}
	}
	return r
}
