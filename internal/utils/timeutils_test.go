package utils

import (
	"testing"
	"time"
)

func TestParseTimestampRecognizedFormats(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"iso fractional", "2024-01-05T10:11:12.123456", time.Date(2024, 1, 5, 10, 11, 12, 123456000, time.UTC)},
		{"iso seconds", "2024-01-05T10:11:12", time.Date(2024, 1, 5, 10, 11, 12, 0, time.UTC)},
		{"iso seven digit fraction with zulu", "2024-01-05T10:11:12.1234567Z", time.Date(2024, 1, 5, 10, 11, 12, 123456000, time.UTC)},
		{"iso offset is dropped", "2024-01-05T10:11:12+02:00", time.Date(2024, 1, 5, 10, 11, 12, 0, time.UTC)},
		{"iso compact offset", "2024-01-05T10:11:12-0500", time.Date(2024, 1, 5, 10, 11, 12, 0, time.UTC)},
		{"twelve hour pm", "01/05/2024 10:11:12 PM", time.Date(2024, 1, 5, 22, 11, 12, 0, time.UTC)},
		{"twelve hour lower-case pm", "1/5/2024 3:04:05 pm", time.Date(2024, 1, 5, 15, 4, 5, 0, time.UTC)},
		{"twelve hour mixed-case am", "12/31/2023 11:59:59 Am", time.Date(2023, 12, 31, 11, 59, 59, 0, time.UTC)},
		{"twelve hour unpadded", "1/5/2024 3:04:05 AM", time.Date(2024, 1, 5, 3, 4, 5, 0, time.UTC)},
		{"space separated", "2024-01-05 10:11:12", time.Date(2024, 1, 5, 10, 11, 12, 0, time.UTC)},
		{"trailing garbage", "2024-01-05T10:11:12garbage", time.Date(2024, 1, 5, 10, 11, 12, 0, time.UTC)},
		{"surrounding whitespace", "  2024-01-05 10:11:12 ", time.Date(2024, 1, 5, 10, 11, 12, 0, time.UTC)},
		{"iso date only", "2024-01-05", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{"iso minutes", "2024-01-05T10:11", time.Date(2024, 1, 5, 10, 11, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tc.input)
			if !ok {
				t.Fatalf("ParseTimestamp(%q) reported absent", tc.input)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("ParseTimestamp(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestParseTimestampMalformed(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"garbage",
		"yesterday at noon",
		"2024-13-01T00:00:00",
		"13/45/2024 99:00:00 PM",
		"12:00:00",
	}
	for _, in := range inputs {
		if got, ok := ParseTimestamp(in); ok {
			t.Errorf("ParseTimestamp(%q) = %v, want absent", in, got)
		}
	}
}

func TestNormalizeTimeValueKinds(t *testing.T) {
	if _, ok := NormalizeTime(nil); ok {
		t.Fatalf("nil should be absent")
	}
	if _, ok := NormalizeTime(42); ok {
		t.Fatalf("numbers should be absent")
	}
	if _, ok := NormalizeTime(time.Time{}); ok {
		t.Fatalf("zero time should be absent")
	}

	loc := time.FixedZone("X", 3*3600)
	in := time.Date(2023, 6, 1, 8, 30, 0, 0, loc)
	got, ok := NormalizeTime(in)
	if !ok {
		t.Fatalf("expected time value to normalize")
	}
	if want := time.Date(2023, 6, 1, 8, 30, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	got, ok = NormalizeTime("2023-06-01 08:30:00")
	if !ok || got.Hour() != 8 {
		t.Fatalf("string input not normalized: %v %v", got, ok)
	}
}

func TestFormatTime(t *testing.T) {
	if got := FormatTime(time.Time{}, false); got != UnknownTime {
		t.Fatalf("got %q, want %q", got, UnknownTime)
	}
	ts := time.Date(2024, 1, 5, 10, 11, 12, 999, time.UTC)
	if got := FormatTime(ts, true); got != "2024-01-05 10:11:12" {
		t.Fatalf("unexpected rendering %q", got)
	}
}
