package utils

import (
	"regexp"
	"strings"
	"time"
)

// UnknownTime is rendered wherever an event has no usable timestamp.
const UnknownTime = "UNKNOWN_TIME"

// DisplayLayout renders normalized instants at second precision.
const DisplayLayout = "2006-01-02 15:04:05"

var tzSuffix = regexp.MustCompile(`(Z|[+-]\d{2}:?\d{2})$`)

// layoutSample is formatted with every layout once to get its maximal rendered width.
var layoutSample = time.Date(2000, time.November, 22, 11, 11, 11, 123456000, time.UTC)

type timeLayout struct {
	layout string
	width  int
}

// exportLayouts are the renderings seen in event-log exports, in preference order.
var exportLayouts = newTimeLayouts(
	"2006-01-02T15:04:05.000000",
	"2006-01-02T15:04:05",
	"1/2/2006 3:04:05 PM",
	"2006-01-02 15:04:05",
)

// isoLayouts back the generic ISO-8601 fallback.
var isoLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02T15",
	"2006-01-02",
}

func newTimeLayouts(layouts ...string) []timeLayout {
	out := make([]timeLayout, 0, len(layouts))
	for _, l := range layouts {
		out = append(out, timeLayout{layout: l, width: len(layoutSample.Format(l))})
	}
	return out
}

// NormalizeTime converts a raw time field into a normalized instant.
// The boolean is false when the value is absent or cannot be interpreted.
func NormalizeTime(v any) (time.Time, bool) {
	switch value := v.(type) {
	case nil:
		return time.Time{}, false
	case string:
		return ParseTimestamp(value)
	case time.Time:
		if value.IsZero() {
			return time.Time{}, false
		}
		return wallClock(value), true
	case *time.Time:
		if value == nil || value.IsZero() {
			return time.Time{}, false
		}
		return wallClock(*value), true
	default:
		return time.Time{}, false
	}
}

// ParseTimestamp parses text of unknown format. It tries each export layout
// exactly, then against a prefix of the layout's width, then falls back to
// generic ISO-8601.
func ParseTimestamp(s string) (time.Time, bool) {
	text := strings.TrimSpace(s)
	if text == "" {
		return time.Time{}, false
	}

	candidates := []string{text}
	if stripped := tzSuffix.ReplaceAllString(text, ""); stripped != text {
		candidates = append(candidates, stripped)
	}

	for _, cand := range candidates {
		for _, l := range exportLayouts {
			if t, ok := parseLayout(l.layout, cand); ok {
				return t, true
			}
			if len(cand) >= l.width {
				if t, ok := parseLayout(l.layout, cand[:l.width]); ok {
					return t, true
				}
			}
		}
	}

	iso := strings.ReplaceAll(text, "Z", "")
	for _, layout := range isoLayouts {
		if t, ok := parseLayout(layout, iso); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseLayout(layout, value string) (time.Time, bool) {
	// the PM element only matches upper case
	if strings.Contains(layout, "PM") {
		value = strings.ToUpper(value)
	}
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, false
	}
	return wallClock(t), true
}

// wallClock drops the zone so instants from offset-bearing and naive
// renderings compare on their written calendar values.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// FormatTime renders a normalized instant for reports, or UnknownTime.
func FormatTime(t time.Time, ok bool) string {
	if !ok {
		return UnknownTime
	}
	return t.Format(DisplayLayout)
}

// TimestampNow returns the compact local timestamp used for report headers.
func TimestampNow(now time.Time) string {
	return now.Format("20060102-150405")
}
