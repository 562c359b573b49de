package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/miradorstack/mirador-crashkit/internal/models"
	"github.com/miradorstack/mirador-crashkit/internal/utils"
)

// DefaultTopSuspects caps the suspect table in the console report.
const DefaultTopSuspects = 6

// NoEventsMessage is printed when a bundle has no usable event exports.
const NoEventsMessage = "No events found. Make sure you pointed at the crash folder that contains logs/."

// RenderInspection writes the console report for an inspected bundle.
func RenderInspection(w io.Writer, in models.Inspection, topSuspects int) error {
	if topSuspects <= 0 {
		topSuspects = DefaultTopSuspects
	}

	var b strings.Builder
	fmt.Fprintln(&b, "CrashKit Summary")
	fmt.Fprintf(&b, "Bundle: %s\n", in.BundleDir)
	fmt.Fprintf(&b, "Events loaded: %d\n", in.EventCount)
	fmt.Fprintf(&b, "Time range: %s\n", formatRange(in.TimeRange))
	fmt.Fprintln(&b)

	if len(in.Suspects) > 0 {
		fmt.Fprintln(&b, "Top suspect buckets (count of matching signals):")
		suspects := in.Suspects
		if len(suspects) > topSuspects {
			suspects = suspects[:topSuspects]
		}
		tb := NewTable()
		tb.Header("#", "Bucket", "Signals")
		tb.AlignRight(1, 3)
		for i, s := range suspects {
			tb.Row(i+1, s.Name, s.Count)
		}
		fmt.Fprintln(&b, tb.String())
	} else {
		fmt.Fprintln(&b, "No strong suspect patterns detected from exported events.")
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "High-signal event lines:")
	for _, l := range in.KeyLines {
		fmt.Fprintf(&b, "- %s\n", l)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func formatRange(r *models.TimeRange) string {
	if r == nil {
		return utils.UnknownTime + " .. " + utils.UnknownTime
	}
	return utils.FormatTime(r.First, true) + " .. " + utils.FormatTime(r.Last, true)
}
