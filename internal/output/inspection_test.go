package output

import (
	"strings"
	"testing"
	"time"

	"github.com/miradorstack/mirador-crashkit/internal/models"
)

func TestRenderInspection(t *testing.T) {
	in := models.Inspection{
		BundleDir:  "/bundles/crash-1",
		EventCount: 12,
		TimeRange: &models.TimeRange{
			First: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
			Last:  time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC),
		},
		Suspects: []models.SuspectScore{
			{Name: "GPU driver reset (TDR) or display stack", Count: 7},
			{Name: "Driver/service instability", Count: 3},
		},
		KeyLines: []string{"[2024-01-01 09:00:00] System ID=41 Kernel-Power: reboot"},
	}

	var b strings.Builder
	if err := RenderInspection(&b, in, 1); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := b.String()

	for _, want := range []string{
		"CrashKit Summary\nBundle: /bundles/crash-1\nEvents loaded: 12\n",
		"Time range: 2024-01-01 09:00:00 .. 2024-01-02 10:30:00\n",
		"Top suspect buckets (count of matching signals):",
		"GPU driver reset (TDR) or display stack",
		"High-signal event lines:\n- [2024-01-01 09:00:00] System ID=41 Kernel-Power: reboot\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Driver/service instability") {
		t.Fatalf("suspect table should be capped at one row:\n%s", out)
	}
}

func TestRenderInspectionNoSuspects(t *testing.T) {
	var b strings.Builder
	if err := RenderInspection(&b, models.Inspection{BundleDir: "/b", EventCount: 1}, 0); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, "No strong suspect patterns detected from exported events.") {
		t.Fatalf("missing no-suspects message:\n%s", out)
	}
	if !strings.Contains(out, "Time range: UNKNOWN_TIME .. UNKNOWN_TIME") {
		t.Fatalf("missing unknown range:\n%s", out)
	}
}

func TestTableBuilder(t *testing.T) {
	tb := NewTable()
	tb.Header("#", "Bucket", "Signals")
	tb.Row(1, "Disk/FS instability", 4)
	out := tb.String()
	if !strings.Contains(out, "Disk/FS instability") || !strings.Contains(out, "───") {
		t.Fatalf("unexpected table:\n%s", out)
	}
}
