package crashreport

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseMemoryCSV(t *testing.T) {
	input := "\uFEFFLocation,Total,Available\r\nPhysical,16384,8192\r\nVirtual,32768\r\n"

	columns, rows, err := ParseMemoryCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if diff := cmp.Diff([]string{"Location", "Total", "Available"}, columns); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
	want := []map[string]string{
		{"Location": "Physical", "Total": "16384", "Available": "8192"},
		{"Location": "Virtual", "Total": "32768"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMemoryCSVEmpty(t *testing.T) {
	columns, rows, err := ParseMemoryCSV(strings.NewReader(""))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if columns != nil || len(rows) != 0 {
		t.Fatalf("expected no data, got %v %v", columns, rows)
	}
}
