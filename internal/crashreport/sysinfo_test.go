package crashreport

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseSysinfo(t *testing.T) {
	text := strings.Join([]string{
		"",
		"OS Name:                   Microsoft Windows 11 Pro",
		"System Manufacturer:       ExampleCorp",
		"Hotfix(s):                 2 Hotfix(s) Installed.",
		"                           [01]: KB5031455",
		"Network Card(s):           1 NIC(s) Installed.",
		"                           Intel(R) Ethernet",
		"                           Connection I219-V",
		": orphan value",
		"System Manufacturer:       Duplicate",
	}, "\r\n")

	data := ParseSysinfo(text)

	wantKeys := []string{"OS Name", "System Manufacturer", "Hotfix(s)", "[01]", "Network Card(s)"}
	if diff := cmp.Diff(wantKeys, data.Keys); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if got, _ := data.Get("OS Name"); got != "Microsoft Windows 11 Pro" {
		t.Fatalf("OS Name = %q", got)
	}
	if got := data.Values["System Manufacturer"]; !cmp.Equal(got, []string{"ExampleCorp", "Duplicate"}) {
		t.Fatalf("repeated key should accumulate, got %v", got)
	}
	if got, _ := data.Get("Network Card(s)"); got != "1 NIC(s) Installed. Intel(R) Ethernet Connection I219-V" {
		t.Fatalf("continuation lines not joined: %q", got)
	}
}

func TestParseSysinfoContinuationBeforeKey(t *testing.T) {
	data := ParseSysinfo("no colon yet\nHost Name: PC\n")
	if data.Len() != 1 {
		t.Fatalf("expected only Host Name, got %v", data.Keys)
	}
}
