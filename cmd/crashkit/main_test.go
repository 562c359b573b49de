package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("MIRADOR_CRASHKIT_CONFIG", "")
	t.Setenv("MIRADOR_CRASHKIT_ENV_PROBE", "false")
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestAnalyzeMissingBundle(t *testing.T) {
	code, stdout, _ := runCLI(t, "analyze", filepath.Join(t.TempDir(), "missing"))
	if code != exitNoData {
		t.Fatalf("exit = %d, want %d", code, exitNoData)
	}
	if !strings.Contains(stdout, "Path not found") {
		t.Fatalf("unexpected stdout %q", stdout)
	}
}

func TestAnalyzeEmptyBundle(t *testing.T) {
	code, stdout, _ := runCLI(t, "analyze", t.TempDir())
	if code != exitNoData {
		t.Fatalf("exit = %d, want %d", code, exitNoData)
	}
	if !strings.Contains(stdout, "No events found") {
		t.Fatalf("unexpected stdout %q", stdout)
	}
}

func TestAnalyzeReport(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "logs", "system_events.json"), `[
		{"TimeCreated": "2024-01-01T10:00:00", "Id": 41, "ProviderName": "Microsoft-Windows-Kernel-Power", "Message": "The system has rebooted without cleanly shutting down first."}
	]`)
	textfile := filepath.Join(t.TempDir(), "crashkit.prom")

	code, stdout, stderr := runCLI(t, "analyze", dir, "--metrics-textfile", textfile, "--log-level", "error")
	if code != 0 {
		t.Fatalf("exit = %d, stderr %s", code, stderr)
	}
	for _, want := range []string{
		"CrashKit Summary",
		"Events loaded: 1",
		"Kernel power / unexpected reboot",
		"- [2024-01-01 10:00:00] System ID=41 Microsoft-Windows-Kernel-Power:",
	} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("stdout missing %q:\n%s", want, stdout)
		}
	}
	data, err := os.ReadFile(textfile)
	if err != nil {
		t.Fatalf("metrics textfile: %v", err)
	}
	if !strings.Contains(string(data), `crashkit_runs_total{command="analyze",outcome="success"}`) {
		t.Fatalf("textfile missing analyze run:\n%s", data)
	}
}

func TestSummarizeWritesFiles(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "wer", "Kernel_193", "Report.wer"), "EventType=LiveKernelEvent\nSig[0].Name=Code\nSig[0].Value=193\nSig[1].Value=80e\n")
	outDir := filepath.Join(t.TempDir(), "out")

	code, stdout, stderr := runCLI(t, "summarize", dir, "-o", outDir)
	if code != 0 {
		t.Fatalf("exit = %d, stderr %s", code, stderr)
	}
	if !strings.Contains(stdout, "JSON: "+filepath.Join(outDir, "summary.json")) {
		t.Fatalf("unexpected stdout %q", stdout)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "summary.json"))
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	var summary struct {
		ReportCount     int `json:"report_count"`
		SignatureCounts []struct {
			Signature string `json:"signature"`
		} `json:"signature_counts"`
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.ReportCount != 1 || summary.SignatureCounts[0].Signature != "Sig0=193 Sig1=80e" {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestSummarizeNotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bundle.zip")
	mustWrite(t, file, "PK")

	code, _, stderr := runCLI(t, "summarize", file)
	if code != 1 {
		t.Fatalf("exit = %d, want 1", code)
	}
	if !strings.Contains(stderr, "not a directory") {
		t.Fatalf("unexpected stderr %q", stderr)
	}
}
