package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/miradorstack/mirador-crashkit/internal/models"
)

// Output file names written by WriteSummary.
const (
	SummaryJSONFile = "summary.json"
	SummaryTextFile = "summary.txt"
)

// TopSignatures caps the signature list in the text summary.
const TopSignatures = 10

// sysinfoHighlights are the sysinfo keys echoed in the text summary.
var sysinfoHighlights = []string{"OS Name", "System Manufacturer", "System Model", "System Type"}

// Paths locates the files produced by WriteSummary.
type Paths struct {
	JSON string `json:"summary_json"`
	Text string `json:"summary_txt"`
}

// WriteSummary writes summary.json and summary.txt into dir, creating it if
// needed. Each file is replaced atomically.
func WriteSummary(dir string, s models.Summary) (Paths, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("create output dir: %w", err)
	}

	data, err := EncodeJSON(s)
	if err != nil {
		return Paths{}, fmt.Errorf("encode summary: %w", err)
	}

	paths := Paths{
		JSON: filepath.Join(dir, SummaryJSONFile),
		Text: filepath.Join(dir, SummaryTextFile),
	}
	if err := writeFileAtomic(paths.JSON, data); err != nil {
		return Paths{}, err
	}
	if err := writeFileAtomic(paths.Text, []byte(RenderText(s))); err != nil {
		return Paths{}, err
	}
	return paths, nil
}

// EncodeJSON renders v as two-space indented JSON without HTML escaping.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderText renders the human-readable summary. It depends only on s, so
// a decoded summary.json renders the same text.
func RenderText(s models.Summary) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line("mirador-crashkit summary")
	line("Bundle: %s", s.BundleDir)
	line("Generated: %s", s.GeneratedAt)
	line("WER reports: %d", s.ReportCount)
	line("LiveKernelReports files: %d", s.ArtifactStats.LiveKernelFiles)
	line("Minidump files: %d", s.ArtifactStats.MinidumpFiles)

	if len(s.SignatureCounts) > 0 {
		line("")
		line("Top signatures:")
		groups := s.SignatureCounts
		if len(groups) > TopSignatures {
			groups = groups[:TopSignatures]
		}
		for _, g := range groups {
			line("- %s (%d)", g.Signature, g.Count)
		}
	}

	if len(s.GPU) > 0 {
		line("")
		line("GPU:")
		for _, gpu := range s.GPU {
			line("- %s DriverVersion=%s DriverDate=%s",
				valueOr(gpu, "Name"), valueOr(gpu, "DriverVersion"), valueOr(gpu, "DriverDate"))
		}
	}

	if len(s.OS) > 0 {
		line("")
		line("OS:")
		keys := make([]string, 0, len(s.OS))
		for k := range s.OS {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			line("- %s: %s", k, s.OS[k])
		}
	}

	if s.Sysinfo != nil {
		line("")
		line("Sysinfo:")
		for _, key := range sysinfoHighlights {
			if v, ok := s.Sysinfo.Data.Get(key); ok {
				line("- %s: %s", key, v)
			}
		}
	}

	if s.MemoryCSV != nil {
		line("")
		line("Memory CSV rows: %d", len(s.MemoryCSV.Rows))
	}
	return b.String()
}

func valueOr(rec models.EnvRecord, key string) string {
	if v, ok := rec[key]; ok {
		return v
	}
	return "Unknown"
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
