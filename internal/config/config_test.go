package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MIRADOR_CRASHKIT_CONFIG", "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Analysis.KeyLineLimit != 25 || cfg.Analysis.TopSuspects != 6 {
		t.Fatalf("unexpected analysis defaults %+v", cfg.Analysis)
	}
	if !cfg.Environment.Enabled || cfg.Server.Address != ":50061" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crashkit.yaml")
	if err := os.WriteFile(path, []byte(`logging:
  level: debug
analysis:
  keyLineLimit: 10
  topSuspects: 3
environment:
  enabled: true
  timeout: 5s
server:
  address: ":7000"
`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("MIRADOR_CRASHKIT_ENV_PROBE", "false")
	t.Setenv("MIRADOR_CRASHKIT_LOG_FORMAT", "json")
	t.Setenv("MIRADOR_CRASHKIT_KEY_LINE_LIMIT", "40")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.JSON {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
	if cfg.Analysis.KeyLineLimit != 40 || cfg.Analysis.TopSuspects != 3 {
		t.Fatalf("unexpected analysis %+v", cfg.Analysis)
	}
	if cfg.Environment.Enabled || cfg.Environment.Timeout != 5*time.Second {
		t.Fatalf("unexpected environment %+v", cfg.Environment)
	}
	if cfg.Server.Address != ":7000" {
		t.Fatalf("unexpected server %+v", cfg.Server)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crashkit.yaml")
	if err := os.WriteFile(path, []byte("analysis:\n  topSuspects: 0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "TopSuspects") {
		t.Fatalf("expected validation error on TopSuspects, got %v", err)
	}
}
