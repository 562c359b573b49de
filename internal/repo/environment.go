package repo

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/miradorstack/mirador-crashkit/internal/crashreport"
	"github.com/miradorstack/mirador-crashkit/internal/models"
)

// CommandRunner executes an external query and returns its standard output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name with args and returns stdout. Stderr is folded into the error.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return out, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// EnvironmentProbe queries the host the tool runs on for GPU and OS details.
// Every failure degrades to an empty result.
type EnvironmentProbe struct {
	runner  CommandRunner
	goos    string
	timeout time.Duration
	logger  *slog.Logger
}

// NewEnvironmentProbe constructs a probe. A zero timeout leaves queries
// bounded only by the caller's context.
func NewEnvironmentProbe(runner CommandRunner, timeout time.Duration, logger *slog.Logger) *EnvironmentProbe {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EnvironmentProbe{runner: runner, goos: runtime.GOOS, timeout: timeout, logger: logger}
}

// GPUInfo lists display adapters. Non-Windows hosts report none.
func (p *EnvironmentProbe) GPUInfo(ctx context.Context) []models.EnvRecord {
	return p.wmic(ctx, "path", "Win32_VideoController", "get", "Name,DriverVersion,DriverDate")
}

// OSInfo describes the operating system.
func (p *EnvironmentProbe) OSInfo(ctx context.Context) models.EnvRecord {
	if p.goos != "windows" {
		rec := models.EnvRecord{"platform": p.goos + "-" + runtime.GOARCH}
		if release := p.uname(ctx, "-r"); release != "" {
			rec["release"] = release
		}
		if version := p.uname(ctx, "-v"); version != "" {
			rec["version"] = version
		}
		return rec
	}
	items := p.wmic(ctx, "os", "get", "Caption,Version,BuildNumber")
	if len(items) == 0 {
		return models.EnvRecord{}
	}
	return items[0]
}

func (p *EnvironmentProbe) wmic(ctx context.Context, query ...string) []models.EnvRecord {
	if p.goos != "windows" {
		return nil
	}
	out, err := p.run(ctx, "wmic", append(query, "/format:list")...)
	if err != nil {
		p.logger.Warn("wmic query failed", slog.String("query", strings.Join(query, " ")), slog.Any("error", err))
		return nil
	}
	return ParseWMICList(crashreport.DecodeText(out))
}

func (p *EnvironmentProbe) uname(ctx context.Context, flag string) string {
	out, err := p.run(ctx, "uname", flag)
	if err != nil {
		p.logger.Debug("uname failed", slog.String("flag", flag), slog.Any("error", err))
		return ""
	}
	return strings.TrimSpace(string(out))
}

func (p *EnvironmentProbe) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return p.runner.Run(ctx, name, args...)
}

// ParseWMICList parses "/format:list" output: blank-line separated blocks
// of Key=Value lines.
func ParseWMICList(text string) []models.EnvRecord {
	var (
		items   []models.EnvRecord
		current models.EnvRecord
	)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(current) > 0 {
				items = append(items, current)
				current = nil
			}
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if current == nil {
			current = models.EnvRecord{}
		}
		current[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if len(current) > 0 {
		items = append(items, current)
	}
	return items
}
