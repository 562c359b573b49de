package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/miradorstack/mirador-crashkit/internal/config"
	"github.com/miradorstack/mirador-crashkit/internal/engine"
	"github.com/miradorstack/mirador-crashkit/internal/metrics"
	"github.com/miradorstack/mirador-crashkit/internal/repo"
	"github.com/miradorstack/mirador-crashkit/internal/utils"
)

// exitNoData is the status for a missing bundle or one without events.
const exitNoData = 2

// exitError carries a specific process exit status out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

// setup loads configuration and applies command-line overrides.
func setup(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = opts.logLevel
	}
	if flags.Changed("log-json") {
		cfg.Logging.JSON = opts.logJSON
	}
	if flags.Changed("metrics-textfile") {
		cfg.Metrics.Textfile = opts.metricsTextfile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON, cmd.ErrOrStderr())
	return &app{cfg: cfg, logger: logger}, nil
}

// pipeline wires the analysis pipeline from configuration. The host
// environment probe is only attached when withProbe is set.
func (rt *app) pipeline(withProbe bool) (*engine.Pipeline, error) {
	classifier, err := engine.NewSuspectClassifier(rt.cfg.Rules.Path, rt.logger)
	if err != nil {
		return nil, fmt.Errorf("load suspect taxonomy: %w", err)
	}
	var probe engine.EnvironmentProber
	if withProbe && rt.cfg.Environment.Enabled {
		probe = repo.NewEnvironmentProbe(repo.ExecRunner{}, rt.cfg.Environment.Timeout, rt.logger)
	}
	return engine.NewPipeline(
		rt.logger,
		repo.NewEventLogRepo(rt.logger, nil),
		classifier,
		probe,
		rt.cfg.Analysis.KeyLineLimit,
	)
}

// finish records the run and flushes metrics to the configured textfile.
func (rt *app) finish(command string, start time.Time, err error) {
	metrics.ObserveRun(command, time.Since(start), metrics.OutcomeOf(err))
	if rt.cfg.Metrics.Textfile == "" {
		return
	}
	if werr := metrics.WriteTextfile(rt.cfg.Metrics.Textfile); werr != nil {
		rt.logger.Warn("metrics textfile not written", slog.String("path", rt.cfg.Metrics.Textfile), slog.Any("error", werr))
	}
}
