package engine

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/miradorstack/mirador-crashkit/internal/crashreport"
	"github.com/miradorstack/mirador-crashkit/internal/extractors"
	"github.com/miradorstack/mirador-crashkit/internal/metrics"
	"github.com/miradorstack/mirador-crashkit/internal/models"
	"github.com/miradorstack/mirador-crashkit/internal/patterns"
	"github.com/miradorstack/mirador-crashkit/internal/repo"
	"github.com/miradorstack/mirador-crashkit/internal/utils"
)

// EventLoader loads the merged, ordered event stream of a bundle.
type EventLoader interface {
	LoadEvents(ctx context.Context, bundleDir string) ([]models.Event, error)
}

// EnvironmentProber describes the host the tool is running on.
type EnvironmentProber interface {
	GPUInfo(ctx context.Context) []models.EnvRecord
	OSInfo(ctx context.Context) models.EnvRecord
}

// Pipeline orchestrates one triage run over a bundle directory. It keeps
// no state between runs.
type Pipeline struct {
	logger       *slog.Logger
	loader       EventLoader
	classifier   *SuspectClassifier
	keyLines     *extractors.KeyLineExtractor
	parser       *crashreport.Parser
	probe        EnvironmentProber
	keyLineLimit int
	now          func() time.Time
	newID        func() string
}

// NewPipeline constructs a pipeline. A nil loader reads the default event
// exports; a nil classifier uses the built-in taxonomy; a nil probe skips
// host queries.
func NewPipeline(
	logger *slog.Logger,
	loader EventLoader,
	classifier *SuspectClassifier,
	probe EnvironmentProber,
	keyLineLimit int,
) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if loader == nil {
		loader = repo.NewEventLogRepo(logger, nil)
	}
	if classifier == nil {
		var err error
		classifier, err = NewSuspectClassifier("", logger)
		if err != nil {
			return nil, err
		}
	}

	return &Pipeline{
		logger:       logger,
		loader:       loader,
		classifier:   classifier,
		keyLines:     extractors.NewKeyLineExtractor(),
		parser:       crashreport.NewParser(logger),
		probe:        probe,
		keyLineLimit: keyLineLimit,
		now:          time.Now,
		newID:        uuid.NewString,
	}, nil
}

// Inspect loads and classifies the bundle's events for the console report.
// A bundle without events yields utils.ErrNoEvents alongside the partial result.
func (p *Pipeline) Inspect(ctx context.Context, bundleDir string) (models.Inspection, error) {
	bundle, err := repo.OpenBundle(bundleDir, p.logger)
	if err != nil {
		return models.Inspection{BundleDir: bundleDir}, err
	}

	result := models.Inspection{BundleDir: bundle.Dir}
	events, err := p.loadEvents(ctx, bundle.Dir)
	if err != nil {
		return result, err
	}
	if len(events) == 0 {
		return result, utils.NewAppError("inspect", bundle.Dir, utils.ErrNoEvents)
	}

	result.EventCount = len(events)
	result.TimeRange = models.NewTimeRange(events)
	result.Suspects = p.score(events)
	result.KeyLines = p.keyLines.Extract(events, p.keyLineLimit)
	return result, nil
}

// Summarize assembles the full structured summary of a bundle. Only a
// missing or non-directory bundle fails; every other problem degrades the
// affected section.
func (p *Pipeline) Summarize(ctx context.Context, bundleDir string) (models.Summary, error) {
	bundle, err := repo.OpenBundle(bundleDir, p.logger)
	if err != nil {
		return models.Summary{}, err
	}

	summary := models.Summary{
		RunID:         p.newID(),
		GeneratedAt:   utils.TimestampNow(p.now()),
		BundleDir:     bundle.Dir,
		ArtifactStats: bundle.ArtifactStats(),
		OS:            models.EnvRecord{},
		GPU:           []models.EnvRecord{},
	}

	reports := make([]models.CrashReport, 0)
	for _, path := range bundle.ReportPaths() {
		if err := ctx.Err(); err != nil {
			return models.Summary{}, err
		}
		reports = append(reports, p.parser.ParseFile(path))
	}
	metrics.ObserveReportsParsed(len(reports))
	summary.Reports = reports
	summary.ReportCount = len(reports)
	summary.SignatureCounts = patterns.Cluster(reports)

	events, err := p.loadEvents(ctx, bundle.Dir)
	if err != nil {
		return models.Summary{}, err
	}
	summary.EventCount = len(events)
	summary.TimeRange = models.NewTimeRange(events)
	summary.Suspects = p.score(events)
	summary.KeyLines = p.keyLines.Extract(events, p.keyLineLimit)

	if p.probe != nil {
		if gpus := p.probe.GPUInfo(ctx); gpus != nil {
			summary.GPU = gpus
		}
		if rec := p.probe.OSInfo(ctx); rec != nil {
			summary.OS = rec
		}
	}

	summary.Sysinfo = p.loadSysinfo(bundle)
	summary.MemoryCSV = p.loadMemoryCSV(bundle)
	summary.Manifest = bundle.Manifest()

	p.logger.Info("bundle summarized",
		slog.String("bundle", bundle.Dir),
		slog.Int("reports", summary.ReportCount),
		slog.Int("events", summary.EventCount))
	return summary, nil
}

func (p *Pipeline) loadEvents(ctx context.Context, dir string) ([]models.Event, error) {
	events, err := p.loader.LoadEvents(ctx, dir)
	if err != nil {
		return nil, err
	}
	perSource := make(map[models.SourceLog]int)
	for _, ev := range events {
		perSource[ev.Source]++
	}
	for source, n := range perSource {
		metrics.ObserveEventsLoaded(string(source), n)
	}
	return events, nil
}

func (p *Pipeline) score(events []models.Event) []models.SuspectScore {
	scores := p.classifier.Score(events)
	for _, s := range scores {
		metrics.ObserveSuspectMatches(s.Name, s.Count)
	}
	return scores
}

func (p *Pipeline) loadSysinfo(bundle *repo.Bundle) *models.SysinfoSection {
	path, ok := bundle.LatestNamedFile(repo.SysinfoFileName)
	if !ok {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		p.logger.Warn("sysinfo unreadable", slog.String("path", path), slog.Any("error", err))
		return nil
	}
	text := crashreport.DecodeText(raw)
	if text == "" {
		return nil
	}
	return &models.SysinfoSection{Path: path, Data: crashreport.ParseSysinfo(text)}
}

func (p *Pipeline) loadMemoryCSV(bundle *repo.Bundle) *models.MemorySection {
	path, ok := bundle.LatestNamedFile(repo.MemoryFileName)
	if !ok {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		p.logger.Warn("memory csv unreadable", slog.String("path", path), slog.Any("error", err))
		return nil
	}
	defer f.Close()

	columns, rows, err := crashreport.ParseMemoryCSV(f)
	if err != nil {
		p.logger.Warn("memory csv malformed", slog.String("path", path), slog.Any("error", err))
		return nil
	}
	return &models.MemorySection{Path: path, Columns: columns, Rows: rows}
}
