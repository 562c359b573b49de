package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/miradorstack/mirador-crashkit/internal/models"
	"github.com/miradorstack/mirador-crashkit/internal/utils"
)

// LogsDir is the bundle subdirectory holding structured event-log exports.
const LogsDir = "logs"

// EventSource pairs a source name with its export file under LogsDir.
type EventSource struct {
	Name models.SourceLog
	File string
}

// DefaultEventSources lists the exports written by the collector, in load order.
var DefaultEventSources = []EventSource{
	{Name: models.SourceSystem, File: "system_events.json"},
	{Name: models.SourceApplication, File: "application_events.json"},
	{Name: models.SourceSystemProviderFocus, File: "system_provider_focus.json"},
	{Name: models.SourceReliability, File: "reliability_records.json"},
	{Name: models.SourceWEROperational, File: "wer_systemerrorreporting.json"},
}

var (
	timeKeys     = []string{"TimeCreated", "TimeGenerated"}
	eventIDKeys  = []string{"Id", "EventIdentifier"}
	providerKeys = []string{"ProviderName", "SourceName"}
	utf8BOM      = []byte{0xEF, 0xBB, 0xBF}
)

// EventLogRepo loads structured event-log exports from a bundle.
type EventLogRepo struct {
	logger  *slog.Logger
	sources []EventSource
}

// NewEventLogRepo constructs a repo reading sources; nil means DefaultEventSources.
func NewEventLogRepo(logger *slog.Logger, sources []EventSource) *EventLogRepo {
	if logger == nil {
		logger = slog.Default()
	}
	if sources == nil {
		sources = DefaultEventSources
	}
	return &EventLogRepo{logger: logger, sources: sources}
}

// LoadEvents reads every configured export under bundleDir and returns one
// merged stream ordered by time, with untimed events after all timed ones.
// Unreadable or malformed files contribute zero events.
func (r *EventLogRepo) LoadEvents(ctx context.Context, bundleDir string) ([]models.Event, error) {
	var events []models.Event
	for _, src := range r.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(bundleDir, LogsDir, src.File)
		for _, obj := range r.loadRecords(path) {
			events = append(events, CoerceEvent(obj, src.Name))
		}
	}
	SortEvents(events)
	return events, nil
}

// SortEvents orders events by time, untimed last, preserving insertion order on ties.
func SortEvents(events []models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.HasTime != b.HasTime {
			return a.HasTime
		}
		return a.Time.Before(b.Time)
	})
}

func (r *EventLogRepo) loadRecords(path string) []map[string]any {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Debug("event export missing", slog.String("path", path))
		} else {
			r.logger.Warn("event export unreadable", slog.String("path", path), slog.Any("error", err))
		}
		return nil
	}

	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if len(data) == 0 {
		return nil
	}

	records, skipped, err := decodeRecords(data)
	if err != nil {
		r.logger.Warn("event export malformed",
			slog.String("path", path),
			slog.Int("recovered", len(records)),
			slog.Any("error", err))
	}
	if skipped > 0 {
		r.logger.Warn("skipped non-object records", slog.String("path", path), slog.Int("skipped", skipped))
	}
	return records
}

// decodeRecords accepts a single object or an array of objects. Array
// elements decoded before a syntax error are kept.
func decodeRecords(data []byte) ([]map[string]any, int, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, 0, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return nil, 0, fmt.Errorf("top-level value is %T, not a record list", tok)
	}

	switch delim {
	case '{':
		whole := json.NewDecoder(bytes.NewReader(data))
		whole.UseNumber()
		var obj map[string]any
		if err := whole.Decode(&obj); err != nil {
			return nil, 0, err
		}
		return []map[string]any{obj}, 0, nil
	case '[':
		var records []map[string]any
		skipped := 0
		for dec.More() {
			var elem any
			if err := dec.Decode(&elem); err != nil {
				return records, skipped, err
			}
			if obj, ok := elem.(map[string]any); ok {
				records = append(records, obj)
			} else {
				skipped++
			}
		}
		if _, err := dec.Token(); err != nil {
			return records, skipped, err
		}
		return records, skipped, nil
	default:
		return nil, 0, fmt.Errorf("unexpected delimiter %q", delim)
	}
}

// CoerceEvent turns one raw export record into an Event. Missing or
// unusable fields become defaults; it never fails.
func CoerceEvent(obj map[string]any, source models.SourceLog) models.Event {
	e := models.Event{Source: source}

	for _, key := range timeKeys {
		if v, ok := obj[key]; ok {
			e.Time, e.HasTime = utils.NormalizeTime(v)
			break
		}
	}
	for _, key := range eventIDKeys {
		if v, ok := obj[key]; ok {
			e.EventID, e.HasEventID = coerceInt(v)
			break
		}
	}

	e.Level = orUnknown(stringify(obj["LevelDisplayName"]))
	e.Provider = models.UnknownField
	for _, key := range providerKeys {
		if p := strings.TrimSpace(stringify(obj[key])); p != "" {
			e.Provider = p
			break
		}
	}
	e.Message = strings.Join(strings.Fields(stringify(obj["Message"])), " ")
	return e
}

func orUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return models.UnknownField
	}
	return s
}

func stringify(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case json.Number:
		return value.String()
	case bool:
		if !value {
			return ""
		}
		return "true"
	default:
		return fmt.Sprint(value)
	}
}

func coerceInt(v any) (int, bool) {
	switch value := v.(type) {
	case json.Number:
		if n, err := value.Int64(); err == nil {
			return int(n), true
		}
		if f, err := value.Float64(); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int(f), true
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n, true
		}
	case float64:
		if !math.IsNaN(value) && !math.IsInf(value, 0) {
			return int(value), true
		}
	case int:
		return value, true
	case int64:
		return int(value), true
	}
	return 0, false
}
