package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/miradorstack/mirador-crashkit/internal/utils"
)

const (
	// OutcomeSuccess labels runs that produced a report.
	OutcomeSuccess = "success"
	// OutcomeNoData labels runs over a missing or empty bundle.
	OutcomeNoData = "no_data"
	// OutcomeError labels runs that failed for any other reason.
	OutcomeError = "error"
)

const namespace = "crashkit"

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of triage runs, partitioned by command and outcome.",
		},
		[]string{"command", "outcome"},
	)

	runDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_seconds",
			Help:      "Triage run latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"command"},
	)

	eventsLoadedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_loaded_total",
			Help:      "Events loaded from bundle exports, partitioned by source log.",
		},
		[]string{"source"},
	)

	reportsParsedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "crash_reports_parsed_total",
			Help:      "Windows Error Reporting files parsed.",
		},
	)

	suspectMatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suspect_matches_total",
			Help:      "Events matching each suspect bucket.",
		},
		[]string{"bucket"},
	)
)

// Register attaches crashkit collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		runsTotal,
		runDurationSeconds,
		eventsLoadedTotal,
		reportsParsedTotal,
		suspectMatchesTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveRun records a run duration and outcome for command.
func ObserveRun(command string, duration time.Duration, outcome string) {
	switch outcome {
	case OutcomeSuccess, OutcomeNoData:
	default:
		outcome = OutcomeError
	}
	runsTotal.WithLabelValues(command, outcome).Inc()
	if duration < 0 {
		duration = 0
	}
	runDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// OutcomeOf classifies a run result for the outcome label.
func OutcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case utils.IsNoData(err):
		return OutcomeNoData
	default:
		return OutcomeError
	}
}

// ObserveEventsLoaded adds n events loaded from source.
func ObserveEventsLoaded(source string, n int) {
	if n <= 0 {
		return
	}
	eventsLoadedTotal.WithLabelValues(source).Add(float64(n))
}

// ObserveReportsParsed adds n parsed crash reports.
func ObserveReportsParsed(n int) {
	if n <= 0 {
		return
	}
	reportsParsedTotal.Add(float64(n))
}

// ObserveSuspectMatches adds count matches for bucket.
func ObserveSuspectMatches(bucket string, count int) {
	if count <= 0 {
		return
	}
	suspectMatchesTotal.WithLabelValues(bucket).Add(float64(count))
}

// WriteTextfile registers the collectors on a fresh registry and writes its
// state in the node-exporter textfile format. Used by batch commands.
func WriteTextfile(path string) error {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, reg)
}
