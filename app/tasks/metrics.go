package tasks

import (
	"errors"

	"github.com/lysyi3m/rss-ledger/app/database"
	"github.com/lysyi3m/rss-ledger/app/feed"
	"github.com/lysyi3m/rss-ledger/app/fetcher"
	"github.com/lysyi3m/rss-ledger/app/ingest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeIngested              = "ingested"
	OutcomeBootstrap             = "bootstrap"
	OutcomeUnchanged             = "unchanged"
	OutcomeNetworkError          = "network_error"
	OutcomeParseError            = "parse_error"
	OutcomeMissingBuildTimestamp = "missing_build_timestamp"
	OutcomeStorageError          = "storage_error"
	OutcomeError                 = "error"
)

// Outcome classifies a processing result for logs and metrics.
func Outcome(r ingest.ProcessingResult) string {
	var (
		netErr     *fetcher.NetworkError
		parseErr   *feed.ParseError
		storageErr *database.StorageError
	)

	switch {
	case r.Err == nil && r.Bootstrap:
		return OutcomeBootstrap
	case r.Err == nil && r.Unchanged:
		return OutcomeUnchanged
	case r.Err == nil:
		return OutcomeIngested
	case errors.As(r.Err, &netErr):
		return OutcomeNetworkError
	case errors.Is(r.Err, feed.ErrMissingBuildTimestamp):
		return OutcomeMissingBuildTimestamp
	case errors.As(r.Err, &parseErr):
		return OutcomeParseError
	case errors.As(r.Err, &storageErr):
		return OutcomeStorageError
	default:
		return OutcomeError
	}
}

type Metrics struct {
	cycles         prometheus.Counter
	sourceRuns     *prometheus.CounterVec
	itemsInserted  *prometheus.CounterVec
	itemsSkipped   *prometheus.CounterVec
	sweepDeleted   prometheus.Counter
	sweepErrors    prometheus.Counter
	cycleDuration  prometheus.Histogram
	sourceDuration prometheus.Histogram
	lastCycle      prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		cycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "rss_ledger_cycles_total",
			Help: "The total number of completed ingestion cycles",
		}),
		sourceRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rss_ledger_source_runs_total",
			Help: "Per-source processing attempts by outcome",
		}, []string{"outcome"}),
		itemsInserted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rss_ledger_items_inserted_total",
			Help: "Items written to the historical and current tables",
		}, []string{"source"}),
		itemsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rss_ledger_items_skipped_total",
			Help: "Items dropped because they predate the source watermark",
		}, []string{"source"}),
		sweepDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "rss_ledger_sweep_deleted_total",
			Help: "Current rows removed by retention sweeps",
		}),
		sweepErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "rss_ledger_sweep_errors_total",
			Help: "Retention sweeps that failed",
		}),
		cycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rss_ledger_cycle_duration_seconds",
			Help:    "Wall time of a full ingestion cycle",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		sourceDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rss_ledger_source_duration_seconds",
			Help:    "Wall time of processing one source",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		lastCycle: factory.NewGauge(prometheus.GaugeOpts{
			Name: "rss_ledger_last_cycle_timestamp_seconds",
			Help: "Unix time the last ingestion cycle finished",
		}),
	}
}

func (m *Metrics) observe(summary CycleSummary) {
	if m == nil {
		return
	}

	for _, r := range summary.Results {
		m.sourceRuns.WithLabelValues(Outcome(r)).Inc()
		m.sourceDuration.Observe(r.Duration.Seconds())
		if r.ItemsInserted > 0 {
			m.itemsInserted.WithLabelValues(r.SourceName).Add(float64(r.ItemsInserted))
		}
		if r.ItemsSkipped > 0 {
			m.itemsSkipped.WithLabelValues(r.SourceName).Add(float64(r.ItemsSkipped))
		}
	}

	if summary.SweepErr != nil {
		m.sweepErrors.Inc()
	} else {
		m.sweepDeleted.Add(float64(summary.SweepDeleted))
	}

	m.cycles.Inc()
	m.cycleDuration.Observe(summary.Duration.Seconds())
	m.lastCycle.Set(float64(summary.FinishedAt.Unix()))
}
