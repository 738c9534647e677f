// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	PagesProcessed prometheus.Counter
	PagesFailed    prometheus.Counter
	RecordsSeen    prometheus.Counter
	RecordsNew     prometheus.Counter
	SchemaErrors   prometheus.Counter
	StoreErrors    prometheus.Counter

	// Evaluation metrics
	RecordsEvaluated prometheus.Counter
	EvaluationErrors prometheus.Counter
	FlipsFound       prometheus.Counter
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter

	// Lifecycle metrics
	EndedDeleted prometheus.Counter

	// Cycle metrics
	CyclesTotal   *prometheus.CounterVec
	CycleDuration *prometheus.HistogramVec

	// Health metrics
	LastSuccessfulCycle prometheus.Gauge
	StoredAuctions      prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "auctionflipper"
	}

	return &Metrics{
		PagesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "pages_processed_total",
			Help:      "Total number of catalog pages processed",
		}),
		PagesFailed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "pages_failed_total",
			Help:      "Total number of catalog pages that failed to fetch",
		}),
		RecordsSeen: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "records_seen_total",
			Help:      "Total number of auction entries observed",
		}),
		RecordsNew: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "records_new_total",
			Help:      "Total number of new auction records persisted",
		}),
		SchemaErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "schema_errors_total",
			Help:      "Total number of entries dropped for missing or invalid fields",
		}),
		StoreErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "store_errors_total",
			Help:      "Total number of storage operation failures",
		}),

		RecordsEvaluated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "records_evaluated_total",
			Help:      "Total number of records sent for valuation",
		}),
		EvaluationErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "errors_total",
			Help:      "Total number of valuation failures",
		}),
		FlipsFound: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "flips_found_total",
			Help:      "Total number of profitable flips discovered",
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "cache_hits_total",
			Help:      "Total number of valuation cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "cache_misses_total",
			Help:      "Total number of valuation cache misses",
		}),

		EndedDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "ended_deleted_total",
			Help:      "Total number of ended auction records removed",
		}),

		CyclesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "cycles_total",
			Help:      "Total number of cycles by mode and status",
		}, []string{"mode", "status"}),
		CycleDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "cycle_duration_seconds",
			Help:      "Cycle duration in seconds by mode",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"mode"}),

		LastSuccessfulCycle: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_cycle_timestamp",
			Help:      "Unix timestamp of the last completed cycle",
		}),
		StoredAuctions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "stored_auctions",
			Help:      "Current number of auction records in the store",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
