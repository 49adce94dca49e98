package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Job metrics
	JobsCreated   prometheus.Counter
	JobsFinalized prometheus.Counter
	LedgerEntries *prometheus.CounterVec

	// Calculation metrics
	CalculationsTotal   prometheus.Counter
	CalculationDuration prometheus.Histogram
	CalcCacheHits       prometheus.Counter
	SnapshotsCreated    prometheus.Counter

	// Schema metrics
	SchemasCreated           prometheus.Counter
	SchemaValidationFailures prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Outbox metrics
	OutboxEventsPublished prometheus.Counter
	OutboxPublishErrors   prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Job metrics
		JobsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jobledger_jobs_created_total",
			Help: "Total number of jobs created",
		}),
		JobsFinalized: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jobledger_jobs_finalized_total",
			Help: "Total number of job finalizations",
		}),
		LedgerEntries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobledger_ledger_entries_total",
				Help: "Total ledger records added by kind",
			},
			[]string{"kind"},
		),

		// Calculation metrics
		CalculationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jobledger_calculations_total",
			Help: "Total number of profit calculations run",
		}),
		CalculationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "jobledger_calculation_duration_seconds",
			Help:    "Duration of profit calculations",
			Buckets: prometheus.DefBuckets,
		}),
		CalcCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jobledger_calc_cache_hits_total",
			Help: "Total calculation results served from cache",
		}),
		SnapshotsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jobledger_snapshots_created_total",
			Help: "Total allocation snapshots persisted",
		}),

		// Schema metrics
		SchemasCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jobledger_schemas_created_total",
			Help: "Total bucket schemas created",
		}),
		SchemaValidationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jobledger_schema_validation_failures_total",
			Help: "Total schema validations that failed the percentage sum check",
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jobledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Database metrics
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobledger_db_queries_total",
				Help: "Total database queries",
			},
			[]string{"operation", "table"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jobledger_db_query_duration_seconds",
				Help:    "Database query duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "jobledger_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobledger_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Redis metrics
		RedisOperations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobledger_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobledger_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Outbox metrics
		OutboxEventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jobledger_outbox_events_published_total",
			Help: "Total outbox events published",
		}),
		OutboxPublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "jobledger_outbox_publish_errors_total",
			Help: "Total outbox publish failures",
		}),
	}
}
