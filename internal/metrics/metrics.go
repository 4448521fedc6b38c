package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the pipeline and the read API
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Database Metrics
	DBQueriesTotal  prometheus.CounterVec
	DBQueryDuration prometheus.HistogramVec

	// Cache Metrics
	CacheHitsTotal   prometheus.CounterVec
	CacheMissesTotal prometheus.CounterVec

	// Pipeline Metrics
	StageDuration    prometheus.HistogramVec
	StageRowsWritten prometheus.CounterVec
	UnresolvedTotal  prometheus.Gauge
	SyncJobDuration  prometheus.HistogramVec
	SyncRowsLoaded   prometheus.CounterVec
}

// NewMetricsRegistry registers every metric on reg. A nil reg uses the
// process-wide default registerer.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modernity_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "modernity_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "modernity_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Database Metrics
		DBQueriesTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modernity_db_queries_total",
				Help: "Total database queries by query name and outcome",
			},
			[]string{"query", "outcome"},
		),
		DBQueryDuration: *factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "modernity_db_query_duration_seconds",
				Help:    "Database query execution time in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"query"},
		),

		// Cache Metrics
		CacheHitsTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modernity_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modernity_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Pipeline Metrics
		StageDuration: *factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "modernity_pipeline_stage_duration_seconds",
				Help:    "Pipeline stage execution time in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
			[]string{"stage"},
		),
		StageRowsWritten: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modernity_pipeline_rows_written_total",
				Help: "Rows written per output table",
			},
			[]string{"table"},
		),
		UnresolvedTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "modernity_airlines_without_region",
				Help: "Airlines left without a region by the last region run",
			},
		),
		SyncJobDuration: *factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "modernity_sync_job_duration_seconds",
				Help:    "Warehouse sync execution time in seconds",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120},
			},
			[]string{"job_name"},
		),
		SyncRowsLoaded: *factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "modernity_sync_rows_loaded_total",
				Help: "Rows loaded into warehouse tables",
			},
			[]string{"table"},
		),
	}
}
