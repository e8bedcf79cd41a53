package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the logbook service
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Ingestion Metrics
	RowsIngestedTotal          prometheus.Counter
	BatchesFailedTotal         *prometheus.CounterVec
	CollaboratorFallbacksTotal *prometheus.CounterVec

	// Aircraft Catalog Metrics
	CatalogCreationsTotal prometheus.Counter
	InferenceCallsTotal   *prometheus.CounterVec
	AliasCacheHitsTotal   prometheus.Counter
	AliasCacheMissesTotal prometheus.Counter
}

// NewMetricsRegistry registers every metric with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logbook_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "logbook_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "logbook_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		RowsIngestedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "logbook_rows_ingested_total",
				Help: "Total flight-log rows persisted by imports",
			},
		),
		BatchesFailedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logbook_batches_failed_total",
				Help: "Import batches rejected, by error code",
			},
			[]string{"code"},
		),
		CollaboratorFallbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logbook_collaborator_fallbacks_total",
				Help: "Collaborator calls that failed and fell back to local rules",
			},
			[]string{"operation"},
		),

		CatalogCreationsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "logbook_catalog_creations_total",
				Help: "Aircraft catalog records created from inference",
			},
		),
		InferenceCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logbook_inference_calls_total",
				Help: "Aircraft attribute inference calls by result",
			},
			[]string{"result"},
		),
		AliasCacheHitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "logbook_alias_cache_hits_total",
				Help: "Aircraft alias lookups served from cache",
			},
		),
		AliasCacheMissesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "logbook_alias_cache_misses_total",
				Help: "Aircraft alias lookups that missed the cache",
			},
		),
	}
}
