// Package prometheus registers and exposes the application's operational
// metrics.  All metrics live on a private registry so tests can construct
// isolated instances without tripping duplicate-registration panics.
package prometheus

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Default histogram buckets, in seconds.
var (
	DefaultHTTPDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultFillDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
	DefaultDBDurationBuckets   = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// MetricsConfig holds construction parameters for Metrics.
type MetricsConfig struct {
	Namespace            string
	EnableProcessMetrics bool
	EnableGoMetrics      bool
	ConstLabels          map[string]string
}

// Metrics holds every metric the service emits.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP layer.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPActiveRequests  prometheus.Gauge

	// Claim operations.
	InterestCalculationsTotal *prometheus.CounterVec
	TimelineValidationsTotal  *prometheus.CounterVec
	DeadlineUpsertsTotal      *prometheus.CounterVec
	RecommendationsTotal      *prometheus.CounterVec

	// Document generation.
	DocumentGenerationsTotal   *prometheus.CounterVec
	DocumentGenerationDuration *prometheus.HistogramVec
	FormFillFailuresTotal      *prometheus.CounterVec

	// Infrastructure.
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
	DBQueryDuration  *prometheus.HistogramVec
}

// NewMetrics registers all application metrics on a fresh registry.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if cfg.Namespace == "" {
		return nil, fmt.Errorf("prometheus: namespace is required")
	}

	registry := prometheus.NewRegistry()
	if cfg.EnableProcessMetrics {
		registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	}
	if cfg.EnableGoMetrics {
		registry.MustRegister(prometheus.NewGoCollector())
	}

	m := &Metrics{registry: registry}

	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		v := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Name:        name,
			Help:        help,
			ConstLabels: cfg.ConstLabels,
		}, labels)
		registry.MustRegister(v)
		return v
	}
	histogram := func(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
		v := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Name:        name,
			Help:        help,
			Buckets:     buckets,
			ConstLabels: cfg.ConstLabels,
		}, labels)
		registry.MustRegister(v)
		return v
	}

	m.HTTPRequestsTotal = counter("http_requests_total",
		"Total HTTP requests served.", "method", "path", "status_code")
	m.HTTPRequestDuration = histogram("http_request_duration_seconds",
		"HTTP request latency.", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   cfg.Namespace,
		Name:        "http_active_requests",
		Help:        "In-flight HTTP requests.",
		ConstLabels: cfg.ConstLabels,
	})
	registry.MustRegister(m.HTTPActiveRequests)

	m.InterestCalculationsTotal = counter("interest_calculations_total",
		"Statutory interest calculations, labelled by rate basis.", "basis", "outcome")
	m.TimelineValidationsTotal = counter("timeline_validations_total",
		"Claim timeline validations.", "outcome")
	m.DeadlineUpsertsTotal = counter("deadline_upserts_total",
		"Deadlines written by the scheduler.", "type", "action")
	m.RecommendationsTotal = counter("recommendations_total",
		"Document recommendations issued.", "stage")

	m.DocumentGenerationsTotal = counter("document_generations_total",
		"Document content builds.", "document_type", "outcome")
	m.DocumentGenerationDuration = histogram("document_generation_duration_seconds",
		"Document content build latency.", DefaultFillDurationBuckets, "document_type")
	m.FormFillFailuresTotal = counter("form_fill_failures_total",
		"Court form template fills that failed verification or overlay.", "reason")

	m.CacheHitsTotal = counter("cache_hits_total",
		"Cache hits.", "cache")
	m.CacheMissesTotal = counter("cache_misses_total",
		"Cache misses.", "cache")
	m.DBQueryDuration = histogram("db_query_duration_seconds",
		"Database query latency.", DefaultDBDurationBuckets, "operation")

	return m, nil
}

// Handler returns the scrape endpoint for the private registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry exposes the underlying registry for additional collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveHTTPRequest records the standard per-request metrics.
func (m *Metrics) ObserveHTTPRequest(method, path string, statusCode int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, fmt.Sprintf("%d", statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// ObserveDocumentGeneration records one content build.
func (m *Metrics) ObserveDocumentGeneration(documentType, outcome string, elapsed time.Duration) {
	m.DocumentGenerationsTotal.WithLabelValues(documentType, outcome).Inc()
	m.DocumentGenerationDuration.WithLabelValues(documentType).Observe(elapsed.Seconds())
}
