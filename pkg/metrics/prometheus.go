// Package metrics provides Prometheus metrics for the rumorboard service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values shared by callers.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// All metrics share one subsystem below the namespace.
const subsystem = "pipeline"

// Default bucket layouts in milliseconds.
var (
	latencyBucketsMs = []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500}                     //nolint:gochecknoglobals // fixed bucket layout
	ingestBucketsMs  = []float64{250, 1000, 2500, 5000, 10000, 30000, 60000, 120000, 300000, 600000, 900000} //nolint:gochecknoglobals // fixed bucket layout
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace      string
	latencyBuckets []float64
	ingestBuckets  []float64
	registry       prometheus.Registerer

	// Ingestion
	pagesFetched      *prometheus.CounterVec
	sourceRetries     prometheus.Counter
	fragmentsTotal    prometheus.Counter
	fragmentsDropped  *prometheus.CounterVec
	mentionsExtracted prometheus.Counter
	mentionsDuplicate prometheus.Counter
	ingestRuns        *prometheus.CounterVec
	ingestDuration    prometheus.Histogram
	ingestLastUnix    prometheus.Gauge

	// Ranking
	rankingLatency prometheus.Histogram
	rankedPlayers  prometheus.Gauge
	rosterSize     prometheus.Gauge

	// Store
	storedRecords prometheus.Gauge
	storeOps      *prometheus.CounterVec
	storeLatency  *prometheus.HistogramVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorRateByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "rumorboard",
		latencyBuckets: latencyBucketsMs,
		ingestBuckets:  ingestBucketsMs,
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: subsystem, Name: name, Help: help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: subsystem, Name: name, Help: help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: subsystem, Name: name, Help: help, Buckets: m.latencyBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.pagesFetched = m.counterVec("pages_fetched_total", "Rumor pages requested from the source by outcome", "outcome")
	m.sourceRetries = m.counter("source_retries_total", "Source requests retried after a transient failure")
	m.fragmentsTotal = m.counter("fragments_total", "Candidate fragments handed to the extractor")
	m.fragmentsDropped = m.counterVec("fragments_dropped_total", "Fragments that produced no mention, by reason", "reason")
	m.mentionsExtracted = m.counter("mentions_extracted_total", "Mention records produced by the extractor")
	m.mentionsDuplicate = m.counter("mentions_duplicate_total", "Mention records collapsed by deduplication")
	m.ingestRuns = m.counterVec("ingest_runs_total", "Ingestion runs by outcome", "outcome")
	m.ingestDuration = m.histogram("ingest_duration_milliseconds", "Ingestion run duration in milliseconds", m.ingestBuckets)
	m.ingestLastUnix = m.gauge("ingest_last_success_unix", "Unix timestamp of the last successful ingestion run")

	m.rankingLatency = m.histogram("ranking_latency_milliseconds", "Leaderboard computation latency in milliseconds", m.latencyBuckets)
	m.rankedPlayers = m.gauge("ranked_players", "Players on the most recently computed leaderboard")
	m.rosterSize = m.gauge("roster_size", "Canonical players loaded in the roster")

	m.storedRecords = m.gauge("stored_records", "Mention records in the persisted store")
	m.storeOps = m.counterVec("store_operations_total", "Record store operations", "backend", "op", "outcome")
	m.storeLatency = m.histogramVec("store_latency_milliseconds", "Record store operation latency in milliseconds", "backend", "op")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Total number of errors by component", "component", "error_type")
}

// RecordPageFetched counts one page request.
func RecordPageFetched(outcome string) {
	globalManager.pagesFetched.WithLabelValues(outcome).Inc()
}

// RecordSourceRetry counts one retried source request.
func RecordSourceRetry() {
	globalManager.sourceRetries.Inc()
}

// RecordFragments adds n fragments seen by the extractor.
func RecordFragments(n int) {
	globalManager.fragmentsTotal.Add(float64(n))
}

// RecordFragmentsDropped adds n fragments dropped for reason.
func RecordFragmentsDropped(reason string, n int) {
	globalManager.fragmentsDropped.WithLabelValues(reason).Add(float64(n))
}

// RecordMentionsExtracted adds n extracted mention records.
func RecordMentionsExtracted(n int) {
	globalManager.mentionsExtracted.Add(float64(n))
}

// RecordMentionsDuplicate adds n collapsed duplicates.
func RecordMentionsDuplicate(n int) {
	globalManager.mentionsDuplicate.Add(float64(n))
}

// RecordIngestRun counts a finished run and observes its duration.
func RecordIngestRun(outcome string, durationMs float64, finishedUnix int64) {
	globalManager.ingestRuns.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSkipped {
		return
	}
	globalManager.ingestDuration.Observe(durationMs)
	if outcome == OutcomeOK {
		globalManager.ingestLastUnix.Set(float64(finishedUnix))
	}
}

// RecordRankingLatency records leaderboard computation latency.
func RecordRankingLatency(latencyMs float64) {
	globalManager.rankingLatency.Observe(latencyMs)
}

// UpdateRankedPlayers sets the size of the latest leaderboard.
func UpdateRankedPlayers(n int) {
	globalManager.rankedPlayers.Set(float64(n))
}

// UpdateRosterSize sets the number of canonical players.
func UpdateRosterSize(n int) {
	globalManager.rosterSize.Set(float64(n))
}

// UpdateStoredRecords sets the number of persisted records.
func UpdateStoredRecords(n int) {
	globalManager.storedRecords.Set(float64(n))
}

// RecordStoreOperation counts a store call and observes its latency.
func RecordStoreOperation(backend, op, outcome string, latencyMs float64) {
	globalManager.storeOps.WithLabelValues(backend, op, outcome).Inc()
	globalManager.storeLatency.WithLabelValues(backend, op).Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
