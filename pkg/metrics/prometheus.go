// Package metrics provides Prometheus metrics for the riskcore service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the riskcore service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Core pipeline metrics
	assessmentsTotal        prometheus.Counter
	validationFailuresTotal prometheus.Counter
	modelFailuresTotal      prometheus.Counter
	predictionLatency       prometheus.Histogram
	predictionConfidence    prometheus.Histogram
	recommendationCount     prometheus.Histogram
	riskScore               *prometheus.HistogramVec

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "riskcore",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.assessmentsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "assessments_total",
		Help:      "Total number of assessments run through the pipeline",
	})

	m.validationFailuresTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "validation_failures_total",
		Help:      "Total number of assessments rejected by input validation",
	})

	m.modelFailuresTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "model_failures_total",
		Help:      "Total number of risk model inference failures",
	})

	m.predictionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "prediction_latency_milliseconds",
		Help:      "Histogram of end-to-end prediction latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.predictionConfidence = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "prediction_confidence",
		Help:      "Histogram of prediction confidence values",
		Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
	})

	m.recommendationCount = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendations_per_assessment",
		Help:      "Histogram of recommendation counts per assessment",
		Buckets:   prometheus.LinearBuckets(0, 2, 10),
	})

	m.riskScore = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "risk_score",
		Help:      "Histogram of predicted risk scores by disease",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	}, []string{"disease"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
}

// RecordAssessment increments the processed-assessments counter.
func RecordAssessment() {
	globalManager.assessmentsTotal.Inc()
}

// RecordValidationFailure increments the validation-failures counter.
func RecordValidationFailure() {
	globalManager.validationFailuresTotal.Inc()
}

// RecordModelFailure increments the model-failures counter.
func RecordModelFailure() {
	globalManager.modelFailuresTotal.Inc()
}

// RecordPrediction records latency, confidence and recommendation count
// for one successful pipeline run.
func RecordPrediction(latencyMs, confidence float64, recommendations int) {
	globalManager.predictionLatency.Observe(latencyMs)
	globalManager.predictionConfidence.Observe(confidence)
	globalManager.recommendationCount.Observe(float64(recommendations))
}

// RecordRiskScore records a predicted score for one disease.
func RecordRiskScore(disease string, score float64) {
	globalManager.riskScore.WithLabelValues(disease).Observe(score)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the registry metrics are collected on.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
