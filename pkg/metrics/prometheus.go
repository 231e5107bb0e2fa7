// Package metrics provides Prometheus metrics for endpoint dispatch.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for requests_total.
const (
	OutcomeSuccess         = "success"
	OutcomeSlugError       = "slug_error"
	OutcomeTransportError  = "transport_error"
	OutcomeDecodeError     = "deserialization_error"
	OutcomeRejected        = "rejected"
	OutcomeInvalidEndpoint = "invalid_endpoint"
)

// latencyBuckets are milliseconds, sized for remote API calls.
var latencyBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000} //nolint:gochecknoglobals // default buckets

// Manager owns every Prometheus collector used by polymer.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Dispatch
	requests               *prometheus.CounterVec
	requestDuration        *prometheus.HistogramVec
	slugResolutionFailures *prometheus.CounterVec
	deserializationErrors  *prometheus.CounterVec

	// Executor
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueRejected prometheus.Counter
	workersActive prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "polymer",
		subsystem:        "dispatch",
		histogramBuckets: latencyBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// Default returns the process-wide manager backing the package-level helpers.
func Default() *Manager {
	return globalManager
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.requests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "requests_total",
		Help:      "Total number of dispatched requests by endpoint, verb and outcome",
	}, []string{"endpoint", "verb", "outcome"})

	m.requestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "request_duration_milliseconds",
		Help:      "Time from dispatch to terminal callback in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "verb"})

	m.slugResolutionFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "slug_resolution_failures_total",
		Help:      "Descriptors whose path template could not be resolved",
	}, []string{"endpoint"})

	m.deserializationErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "deserialization_errors_total",
		Help:      "Responses that did not match the declared result shape",
	}, []string{"endpoint"})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "executor",
		Name:      "queue_size",
		Help:      "Current number of dispatch jobs waiting for a worker",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "executor",
		Name:      "queue_capacity",
		Help:      "Maximum number of queued dispatch jobs",
	})

	m.queueRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "executor",
		Name:      "queue_rejected_total",
		Help:      "Dispatch jobs rejected because the queue was full or closed",
	})

	m.workersActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "executor",
		Name:      "workers_active",
		Help:      "Number of running executor workers",
	})
}

// RecordRequest counts one finished request and observes its duration.
func (m *Manager) RecordRequest(endpoint, verb, outcome string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.requests.WithLabelValues(endpoint, verb, outcome).Inc()
	m.requestDuration.WithLabelValues(endpoint, verb).Observe(durationMs)
}

// RecordSlugResolutionFailure counts a descriptor that failed path resolution.
func (m *Manager) RecordSlugResolutionFailure(endpoint string) {
	if !m.enabled {
		return
	}
	m.slugResolutionFailures.WithLabelValues(endpoint).Inc()
}

// RecordDeserializationError counts a response that failed shape conversion.
func (m *Manager) RecordDeserializationError(endpoint string) {
	if !m.enabled {
		return
	}
	m.deserializationErrors.WithLabelValues(endpoint).Inc()
}

// UpdateQueueSize sets the number of waiting jobs.
func (m *Manager) UpdateQueueSize(size int) {
	if !m.enabled {
		return
	}
	m.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func (m *Manager) UpdateQueueCapacity(capacity int) {
	if !m.enabled {
		return
	}
	m.queueCapacity.Set(float64(capacity))
}

// RecordQueueRejected counts a rejected job.
func (m *Manager) RecordQueueRejected() {
	if !m.enabled {
		return
	}
	m.queueRejected.Inc()
}

// UpdateWorkersActive sets the number of running workers.
func (m *Manager) UpdateWorkersActive(count int) {
	if !m.enabled {
		return
	}
	m.workersActive.Set(float64(count))
}

// Package-level helpers over the global manager.

// RecordRequest counts one finished request on the global manager.
func RecordRequest(endpoint, verb, outcome string, durationMs float64) {
	globalManager.RecordRequest(endpoint, verb, outcome, durationMs)
}

// RecordSlugResolutionFailure counts a slug failure on the global manager.
func RecordSlugResolutionFailure(endpoint string) {
	globalManager.RecordSlugResolutionFailure(endpoint)
}

// RecordDeserializationError counts a shape failure on the global manager.
func RecordDeserializationError(endpoint string) {
	globalManager.RecordDeserializationError(endpoint)
}

// UpdateQueueSize sets the queue size on the global manager.
func UpdateQueueSize(size int) { globalManager.UpdateQueueSize(size) }

// UpdateQueueCapacity sets the queue capacity on the global manager.
func UpdateQueueCapacity(capacity int) { globalManager.UpdateQueueCapacity(capacity) }

// RecordQueueRejected counts a rejected job on the global manager.
func RecordQueueRejected() { globalManager.RecordQueueRejected() }

// UpdateWorkersActive sets the running worker count on the global manager.
func UpdateWorkersActive(count int) { globalManager.UpdateWorkersActive(count) }

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
