package queue

import "github.com/okian/polymer/pkg/metrics"

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the maximum number of waiting jobs.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// WithMetrics sets the metrics manager used for queue gauges.
func WithMetrics(m *metrics.Manager) Option {
	return func(q *InMemoryQueue) {
		if m != nil {
			q.metrics = m
		}
	}
}
