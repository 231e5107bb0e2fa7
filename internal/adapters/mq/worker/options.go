// Package worker runs queued dispatch jobs on a fixed set of goroutines.
package worker

import (
	"github.com/okian/polymer/pkg/logger"
	"github.com/okian/polymer/pkg/metrics"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithPoolLogger sets the pool logger, which workers inherit.
func WithPoolLogger(l logger.Logger) PoolOption {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithPoolMetrics sets the metrics manager.
func WithPoolMetrics(m *metrics.Manager) PoolOption {
	return func(p *Pool) {
		if m != nil {
			p.metrics = m
		}
	}
}
