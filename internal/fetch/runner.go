// Package fetch runs a single declared endpoint from the command line.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/okian/polymer/internal/adapters/mq/queue"
	"github.com/okian/polymer/internal/adapters/mq/worker"
	"github.com/okian/polymer/internal/adapters/transport/httptransport"
	"github.com/okian/polymer/internal/config"
	"github.com/okian/polymer/pkg/dispatch"
	"github.com/okian/polymer/pkg/logger"
	"github.com/okian/polymer/pkg/metrics"
)

// newMetrics builds the run's metrics manager from cfg on registry, or on a
// fresh registry when none is given.
func newMetrics(cfg *config.Config, registry *prometheus.Registry) *metrics.Manager {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	return metrics.NewManager(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithPrometheusRegistry(registry),
	)
}

type outcome struct {
	res dispatch.Result
	err error
}

// Run dispatches the request described by opts through a worker pool and
// writes the result as indented JSON.
func Run(ctx context.Context, cfg *config.Config, opts Options) error {
	log := logger.OrNop(opts.Logger)
	m := opts.Metrics
	if m == nil {
		m = newMetrics(cfg, opts.Registry)
	}
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	timeout := cfg.Timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}

	desc, verb, err := Build(cfg, opts)
	if err != nil {
		return err
	}

	log.Info(ctx, "fetching",
		logger.String("endpoint", desc.Name()),
		logger.String("verb", verb.String()),
		logger.String("url", desc.URL()),
		logger.Duration("timeout", timeout))

	q := queue.NewInMemoryQueue(queue.WithCapacity(cfg.QueueSize), queue.WithMetrics(m))
	pool := worker.NewPool(cfg.Workers, q, worker.WithPoolLogger(log.Named("worker")), worker.WithPoolMetrics(m))
	pool.Start(ctx)
	defer func() {
		if err := pool.Shutdown(context.Background()); err != nil {
			log.Warn(ctx, "pool shutdown", logger.Error(err))
		}
	}()

	transport := httptransport.New(
		httptransport.WithTimeout(timeout),
		httptransport.WithUserAgent(cfg.UserAgent),
		httptransport.WithHeaders(cfg.Headers),
		httptransport.WithLogger(log.Named("http")),
	)
	d := dispatch.New(transport,
		dispatch.WithExecutor(pool),
		dispatch.WithLogger(log.Named("dispatch")),
		dispatch.WithMetrics(m),
	)

	done := make(chan outcome, 1)
	d.Dispatch(ctx, verb, desc, func(res dispatch.Result, err error) {
		done <- outcome{res: res, err: err}
	})

	var o outcome
	select {
	case o = <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if o.err != nil {
		return o.err
	}

	log.Info(ctx, "fetched",
		logger.Int("status", o.res.StatusCode),
		logger.String("request_id", o.res.RequestID))

	data, err := json.MarshalIndent(o.res.Value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if _, err := fmt.Fprintln(out, string(data)); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
