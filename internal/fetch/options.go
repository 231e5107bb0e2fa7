package fetch

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/okian/polymer/pkg/logger"
	"github.com/okian/polymer/pkg/metrics"
)

// Options holds one fetch invocation.
type Options struct {
	Endpoint     string        // Catalog name, e.g. "github.issues"
	BaseURL      string        // Overrides the definition's base URL
	Path         string        // Overrides the definition's path template
	Verb         string        // HTTP verb (default GET)
	Slug         string        // JSON slug source: object or scalar
	Params       string        // JSON parameters: object or array
	KeyPath      string        // Dotted path to the payload in the body
	AppendHeader bool          // Merge response headers into the payload
	Timeout      time.Duration // Overrides the configured request timeout

	Output  io.Writer        // Result destination (default stdout)
	Logger  logger.Logger    // Default: no-op
	Metrics *metrics.Manager // Default: built from the config's metrics settings

	// Registry receives the run's metrics when Metrics is nil.
	Registry *prometheus.Registry
}
