// Package config defines polymer configuration structures and loading.
//
// Conventions:
// - New returns a Config populated with defaults.
// - Load layers a YAML file and POLYMER_ environment variables over them.
// - Errors returned from Load wrap ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/okian/polymer/pkg/endpoint"
)

var validate = validator.New() //nolint:gochecknoglobals // validator caches struct metadata

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// Timeout bounds a single HTTP round trip.
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// Workers sets the number of dispatch workers. Zero sizes the pool
	// from the CPU count.
	Workers int `koanf:"workers" validate:"gte=0"`

	// QueueSize bounds the number of dispatches waiting for a worker.
	QueueSize int `koanf:"queue_size" validate:"gt=0"`

	// Accept lists the content types accepted when a definition declares none.
	Accept []string `koanf:"accept" validate:"dive,required"`

	// Headers are sent with every request. Definition header fields win.
	Headers map[string]string `koanf:"headers" validate:"dive,keys,required,endkeys"`

	// UserAgent is sent unless a definition sets its own.
	UserAgent string `koanf:"user_agent" validate:"required"`

	// MetricsNamespace prefixes every Prometheus series.
	MetricsNamespace string `koanf:"metrics_namespace" validate:"required"`

	// MetricsEnabled turns request and executor metrics on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Timeout:          30 * time.Second,
		Workers:          0,
		QueueSize:        1024,
		UserAgent:        "polymer",
		MetricsNamespace: "polymer",
		MetricsEnabled:   true,
	}
}

// AcceptableContentTypes returns Accept, or the endpoint defaults when empty.
func (c *Config) AcceptableContentTypes() []string {
	if len(c.Accept) == 0 {
		return append([]string(nil), endpoint.DefaultAcceptableContentTypes...)
	}
	return append([]string(nil), c.Accept...)
}
