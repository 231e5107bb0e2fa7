package httptransport

import (
	"net/http"
	"time"

	"github.com/okian/polymer/pkg/logger"
)

// Option configures a Transport.
type Option func(*Transport)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(t *Transport) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(ua string) Option {
	return func(t *Transport) {
		if ua != "" {
			t.userAgent = ua
		}
	}
}

// WithHeaders adds headers sent on every request. Descriptor header
// fields override them.
func WithHeaders(h map[string]string) Option {
	return func(t *Transport) {
		for k, v := range h {
			t.headers.Set(k, v)
		}
	}
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) {
		if c != nil {
			t.client = c
		}
	}
}

// WithMaxBodySize caps how many response bytes are read.
func WithMaxBodySize(n int64) Option {
	return func(t *Transport) {
		if n > 0 {
			t.maxBody = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}
