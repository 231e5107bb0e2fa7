package dispatch

import (
	"context"
	"net/http"
)

// Request is what the dispatcher hands to a Transport.
type Request struct {
	ID         string
	Verb       Verb
	URL        string
	Parameters any
	Header     http.Header
}

// Response is the raw outcome of a round trip. A Transport returns a
// Response for every status code; status handling belongs to the dispatcher.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport performs one network round trip.
type Transport interface {
	RoundTrip(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

// RoundTrip calls f.
func (f TransportFunc) RoundTrip(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
