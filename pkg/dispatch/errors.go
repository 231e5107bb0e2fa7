package dispatch

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrTransport               = errors.New("transport failed")
	ErrUnexpectedStatus        = errors.New("unexpected status")
	ErrDeserialization         = errors.New("deserialization failed")
	ErrUnacceptableContentType = errors.New("unacceptable content type")
	ErrKeyPathNotFound         = errors.New("key path not found")
	ErrShapeMismatch           = errors.New("payload does not match result shape")
	ErrRejected                = errors.New("dispatch rejected")
	ErrNoResult                = errors.New("no result")
	ErrNilDescriptor           = errors.New("nil descriptor")
	ErrUnsupportedVerb         = errors.New("unsupported verb")
	ErrPanic                   = errors.New("dispatch panicked")
)

// maxErrorBody bounds the response body kept on a TransportError.
const maxErrorBody = 512

// TransportError is a failure reported by the transport collaborator, or a
// response whose status is outside 2xx.
type TransportError struct {
	Verb       Verb
	URL        string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: %v %d: %s", e.Verb, e.URL, e.Err, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s %s: %v", e.Verb, e.URL, e.Err)
}

// Is makes errors.Is(err, ErrTransport) hold.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

func (e *TransportError) Unwrap() error { return e.Err }

// DeserializationError is a payload that does not fit the descriptor's
// declared shape or key path.
type DeserializationError struct {
	Endpoint string
	KeyPath  string
	Kind     string
	Err      error
}

func (e *DeserializationError) Error() string {
	if e.KeyPath != "" {
		return fmt.Sprintf("%s: %s at %q: %v", e.Endpoint, e.Kind, e.KeyPath, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Endpoint, e.Kind, e.Err)
}

// Is makes errors.Is(err, ErrDeserialization) hold.
func (e *DeserializationError) Is(target error) bool { return target == ErrDeserialization }

func (e *DeserializationError) Unwrap() error { return e.Err }

func truncate(b []byte) []byte {
	if len(b) <= maxErrorBody {
		return append([]byte(nil), b...)
	}
	return append(append([]byte(nil), b[:maxErrorBody]...), "..."...)
}
