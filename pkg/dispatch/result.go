package dispatch

import (
	"fmt"
	"net/http"
)

// Result is a successful dispatch outcome.
type Result struct {
	// Value is the deserialized result in the descriptor's shape.
	Value any
	// Payload is the structured body after header merge and key path.
	Payload    any
	StatusCode int
	Header     http.Header
	RequestID  string
}

// Collect returns the result's models as a list of T. A single model is
// wrapped into a one-element list; an empty result yields ErrNoResult.
func Collect[T any](res Result) ([]T, error) {
	switch v := res.Value.(type) {
	case nil:
		return nil, ErrNoResult
	case *T:
		return []T{*v}, nil
	case T:
		return []T{v}, nil
	case []T:
		if len(v) == 0 {
			return nil, ErrNoResult
		}
		return v, nil
	case []any:
		if len(v) == 0 {
			return nil, ErrNoResult
		}
		out := make([]T, 0, len(v))
		for i, item := range v {
			switch m := item.(type) {
			case *T:
				out = append(out, *m)
			case T:
				out = append(out, m)
			default:
				return nil, fmt.Errorf("%w: element %d is %T", ErrShapeMismatch, i, item)
			}
		}
		return out, nil
	}
	var zero T
	return nil, fmt.Errorf("%w: want %T, got %T", ErrShapeMismatch, zero, res.Value)
}
