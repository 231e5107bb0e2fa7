package endpoint

import (
	"bytes"
	"encoding/json"

	"github.com/mohae/deepcopy"
)

// Values are keyed request parameters, e.g. {"q": "beyonce", "type": "artist"}.
type Values map[string]any

// List are un-keyed request parameters.
type List []any

// Parameters accepted by descriptors: Values, List, map[string]any,
// map[string]string, []any, or a struct whose `json` tags name its query keys.
type Parameters = any

// copyContainer deep-copies maps and slices so a descriptor never shares
// mutable state with its caller. Other values are stored as given; structs are
// copied by value already and their unexported state must survive.
func copyContainer(v any) any {
	switch v.(type) {
	case Values, List, map[string]any, map[string]string, []any:
		return deepcopy.Copy(v)
	}
	return v
}

// DefaultTransform turns a non-JSON body into a structured value: JSON when
// the body parses as JSON, otherwise the body as a string.
func DefaultTransform(body []byte, _ string) (any, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if json.Valid(trimmed) {
		var v any
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&v); err == nil {
			return v, nil
		}
	}
	return string(body), nil
}
