package slug

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/okian/polymer/pkg/keypath"
)

// sourceKind classifies a slug source once per resolution.
type sourceKind int

const (
	sourceNone sourceKind = iota
	sourceScalar
	sourceBag
)

// classify returns the navigable form of source. Keyed bags are used as is,
// scalars are returned unchanged, and model values are converted to a keyed
// bag through their JSON field names. A fmt.Stringer is a bag when it encodes
// to a non-empty JSON object and a scalar otherwise. Anything else resolves
// to nothing.
func classify(source any) (any, sourceKind) {
	switch s := source.(type) {
	case nil:
		return nil, sourceNone
	case string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return s, sourceScalar
	}
	if keypath.IsBag(source) {
		return source, sourceBag
	}
	stringer, isStringer := source.(fmt.Stringer)
	if bag, ok := toBag(source); ok && (!isStringer || len(bag) > 0) {
		return bag, sourceBag
	}
	if isStringer {
		return stringer, sourceScalar
	}
	return nil, sourceNone
}

// toBag converts a model value to a keyed bag through its JSON encoding.
func toBag(source any) (map[string]any, bool) {
	raw, err := json.Marshal(source)
	if err != nil || !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		return nil, false
	}
	var bag map[string]any
	if err := decodeNumbers(raw, &bag); err != nil || bag == nil {
		return nil, false
	}
	return bag, true
}

// toFloat reports v as a float64 when it is numeric.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// equalValues compares sentinels with extracted values. Numbers compare by
// value regardless of their Go type so that a sentinel 0 matches a JSON 0.
func equalValues(a, b any) (eq bool) {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	defer func() {
		if recover() != nil {
			eq = false
		}
	}()
	return a == b
}

// stringify renders a slug value for substitution, before escaping.
func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case uint64:
		return strconv.FormatUint(s, 10)
	case float64:
		if s == math.Trunc(s) && !math.IsInf(s, 0) {
			return strconv.FormatFloat(s, 'f', -1, 64)
		}
		return strconv.FormatFloat(s, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(s), 'g', -1, 32)
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(v)
}

// decodeNumbers unmarshals raw keeping numbers as json.Number.
func decodeNumbers(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}
