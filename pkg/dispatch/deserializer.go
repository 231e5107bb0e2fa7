package dispatch

import (
	"encoding/json"
	"fmt"

	"github.com/okian/polymer/pkg/endpoint"
)

// Deserializer converts a structured payload into the declared result shape.
type Deserializer interface {
	Deserialize(raw any, shape endpoint.Shape) (any, error)
}

// DeserializerFunc adapts a function to Deserializer.
type DeserializerFunc func(raw any, shape endpoint.Shape) (any, error)

// Deserialize calls f.
func (f DeserializerFunc) Deserialize(raw any, shape endpoint.Shape) (any, error) {
	return f(raw, shape)
}

// JSONDeserializer checks raw shapes and builds models by re-encoding the
// payload as JSON into the shape's constructor output. An object payload
// yields one *T, an array payload yields []any of *T.
type JSONDeserializer struct{}

// Deserialize implements Deserializer.
func (JSONDeserializer) Deserialize(raw any, shape endpoint.Shape) (any, error) {
	if raw == nil {
		return nil, nil
	}
	switch shape.Kind {
	case endpoint.KindAny:
		return raw, nil
	case endpoint.KindRawObject:
		if _, ok := raw.(map[string]any); ok {
			return raw, nil
		}
	case endpoint.KindRawArray:
		if _, ok := raw.([]any); ok {
			return raw, nil
		}
	case endpoint.KindRawString:
		if _, ok := raw.(string); ok {
			return raw, nil
		}
	case endpoint.KindModel:
		return decodeModels(raw, shape)
	}
	return nil, fmt.Errorf("%w: want %s, got %T", ErrShapeMismatch, shape.Kind, raw)
}

func decodeModels(raw any, shape endpoint.Shape) (any, error) {
	if shape.New == nil {
		return nil, fmt.Errorf("%w: model shape has no constructor", ErrShapeMismatch)
	}
	switch v := raw.(type) {
	case map[string]any:
		return decodeModel(v, shape.New)
	case []any:
		out := make([]any, 0, len(v))
		for i, item := range v {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: element %d is %T", ErrShapeMismatch, i, item)
			}
			m, err := decodeModel(obj, shape.New)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, m)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: want object or array of objects, got %T", ErrShapeMismatch, raw)
}

func decodeModel(obj map[string]any, newModel func() any) (any, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	m := newModel()
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrShapeMismatch, err)
	}
	return m, nil
}
