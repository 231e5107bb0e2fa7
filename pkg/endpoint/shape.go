package endpoint

// Kind is the declared result type of an endpoint.
type Kind int

// Result kinds. KindAny passes whatever structured value the response held.
const (
	KindAny Kind = iota
	KindRawObject
	KindRawArray
	KindRawString
	KindModel
)

func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindRawObject:
		return "raw object"
	case KindRawArray:
		return "raw array"
	case KindRawString:
		return "raw string"
	case KindModel:
		return "model"
	}
	return "unknown"
}

// Shape describes what a response body holds and where.
type Shape struct {
	Kind Kind
	// New returns a pointer to a fresh model value. Required for KindModel.
	New func() any
	// KeyPath is the dotted path to the payload inside the body, e.g.
	// "artists.items". Empty means the whole body.
	KeyPath string
}

// RawObject declares a JSON object result.
func RawObject() Shape { return Shape{Kind: KindRawObject} }

// RawArray declares a JSON array result.
func RawArray() Shape { return Shape{Kind: KindRawArray} }

// RawString declares a string result.
func RawString() Shape { return Shape{Kind: KindRawString} }

// ModelOf declares a result of model type T, or a list of T when the payload
// is an array. T's json tags describe its field-to-key associations.
func ModelOf[T any]() Shape {
	return Shape{Kind: KindModel, New: func() any { return new(T) }}
}

// At returns a copy of s reading its payload at keyPath.
func (s Shape) At(keyPath string) Shape {
	s.KeyPath = keyPath
	return s
}
