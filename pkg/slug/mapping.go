package slug

// Typed is implemented by slug sources that name their own mapping type.
type Typed interface {
	SlugType() string
}

// Discriminator names the mapping type of a slug source. An empty name means
// only the default mapping applies.
type Discriminator func(source any) string

// DefaultDiscriminator answers SlugType() for Typed sources and "" otherwise.
func DefaultDiscriminator(source any) string {
	if t, ok := source.(Typed); ok {
		return t.SlugType()
	}
	return ""
}

// Mapping tells the resolver which key path on a source feeds each
// placeholder. A Mapping with an empty Type is the default and applies to
// every source, keyed bags included.
type Mapping struct {
	Type  string
	Paths map[string]string
}

// NewMapping returns an empty mapping for typ.
func NewMapping(typ string) Mapping {
	return Mapping{Type: typ, Paths: make(map[string]string)}
}

// Set returns a copy of m with placeholder mapped to path.
func (m Mapping) Set(placeholder, path string) Mapping {
	paths := make(map[string]string, len(m.Paths)+1)
	for k, v := range m.Paths {
		paths[k] = v
	}
	paths[placeholder] = path
	return Mapping{Type: m.Type, Paths: paths}
}

// Path returns the key path registered for placeholder.
func (m Mapping) Path(placeholder string) (string, bool) {
	p, ok := m.Paths[placeholder]
	return p, ok && p != ""
}

// Sentinels maps a placeholder to the values that count as "no value" for it,
// e.g. {"identifier": {0, ""}}.
type Sentinels map[string][]any

// Matches reports whether v equals one of the sentinels of placeholder.
func (s Sentinels) Matches(placeholder string, v any) bool {
	for _, sentinel := range s[placeholder] {
		if equalValues(sentinel, v) {
			return true
		}
	}
	return false
}
