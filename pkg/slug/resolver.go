// Package slug substitutes named placeholders in endpoint path templates.
//
// A template such as "/repos/:owner/:name/issues/:identifier" is resolved
// against a slug source: a single scalar, a keyed bag, or a model value. Each
// placeholder reads a key path from the source (chosen through the registered
// mappings), values equal to a registered sentinel count as absent, and the
// segment of an absent placeholder is removed from the path entirely.
package slug

import (
	"net/url"
	"strings"

	"github.com/okian/polymer/pkg/keypath"
)

// ValueForPath overrides how a value is read from the source for a key path.
type ValueForPath func(source any, path string) (any, bool)

// ValidityCheck overrides the sentinel test. It reports whether value may be
// substituted for placeholder.
type ValidityCheck func(value any, placeholder string) bool

// Resolver turns templates and slug sources into paths. The zero value is not
// usable; build one with NewResolver. A Resolver is safe for concurrent use.
type Resolver struct {
	mappings      []Mapping
	sentinels     Sentinels
	required      map[string]struct{}
	discriminator Discriminator
	valueForPath  ValueForPath
	validity      ValidityCheck
	cache         *Cache
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMappings registers slug mappings. Later mappings for the same type win.
func WithMappings(mappings ...Mapping) Option {
	return func(r *Resolver) {
		r.mappings = append(r.mappings, mappings...)
	}
}

// WithSentinels registers the nil-equivalent values per placeholder.
func WithSentinels(s Sentinels) Option {
	return func(r *Resolver) {
		for name, values := range s {
			r.sentinels[name] = append(r.sentinels[name], values...)
		}
	}
}

// WithRequired declares placeholders whose segment may never be dropped.
func WithRequired(names ...string) Option {
	return func(r *Resolver) {
		for _, n := range names {
			r.required[n] = struct{}{}
		}
	}
}

// WithDiscriminator sets how the mapping type of a source is determined.
func WithDiscriminator(d Discriminator) Option {
	return func(r *Resolver) {
		if d != nil {
			r.discriminator = d
		}
	}
}

// WithValueForPath overrides value extraction.
func WithValueForPath(fn ValueForPath) Option {
	return func(r *Resolver) {
		r.valueForPath = fn
	}
}

// WithValidityCheck overrides the sentinel test.
func WithValidityCheck(fn ValidityCheck) Option {
	return func(r *Resolver) {
		r.validity = fn
	}
}

// WithCache sets the parsed-template cache used by Resolve.
func WithCache(c *Cache) Option {
	return func(r *Resolver) {
		if c != nil {
			r.cache = c
		}
	}
}

// NewResolver builds a Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		sentinels:     make(Sentinels),
		required:      make(map[string]struct{}),
		discriminator: DefaultDiscriminator,
		cache:         defaultCache,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve parses template (through the cache) and resolves it against source.
func (r *Resolver) Resolve(template string, source any) (string, error) {
	t, err := r.cache.Parse(template)
	if err != nil {
		return "", err
	}
	return r.ResolveTemplate(t, source)
}

// ResolveTemplate substitutes every placeholder of t from source.
//
// A placeholder without a usable value removes its whole segment. It is an
// error only when the placeholder is required or its segment is the only one
// in the template; the error is a *MissingSlugValueError for the first such
// placeholder in template order.
func (r *Resolver) ResolveTemplate(t *Template, source any) (string, error) {
	values := r.extractAll(t, source)

	kept := make([]string, 0, len(t.segments))
	for _, seg := range t.segments {
		var (
			b      strings.Builder
			absent string
		)
		for _, tok := range seg.tokens {
			if tok.name == "" {
				b.WriteString(tok.text)
				continue
			}
			v, ok := values[tok.name]
			if !ok {
				absent = tok.name
				break
			}
			b.WriteString(url.PathEscape(v))
		}
		if absent == "" {
			kept = append(kept, b.String())
			continue
		}
		if _, req := r.required[absent]; req || len(t.segments) == 1 {
			return "", &MissingSlugValueError{Placeholder: absent}
		}
	}

	var out strings.Builder
	out.WriteString(t.origin)
	if t.leading {
		out.WriteByte('/')
	}
	out.WriteString(strings.Join(kept, "/"))
	if t.trailing && len(kept) > 0 {
		out.WriteByte('/')
	}
	return out.String(), nil
}

// extractAll returns the substitution text for every present placeholder.
func (r *Resolver) extractAll(t *Template, source any) map[string]string {
	values := make(map[string]string, len(t.names))
	if len(t.names) == 0 {
		return values
	}

	typ := r.discriminator(source)
	normalized, kind := classify(source)
	for _, name := range t.names {
		path := r.keyPathFor(typ, name)

		var (
			v  any
			ok bool
		)
		switch {
		case r.valueForPath != nil:
			v, ok = r.valueForPath(source, path)
		case kind == sourceBag:
			v, ok = keypath.Get(normalized, path)
		case kind == sourceScalar && len(t.names) == 1:
			v, ok = normalized, true
		}
		if !ok || v == nil || !r.isValid(v, name) {
			continue
		}
		s := stringify(v)
		if s == "" {
			continue
		}
		values[name] = s
	}
	return values
}

// keyPathFor picks the key path for placeholder: the mapping of the source's
// type, then the default mapping, then the placeholder name itself.
func (r *Resolver) keyPathFor(typ, placeholder string) string {
	if typ != "" {
		if m, ok := r.mappingFor(typ); ok {
			if p, ok := m.Path(placeholder); ok {
				return p
			}
		}
	}
	if m, ok := r.mappingFor(""); ok {
		if p, ok := m.Path(placeholder); ok {
			return p
		}
	}
	return placeholder
}

func (r *Resolver) mappingFor(typ string) (Mapping, bool) {
	for i := len(r.mappings) - 1; i >= 0; i-- {
		if r.mappings[i].Type == typ {
			return r.mappings[i], true
		}
	}
	return Mapping{}, false
}

func (r *Resolver) isValid(v any, placeholder string) bool {
	if r.validity != nil {
		return r.validity(v, placeholder)
	}
	return !r.sentinels.Matches(placeholder, v)
}
