// Package endpoint declares REST endpoints as plain values.
//
// A Definition describes an endpoint family member: where it lives, which
// slugs its path takes and what its response holds. Definitions are shared
// freely; each request builds an immutable Descriptor from one:
//
//	var Search = endpoint.Definition{
//		Name:    "spotify.search",
//		BaseURL: "https://api.spotify.com/v1",
//		Path:    "search",
//		Shape:   endpoint.ModelOf[Artist]().At("artists.items"),
//	}
//
//	d := Search.WithParameters(endpoint.Values{"q": "beyonce", "type": "artist"})
package endpoint

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/okian/polymer/pkg/slug"
)

var validate = validator.New() //nolint:gochecknoglobals // validator caches struct metadata

// DefaultAcceptableContentTypes are used when a definition names none.
var DefaultAcceptableContentTypes = []string{"application/json", "text/json", "text/javascript"} //nolint:gochecknoglobals // defaults

// Transform turns a raw response body that is not JSON into a structured
// value (map[string]any, []any or string).
type Transform func(body []byte, contentType string) (any, error)

// Definition is the configuration shared by every request to one endpoint.
type Definition struct {
	// Name labels logs and metrics. Defaults to Path.
	Name string `validate:"max=128"`
	// BaseURL is prefixed to Path unless Path is an absolute URL.
	BaseURL string `validate:"omitempty,url"`
	// Path is the path template, e.g. "/repos/:owner/:name/issues/:identifier".
	Path string

	Shape Shape

	AcceptableContentTypes []string          `validate:"dive,required"`
	HeaderFields           map[string]string `validate:"dive,keys,required,endkeys"`

	// Slug resolution.
	SlugMappings  []slug.Mapping
	NilSlugs      slug.Sentinels
	RequiredSlugs []string `validate:"dive,required"`
	Discriminator slug.Discriminator
	ValueForPath  slug.ValueForPath
	ValidityCheck slug.ValidityCheck

	// AppendHeaderToResponse merges response headers into the payload under
	// the reserved "Header" key before the key path is applied.
	AppendHeaderToResponse bool
	// HeaderKeys selects the merged headers, matched case-insensitively.
	// Empty merges all of them. Merged header names are lowercase.
	HeaderKeys []string `validate:"dive,required"`

	// Transform normalizes non-JSON bodies. Defaults to DefaultTransform.
	Transform Transform
}

// Validate reports configuration mistakes that would make every request fail.
func (d Definition) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDefinition, err.Error())
	}
	if d.BaseURL == "" && !isAbsolute(d.Path) {
		return fmt.Errorf("%w: base url is required for relative path %q", ErrInvalidDefinition, d.Path)
	}
	if d.Shape.Kind == KindModel && d.Shape.New == nil {
		return fmt.Errorf("%w: model shape without a constructor", ErrInvalidDefinition)
	}
	return nil
}

// Extend returns a copy of d with fn applied. It is the composition
// counterpart of subclassing a base endpoint:
//
//	var Issues = GitHub.Extend(func(d *endpoint.Definition) { d.Path = "/repos/:owner/:name/issues/:identifier" })
func (d Definition) Extend(fn func(*Definition)) Definition {
	d.AcceptableContentTypes = append([]string(nil), d.AcceptableContentTypes...)
	d.HeaderFields = cloneStrings(d.HeaderFields)
	d.SlugMappings = append([]slug.Mapping(nil), d.SlugMappings...)
	d.RequiredSlugs = append([]string(nil), d.RequiredSlugs...)
	d.HeaderKeys = append([]string(nil), d.HeaderKeys...)
	if d.NilSlugs != nil {
		sentinels := make(slug.Sentinels, len(d.NilSlugs))
		for k, v := range d.NilSlugs {
			sentinels[k] = append([]any(nil), v...)
		}
		d.NilSlugs = sentinels
	}
	fn(&d)
	return d
}

// New builds a descriptor with no slug and no parameters.
func (d Definition) New() *Descriptor { return d.build(nil, nil) }

// WithSlug builds a descriptor whose path placeholders come from s.
func (d Definition) WithSlug(s any) *Descriptor { return d.build(s, nil) }

// WithParameters builds a descriptor carrying request parameters p.
func (d Definition) WithParameters(p Parameters) *Descriptor { return d.build(nil, p) }

// WithSlugAndParameters builds a descriptor with both a slug and parameters.
func (d Definition) WithSlugAndParameters(s any, p Parameters) *Descriptor { return d.build(s, p) }

func (d Definition) resolver() *slug.Resolver {
	return slug.NewResolver(
		slug.WithMappings(d.SlugMappings...),
		slug.WithSentinels(d.NilSlugs),
		slug.WithRequired(d.RequiredSlugs...),
		slug.WithDiscriminator(d.Discriminator),
		slug.WithValueForPath(d.ValueForPath),
		slug.WithValidityCheck(d.ValidityCheck),
	)
}

func (d Definition) name() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Path
}

func (d Definition) contentTypes() []string {
	types := lo.Compact(lo.Uniq(lo.Map(d.AcceptableContentTypes, func(t string, _ int) string {
		return strings.ToLower(strings.TrimSpace(t))
	})))
	if len(types) == 0 {
		return append([]string(nil), DefaultAcceptableContentTypes...)
	}
	return types
}

func isAbsolute(path string) bool {
	return strings.Contains(path, "://")
}

// joinURL appends path to base with exactly one slash between them.
func joinURL(base, path string) string {
	if isAbsolute(path) {
		return path
	}
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func cloneStrings(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
