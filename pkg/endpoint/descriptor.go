package endpoint

import (
	"fmt"
)

// Descriptor is one request's view of a Definition: the definition plus the
// slug and parameters it was built with and the path resolved from them. It
// is immutable and safe to share between goroutines.
type Descriptor struct {
	def          Definition
	slug         any
	params       any
	resolvedPath string
	url          string
	contentTypes []string
	err          error
}

// build is the single constructor behind New, WithSlug, WithParameters and
// WithSlugAndParameters.
func (d Definition) build(s any, p Parameters) *Descriptor {
	desc := &Descriptor{
		def:          d.Extend(func(*Definition) {}),
		slug:         copyContainer(s),
		params:       copyContainer(p),
		contentTypes: d.contentTypes(),
	}
	if err := d.Validate(); err != nil {
		desc.err = err
		return desc
	}
	path, err := d.resolver().Resolve(d.Path, desc.slug)
	if err != nil {
		desc.err = fmt.Errorf("resolve %s: %w", d.name(), err)
		return desc
	}
	desc.resolvedPath = path
	desc.url = joinURL(d.BaseURL, path)
	return desc
}

// Err reports why the descriptor cannot be dispatched, if anything.
func (d *Descriptor) Err() error { return d.err }

// Name labels the endpoint in logs and metrics.
func (d *Descriptor) Name() string { return d.def.name() }

// BaseURL returns the definition's base URL.
func (d *Descriptor) BaseURL() string { return d.def.BaseURL }

// Template returns the unresolved path template.
func (d *Descriptor) Template() string { return d.def.Path }

// ResolvedPath returns the path with every slug substituted.
func (d *Descriptor) ResolvedPath() string { return d.resolvedPath }

// URL returns the absolute request URL without query parameters.
func (d *Descriptor) URL() string { return d.url }

// Slug returns a copy of the slug source the descriptor was built with.
func (d *Descriptor) Slug() any { return copyContainer(d.slug) }

// Parameters returns a copy of the request parameters, stored verbatim.
func (d *Descriptor) Parameters() Parameters { return copyContainer(d.params) }

// AcceptableContentTypes returns the normalized accepted media types.
func (d *Descriptor) AcceptableContentTypes() []string {
	return append([]string(nil), d.contentTypes...)
}

// HeaderFields returns the extra request headers.
func (d *Descriptor) HeaderFields() map[string]string { return cloneStrings(d.def.HeaderFields) }

// Shape returns the declared result shape.
func (d *Descriptor) Shape() Shape { return d.def.Shape }

// AppendHeaderToResponse reports whether response headers are merged into the payload.
func (d *Descriptor) AppendHeaderToResponse() bool { return d.def.AppendHeaderToResponse }

// HeaderKeys returns the headers selected for merging; empty means all.
func (d *Descriptor) HeaderKeys() []string { return append([]string(nil), d.def.HeaderKeys...) }

// Transform returns the body normalizer for non-JSON responses.
func (d *Descriptor) Transform() Transform {
	if d.def.Transform != nil {
		return d.def.Transform
	}
	return DefaultTransform
}
