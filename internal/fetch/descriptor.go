package fetch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/polymer/internal/catalog"
	"github.com/okian/polymer/internal/config"
	"github.com/okian/polymer/pkg/dispatch"
	"github.com/okian/polymer/pkg/endpoint"
)

// Build turns opts into a descriptor and verb. Catalog definitions are
// used as the base when opts.Endpoint is set; flags override their fields.
func Build(cfg *config.Config, opts Options) (*endpoint.Descriptor, dispatch.Verb, error) {
	verb := dispatch.VerbGet
	if opts.Verb != "" {
		v, err := dispatch.ParseVerb(opts.Verb)
		if err != nil {
			return nil, "", err
		}
		verb = v
	}

	var def endpoint.Definition
	if opts.Endpoint != "" {
		d, err := catalog.Lookup(opts.Endpoint)
		if err != nil {
			return nil, "", err
		}
		def = d
	}
	def = def.Extend(func(d *endpoint.Definition) {
		if opts.BaseURL != "" {
			d.BaseURL = opts.BaseURL
		}
		if opts.Path != "" {
			d.Path = opts.Path
		}
		if opts.KeyPath != "" {
			d.Shape = d.Shape.At(opts.KeyPath)
		}
		if opts.AppendHeader {
			d.AppendHeaderToResponse = true
		}
		if len(d.AcceptableContentTypes) == 0 {
			d.AcceptableContentTypes = cfg.AcceptableContentTypes()
		}
	})

	source, err := decodeJSON(opts.Slug)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidSlug, err)
	}
	params, err := decodeParams(opts.Params)
	if err != nil {
		return nil, "", err
	}
	return def.WithSlugAndParameters(source, params), verb, nil
}

func decodeParams(s string) (endpoint.Parameters, error) {
	v, err := decodeJSON(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	switch p := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return endpoint.Values(p), nil
	case []any:
		return endpoint.List(p), nil
	}
	return nil, fmt.Errorf("%w: want a JSON object or array, got %T", ErrInvalidParams, v)
}

func decodeJSON(s string) (any, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
