package dispatch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/elnormous/contenttype"
	"github.com/samber/lo"

	"github.com/okian/polymer/pkg/endpoint"
	"github.com/okian/polymer/pkg/keypath"
)

// Reserved keys used when response headers are merged into the payload.
const (
	HeaderKey   = "Header"
	ResponseKey = "response"
)

// mediaType parses a Content-Type header value. ok is false when the value
// is empty or malformed.
func mediaType(value string) (contenttype.MediaType, bool) {
	if strings.TrimSpace(value) == "" {
		return contenttype.MediaType{}, false
	}
	r := &http.Request{Header: http.Header{"Content-Type": []string{value}}}
	mt, err := contenttype.GetMediaType(r)
	if err != nil {
		return contenttype.MediaType{}, false
	}
	return mt, true
}

func acceptable(mt contenttype.MediaType, accepted []string) bool {
	return lo.ContainsBy(accepted, func(a string) bool {
		want := contenttype.NewMediaType(a)
		if want.Type == "*" {
			return true
		}
		if !strings.EqualFold(want.Type, mt.Type) {
			return false
		}
		return want.Subtype == "*" || strings.EqualFold(want.Subtype, mt.Subtype)
	})
}

func isJSON(mt contenttype.MediaType) bool {
	sub := strings.ToLower(mt.Subtype)
	switch {
	case sub == "json", strings.HasSuffix(sub, "+json"):
		return true
	case strings.EqualFold(mt.Type, "text") && sub == "javascript":
		return true
	}
	return false
}

// decodeBody turns a successful response body into a structured payload.
// JSON media types are decoded directly; anything else, including a missing
// Content-Type, goes through the descriptor's transform.
func decodeBody(desc *endpoint.Descriptor, resp *Response) (any, error) {
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil, nil
	}
	ct := resp.Header.Get("Content-Type")
	mt, ok := mediaType(ct)
	if ok && !acceptable(mt, desc.AcceptableContentTypes()) {
		return nil, fmt.Errorf("%w: %s", ErrUnacceptableContentType, ct)
	}
	if ok && isJSON(mt) {
		var v any
		dec := json.NewDecoder(bytes.NewReader(resp.Body))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
	v, err := desc.Transform()(resp.Body, ct)
	if err != nil {
		return nil, err
	}
	switch v.(type) {
	case nil, map[string]any, []any, string:
		return v, nil
	}
	return nil, fmt.Errorf("%w: transform returned %T", ErrShapeMismatch, v)
}

// selectHeaders renders the response headers chosen by keys, or all of
// them when keys is empty. Names are lowercased and keys match them
// case-insensitively. Repeated values are joined with ", ".
func selectHeaders(header http.Header, keys []string) map[string]any {
	names := lo.Keys(header)
	sort.Strings(names)

	lowered := make(map[string][]string, len(header))
	for _, name := range names {
		k := strings.ToLower(name)
		lowered[k] = append(lowered[k], header[name]...)
	}
	if len(keys) > 0 {
		lowered = lo.PickByKeys(lowered, lo.Map(keys, func(k string, _ int) string { return strings.ToLower(k) }))
	}
	return lo.MapValues(lowered, func(v []string, _ string) any { return strings.Join(v, ", ") })
}

// mergeHeader places the response headers under HeaderKey. An object payload
// gains the key, overwriting any body field of the same name; any other
// payload moves under ResponseKey.
func mergeHeader(payload any, header http.Header, keys []string) map[string]any {
	h := selectHeaders(header, keys)
	switch p := payload.(type) {
	case map[string]any:
		out := make(map[string]any, len(p)+1)
		for k, v := range p {
			out[k] = v
		}
		out[HeaderKey] = h
		return out
	case nil:
		return map[string]any{HeaderKey: h}
	default:
		return map[string]any{HeaderKey: h, ResponseKey: p}
	}
}

// drill follows path into payload. An empty path returns payload itself.
func drill(payload any, path string) (any, error) {
	if path == "" {
		return payload, nil
	}
	v, ok := keypath.Get(payload, path)
	if !ok {
		return nil, ErrKeyPathNotFound
	}
	return v, nil
}
