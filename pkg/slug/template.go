package slug

import (
	"fmt"
	"strings"
)

// Prefix marks the start of a placeholder inside a path segment.
const Prefix = ':'

// token is a run of literal text, or a placeholder when name is set.
type token struct {
	text string
	name string
}

// Segment is one '/'-delimited piece of a path template.
type Segment struct {
	tokens []token
}

// Placeholders returns the placeholder names in the segment, in order.
func (s Segment) Placeholders() []string {
	var names []string
	for _, t := range s.tokens {
		if t.name != "" {
			names = append(names, t.name)
		}
	}
	return names
}

// IsLiteral reports whether the segment has no placeholders.
func (s Segment) IsLiteral() bool {
	for _, t := range s.tokens {
		if t.name != "" {
			return false
		}
	}
	return true
}

// Template is a parsed path template such as "/repos/:owner/:name/issues/:identifier".
// A Template is immutable and safe for concurrent use.
type Template struct {
	raw      string
	origin   string
	leading  bool
	trailing bool
	segments []Segment
	names    []string
}

// Parse splits raw into literal and placeholder segments. Absolute templates
// keep their scheme and authority (including any ":port") as a literal origin.
func Parse(raw string) (*Template, error) {
	t := &Template{raw: raw}
	rest := raw
	if i := strings.Index(raw, "://"); i > 0 {
		authority := raw[i+len("://"):]
		if j := strings.IndexByte(authority, '/'); j >= 0 {
			t.origin = raw[:i+len("://")+j]
			rest = authority[j:]
		} else {
			t.origin = raw
			rest = ""
		}
	}

	t.leading = strings.HasPrefix(rest, "/")
	trimmed := strings.Trim(rest, "/")
	t.trailing = trimmed != "" && strings.HasSuffix(rest, "/")
	if trimmed == "" {
		return t, nil
	}

	seen := make(map[string]struct{})
	for _, part := range strings.Split(trimmed, "/") {
		seg := parseSegment(part)
		for _, name := range seg.Placeholders() {
			if _, dup := seen[name]; dup {
				return nil, fmt.Errorf("%w: %q in %q", ErrDuplicatePlaceholder, name, raw)
			}
			seen[name] = struct{}{}
			t.names = append(t.names, name)
		}
		t.segments = append(t.segments, seg)
	}
	return t, nil
}

// MustParse is like Parse but panics on error. It is meant for package-level
// endpoint definitions.
func MustParse(raw string) *Template {
	t, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return t
}

func parseSegment(part string) Segment {
	var (
		seg Segment
		lit strings.Builder
	)
	for i := 0; i < len(part); {
		if part[i] == Prefix {
			end := i + 1
			for end < len(part) && isIdentByte(part[end]) {
				end++
			}
			if end > i+1 {
				if lit.Len() > 0 {
					seg.tokens = append(seg.tokens, token{text: lit.String()})
					lit.Reset()
				}
				seg.tokens = append(seg.tokens, token{name: part[i+1 : end]})
				i = end
				continue
			}
		}
		lit.WriteByte(part[i])
		i++
	}
	if lit.Len() > 0 || len(seg.tokens) == 0 {
		seg.tokens = append(seg.tokens, token{text: lit.String()})
	}
	return seg
}

func isIdentByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// String returns the template text Parse was called with.
func (t *Template) String() string { return t.raw }

// Placeholders returns every placeholder name in template order.
func (t *Template) Placeholders() []string {
	return append([]string(nil), t.names...)
}

// Segments returns the parsed segments.
func (t *Template) Segments() []Segment {
	return append([]Segment(nil), t.segments...)
}

// IsAbsolute reports whether the template carries its own scheme and host.
func (t *Template) IsAbsolute() bool { return t.origin != "" }
