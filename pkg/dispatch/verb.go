package dispatch

import (
	"fmt"
	"net/http"
	"strings"
)

// Verb is an HTTP method supported by the dispatcher.
type Verb string

// Supported verbs.
const (
	VerbGet    Verb = http.MethodGet
	VerbHead   Verb = http.MethodHead
	VerbPost   Verb = http.MethodPost
	VerbPut    Verb = http.MethodPut
	VerbPatch  Verb = http.MethodPatch
	VerbDelete Verb = http.MethodDelete
)

// ParseVerb accepts a verb name in any case.
func ParseVerb(s string) (Verb, error) {
	v := Verb(strings.ToUpper(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedVerb, s)
	}
	return v, nil
}

// Valid reports whether v is one of the supported verbs.
func (v Verb) Valid() bool {
	switch v {
	case VerbGet, VerbHead, VerbPost, VerbPut, VerbPatch, VerbDelete:
		return true
	}
	return false
}

// ParametersInURI reports whether parameters travel in the query string
// rather than in the request body.
func (v Verb) ParametersInURI() bool {
	return v == VerbGet || v == VerbHead || v == VerbDelete
}

func (v Verb) String() string { return string(v) }
