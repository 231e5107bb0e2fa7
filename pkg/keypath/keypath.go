// Package keypath navigates nested keyed data with dotted paths such as
// "artists.items" or "owner.login".
package keypath

import "strings"

// Separator splits the components of a key path.
const Separator = "."

// Valuer is implemented by values that resolve their own keys, such as model
// types that want to expose slug values without being converted to a map.
type Valuer interface {
	ValueForKey(key string) (any, bool)
}

// Split returns the components of path. An empty path has no components.
func Split(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, Separator)
}

// IsBag reports whether v can be navigated with Lookup.
func IsBag(v any) bool {
	switch v.(type) {
	case map[string]any, map[string]string, Valuer:
		return true
	}
	return false
}

// Lookup resolves a single key on bag.
func Lookup(bag any, key string) (any, bool) {
	switch b := bag.(type) {
	case map[string]any:
		v, ok := b[key]
		return v, ok
	case map[string]string:
		v, ok := b[key]
		return v, ok
	case Valuer:
		return b.ValueForKey(key)
	}
	return nil, false
}

// Get walks path through bag. An empty path yields bag itself. The second
// result is false as soon as a component is missing or an intermediate value
// is not a bag.
func Get(bag any, path string) (any, bool) {
	cur := bag
	for _, key := range Split(path) {
		next, ok := Lookup(cur, key)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}
