// Package catalog holds ready-made endpoint families.
package catalog

import (
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/okian/polymer/pkg/endpoint"
)

var registry = map[string]endpoint.Definition{ //nolint:gochecknoglobals // static catalog
	Spotify.Name:      Spotify,
	ArtistSearch.Name: ArtistSearch,
	GitHub.Name:       GitHub,
	Issues.Name:       Issues,
}

// Lookup returns the definition registered under name.
func Lookup(name string) (endpoint.Definition, error) {
	d, ok := registry[name]
	if !ok {
		return endpoint.Definition{}, fmt.Errorf("%w: %q", ErrUnknownEndpoint, name)
	}
	return d.Extend(func(*endpoint.Definition) {}), nil
}

// Names lists the registered definitions in order.
func Names() []string {
	names := lo.Keys(registry)
	slices.Sort(names)
	return names
}
