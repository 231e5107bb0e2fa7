package catalog

import "github.com/okian/polymer/pkg/endpoint"

// Spotify is the base of the Spotify Web API family. Requests need an
// Authorization header supplied through configuration.
var Spotify = endpoint.Definition{ //nolint:gochecknoglobals // endpoint family
	Name:    "spotify",
	BaseURL: "https://api.spotify.com/v1",
	Shape:   endpoint.RawObject(),
}

// ArtistSearch searches artists; the results live at artists.items.
var ArtistSearch = Spotify.Extend(func(d *endpoint.Definition) { //nolint:gochecknoglobals // endpoint family
	d.Name = "spotify.artists"
	d.Path = "search"
	d.Shape = endpoint.ModelOf[Artist]().At("artists.items")
})

// SearchArtists builds an artist search for query.
func SearchArtists(query string) *endpoint.Descriptor {
	return ArtistSearch.WithParameters(endpoint.Values{"q": query, "type": "artist"})
}
