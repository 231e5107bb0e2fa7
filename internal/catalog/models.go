package catalog

// ImageRef is an image attached to a Spotify object.
type ImageRef struct {
	Height int    `json:"height"`
	Width  int    `json:"width"`
	URL    string `json:"url"`
}

// Artist is a Spotify artist as returned by search.
type Artist struct {
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
	Followers struct {
		Total int `json:"total"`
	} `json:"followers"`
	Genres     []string   `json:"genres"`
	URL        string     `json:"href"`
	Identifier string     `json:"id"`
	Images     []ImageRef `json:"images"`
	Name       string     `json:"name"`
	Popularity int        `json:"popularity"`
	Type       string     `json:"type"`
	URI        string     `json:"uri"`
}

// ExternalSpotifyURL is the artist's page on open.spotify.com.
func (a Artist) ExternalSpotifyURL() string { return a.ExternalURLs.Spotify }

// NumberOfFollowers is the artist's follower count.
func (a Artist) NumberOfFollowers() int { return a.Followers.Total }

// User is a GitHub account.
type User struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
}

// Repository is a GitHub repository. It selects the "repository" slug
// mapping when used as a slug source.
type Repository struct {
	Owner    User   `json:"owner"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
}

// SlugType implements slug.Typed.
func (Repository) SlugType() string { return RepositorySlugType }

// Issue is a GitHub issue.
type Issue struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	State   string `json:"state"`
	User    User   `json:"user"`
	HTMLURL string `json:"html_url"`
}
