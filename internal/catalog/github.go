package catalog

import (
	"github.com/okian/polymer/pkg/endpoint"
	"github.com/okian/polymer/pkg/slug"
)

// RepositorySlugType selects the repository slug mapping.
const RepositorySlugType = "repository"

// GitHub is the base of the GitHub REST API family.
var GitHub = endpoint.Definition{ //nolint:gochecknoglobals // endpoint family
	Name:    "github",
	BaseURL: "https://api.github.com",
	HeaderFields: map[string]string{
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": "2022-11-28",
	},
	AcceptableContentTypes: []string{"application/json", "application/vnd.github+json"},
	Shape:                  endpoint.RawObject(),
}

// Issues lists a repository's issues, or fetches one when identifier is set.
// The slug is either a keyed bag with owner, name and identifier, or a
// Repository.
var Issues = GitHub.Extend(func(d *endpoint.Definition) { //nolint:gochecknoglobals // endpoint family
	d.Name = "github.issues"
	d.Path = "/repos/:owner/:name/issues/:identifier"
	d.Shape = endpoint.ModelOf[Issue]()
	d.RequiredSlugs = []string{"owner", "name"}
	d.NilSlugs = slug.Sentinels{"identifier": {0, ""}}
	d.SlugMappings = []slug.Mapping{
		slug.NewMapping(RepositorySlugType).
			Set("owner", "owner.login").
			Set("name", "name"),
	}
})

// RepositoryIssues lists the issues of repo.
func RepositoryIssues(repo Repository) *endpoint.Descriptor {
	return Issues.WithSlug(repo)
}

// GetIssue fetches one issue.
func GetIssue(owner, name string, number int) *endpoint.Descriptor {
	return Issues.WithSlug(map[string]any{"owner": owner, "name": name, "identifier": number})
}

// CreateIssue builds a descriptor whose parameters are the new issue body.
// Dispatch it with POST.
func CreateIssue(owner, name, title, body string) *endpoint.Descriptor {
	return Issues.WithSlugAndParameters(
		map[string]any{"owner": owner, "name": name},
		endpoint.Values{"title": title, "body": body},
	)
}
