package slug_test

import (
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/okian/polymer/pkg/slug"
	"github.com/smartystreets/goconvey/convey"
)

const issuesTemplate = "/repos/:owner/:name/issues/:identifier"

type repository struct {
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
	Name   string `json:"name"`
	Number int    `json:"number"`
}

func (repository) SlugType() string { return "repository" }

func newRepository(owner, name string, number int) repository {
	var r repository
	r.Owner.Login = owner
	r.Name = name
	r.Number = number
	return r
}

func TestResolveKeyedBag(t *testing.T) {
	convey.Convey("Given the issues template and a keyed bag", t, func() {
		r := slug.NewResolver(slug.WithSentinels(slug.Sentinels{"identifier": {0}}))

		convey.Convey("When the identifier equals its sentinel", func() {
			path, err := r.Resolve(issuesTemplate, map[string]any{"owner": "a", "name": "b", "identifier": 0})

			convey.Convey("Then the identifier segment is removed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(path, convey.ShouldEqual, "/repos/a/b/issues")
			})
		})

		convey.Convey("When the identifier is present", func() {
			path, err := r.Resolve(issuesTemplate, map[string]any{"owner": "a", "name": "b", "identifier": 12})

			convey.Convey("Then every placeholder is substituted", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(path, convey.ShouldEqual, "/repos/a/b/issues/12")
			})
		})

		convey.Convey("When the identifier is missing from the bag", func() {
			path, err := r.Resolve(issuesTemplate, map[string]string{"owner": "a", "name": "b"})

			convey.Convey("Then the segment is dropped without a trailing slash", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(path, convey.ShouldEqual, "/repos/a/b/issues")
				convey.So(path, convey.ShouldNotContainSubstring, "//")
			})
		})

		convey.Convey("When resolving the same input twice", func() {
			src := map[string]any{"owner": "a", "name": "b", "identifier": 3}
			first, err1 := r.Resolve(issuesTemplate, src)
			second, err2 := r.Resolve(issuesTemplate, src)

			convey.Convey("Then the result is identical", func() {
				convey.So(err1, convey.ShouldBeNil)
				convey.So(err2, convey.ShouldBeNil)
				convey.So(first, convey.ShouldEqual, second)
			})
		})
	})
}

func TestResolveScalar(t *testing.T) {
	convey.Convey("Given a template with a single placeholder", t, func() {
		r := slug.NewResolver()

		convey.Convey("When the source is a single scalar", func() {
			path, err := r.Resolve("/search/:query", "hello world")

			convey.Convey("Then the scalar is substituted percent-encoded", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(path, convey.ShouldEqual, "/search/hello%20world")
			})
		})

		convey.Convey("When the scalar is numeric", func() {
			path, err := r.Resolve("/artists/:id/albums", 42)
			convey.So(err, convey.ShouldBeNil)
			convey.So(path, convey.ShouldEqual, "/artists/42/albums")
		})

		convey.Convey("When a scalar is used with several placeholders", func() {
			path, err := r.Resolve("/users/:id/:tab", "7")

			convey.Convey("Then the placeholders resolve absent", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(path, convey.ShouldEqual, "/users")
			})
		})
	})
}

type account struct {
	Login string `json:"login"`
	ID    int    `json:"id"`
}

func (a account) String() string { return fmt.Sprintf("account(%s)", a.Login) }

func TestResolveStringers(t *testing.T) {
	convey.Convey("Given sources that implement fmt.Stringer", t, func() {
		r := slug.NewResolver()

		convey.Convey("When a model with a String method is the source", func() {
			path, err := r.Resolve("/users/:login/keys/:id", account{Login: "octo", ID: 3})

			convey.Convey("Then its fields are still read by key path", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(path, convey.ShouldEqual, "/users/octo/keys/3")
			})
		})

		convey.Convey("When the stringer encodes to a JSON string", func() {
			path, err := r.Resolve("/hosts/:ip", net.ParseIP("10.0.0.1"))

			convey.Convey("Then it is substituted as a scalar", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(path, convey.ShouldEqual, "/hosts/10.0.0.1")
			})
		})
	})
}

func TestResolveMappings(t *testing.T) {
	convey.Convey("Given a typed mapping and a default mapping", t, func() {
		typed := slug.NewMapping("repository").
			Set("owner", "owner.login").
			Set("name", "name")
		fallback := slug.NewMapping("").
			Set("owner", "user").
			Set("identifier", "number")
		r := slug.NewResolver(
			slug.WithMappings(typed, fallback),
			slug.WithSentinels(slug.Sentinels{"identifier": {0}}),
		)

		convey.Convey("When the source type matches the typed mapping", func() {
			path, err := r.Resolve(issuesTemplate, newRepository("octo", "polymer", 5))

			convey.Convey("Then the typed mapping wins and the default fills the gaps", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(path, convey.ShouldEqual, "/repos/octo/polymer/issues/5")
			})
		})

		convey.Convey("When the source is a keyed bag", func() {
			path, err := r.Resolve(issuesTemplate, map[string]any{"user": "u", "name": "n", "number": 0})

			convey.Convey("Then only the default mapping applies", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(path, convey.ShouldEqual, "/repos/u/n/issues")
			})
		})

		convey.Convey("When a discriminator is injected", func() {
			r := slug.NewResolver(
				slug.WithMappings(typed),
				slug.WithDiscriminator(func(any) string { return "repository" }),
			)
			path, err := r.Resolve("/repos/:owner/:name", map[string]any{
				"owner": map[string]any{"login": "x"},
				"name":  "y",
			})

			convey.Convey("Then its answer selects the mapping", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(path, convey.ShouldEqual, "/repos/x/y")
			})
		})
	})
}

func TestResolveNestedKeyPath(t *testing.T) {
	convey.Convey("Given a mapping with a dotted key path", t, func() {
		r := slug.NewResolver(slug.WithMappings(slug.NewMapping("").Set("id", "user.id")))

		convey.Convey("When the source nests the value", func() {
			path, err := r.Resolve("/users/:id", map[string]any{"user": map[string]any{"id": 7}})

			convey.Convey("Then the nested value is used", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(path, convey.ShouldEqual, "/users/7")
			})
		})
	})
}

func TestResolveMissing(t *testing.T) {
	convey.Convey("Given templates whose placeholder cannot be dropped", t, func() {
		r := slug.NewResolver(slug.WithRequired("owner"))

		convey.Convey("When the sole segment has no value", func() {
			_, err := r.Resolve(":id", map[string]any{})

			convey.Convey("Then resolution fails with MissingSlugValue", func() {
				convey.So(errors.Is(err, slug.ErrMissingSlugValue), convey.ShouldBeTrue)
				var missing *slug.MissingSlugValueError
				convey.So(errors.As(err, &missing), convey.ShouldBeTrue)
				convey.So(missing.Placeholder, convey.ShouldEqual, "id")
			})
		})

		convey.Convey("When a required placeholder has no value", func() {
			_, err := r.Resolve("/repos/:owner/:name", map[string]any{"name": "b"})

			convey.Convey("Then the error names it", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, `"owner"`)
			})
		})

		convey.Convey("When the source has the wrong type for every mapping", func() {
			path, err := r.Resolve("/repos/b/:identifier", []int{1, 2})

			convey.Convey("Then the optional placeholder silently resolves absent", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(path, convey.ShouldEqual, "/repos/b")
			})
		})
	})
}

func TestResolveSegments(t *testing.T) {
	convey.Convey("Given templates with mixed segments", t, func() {
		r := slug.NewResolver(slug.WithSentinels(slug.Sentinels{"format": {""}}))

		convey.Convey("When a segment mixes literal text and an absent placeholder", func() {
			path, err := r.Resolve("/files/:id.:format/raw", map[string]any{"id": "a"})

			convey.Convey("Then the whole segment is removed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(path, convey.ShouldEqual, "/files/raw")
			})
		})

		convey.Convey("When the template is an absolute URL with a port", func() {
			path, err := r.Resolve("http://localhost:8080/users/:id/", map[string]any{"id": "a b"})

			convey.Convey("Then the origin is kept literally", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(path, convey.ShouldEqual, "http://localhost:8080/users/a%20b/")
			})
		})

		convey.Convey("When the template is relative without a leading slash", func() {
			path, err := r.Resolve("search", nil)
			convey.So(err, convey.ShouldBeNil)
			convey.So(path, convey.ShouldEqual, "search")
		})
	})
}

func TestResolveHooks(t *testing.T) {
	convey.Convey("Given resolver hooks", t, func() {
		convey.Convey("When ValueForPath is set", func() {
			r := slug.NewResolver(slug.WithValueForPath(func(source any, path string) (any, bool) {
				return path + "-value", true
			}))
			path, err := r.Resolve("/a/:x", nil)

			convey.Convey("Then it supplies every value", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(path, convey.ShouldEqual, "/a/x-value")
			})
		})

		convey.Convey("When ValidityCheck is set", func() {
			r := slug.NewResolver(
				slug.WithSentinels(slug.Sentinels{"id": {0}}),
				slug.WithValidityCheck(func(value any, placeholder string) bool {
					return value != "skip"
				}),
			)
			kept, err := r.Resolve("/a/:id", map[string]any{"id": 0})
			convey.So(err, convey.ShouldBeNil)
			convey.So(kept, convey.ShouldEqual, "/a/0")

			dropped, err := r.Resolve("/a/:id", map[string]any{"id": "skip"})
			convey.So(err, convey.ShouldBeNil)
			convey.So(dropped, convey.ShouldEqual, "/a")
		})
	})
}
