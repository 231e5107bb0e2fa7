package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/schema"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/polymer/pkg/dispatch"
	"github.com/okian/polymer/pkg/endpoint"
)

type searchQuery struct {
	Q     string `json:"q"`
	Limit int    `json:"limit"`
}

type echo struct {
	Method    string              `json:"method"`
	RawQuery  string              `json:"raw_query"`
	Query     map[string][]string `json:"query"`
	Header    map[string]string   `json:"header"`
	Body      string              `json:"body"`
	Decoded   *searchQuery        `json:"decoded,omitempty"`
	ItemParam string              `json:"item,omitempty"`
}

func newServer() *httptest.Server {
	decoder := schema.NewDecoder()
	decoder.SetAliasTag("json")
	decoder.IgnoreUnknownKeys(true)

	write := func(w http.ResponseWriter, r *http.Request, e echo) {
		body, _ := io.ReadAll(r.Body)
		e.Method = r.Method
		e.RawQuery = r.URL.RawQuery
		e.Query = r.URL.Query()
		e.Body = string(body)
		e.Header = map[string]string{
			"User-Agent":    r.Header.Get("User-Agent"),
			"X-Request-ID":  r.Header.Get(RequestIDHeader),
			"X-Default":     r.Header.Get("X-Default"),
			"Content-Type":  r.Header.Get("Content-Type"),
			"Authorization": r.Header.Get("Authorization"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("ETag", `"v1"`)
		_ = json.NewEncoder(w).Encode(e)
	}

	r := chi.NewRouter()
	r.Get("/search", func(w http.ResponseWriter, r *http.Request) {
		var q searchQuery
		if err := decoder.Decode(&q, r.URL.Query()); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		write(w, r, echo{Decoded: &q})
	})
	r.Post("/items", func(w http.ResponseWriter, r *http.Request) { write(w, r, echo{}) })
	r.Patch("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		write(w, r, echo{ItemParam: chi.URLParam(r, "id")})
	})
	r.Delete("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		write(w, r, echo{ItemParam: chi.URLParam(r, "id")})
	})
	r.Get("/numbers", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("ETag", "x")
		_, _ = w.Write([]byte(`[1,2,3]`))
	})
	r.Get("/big", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	})
	r.Get("/slow", func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusNoContent)
	})
	return httptest.NewServer(r)
}

func roundTrip(t *Transport, verb dispatch.Verb, url string, params any, header http.Header) (echo, *dispatch.Response, error) {
	resp, err := t.RoundTrip(context.Background(), &dispatch.Request{
		ID:         "req-1",
		Verb:       verb,
		URL:        url,
		Parameters: params,
		Header:     header,
	})
	var e echo
	if err == nil {
		_ = json.Unmarshal(resp.Body, &e)
	}
	return e, resp, err
}

func TestRoundTripQuery(t *testing.T) {
	Convey("Given a transport against a test server", t, func() {
		srv := newServer()
		defer srv.Close()
		tr := New(WithUserAgent("polymer-test"), WithHeaders(map[string]string{"X-Default": "d"}))

		Convey("When keyed parameters are sent with GET", func() {
			e, resp, err := roundTrip(tr, dispatch.VerbGet, srv.URL+"/search", endpoint.Values{
				"q":     "beyonce",
				"limit": json.Number("5"),
				"type":  []any{"artist", "album"},
			}, nil)

			Convey("Then they travel in the query", func() {
				So(err, ShouldBeNil)
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(e.Decoded, ShouldResemble, &searchQuery{Q: "beyonce", Limit: 5})
				So(e.Query["type"], ShouldResemble, []string{"artist", "album"})
				So(e.Body, ShouldBeEmpty)
			})

			Convey("Then the common headers are set", func() {
				So(e.Header["User-Agent"], ShouldEqual, "polymer-test")
				So(e.Header["X-Request-ID"], ShouldEqual, "req-1")
				So(e.Header["X-Default"], ShouldEqual, "d")
				So(resp.Header.Get("ETag"), ShouldEqual, `"v1"`)
			})
		})

		Convey("When a struct is sent as parameters", func() {
			e, _, err := roundTrip(tr, dispatch.VerbGet, srv.URL+"/search", searchQuery{Q: "solange", Limit: 2}, nil)
			So(err, ShouldBeNil)
			So(e.Decoded, ShouldResemble, &searchQuery{Q: "solange", Limit: 2})
		})

		Convey("When list parameters are sent", func() {
			e, _, err := roundTrip(tr, dispatch.VerbGet, srv.URL+"/search?q=x", endpoint.List{"raw", "a b"}, nil)

			Convey("Then they become bare tokens after the existing query", func() {
				So(err, ShouldBeNil)
				So(e.RawQuery, ShouldEqual, "q=x&raw&a+b")
			})
		})

		Convey("When parameters are sent with DELETE", func() {
			e, _, err := roundTrip(tr, dispatch.VerbDelete, srv.URL+"/items/7", endpoint.Values{"force": true}, nil)
			So(err, ShouldBeNil)
			So(e.Method, ShouldEqual, http.MethodDelete)
			So(e.ItemParam, ShouldEqual, "7")
			So(e.RawQuery, ShouldEqual, "force=true")
		})

		Convey("When parameters cannot be expressed as a query", func() {
			_, _, err := roundTrip(tr, dispatch.VerbGet, srv.URL+"/search", 42, nil)
			So(errors.Is(err, ErrEncodeQuery), ShouldBeTrue)
		})
	})
}

func TestRoundTripBody(t *testing.T) {
	Convey("Given a transport against a test server", t, func() {
		srv := newServer()
		defer srv.Close()
		tr := New(WithHeaders(map[string]string{"Authorization": "Bearer default"}))

		Convey("When POST carries parameters", func() {
			e, _, err := roundTrip(tr, dispatch.VerbPost, srv.URL+"/items", endpoint.Values{"title": "bug"}, http.Header{
				"Authorization": []string{"Bearer override"},
			})

			Convey("Then they are a JSON body and descriptor headers win", func() {
				So(err, ShouldBeNil)
				So(e.Method, ShouldEqual, http.MethodPost)
				So(e.Body, ShouldEqual, `{"title":"bug"}`)
				So(e.Header["Content-Type"], ShouldEqual, "application/json")
				So(e.Header["Authorization"], ShouldEqual, "Bearer override")
				So(e.Header["User-Agent"], ShouldEqual, "polymer")
			})
		})

		Convey("When PATCH carries no parameters", func() {
			e, _, err := roundTrip(tr, dispatch.VerbPatch, srv.URL+"/items/3", nil, nil)
			So(err, ShouldBeNil)
			So(e.Body, ShouldBeEmpty)
			So(e.ItemParam, ShouldEqual, "3")
		})
	})
}

func TestRoundTripLimits(t *testing.T) {
	Convey("Given a transport with tight limits", t, func() {
		srv := newServer()
		defer srv.Close()

		Convey("When the body is larger than allowed", func() {
			_, _, err := roundTrip(New(WithMaxBodySize(16)), dispatch.VerbGet, srv.URL+"/big", nil, nil)
			So(errors.Is(err, ErrBodyTooLarge), ShouldBeTrue)
		})

		Convey("When the server is slower than the timeout", func() {
			_, _, err := roundTrip(New(WithTimeout(20*time.Millisecond)), dispatch.VerbGet, srv.URL+"/slow", nil, nil)
			So(err, ShouldNotBeNil)
		})

		Convey("When the url is malformed", func() {
			_, _, err := roundTrip(New(), dispatch.VerbGet, "http://[::1", nil, nil)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestDispatchOverHTTP(t *testing.T) {
	Convey("Given a dispatcher using the HTTP transport", t, func() {
		srv := newServer()
		defer srv.Close()
		d := dispatch.New(New())

		items := endpoint.Definition{
			Name:                   "items",
			BaseURL:                srv.URL,
			Path:                   "/items/:id",
			Shape:                  endpoint.RawObject(),
			AppendHeaderToResponse: true,
			HeaderKeys:             []string{"ETag"},
		}

		Convey("When an item is patched", func() {
			res, err := d.Do(context.Background(), dispatch.VerbPatch,
				items.WithSlugAndParameters(map[string]any{"id": 9}, endpoint.Values{"state": "closed"}))

			Convey("Then the response arrives with the selected header merged", func() {
				So(err, ShouldBeNil)
				payload := res.Value.(map[string]any)
				So(payload["item"], ShouldEqual, "9")
				So(payload["body"], ShouldEqual, `{"state":"closed"}`)
				So(payload[dispatch.HeaderKey], ShouldResemble, map[string]any{"etag": `"v1"`})
			})
		})

		Convey("When an array response is merged with its etag", func() {
			numbers := endpoint.Definition{
				BaseURL:                srv.URL,
				Path:                   "/numbers",
				Shape:                  endpoint.RawObject(),
				AppendHeaderToResponse: true,
				HeaderKeys:             []string{"etag"},
			}
			res, err := d.Do(context.Background(), dispatch.VerbGet, numbers.New())

			Convey("Then the lowercased header sits next to the relocated array", func() {
				So(err, ShouldBeNil)
				So(res.Value, ShouldResemble, map[string]any{
					dispatch.HeaderKey:   map[string]any{"etag": "x"},
					dispatch.ResponseKey: []any{json.Number("1"), json.Number("2"), json.Number("3")},
				})
			})
		})

		Convey("When every header is merged", func() {
			numbers := endpoint.Definition{
				BaseURL:                srv.URL,
				Path:                   "/numbers",
				Shape:                  endpoint.RawObject(),
				AppendHeaderToResponse: true,
			}
			res, err := d.Do(context.Background(), dispatch.VerbGet, numbers.New())

			Convey("Then no canonical header name survives", func() {
				So(err, ShouldBeNil)
				h := res.Value.(map[string]any)[dispatch.HeaderKey].(map[string]any)
				So(h, ShouldContainKey, "content-type")
				So(h, ShouldNotContainKey, "Content-Type")
				So(h["etag"], ShouldEqual, "x")
			})
		})
	})
}
