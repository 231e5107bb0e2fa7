// Package httptransport implements dispatch.Transport on net/http.
package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/schema"
	"github.com/samber/lo"

	"github.com/okian/polymer/pkg/dispatch"
	"github.com/okian/polymer/pkg/endpoint"
	"github.com/okian/polymer/pkg/logger"
)

const (
	defaultTimeout = 30 * time.Second
	defaultMaxBody = 10 << 20

	// RequestIDHeader carries the dispatcher's request id.
	RequestIDHeader = "X-Request-ID"
)

var encoder = schema.NewEncoder() //nolint:gochecknoglobals // encoder caches struct metadata

func init() { //nolint:gochecknoinits // encoder setup
	encoder.SetAliasTag("json")
}

// Transport sends dispatch requests with an http.Client.
type Transport struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	headers   http.Header
	maxBody   int64
	logger    logger.Logger
}

var _ dispatch.Transport = (*Transport)(nil)

// New creates a transport.
func New(opts ...Option) *Transport {
	t := &Transport{
		timeout:   defaultTimeout,
		userAgent: "polymer",
		headers:   make(http.Header),
		maxBody:   defaultMaxBody,
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.client == nil {
		t.client = &http.Client{Timeout: t.timeout}
	}
	return t
}

// RoundTrip implements dispatch.Transport. Parameters travel in the query
// for GET, HEAD and DELETE and as a JSON body otherwise.
func (t *Transport) RoundTrip(ctx context.Context, req *dispatch.Request) (*dispatch.Response, error) {
	httpReq, err := t.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(body)) > t.maxBody {
		return nil, fmt.Errorf("%w: %s", ErrBodyTooLarge, humanize.IBytes(uint64(t.maxBody)))
	}

	t.logger.Debug(ctx, "round trip",
		logger.String("request_id", req.ID),
		logger.String("method", httpReq.Method),
		logger.String("url", httpReq.URL.String()),
		logger.Int("status", resp.StatusCode),
		logger.String("size", humanize.Bytes(uint64(len(body)))),
		logger.Duration("took", time.Since(start)),
	)

	return &dispatch.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func (t *Transport) newRequest(ctx context.Context, req *dispatch.Request) (*http.Request, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", req.URL, err)
	}

	var body io.Reader
	if req.Verb.ParametersInURI() {
		q, err := encodeQuery(req.Parameters)
		if err != nil {
			return nil, err
		}
		if q != "" {
			if u.RawQuery != "" {
				u.RawQuery += "&" + q
			} else {
				u.RawQuery = q
			}
		}
	} else if req.Parameters != nil {
		data, err := json.Marshal(req.Parameters)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEncodeBody, err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Verb.String(), u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range t.headers {
		httpReq.Header[k] = append([]string(nil), v...)
	}
	for k, v := range req.Header {
		httpReq.Header[k] = append([]string(nil), v...)
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if httpReq.Header.Get("User-Agent") == "" {
		httpReq.Header.Set("User-Agent", t.userAgent)
	}
	if req.ID != "" {
		httpReq.Header.Set(RequestIDHeader, req.ID)
	}
	return httpReq, nil
}

// encodeQuery renders parameters as a query string. Keyed parameters become
// key=value pairs; list parameters become bare tokens.
func encodeQuery(params any) (string, error) {
	switch p := params.(type) {
	case nil:
		return "", nil
	case endpoint.Values:
		return encodeValues(p)
	case map[string]any:
		return encodeValues(p)
	case map[string]string:
		v := make(url.Values, len(p))
		for k, s := range p {
			v.Set(k, s)
		}
		return v.Encode(), nil
	case url.Values:
		return p.Encode(), nil
	case endpoint.List:
		return encodeList(p), nil
	case []any:
		return encodeList(p), nil
	case []string:
		return encodeList(lo.ToAnySlice(p)), nil
	}

	rv := reflect.ValueOf(params)
	if rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return "", fmt.Errorf("%w: %T", ErrEncodeQuery, params)
	}
	v := make(url.Values)
	if err := encoder.Encode(params, v); err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncodeQuery, err)
	}
	return v.Encode(), nil
}

func encodeValues(m map[string]any) (string, error) {
	v := make(url.Values, len(m))
	for k, raw := range m {
		switch val := raw.(type) {
		case nil:
			continue
		case []any:
			for _, item := range val {
				v.Add(k, scalar(item))
			}
		case []string:
			for _, item := range val {
				v.Add(k, item)
			}
		case map[string]any:
			data, err := json.Marshal(val)
			if err != nil {
				return "", fmt.Errorf("%w: %s: %w", ErrEncodeQuery, k, err)
			}
			v.Set(k, string(data))
		default:
			v.Set(k, scalar(val))
		}
	}
	return v.Encode(), nil
}

func encodeList(list []any) string {
	tokens := make([]string, 0, len(list))
	for _, item := range list {
		if item == nil {
			continue
		}
		tokens = append(tokens, url.QueryEscape(scalar(item)))
	}
	return strings.Join(tokens, "&")
}

func scalar(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(v)
}
