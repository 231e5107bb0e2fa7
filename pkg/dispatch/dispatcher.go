// Package dispatch executes endpoint descriptors: it resolves the request,
// hands it to a Transport, classifies the response and delivers exactly one
// callback per request.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/polymer/pkg/endpoint"
	"github.com/okian/polymer/pkg/logger"
	"github.com/okian/polymer/pkg/metrics"
	"github.com/okian/polymer/pkg/slug"
)

// Callback receives the outcome of an asynchronous dispatch. Exactly one of
// the result's Value or err is meaningful.
type Callback func(res Result, err error)

// Dispatcher executes descriptors against a Transport. It holds no
// per-request state and is safe for concurrent use.
type Dispatcher struct {
	transport    Transport
	deserializer Deserializer
	executor     Executor
	logger       logger.Logger
	metrics      *metrics.Manager
	now          func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithDeserializer replaces the JSON deserializer.
func WithDeserializer(d Deserializer) Option {
	return func(dp *Dispatcher) {
		if d != nil {
			dp.deserializer = d
		}
	}
}

// WithExecutor replaces the goroutine-per-request executor.
func WithExecutor(e Executor) Option {
	return func(dp *Dispatcher) {
		if e != nil {
			dp.executor = e
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(dp *Dispatcher) {
		if l != nil {
			dp.logger = l
		}
	}
}

// WithMetrics sets the metrics manager. The package default is used otherwise.
func WithMetrics(m *metrics.Manager) Option {
	return func(dp *Dispatcher) {
		if m != nil {
			dp.metrics = m
		}
	}
}

// New returns a dispatcher sending requests through transport.
func New(transport Transport, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		transport:    transport,
		deserializer: JSONDeserializer{},
		executor:     GoExecutor{},
		logger:       logger.Nop(),
		metrics:      metrics.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Get dispatches desc with GET.
func (d *Dispatcher) Get(ctx context.Context, desc *endpoint.Descriptor, cb Callback) {
	d.Dispatch(ctx, VerbGet, desc, cb)
}

// Put dispatches desc with PUT.
func (d *Dispatcher) Put(ctx context.Context, desc *endpoint.Descriptor, cb Callback) {
	d.Dispatch(ctx, VerbPut, desc, cb)
}

// Post dispatches desc with POST.
func (d *Dispatcher) Post(ctx context.Context, desc *endpoint.Descriptor, cb Callback) {
	d.Dispatch(ctx, VerbPost, desc, cb)
}

// Patch dispatches desc with PATCH.
func (d *Dispatcher) Patch(ctx context.Context, desc *endpoint.Descriptor, cb Callback) {
	d.Dispatch(ctx, VerbPatch, desc, cb)
}

// Delete dispatches desc with DELETE.
func (d *Dispatcher) Delete(ctx context.Context, desc *endpoint.Descriptor, cb Callback) {
	d.Dispatch(ctx, VerbDelete, desc, cb)
}

// Dispatch runs desc on the executor and invokes cb exactly once with the
// outcome. A nil cb discards the outcome. If the executor rejects the job,
// cb receives ErrRejected on a fresh goroutine.
func (d *Dispatcher) Dispatch(ctx context.Context, verb Verb, desc *endpoint.Descriptor, cb Callback) {
	deliver := once(cb)
	err := d.executor.Submit(ctx, func(ctx context.Context) {
		deliver(d.safeDo(ctx, verb, desc))
	})
	if err == nil {
		return
	}
	d.metrics.RecordRequest(descName(desc), verb.String(), metrics.OutcomeRejected, 0)
	d.logger.Warn(ctx, "dispatch rejected", logger.String("endpoint", descName(desc)), logger.Error(err))
	if !errors.Is(err, ErrRejected) {
		err = fmt.Errorf("%w: %w", ErrRejected, err)
	}
	go deliver(Result{}, err)
}

// Do executes desc synchronously.
func (d *Dispatcher) Do(ctx context.Context, verb Verb, desc *endpoint.Descriptor) (Result, error) {
	start := d.now()
	res, outcome, err := d.do(ctx, verb, desc)
	elapsed := d.now().Sub(start)

	name := descName(desc)
	d.metrics.RecordRequest(name, verb.String(), outcome, float64(elapsed.Milliseconds()))
	switch outcome {
	case metrics.OutcomeSlugError:
		d.metrics.RecordSlugResolutionFailure(name)
	case metrics.OutcomeDecodeError:
		d.metrics.RecordDeserializationError(name)
	}

	fields := []logger.Field{
		logger.String("endpoint", name),
		logger.String("verb", verb.String()),
		logger.String("outcome", outcome),
		logger.Duration("took", elapsed),
	}
	if res.RequestID != "" {
		fields = append(fields, logger.String("request_id", res.RequestID))
	}
	if err != nil {
		d.logger.Warn(ctx, "dispatch failed", append(fields, logger.Error(err))...)
		return res, err
	}
	d.logger.Debug(ctx, "dispatch finished", append(fields, logger.Int("status", res.StatusCode))...)
	return res, nil
}

func (d *Dispatcher) safeDo(ctx context.Context, verb Verb, desc *endpoint.Descriptor) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = Result{}, fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return d.Do(ctx, verb, desc)
}

func (d *Dispatcher) do(ctx context.Context, verb Verb, desc *endpoint.Descriptor) (Result, string, error) {
	if desc == nil {
		return Result{}, metrics.OutcomeInvalidEndpoint, ErrNilDescriptor
	}
	if err := desc.Err(); err != nil {
		if errors.Is(err, slug.ErrMissingSlugValue) {
			return Result{}, metrics.OutcomeSlugError, err
		}
		return Result{}, metrics.OutcomeInvalidEndpoint, err
	}
	if !verb.Valid() {
		return Result{}, metrics.OutcomeInvalidEndpoint, fmt.Errorf("%w: %q", ErrUnsupportedVerb, string(verb))
	}
	if err := ctx.Err(); err != nil {
		return Result{}, metrics.OutcomeTransportError, &TransportError{Verb: verb, URL: desc.URL(), Err: err}
	}

	req := newRequest(verb, desc)
	res := Result{RequestID: req.ID}

	resp, err := d.transport.RoundTrip(ctx, req)
	if err != nil {
		return res, metrics.OutcomeTransportError, &TransportError{Verb: verb, URL: req.URL, Err: err}
	}
	res.StatusCode = resp.StatusCode
	res.Header = resp.Header.Clone()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return res, metrics.OutcomeTransportError, &TransportError{
			Verb:       verb,
			URL:        req.URL,
			StatusCode: resp.StatusCode,
			Body:       truncate(resp.Body),
			Err:        ErrUnexpectedStatus,
		}
	}

	shape := desc.Shape()
	fail := func(err error) (Result, string, error) {
		return res, metrics.OutcomeDecodeError, &DeserializationError{
			Endpoint: desc.Name(),
			KeyPath:  shape.KeyPath,
			Kind:     shape.Kind.String(),
			Err:      err,
		}
	}

	payload, err := decodeBody(desc, resp)
	if err != nil {
		return fail(err)
	}
	if desc.AppendHeaderToResponse() {
		payload = mergeHeader(payload, resp.Header, desc.HeaderKeys())
	}
	payload, err = drill(payload, shape.KeyPath)
	if err != nil {
		return fail(err)
	}
	res.Payload = payload

	value, err := d.deserializer.Deserialize(payload, shape)
	if err != nil {
		var de *DeserializationError
		if errors.As(err, &de) {
			return res, metrics.OutcomeDecodeError, err
		}
		return fail(err)
	}
	res.Value = value
	return res, metrics.OutcomeSuccess, nil
}

func newRequest(verb Verb, desc *endpoint.Descriptor) *Request {
	header := make(http.Header)
	for k, v := range desc.HeaderFields() {
		header.Set(k, v)
	}
	if header.Get("Accept") == "" {
		header.Set("Accept", strings.Join(desc.AcceptableContentTypes(), ", "))
	}
	return &Request{
		ID:         uuid.NewString(),
		Verb:       verb,
		URL:        desc.URL(),
		Parameters: desc.Parameters(),
		Header:     header,
	}
}

func descName(desc *endpoint.Descriptor) string {
	if desc == nil {
		return ""
	}
	return desc.Name()
}

func once(cb Callback) Callback {
	var o sync.Once
	return func(res Result, err error) {
		o.Do(func() {
			if cb != nil {
				cb(res, err)
			}
		})
	}
}
