// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/z5labs/sdk-go/try"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/z5labs/typedapi"
	"github.com/z5labs/typedapi/security"
	"github.com/z5labs/typedapi/shape"
)

const instrumentationName = "github.com/z5labs/typedapi/rest"

// Handler implements the core logic of an [Endpoint].
//
// In simple response mode the returned value is the response body, nil
// meaning no body unless the body shape is [shape.Null] or
// [shape.Unknown], in which case nil is written as JSON null. In full
// response mode it must be a [FullResponse] or
// a map with the keys "status", "body" and "headers".
type Handler interface {
	Handle(context.Context, *Request, security.Credentials) (any, error)
}

// HandlerFunc is an adapter to allow the use of ordinary functions
// as [Handler]s.
type HandlerFunc func(context.Context, *Request, security.Credentials) (any, error)

// Handle implements the [Handler] interface.
func (f HandlerFunc) Handle(ctx context.Context, req *Request, creds security.Credentials) (any, error) {
	return f(ctx, req, creds)
}

// OperationOptions holds configuration for an [Operation].
type OperationOptions struct {
	errHandler   ErrorHandler
	parseOpts    []shape.ParseOption
	interceptors []Interceptor
}

// OperationOption configures an [Operation].
type OperationOption func(*OperationOptions)

// OnError configures a custom [ErrorHandler] for an operation.
// If not specified, operations use a default error handler that logs errors
// and writes the JSON body of the error.
//
// Example:
//
//	customErrorHandler := rest.ErrorHandlerFunc(func(ctx context.Context, w http.ResponseWriter, err error) {
//	    log.Printf("Error: %v", err)
//	    w.WriteHeader(http.StatusInternalServerError)
//	})
//	rest.Handle(endpoint, handler, rest.OnError(customErrorHandler))
func OnError(eh ErrorHandler) OperationOption {
	return func(oo *OperationOptions) {
		oo.errHandler = eh
	}
}

// WithParseOptions configures how request and response values are
// validated, e.g. [shape.Errors].
func WithParseOptions(opts ...shape.ParseOption) OperationOption {
	return func(oo *OperationOptions) {
		oo.parseOpts = append(oo.parseOpts, opts...)
	}
}

type operationMetrics struct {
	validationFailures metric.Int64Counter
	encodingFailures   metric.Int64Counter
}

func newOperationMetrics() *operationMetrics {
	meter := otel.Meter(instrumentationName)

	validationFailures, err := meter.Int64Counter(
		"typedapi.request.validation.failures",
		metric.WithDescription("Number of requests rejected by validation."),
	)
	if err != nil {
		panic(err)
	}

	encodingFailures, err := meter.Int64Counter(
		"typedapi.response.encoding.failures",
		metric.WithDescription("Number of handler results which could not be encoded."),
	)
	if err != nil {
		panic(err)
	}

	return &operationMetrics{
		validationFailures: validationFailures,
		encodingFailures:   encodingFailures,
	}
}

// Operation serves a single [Endpoint]. It validates requests, invokes
// its [Handler] and encodes the result.
type Operation struct {
	endpoint   Endpoint
	handler    Handler
	validator  *requestValidator
	encoder    *responseEncoder
	errHandler ErrorHandler
	parseOpts  []shape.ParseOption
	tracer     trace.Tracer
	metrics    *operationMetrics
}

// NewOperation compiles the validator and encoder of e.
func NewOperation(e Endpoint, h Handler, opts ...OperationOption) *Operation {
	oo := &OperationOptions{
		errHandler: defaultErrorHandler(
			typedapi.LogHandler(instrumentationName).WithAttrs([]slog.Attr{
				slog.String("endpoint", e.id),
			}),
		),
	}
	for _, opt := range opts {
		opt(oo)
	}

	return &Operation{
		endpoint:   e,
		handler:    intercept(h, oo.interceptors),
		validator:  newRequestValidator(e),
		encoder:    newResponseEncoder(e),
		errHandler: oo.errHandler,
		parseOpts:  oo.parseOpts,
		tracer:     otel.Tracer(instrumentationName),
		metrics:    newOperationMetrics(),
	}
}

// ServeHTTP implements the [http.Handler] interface. Path parameters are
// read from the chi route context.
func (o *Operation) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r = withRequestID(w, r)

	ctx, span := o.tracer.Start(
		r.Context(),
		"Operation.ServeHTTP",
		trace.WithAttributes(
			attribute.String("typedapi.endpoint.id", o.endpoint.id),
			attribute.String("typedapi.request.id", RequestID(r.Context())),
		),
	)
	defer span.End()

	var err error
	defer func() {
		if err == nil {
			return
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		o.errHandler.OnError(ctx, w, err)
	}()
	defer try.Recover(&err)

	resp, err := o.HandleRequest(ctx, r.WithContext(ctx), routeParams(r))
	if err != nil {
		return
	}

	werr := resp.Write(w)
	if werr != nil {
		span.RecordError(werr)
	}
}

func routeParams(r *http.Request) map[string]string {
	params := make(map[string]string)
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return params
	}
	for i, key := range rctx.URLParams.Keys {
		if key == "*" || i >= len(rctx.URLParams.Values) {
			continue
		}
		params[key] = rctx.URLParams.Values[i]
	}
	return params
}

// HandleRequest validates r, invokes the handler and encodes its result.
// Nothing is written anywhere, errors are returned as is so the caller
// decides how to report them.
func (o *Operation) HandleRequest(ctx context.Context, r *http.Request, params map[string]string) (_ *HttpResponse, err error) {
	defer try.Recover(&err)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req, creds, err := o.validateRequest(ctx, r, params)
	if err != nil {
		return nil, err
	}

	result, err := o.handler.Handle(ctx, req, creds)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return o.encodeResponse(ctx, r, result)
}

func (o *Operation) validateRequest(ctx context.Context, r *http.Request, params map[string]string) (*Request, security.Credentials, error) {
	ctx, span := o.tracer.Start(ctx, "Operation.validateRequest")
	defer span.End()

	req, creds, err := o.validator.Validate(ctx, r, params, o.parseOpts...)
	if err == nil {
		return req, creds, nil
	}

	span.RecordError(err)

	var verr *ValidationError
	if errors.As(err, &verr) {
		o.metrics.validationFailures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("location", string(verr.Location)),
		))
	}
	return nil, nil, err
}

func (o *Operation) encodeResponse(ctx context.Context, r *http.Request, result any) (*HttpResponse, error) {
	ctx, span := o.tracer.Start(ctx, "Operation.encodeResponse")
	defer span.End()

	resp, err := o.encoder.Encode(r, result, o.parseOpts...)
	if err == nil {
		span.SetAttributes(attribute.Int("http.response.status_code", resp.Status))
		return resp, nil
	}

	span.RecordError(err)

	kind := "Invalid response"
	var eerr *EncodingError
	if errors.As(err, &eerr) {
		kind = eerr.Kind
	}
	o.metrics.encodingFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
	))
	return nil, err
}
