// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/openapi-go/openapi3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/z5labs/typedapi"
	"github.com/z5labs/typedapi/health"
	"github.com/z5labs/typedapi/shape"
)

type registration struct {
	endpoint Endpoint
	handler  Handler
	opts     []OperationOption
}

// ApiOptions holds configuration values used when constructing an [Api].
// This struct is passed to [ApiOption] implementations to configure the API's
// router and OpenAPI specification.
type ApiOptions struct {
	mux       *chi.Mux
	def       *openapi3.Spec
	parseOpts []shape.ParseOption
	ops       []registration
}

// ApiOption is an interface for configuring an [Api].
// Implementations can modify the API's router or OpenAPI specification.
//
// Common implementations include:
//   - [Handle] - registers an [Endpoint]
//   - [Readiness] - configures readiness probe endpoint
//   - [Liveness] - configures liveness probe endpoint
//   - [NotFound] - customizes 404 handling
//   - [MethodNotAllowed] - customizes 405 handling
//   - [ParseErrors] - reports every validation error instead of the first
type ApiOption interface {
	ApplyApiOption(*ApiOptions)
}

type apiOptionFunc func(*ApiOptions)

func (f apiOptionFunc) ApplyApiOption(mo *ApiOptions) {
	f(mo)
}

// Handle registers an [Endpoint] served by h. Endpoint ids must be unique
// within an [Api], otherwise [NewApi] panics with a [*ConfigError].
func Handle(e Endpoint, h Handler, opts ...OperationOption) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.ops = append(ao.ops, registration{endpoint: e, handler: h, opts: opts})
	})
}

// ParseErrors sets how many validation errors are reported by every
// operation of the [Api]. The default is [shape.ErrorsFirst].
func ParseErrors(mode shape.ErrorsMode) ApiOption {
	return apiOptionFunc(func(ao *ApiOptions) {
		ao.parseOpts = append(ao.parseOpts, shape.Errors(mode))
	})
}

// Readiness configures a custom readiness probe endpoint at GET /health/readiness.
// Readiness probes indicate whether the application is ready to serve traffic.
//
// See [Liveness, Readiness, and Startup Probes] for more details.
//
// [Liveness, Readiness, and Startup Probes]: https://kubernetes.io/docs/concepts/configuration/liveness-readiness-startup-probes/
func Readiness(m health.Monitor) ApiOption {
	return apiOptionFunc(func(ro *ApiOptions) {
		ro.mux.Method(http.MethodGet, "/health/readiness", healthHandler(m))
	})
}

// Liveness configures a custom liveness probe endpoint at GET /health/liveness.
// Liveness probes indicate whether the application is running and should be restarted
// if it becomes unresponsive.
//
// See [Liveness, Readiness, and Startup Probes] for more details.
//
// [Liveness, Readiness, and Startup Probes]: https://kubernetes.io/docs/concepts/configuration/liveness-readiness-startup-probes/
func Liveness(m health.Monitor) ApiOption {
	return apiOptionFunc(func(ro *ApiOptions) {
		ro.mux.Method(http.MethodGet, "/health/liveness", healthHandler(m))
	})
}

// NotFound configures a custom handler for requests that don't match any registered routes.
// This overrides the default 404 Not Found behavior.
func NotFound(h http.Handler) ApiOption {
	return apiOptionFunc(func(ro *ApiOptions) {
		ro.mux.NotFound(h.ServeHTTP)
	})
}

// MethodNotAllowed configures a custom handler for requests to valid routes
// with unsupported HTTP methods. This overrides the default 405 Method Not Allowed behavior.
func MethodNotAllowed(h http.Handler) ApiOption {
	return apiOptionFunc(func(ro *ApiOptions) {
		ro.mux.MethodNotAllowed(h.ServeHTTP)
	})
}

// Api is an OpenAPI-compliant [http.Handler] serving a set of [Endpoint]s.
//
// # Standard Features
//
// Every Api automatically provides:
//   - OpenAPI 3.0 document available at GET /openapi.json and GET /openapi.yaml
//   - Default liveness probe at GET /health/liveness (returns 200 OK)
//   - Default readiness probe at GET /health/readiness (returns 200 OK)
//   - Standard 404 Not Found handling
//   - Standard 405 Method Not Allowed handling
type Api struct {
	router *chi.Mux
	def    *openapi3.Spec
}

// NewApi creates a new [Api] with the specified title and version.
//
// Inconsistent endpoint declarations are configuration errors and make
// NewApi panic.
//
// Example:
//
//	getUser := rest.NewEndpoint(http.MethodGet, "getUser", "/users/:id").
//	    WithRequestPath(shape.StructOf(shape.Required("id", shape.String())))
//	api := rest.NewApi("User Service", "v1.0.0", rest.Handle(getUser, getUserHandler))
//	http.ListenAndServe(":8080", api)
func NewApi(title, version string, opts ...ApiOption) *Api {
	log := typedapi.Logger(instrumentationName)

	ao := &ApiOptions{
		mux: chi.NewMux(),
		def: &openapi3.Spec{
			Openapi: "3.0.3",
			Info: openapi3.Info{
				Title:   title,
				Version: version,
			},
		},
	}
	ao.mux.Method(http.MethodGet, "/health/liveness", healthHandler(nil))
	ao.mux.Method(http.MethodGet, "/health/readiness", healthHandler(nil))

	for _, opt := range opts {
		opt.ApplyApiOption(ao)
	}

	ids := make(map[string]bool, len(ao.ops))
	for _, reg := range ao.ops {
		e := reg.endpoint
		if ids[e.id] {
			panic(&ConfigError{Endpoint: e.id, Message: "endpoint id is declared more than once"})
		}
		ids[e.id] = true

		err := addOperation(ao.def, e)
		if err != nil {
			panic(&ConfigError{Endpoint: e.id, Message: "failed to document endpoint", Cause: err})
		}

		opts := append([]OperationOption{WithParseOptions(ao.parseOpts...)}, reg.opts...)
		op := NewOperation(e, reg.handler, opts...)
		for _, route := range e.path.Variants() {
			pattern := route.String()
			ao.mux.Method(e.method, pattern, otelhttp.WithRouteTag(pattern, op))
		}
	}

	spec, err := json.Marshal(ao.def)
	if err != nil {
		panic(fmt.Errorf("failed to encode openapi document to json: %w", err))
	}
	specYAML, err := toYAML(spec)
	if err != nil {
		panic(fmt.Errorf("failed to encode openapi document to yaml: %w", err))
	}

	ao.mux.Get("/openapi.json", serveDocument(log, "application/json", spec))
	ao.mux.Get("/openapi.yaml", serveDocument(log, "application/yaml", specYAML))

	return &Api{
		router: ao.mux,
		def:    ao.def,
	}
}

func serveDocument(log *slog.Logger, contentType string, doc []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		_, err := w.Write(doc)
		if err == nil {
			return
		}
		log.ErrorContext(
			r.Context(),
			"failed to write openapi document",
			slog.String("content_type", contentType),
			slog.Any("error", err),
		)
	}
}

// OpenApi returns the OpenAPI document describing the [Api].
func (api *Api) OpenApi() *openapi3.Spec {
	return api.def
}

// ServeHTTP implements the [http.Handler] interface.
// It delegates request handling to the configured router, which dispatches
// requests to the appropriate [Operation] based on method and path.
func (api *Api) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	api.router.ServeHTTP(w, req)
}
