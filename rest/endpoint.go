// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"fmt"
	"maps"
	"net/http"
	"slices"

	"github.com/z5labs/typedapi/security"
	"github.com/z5labs/typedapi/shape"
)

// ConfigError is raised, by panicking, when an [Endpoint] or [Api] is
// declared inconsistently. It is never returned at request time.
type ConfigError struct {
	Endpoint string
	Message  string
	Cause    error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("endpoint %s: %s: %v", e.Endpoint, e.Message, e.Cause)
	}
	return fmt.Sprintf("endpoint %s: %s", e.Endpoint, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// Endpoint is an immutable description of a single HTTP operation. Every
// With method returns an updated copy and leaves the receiver untouched.
//
// A request location without a declared shape is ignored by validation
// and decodes to nil.
type Endpoint struct {
	method  string
	id      string
	pattern string
	path    Path

	summary     string
	description string
	tags        []string
	deprecated  bool

	body    shape.Shape
	query   shape.Shape
	params  shape.Shape
	headers shape.Shape

	security  map[string]security.Scheme[any]
	responses []Response
}

// NewEndpoint declares an endpoint responding 200 with no body. The path
// pattern may contain parameters written as ":name" or ":name?".
func NewEndpoint(method, id, pattern string) Endpoint {
	p := ParsePath(pattern)

	seen := make(map[string]bool)
	for _, param := range p.Params() {
		if seen[param.Name] {
			panic(&ConfigError{Endpoint: id, Message: fmt.Sprintf("path parameter :%s is declared more than once", param.Name)})
		}
		seen[param.Name] = true
	}

	return Endpoint{
		method:    method,
		id:        id,
		pattern:   pattern,
		path:      p,
		responses: []Response{Response{Status: http.StatusOK}.withDefaults()},
	}
}

// Method returns the HTTP method.
func (e Endpoint) Method() string { return e.method }

// ID returns the endpoint id.
func (e Endpoint) ID() string { return e.id }

// Path returns the parsed path pattern.
func (e Endpoint) Path() Path { return slices.Clone(e.path) }

// Responses returns the declared response variants.
func (e Endpoint) Responses() []Response { return slices.Clone(e.responses) }

func (e Endpoint) fail(msg string, cause error) {
	panic(&ConfigError{Endpoint: e.id, Message: msg, Cause: cause})
}

// WithSummary sets the OpenAPI summary.
func (e Endpoint) WithSummary(s string) Endpoint {
	e.summary = s
	return e
}

// WithDescription sets the OpenAPI description.
func (e Endpoint) WithDescription(s string) Endpoint {
	e.description = s
	return e
}

// WithTags sets the OpenAPI tags.
func (e Endpoint) WithTags(tags ...string) Endpoint {
	e.tags = slices.Clone(tags)
	return e
}

// Deprecated marks the endpoint as deprecated in the OpenAPI document.
func (e Endpoint) Deprecated() Endpoint {
	e.deprecated = true
	return e
}

// WithRequestBody declares the shape of the JSON request body.
// Use [shape.FormData] for multipart bodies. GET endpoints cannot
// declare a body.
func (e Endpoint) WithRequestBody(s shape.Shape) Endpoint {
	if shape.IsIgnored(s) {
		e.body = nil
		return e
	}
	if e.method == http.MethodGet {
		e.fail("GET endpoints cannot declare a request body", nil)
	}
	e.body = s
	return e
}

// WithRequestQuery declares the shape of the query string.
func (e Endpoint) WithRequestQuery(s shape.Shape) Endpoint {
	if shape.IsIgnored(s) {
		e.query = nil
		return e
	}
	if _, err := shape.Fields(s); err != nil {
		e.fail("invalid query shape", err)
	}
	e.query = s
	return e
}

// WithRequestPath declares the shape of the path parameters. Its fields
// must match the parameters of the path pattern, including optionality.
func (e Endpoint) WithRequestPath(s shape.Shape) Endpoint {
	if shape.IsIgnored(s) {
		e.params = nil
		return e
	}

	fields, err := shape.Fields(s)
	if err != nil {
		e.fail("invalid path shape", err)
	}

	declared := make(map[string]shape.FieldInfo, len(fields))
	for _, f := range fields {
		declared[f.Name] = f
	}
	for _, param := range e.path.Params() {
		f, ok := declared[param.Name]
		switch {
		case !ok:
			e.fail(fmt.Sprintf("path parameter :%s is not declared by the path shape", param.Name), nil)
		case f.Optional && !param.Optional:
			e.fail(fmt.Sprintf("path parameter :%s is required but its field is optional", param.Name), nil)
		case !f.Optional && param.Optional:
			e.fail(fmt.Sprintf("path parameter :%s is optional but its field is required", param.Name), nil)
		}
		delete(declared, param.Name)
	}
	for _, name := range slices.Sorted(maps.Keys(declared)) {
		e.fail(fmt.Sprintf("path shape field %s is not a parameter of %s", name, e.pattern), nil)
	}

	e.params = s
	return e
}

// WithRequestHeaders declares the shape of the request headers. Field
// names are lowercased so handlers always see lowercase keys.
func (e Endpoint) WithRequestHeaders(s shape.Shape) Endpoint {
	if shape.IsIgnored(s) {
		e.headers = nil
		return e
	}
	lowered, err := shape.LowercaseFields(s)
	if err != nil {
		e.fail("invalid headers shape", err)
	}
	e.headers = lowered
	return e
}

// WithSecurity replaces the named security schemes guarding the endpoint.
func (e Endpoint) WithSecurity(schemes map[string]security.Scheme[any]) Endpoint {
	e.security = maps.Clone(schemes)
	return e
}

func (e Endpoint) withPrimary(f func(*Response)) Endpoint {
	e.responses = slices.Clone(e.responses)
	f(&e.responses[0])
	return e
}

// WithResponseStatus changes the status of the primary response.
func (e Endpoint) WithResponseStatus(status int) Endpoint {
	for _, r := range e.responses[1:] {
		if r.Status == status {
			e.fail(fmt.Sprintf("response status %d is declared more than once", status), nil)
		}
	}
	return e.withPrimary(func(r *Response) { r.Status = status })
}

// WithResponseBody declares the body shape of the primary response.
func (e Endpoint) WithResponseBody(s shape.Shape) Endpoint {
	return e.withPrimary(func(r *Response) {
		r.Body = s
		*r = r.withDefaults()
	})
}

// WithResponseHeaders declares the headers shape of the primary response.
func (e Endpoint) WithResponseHeaders(s shape.Shape) Endpoint {
	if !shape.IsIgnored(s) {
		if _, err := shape.Fields(s); err != nil {
			e.fail("invalid response headers shape", err)
		}
	}
	return e.withPrimary(func(r *Response) {
		r.Headers = s
		*r = r.withDefaults()
	})
}

// WithResponseRepresentations sets the representations the primary
// response body can be rendered as. The first is used when the request
// does not ask for any of them.
func (e Endpoint) WithResponseRepresentations(reps ...Representation) Endpoint {
	if len(reps) == 0 {
		e.fail("at least one representation is required", nil)
	}
	return e.withPrimary(func(r *Response) { r.Representations = slices.Clone(reps) })
}

// AddResponse declares an additional response variant.
func (e Endpoint) AddResponse(r Response) Endpoint {
	for _, existing := range e.responses {
		if existing.Status == r.Status {
			e.fail(fmt.Sprintf("response status %d is declared more than once", r.Status), nil)
		}
	}
	if !shape.IsIgnored(r.Headers) {
		if _, err := shape.Fields(r.Headers); err != nil {
			e.fail("invalid response headers shape", err)
		}
	}
	e.responses = append(slices.Clone(e.responses), r.withDefaults())
	return e
}
