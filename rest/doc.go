// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package rest serves declaratively described HTTP endpoints.
//
// # Overview
//
// An [Endpoint] describes an operation with [shape.Shape] values for its
// request body, query, path parameters and headers, its security schemes
// and its possible responses. From that single description the package:
//   - validates and decodes incoming requests
//   - resolves credentials
//   - encodes and checks handler results, negotiating the content type
//   - documents the endpoint in an OpenAPI 3.0 document
//
// # Quick Start
//
//	hello := rest.NewEndpoint(http.MethodPost, "hello", "/hello").
//	    WithRequestBody(shape.StructOf(shape.Required("value", shape.Number()))).
//	    WithRequestHeaders(shape.StructOf(shape.Required("X-Client-Id", shape.String()))).
//	    WithResponseBody(shape.StructOf(shape.Required("greeting", shape.String())))
//
//	api := rest.NewApi("Hello", "v1.0.0", rest.Handle(hello, rest.HandlerFunc(
//	    func(ctx context.Context, req *rest.Request, _ security.Credentials) (any, error) {
//	        return map[string]any{"greeting": "hello"}, nil
//	    },
//	)))
//	http.ListenAndServe(":8080", api)
//
// Every [Api] also serves:
//   - the OpenAPI document at GET /openapi.json and GET /openapi.yaml
//   - health probes at GET /health/liveness and GET /health/readiness
//
// # Paths
//
// Path patterns use ":name" for parameters and ":name?" for optional
// ones. An optional parameter expands to one route with it and one
// without, both documented.
//
// # Validation Errors
//
// The first failing request part, in the order body, query, path,
// headers and security, is reported as a [ValidationError]:
//
//	{"error":"Request validation error","location":"headers","message":"x-client-id is missing"}
//
// Failed security responds 401 instead of 400. Use [ParseErrors] to report
// every failure of a part instead of only the first.
//
// # Responses
//
// A handler may return the body directly when the endpoint has a single
// successful response without headers. Otherwise it returns a
// [FullResponse] naming the status, and optionally body and headers, of
// one of the declared responses. Results that do not match a declaration
// are defects and answered with 500.
//
// # Running
//
// [Run] reads a YAML config, initializes OpenTelemetry and serves the
// endpoints until the process receives SIGINT or SIGTERM:
//
//	func main() {
//	    rest.Run(bytes.NewReader(configBytes), Init)
//	}
//
//	func Init(ctx context.Context, cfg rest.Config) ([]rest.ApiOption, error) {
//	    return []rest.ApiOption{rest.Handle(hello, helloHandler)}, nil
//	}
package rest
