// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	kinopenapi "github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/z5labs/typedapi/health"
	"github.com/z5labs/typedapi/security"
	"github.com/z5labs/typedapi/shape"
)

var helloEndpoint = NewEndpoint(http.MethodPost, "hello", "/hello").
	WithSummary("Greets the caller").
	WithTags("greetings").
	WithRequestBody(shape.StructOf(shape.Required("value", shape.Number()))).
	WithRequestHeaders(shape.StructOf(shape.Required("X-Client-Id", shape.String()))).
	WithResponseBody(greetingShape)

var helloHandler = HandlerFunc(func(ctx context.Context, req *Request, _ security.Credentials) (any, error) {
	headers, err := ParamsAs[struct {
		ClientID string `json:"x-client-id"`
	}](req.Headers)
	if err != nil {
		return nil, err
	}
	return map[string]any{"greeting": "hello " + headers.ClientID}, nil
})

func serve(api http.Handler, r *http.Request) *http.Response {
	w := httptest.NewRecorder()
	api.ServeHTTP(w, r)
	return w.Result()
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestApi_ServeHTTP(t *testing.T) {
	t.Run("will respond with the handler result", func(t *testing.T) {
		api := NewApi("Hello", "v1.0.0", Handle(helloEndpoint, helloHandler))

		r := httptest.NewRequest(http.MethodPost, "/hello", strings.NewReader(`{"value": 2}`))
		r.Header.Set("X-Client-Id", "abc")
		resp := serve(api, r)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
		require.JSONEq(t, `{"greeting":"hello abc"}`, readBody(t, resp))
	})

	t.Run("will respond 400", func(t *testing.T) {
		t.Run("if a required header is missing", func(t *testing.T) {
			api := NewApi("Hello", "v1.0.0", Handle(helloEndpoint, helloHandler))

			r := httptest.NewRequest(http.MethodPost, "/hello", strings.NewReader(`{"value": 2}`))
			resp := serve(api, r)

			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			require.Equal(t,
				`{"error":"Request validation error","location":"headers","message":"x-client-id is missing"}`,
				readBody(t, resp),
			)
		})

		t.Run("with every failure if all errors are requested", func(t *testing.T) {
			e := NewEndpoint(http.MethodPost, "create", "/items").
				WithRequestBody(shape.StructOf(
					shape.Required("name", shape.String()),
					shape.Required("price", shape.Number()),
				))
			api := NewApi("Items", "v1.0.0", ParseErrors(shape.ErrorsAll), Handle(e, HandlerFunc(
				func(context.Context, *Request, security.Credentials) (any, error) { return nil, nil },
			)))

			resp := serve(api, httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{}`)))

			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			require.JSONEq(t,
				`{"error":"Request validation error","location":"body","message":"name is missing, price is missing"}`,
				readBody(t, resp),
			)
		})
	})

	t.Run("will respond 401", func(t *testing.T) {
		t.Run("if the credentials are missing", func(t *testing.T) {
			e := NewEndpoint(http.MethodGet, "me", "/me").
				WithSecurity(map[string]security.Scheme[any]{"bearer": security.Erase(security.Bearer())})
			api := NewApi("Me", "v1.0.0", Handle(e, HandlerFunc(
				func(context.Context, *Request, security.Credentials) (any, error) { return nil, nil },
			)))

			resp := serve(api, httptest.NewRequest(http.MethodGet, "/me", nil))

			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			require.JSONEq(t, `{"error":"Unauthorized","message":"No authorization header"}`, readBody(t, resp))
		})
	})

	t.Run("will respond 500", func(t *testing.T) {
		t.Run("if the handler result does not match the response", func(t *testing.T) {
			api := NewApi("Hello", "v1.0.0", Handle(helloEndpoint, HandlerFunc(
				func(context.Context, *Request, security.Credentials) (any, error) {
					return map[string]any{"greeting": 42}, nil
				},
			)))

			r := httptest.NewRequest(http.MethodPost, "/hello", strings.NewReader(`{"value": 2}`))
			r.Header.Set("X-Client-Id", "abc")
			resp := serve(api, r)

			require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

			var body map[string]any
			require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &body))
			require.Equal(t, "Invalid response body", body["error"])
		})

		t.Run("if the handler panics", func(t *testing.T) {
			api := NewApi("Hello", "v1.0.0", Handle(helloEndpoint, HandlerFunc(
				func(context.Context, *Request, security.Credentials) (any, error) {
					panic("unexpected")
				},
			)))

			r := httptest.NewRequest(http.MethodPost, "/hello", strings.NewReader(`{"value": 2}`))
			r.Header.Set("X-Client-Id", "abc")
			resp := serve(api, r)

			require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		})
	})

	t.Run("will respond with the status of a StatusError", func(t *testing.T) {
		e := NewEndpoint(http.MethodGet, "getItem", "/items/:id").
			WithRequestPath(shape.StructOf(shape.Required("id", shape.String())))
		api := NewApi("Items", "v1.0.0", Handle(e, HandlerFunc(
			func(ctx context.Context, req *Request, _ security.Credentials) (any, error) {
				return nil, Error(http.StatusNotFound, "no such item")
			},
		)))

		resp := serve(api, httptest.NewRequest(http.MethodGet, "/items/1", nil))

		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.JSONEq(t, `{"error":"Not Found","message":"no such item"}`, readBody(t, resp))
	})

	t.Run("will serve every variant of an optional path parameter", func(t *testing.T) {
		e := NewEndpoint(http.MethodGet, "listFiles", "/files/:dir?").
			WithRequestPath(shape.StructOf(shape.Optional("dir", shape.String()))).
			WithResponseBody(shape.Unknown())
		api := NewApi("Files", "v1.0.0", Handle(e, HandlerFunc(
			func(ctx context.Context, req *Request, _ security.Credentials) (any, error) {
				return req.Path, nil
			},
		)))

		resp := serve(api, httptest.NewRequest(http.MethodGet, "/files/docs", nil))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.JSONEq(t, `{"dir":"docs"}`, readBody(t, resp))

		resp = serve(api, httptest.NewRequest(http.MethodGet, "/files", nil))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.JSONEq(t, `{}`, readBody(t, resp))
	})

	t.Run("will echo the request id", func(t *testing.T) {
		var seen string
		e := NewEndpoint(http.MethodGet, "ping", "/ping")
		api := NewApi("Ping", "v1.0.0", Handle(e, HandlerFunc(
			func(ctx context.Context, _ *Request, _ security.Credentials) (any, error) {
				seen = RequestID(ctx)
				return nil, nil
			},
		)))

		r := httptest.NewRequest(http.MethodGet, "/ping", nil)
		r.Header.Set(RequestIDHeader, "req-1")
		resp := serve(api, r)

		require.Equal(t, "req-1", resp.Header.Get(RequestIDHeader))
		require.Equal(t, "req-1", seen)

		resp = serve(api, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.NotEmpty(t, resp.Header.Get(RequestIDHeader))
	})

	t.Run("will run interceptors in the order they are added", func(t *testing.T) {
		var calls []string
		tracing := func(name string) Interceptor {
			return InterceptorFunc(func(next Handler) Handler {
				return HandlerFunc(func(ctx context.Context, req *Request, creds security.Credentials) (any, error) {
					calls = append(calls, name)
					return next.Handle(ctx, req, creds)
				})
			})
		}

		e := NewEndpoint(http.MethodGet, "ping", "/ping")
		api := NewApi("Ping", "v1.0.0", Handle(
			e,
			HandlerFunc(func(context.Context, *Request, security.Credentials) (any, error) {
				calls = append(calls, "handler")
				return nil, nil
			}),
			Intercept(tracing("first")),
			Intercept(tracing("second")),
		))

		resp := serve(api, httptest.NewRequest(http.MethodGet, "/ping", nil))

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, []string{"first", "second", "handler"}, calls)
	})

	t.Run("will call a custom error handler", func(t *testing.T) {
		e := NewEndpoint(http.MethodGet, "ping", "/ping")
		api := NewApi("Ping", "v1.0.0", Handle(
			e,
			HandlerFunc(func(context.Context, *Request, security.Credentials) (any, error) {
				return nil, Error(http.StatusConflict, "busy")
			}),
			OnError(ErrorHandlerFunc(func(ctx context.Context, w http.ResponseWriter, err error) {
				w.WriteHeader(http.StatusTeapot)
			})),
		))

		resp := serve(api, httptest.NewRequest(http.MethodGet, "/ping", nil))

		require.Equal(t, http.StatusTeapot, resp.StatusCode)
	})

	t.Run("will use a custom not found handler", func(t *testing.T) {
		api := NewApi("Ping", "v1.0.0", NotFound(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusGone)
		})))

		resp := serve(api, httptest.NewRequest(http.MethodGet, "/missing", nil))

		require.Equal(t, http.StatusGone, resp.StatusCode)
	})

	t.Run("will use a custom method not allowed handler", func(t *testing.T) {
		api := NewApi(
			"Ping",
			"v1.0.0",
			Handle(NewEndpoint(http.MethodGet, "ping", "/ping"), HandlerFunc(
				func(context.Context, *Request, security.Credentials) (any, error) { return nil, nil },
			)),
			MethodNotAllowed(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTeapot)
			})),
		)

		resp := serve(api, httptest.NewRequest(http.MethodPost, "/ping", nil))

		require.Equal(t, http.StatusTeapot, resp.StatusCode)
	})
}

func TestApi_Health(t *testing.T) {
	t.Run("will report healthy by default", func(t *testing.T) {
		api := NewApi("Hello", "v1.0.0")

		for _, path := range []string{"/health/liveness", "/health/readiness"} {
			resp := serve(api, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		}
	})

	t.Run("will follow the configured monitors", func(t *testing.T) {
		ready := &health.Binary{}
		live := &health.Binary{}
		live.MarkHealthy()

		api := NewApi("Hello", "v1.0.0", Readiness(ready), Liveness(live))

		resp := serve(api, httptest.NewRequest(http.MethodGet, "/health/readiness", nil))
		require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		ready.MarkHealthy()
		resp = serve(api, httptest.NewRequest(http.MethodGet, "/health/readiness", nil))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		live.MarkUnhealthy()
		resp = serve(api, httptest.NewRequest(http.MethodGet, "/health/liveness", nil))
		require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestNewApi(t *testing.T) {
	t.Run("will panic with a ConfigError", func(t *testing.T) {
		t.Run("if an endpoint id is registered twice", func(t *testing.T) {
			h := HandlerFunc(func(context.Context, *Request, security.Credentials) (any, error) { return nil, nil })

			cerr := requireConfigError(t, func() {
				NewApi(
					"Dup",
					"v1.0.0",
					Handle(NewEndpoint(http.MethodGet, "ping", "/ping"), h),
					Handle(NewEndpoint(http.MethodGet, "ping", "/pong"), h),
				)
			})
			require.Equal(t, "ping", cerr.Endpoint)
		})
	})
}

func TestApi_OpenApi(t *testing.T) {
	secured := NewEndpoint(http.MethodGet, "getItem", "/items/:id").
		WithDescription("Returns a single item").
		Deprecated().
		WithRequestPath(shape.StructOf(shape.Required("id", shape.String()))).
		WithRequestQuery(shape.StructOf(shape.Optional("expand", shape.Boolean()))).
		WithSecurity(map[string]security.Scheme[any]{
			"apiKey": security.Erase(security.APIKey("X-Api-Key", security.InHeader, security.Name("apiKey"))),
		}).
		WithResponseBody(greetingShape).
		AddResponse(Response{Status: http.StatusNotFound})

	files := NewEndpoint(http.MethodGet, "listFiles", "/files/:dir?")

	noop := HandlerFunc(func(context.Context, *Request, security.Credentials) (any, error) { return nil, nil })
	api := NewApi(
		"Catalog",
		"v1.2.3",
		Handle(helloEndpoint, helloHandler),
		Handle(secured, noop),
		Handle(files, noop),
	)

	t.Run("will serve a valid json document", func(t *testing.T) {
		resp := serve(api, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

		doc, err := kinopenapi.NewLoader().LoadFromData([]byte(readBody(t, resp)))
		require.NoError(t, err)
		require.NoError(t, doc.Validate(context.Background()))

		require.Equal(t, "Catalog", doc.Info.Title)
		require.Equal(t, "v1.2.3", doc.Info.Version)

		hello := doc.Paths.Find("/hello")
		require.NotNil(t, hello)
		require.NotNil(t, hello.Post)
		require.Equal(t, "hello", hello.Post.OperationID)
		require.Equal(t, "Greets the caller", hello.Post.Summary)
		require.Equal(t, []string{"greetings"}, hello.Post.Tags)
		require.NotNil(t, hello.Post.RequestBody)
		require.NotNil(t, hello.Post.Parameters.GetByInAndName("header", "x-client-id"))

		item := doc.Paths.Find("/items/{id}")
		require.NotNil(t, item)
		require.True(t, item.Get.Deprecated)
		require.NotNil(t, item.Get.Parameters.GetByInAndName("path", "id"))
		require.NotNil(t, item.Get.Parameters.GetByInAndName("query", "expand"))
		require.NotNil(t, item.Get.Responses.Status(http.StatusOK))
		require.NotNil(t, item.Get.Responses.Status(http.StatusNotFound))
		require.Contains(t, doc.Components.SecuritySchemes, "apiKey")

		require.NotNil(t, doc.Paths.Find("/files"))
		require.NotNil(t, doc.Paths.Find("/files/{dir}"))
	})

	t.Run("will serve the same document as yaml", func(t *testing.T) {
		resp := serve(api, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "application/yaml", resp.Header.Get("Content-Type"))

		var doc map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(readBody(t, resp)), &doc))
		require.Equal(t, "3.0.3", doc["openapi"])
	})

	t.Run("will number the operation ids of optional path variants", func(t *testing.T) {
		def := api.OpenApi()

		ids := make(map[string]bool)
		for _, path := range []string{"/files", "/files/{dir}"} {
			item := def.Paths.MapOfPathItemValues[path]
			op, ok := item.MapOfOperationValues["get"]
			require.True(t, ok, path)
			require.NotNil(t, op.ID)
			ids[*op.ID] = true
		}
		require.Equal(t, map[string]bool{"listFiles_0": true, "listFiles_1": true}, ids)
	})
}
