// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/z5labs/typedapi/rest"
	"github.com/z5labs/typedapi/security"
	"github.com/z5labs/typedapi/shape"
)

func ExampleNewProblemDetailsErrorHandler() {
	createItem := rest.NewEndpoint(http.MethodPost, "createItem", "/items").
		WithRequestBody(shape.StructOf(shape.Required("name", shape.String())))

	errHandler := rest.NewProblemDetailsErrorHandler(
		rest.WithDefaultType("https://api.example.com/problems/"),
	)

	api := rest.NewApi(
		"Items",
		"v1.0.0",
		rest.Handle(
			createItem,
			rest.HandlerFunc(func(ctx context.Context, req *rest.Request, _ security.Credentials) (any, error) {
				return nil, nil
			}),
			rest.OnError(errHandler),
		),
	)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{}`))
	api.ServeHTTP(w, r)

	resp := w.Result()
	b, _ := io.ReadAll(resp.Body)

	fmt.Println(resp.StatusCode)
	fmt.Println(resp.Header.Get("Content-Type"))
	fmt.Println(string(b))
	// Output: 400
	// application/problem+json
	// {"type":"https://api.example.com/problems/request-validation","title":"Request validation error","status":400,"detail":"name is missing","instance":"#/body"}
}

func ExampleNewProblemDetailsErrorHandler_secureByDefault() {
	ping := rest.NewEndpoint(http.MethodGet, "ping", "/ping")

	api := rest.NewApi(
		"Ping",
		"v1.0.0",
		rest.Handle(
			ping,
			rest.HandlerFunc(func(ctx context.Context, req *rest.Request, _ security.Credentials) (any, error) {
				return nil, errors.New("database connection failed with password: secret123")
			}),
			rest.OnError(rest.NewProblemDetailsErrorHandler()),
		),
	)

	w := httptest.NewRecorder()
	api.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	b, _ := io.ReadAll(w.Result().Body)
	fmt.Println(string(b))
	// Output: {"type":"about:blank","title":"Internal Server Error","status":500,"detail":"An internal server error occurred."}
}

type OutOfStockError struct {
	rest.ProblemDetail
	Items []string `json:"items"`
}

func ExampleProblemDetail() {
	order := rest.NewEndpoint(http.MethodPost, "order", "/orders")

	api := rest.NewApi(
		"Orders",
		"v1.0.0",
		rest.Handle(
			order,
			rest.HandlerFunc(func(ctx context.Context, req *rest.Request, _ security.Credentials) (any, error) {
				return nil, OutOfStockError{
					ProblemDetail: rest.ProblemDetail{
						Type:   "https://api.example.com/problems/out-of-stock",
						Title:  "Out of stock",
						Status: http.StatusConflict,
						Detail: "One or more items are out of stock",
					},
					Items: []string{"apple", "pear"},
				}
			}),
			rest.OnError(rest.NewProblemDetailsErrorHandler()),
		),
	)

	w := httptest.NewRecorder()
	api.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders", nil))

	b, _ := io.ReadAll(w.Result().Body)
	fmt.Println(w.Code)
	fmt.Println(string(b))
	// Output: 409
	// {"type":"https://api.example.com/problems/out-of-stock","title":"Out of stock","status":409,"detail":"One or more items are out of stock","items":["apple","pear"]}
}
