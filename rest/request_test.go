// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/z5labs/typedapi/security"
	"github.com/z5labs/typedapi/shape"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func requireValidationError(t *testing.T, err error) *ValidationError {
	t.Helper()

	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected a *ValidationError but got %v", err)
	return verr
}

func TestRequestValidator_Validate(t *testing.T) {
	hello := NewEndpoint(http.MethodPost, "hello", "/hello/:name").
		WithRequestBody(shape.StructOf(shape.Required("value", shape.Number()))).
		WithRequestQuery(shape.StructOf(
			shape.Optional("tag", shape.UnionOf(shape.String(), shape.ArrayOf(shape.String()))),
		)).
		WithRequestPath(shape.StructOf(shape.Required("name", shape.String()))).
		WithRequestHeaders(shape.StructOf(shape.Required("X-Client-Id", shape.String())))

	newRequest := func(body string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/hello/world?tag=a", strings.NewReader(body))
		r.Header.Set("X-Client-Id", "abc")
		return r
	}

	t.Run("will decode every location", func(t *testing.T) {
		v := newRequestValidator(hello)

		req, creds, err := v.Validate(context.Background(), newRequest(`{"value": 2}`), map[string]string{"name": "world"})
		require.NoError(t, err)
		assert.Empty(t, creds)
		assert.Equal(t, map[string]any{"value": float64(2)}, req.Body)
		assert.Equal(t, map[string]any{"tag": "a"}, req.Query)
		assert.Equal(t, map[string]any{"name": "world"}, req.Path)
		assert.Equal(t, map[string]any{"x-client-id": "abc"}, req.Headers)
		assert.NotNil(t, req.Raw)
	})

	t.Run("will collect repeated query keys into an array", func(t *testing.T) {
		v := newRequestValidator(hello)

		r := newRequest(`{"value": 2}`)
		r.URL.RawQuery = "tag=a&tag=b"

		req, _, err := v.Validate(context.Background(), r, map[string]string{"name": "world"})
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"tag": []any{"a", "b"}}, req.Query)
	})

	t.Run("will join repeated headers", func(t *testing.T) {
		e := NewEndpoint(http.MethodGet, "list", "/items").
			WithRequestHeaders(shape.StructOf(shape.Required("Accept-Language", shape.String())))
		v := newRequestValidator(e)

		r := httptest.NewRequest(http.MethodGet, "/items", nil)
		r.Header.Add("Accept-Language", "en")
		r.Header.Add("Accept-Language", "fr")

		req, _, err := v.Validate(context.Background(), r, nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"accept-language": "en, fr"}, req.Headers)
	})

	t.Run("will leave undeclared locations nil", func(t *testing.T) {
		v := newRequestValidator(NewEndpoint(http.MethodGet, "list", "/items"))

		r := httptest.NewRequest(http.MethodGet, "/items?page=2", nil)
		req, _, err := v.Validate(context.Background(), r, nil)
		require.NoError(t, err)
		assert.Nil(t, req.Body)
		assert.Nil(t, req.Query)
		assert.Nil(t, req.Path)
		assert.Nil(t, req.Headers)
	})

	t.Run("will leave form bodies unread", func(t *testing.T) {
		e := NewEndpoint(http.MethodPost, "upload", "/upload").WithRequestBody(shape.FormData())
		v := newRequestValidator(e)

		r := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("not json"))
		req, _, err := v.Validate(context.Background(), r, nil)
		require.NoError(t, err)
		assert.Nil(t, req.Body)
	})

	t.Run("will return a ValidationError", func(t *testing.T) {
		testCases := []struct {
			Name     string
			Request  func() *http.Request
			Params   map[string]string
			Location Location
			Message  string
		}{
			{
				Name:     "if the body is not valid JSON",
				Request:  func() *http.Request { return newRequest(`{"value":`) },
				Params:   map[string]string{"name": "world"},
				Location: LocationBody,
				Message:  "Invalid JSON",
			},
			{
				Name: "if the body cannot be read",
				Request: func() *http.Request {
					r := newRequest("")
					r.Body = readCloser{failingReader{}}
					return r
				},
				Params:   map[string]string{"name": "world"},
				Location: LocationBody,
				Message:  "Unable to read body",
			},
			{
				Name:     "if a required body field is missing",
				Request:  func() *http.Request { return newRequest(`{}`) },
				Params:   map[string]string{"name": "world"},
				Location: LocationBody,
				Message:  "value is missing",
			},
			{
				Name:     "if the body is empty",
				Request:  func() *http.Request { return newRequest("") },
				Params:   map[string]string{"name": "world"},
				Location: LocationBody,
				Message:  "value must be an object, received null",
			},
			{
				Name: "if a required header is missing",
				Request: func() *http.Request {
					r := newRequest(`{"value": 2}`)
					r.Header.Del("X-Client-Id")
					return r
				},
				Params:   map[string]string{"name": "world"},
				Location: LocationHeaders,
				Message:  "x-client-id is missing",
			},
			{
				Name:     "if a path parameter is missing",
				Request:  func() *http.Request { return newRequest(`{"value": 2}`) },
				Params:   map[string]string{},
				Location: LocationPath,
				Message:  "name is missing",
			},
			{
				Name: "if the body and headers are both invalid",
				Request: func() *http.Request {
					r := newRequest(`{}`)
					r.Header.Del("X-Client-Id")
					return r
				},
				Params:   map[string]string{},
				Location: LocationBody,
				Message:  "value is missing",
			},
			{
				Name: "if the path and headers are both invalid",
				Request: func() *http.Request {
					r := newRequest(`{"value": 2}`)
					r.Header.Del("X-Client-Id")
					return r
				},
				Params:   map[string]string{},
				Location: LocationPath,
				Message:  "name is missing",
			},
		}

		for _, testCase := range testCases {
			t.Run(testCase.Name, func(t *testing.T) {
				v := newRequestValidator(hello)

				_, _, err := v.Validate(context.Background(), testCase.Request(), testCase.Params)

				verr := requireValidationError(t, err)
				assert.Equal(t, testCase.Location, verr.Location)
				assert.Equal(t, testCase.Message, verr.Message)
				assert.Equal(t, http.StatusBadRequest, verr.Status())
			})
		}
	})

	t.Run("will report every failure", func(t *testing.T) {
		t.Run("if all errors are requested", func(t *testing.T) {
			e := NewEndpoint(http.MethodPost, "create", "/items").
				WithRequestBody(shape.StructOf(
					shape.Required("name", shape.String()),
					shape.Required("price", shape.Number()),
				))
			v := newRequestValidator(e)

			r := httptest.NewRequest(http.MethodPost, "/items", strings.NewReader(`{}`))
			_, _, err := v.Validate(context.Background(), r, nil, shape.Errors(shape.ErrorsAll))

			verr := requireValidationError(t, err)
			assert.Equal(t, "name is missing, price is missing", verr.Message)
		})
	})
}

type readCloser struct {
	failingReader
}

func (readCloser) Close() error { return nil }

func TestRequestValidator_Security(t *testing.T) {
	e := NewEndpoint(http.MethodGet, "me", "/me").
		WithSecurity(map[string]security.Scheme[any]{
			"bearer": security.Erase(security.Bearer()),
		})

	t.Run("will resolve the credentials", func(t *testing.T) {
		v := newRequestValidator(e)

		r := httptest.NewRequest(http.MethodGet, "/me", nil)
		r.Header.Set("Authorization", "Bearer secret")

		_, creds, err := v.Validate(context.Background(), r, nil)
		require.NoError(t, err)

		token, ok := security.Get[string](creds, "bearer")
		require.True(t, ok)
		assert.Equal(t, "secret", token)
	})

	t.Run("will return a 401 ValidationError", func(t *testing.T) {
		t.Run("if the credentials are missing", func(t *testing.T) {
			v := newRequestValidator(e)

			r := httptest.NewRequest(http.MethodGet, "/me", nil)
			_, _, err := v.Validate(context.Background(), r, nil)

			verr := requireValidationError(t, err)
			assert.Equal(t, LocationSecurity, verr.Location)
			assert.Equal(t, "No authorization header", verr.Message)
			assert.Equal(t, http.StatusUnauthorized, verr.Status())
		})
	})

	t.Run("will report other locations first", func(t *testing.T) {
		t.Run("if both the headers and the credentials are invalid", func(t *testing.T) {
			v := newRequestValidator(e.WithRequestHeaders(
				shape.StructOf(shape.Required("X-Client-Id", shape.String())),
			))

			r := httptest.NewRequest(http.MethodGet, "/me", nil)
			_, _, err := v.Validate(context.Background(), r, nil)

			verr := requireValidationError(t, err)
			assert.Equal(t, LocationHeaders, verr.Location)
		})
	})
}
