// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/sourcegraph/conc"
	"github.com/z5labs/typedapi/security"
	"github.com/z5labs/typedapi/shape"
)

// Request is a validated request. Locations the endpoint did not declare
// a shape for are nil.
type Request struct {
	Body    any
	Query   any
	Path    any
	Headers any

	// Raw is the underlying request. For [shape.FormData] bodies its
	// body is left unread.
	Raw *http.Request
}

// requestValidator decodes the request locations of a single endpoint.
// It is built once per endpoint and safe for concurrent use.
type requestValidator struct {
	body     *shape.Decoder
	formData bool
	query    *shape.Decoder
	path     *shape.Decoder
	headers  *shape.Decoder
	security map[string]security.Scheme[any]
}

func newRequestValidator(e Endpoint) *requestValidator {
	v := &requestValidator{
		security: e.security,
	}
	if e.body != nil {
		if e.body.Kind() == shape.KindFormData {
			v.formData = true
		} else {
			v.body = shape.NewDecoder(e.body)
		}
	}
	if e.query != nil {
		v.query = shape.NewDecoder(e.query)
	}
	if e.params != nil {
		v.path = shape.NewDecoder(e.params)
	}
	if e.headers != nil {
		v.headers = shape.NewDecoder(e.headers)
	}
	return v
}

type locationResult struct {
	value any
	err   error
}

// Validate decodes every location of r concurrently. When several
// locations fail the error reported is chosen by the fixed priority
// body, query, path, headers, security.
func (v *requestValidator) Validate(ctx context.Context, r *http.Request, params map[string]string, opts ...shape.ParseOption) (*Request, security.Credentials, error) {
	var body, query, path, headers locationResult
	var creds security.Credentials
	var credsErr error

	var wg conc.WaitGroup
	wg.Go(func() {
		body.value, body.err = v.decodeBody(r, opts)
	})
	wg.Go(func() {
		query.value, query.err = decodeLocation(v.query, LocationQuery, queryValues(r), opts)
	})
	wg.Go(func() {
		path.value, path.err = decodeLocation(v.path, LocationPath, pathValues(params), opts)
	})
	wg.Go(func() {
		headers.value, headers.err = decodeLocation(v.headers, LocationHeaders, headerValues(r), opts)
	})
	wg.Go(func() {
		creds, credsErr = v.resolveSecurity(ctx, r)
	})
	wg.Wait()

	for _, res := range []locationResult{body, query, path, headers} {
		if res.err != nil {
			return nil, nil, res.err
		}
	}
	if credsErr != nil {
		return nil, nil, credsErr
	}

	return &Request{
		Body:    body.value,
		Query:   query.value,
		Path:    path.value,
		Headers: headers.value,
		Raw:     r,
	}, creds, nil
}

func decodeLocation(dec *shape.Decoder, loc Location, input func() any, opts []shape.ParseOption) (any, error) {
	if dec == nil {
		return nil, nil
	}
	out, err := dec.Decode(input(), opts...)
	if err != nil {
		return nil, &ValidationError{Location: loc, Message: err.Error()}
	}
	return out, nil
}

func (v *requestValidator) decodeBody(r *http.Request, opts []shape.ParseOption) (any, error) {
	if v.body == nil || v.formData {
		return nil, nil
	}

	var text []byte
	if r.Body != nil {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, &ValidationError{Location: LocationBody, Message: "Unable to read body"}
		}
		text = b
	}

	var parsed any
	if len(bytes.TrimSpace(text)) > 0 {
		if err := json.Unmarshal(text, &parsed); err != nil {
			return nil, &ValidationError{Location: LocationBody, Message: "Invalid JSON"}
		}
	}
	return decodeLocation(v.body, LocationBody, func() any { return parsed }, opts)
}

func (v *requestValidator) resolveSecurity(ctx context.Context, r *http.Request) (security.Credentials, error) {
	creds, err := security.Resolve(ctx, r, v.security)
	if err == nil {
		return creds, nil
	}

	var serr *security.Error
	if errors.As(err, &serr) {
		return nil, &ValidationError{Location: LocationSecurity, Message: serr.Message}
	}
	return nil, &ValidationError{Location: LocationSecurity, Message: err.Error()}
}

// queryValues keeps single values as strings and repeated keys as arrays.
func queryValues(r *http.Request) func() any {
	return func() any {
		out := make(map[string]any)
		for k, vs := range r.URL.Query() {
			out[k] = flattenValues(vs)
		}
		return out
	}
}

func flattenValues(vs []string) any {
	if len(vs) == 1 {
		return vs[0]
	}
	arr := make([]any, len(vs))
	for i, v := range vs {
		arr[i] = v
	}
	return arr
}

func pathValues(params map[string]string) func() any {
	return func() any {
		out := make(map[string]any, len(params))
		for k, v := range params {
			out[k] = v
		}
		return out
	}
}

// headerValues lowercases header names and joins repeated values.
func headerValues(r *http.Request) func() any {
	return func() any {
		out := make(map[string]any, len(r.Header))
		for k, vs := range r.Header {
			out[strings.ToLower(k)] = strings.Join(vs, ", ")
		}
		return out
	}
}
