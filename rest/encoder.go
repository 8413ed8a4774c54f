// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strconv"

	"github.com/z5labs/typedapi/shape"
)

// HttpResponse is a fully encoded response. Nothing is written until it
// is complete.
type HttpResponse struct {
	Status int
	Header http.Header
	Body   []byte
}

// Write copies the response to w.
func (r *HttpResponse) Write(w http.ResponseWriter) error {
	for k, vs := range r.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(r.Status)
	if len(r.Body) == 0 {
		return nil
	}
	_, err := w.Write(r.Body)
	return err
}

var fullResponseShape = shape.StructOf(
	shape.Required("status", shape.Int(shape.Number())),
	shape.Optional("body", shape.Unknown()),
	shape.Optional("headers", shape.Unknown()),
)

type variantEncoder struct {
	Response
	body    *shape.Encoder
	headers *shape.Encoder
}

// responseEncoder encodes handler results for a single endpoint.
// It is built once per endpoint and safe for concurrent use.
type responseEncoder struct {
	full     bool
	status   int
	wrapper  *shape.Decoder
	variants map[int]*variantEncoder
}

func newResponseEncoder(e Endpoint) *responseEncoder {
	enc := &responseEncoder{
		full:     isFullResponse(e.responses),
		status:   simpleStatus(e.responses),
		wrapper:  shape.NewDecoder(fullResponseShape),
		variants: make(map[int]*variantEncoder, len(e.responses)),
	}
	for _, r := range e.responses {
		ve := &variantEncoder{Response: r}
		if r.Body != nil {
			ve.body = shape.NewEncoder(r.Body)
		}
		if r.Headers != nil {
			ve.headers = shape.NewEncoder(r.Headers)
		}
		enc.variants[r.Status] = ve
	}
	return enc
}

// Encode turns the result of a handler into an [HttpResponse]. The Accept
// header of r selects the body representation.
func (enc *responseEncoder) Encode(r *http.Request, result any, opts ...shape.ParseOption) (*HttpResponse, error) {
	status := enc.status
	body, hasBody := result, result != nil
	var headers any
	var hasHeaders bool

	if enc.full {
		wrapper, err := enc.unwrap(result, opts)
		if err != nil {
			return nil, err
		}
		status = int(wrapper["status"].(float64))
		body, hasBody = wrapper["body"]
		headers, hasHeaders = wrapper["headers"]
	}

	variant, ok := enc.variants[status]
	if !ok {
		return nil, &DefectError{Message: fmt.Sprintf("Undeclared response status %d", status)}
	}
	if !enc.full && !hasBody && variant.body != nil && acceptsNull(variant.Body) {
		hasBody = true
	}

	resp := &HttpResponse{
		Status: status,
		Header: make(http.Header),
	}

	switch {
	case variant.body == nil && hasBody:
		return nil, &DefectError{Message: "Unexpected response body"}
	case variant.body != nil && !hasBody:
		return nil, &DefectError{Message: "Response body not provided"}
	case variant.body != nil:
		value, err := jsonValue(body)
		if err != nil {
			return nil, &EncodingError{Kind: "Invalid response body", Message: err.Error()}
		}
		encoded, err := variant.body.Encode(value, opts...)
		if err != nil {
			return nil, &EncodingError{Kind: "Invalid response body", Message: err.Error()}
		}

		rep := negotiate(r.Header.Values("Accept"), variant.Representations)
		text, err := rep.Stringify(encoded)
		if err != nil {
			return nil, &EncodingError{Kind: "Invalid response body", Message: err.Error()}
		}
		resp.Header.Set("Content-Type", rep.ContentType)
		resp.Body = text
	}

	switch {
	case variant.headers == nil && hasHeaders:
		return nil, &DefectError{Message: "Unexpected response headers"}
	case variant.headers != nil && !hasHeaders:
		return nil, &DefectError{Message: "Response headers not provided"}
	case variant.headers != nil:
		value, err := jsonValue(headers)
		if err != nil {
			return nil, &EncodingError{Kind: "Invalid response headers", Message: err.Error()}
		}
		encoded, err := variant.headers.Encode(value, opts...)
		if err != nil {
			return nil, &EncodingError{Kind: "Invalid response headers", Message: err.Error()}
		}
		fields, ok := encoded.(map[string]any)
		if !ok {
			return nil, &EncodingError{
				Kind:    "Invalid response headers",
				Message: fmt.Sprintf("headers must be an object, received %T", encoded),
			}
		}
		for name, v := range fields {
			addHeader(resp.Header, name, v)
		}
	}

	return resp, nil
}

func (enc *responseEncoder) unwrap(result any, opts []shape.ParseOption) (map[string]any, error) {
	var input any
	switch v := result.(type) {
	case FullResponse:
		input = v.fields()
	case *FullResponse:
		if v == nil {
			break
		}
		input = v.fields()
	default:
		m, err := jsonValue(result)
		if err != nil {
			return nil, &EncodingError{Kind: "Invalid response", Message: err.Error()}
		}
		input = m
	}

	out, err := enc.wrapper.Decode(input, opts...)
	if err != nil {
		return nil, &EncodingError{Kind: "Invalid response", Message: err.Error()}
	}
	return out.(map[string]any), nil
}

func (r FullResponse) fields() map[string]any {
	m := map[string]any{"status": float64(r.Status)}
	if r.Body != nil {
		m["body"] = r.Body
	}
	if r.Headers != nil {
		m["headers"] = r.Headers
	}
	return m
}

// jsonValue converts results built from Go types, such as structs or
// ints, into the values produced by decoding JSON.
// acceptsNull reports whether a nil result is a body for s rather than
// the absence of one.
func acceptsNull(s shape.Shape) bool {
	base, _ := shape.Unwrap(s)
	return base.Kind() == shape.KindNull || base.Kind() == shape.KindUnknown
}

func jsonValue(v any) (any, error) {
	if isJSONValue(v) {
		return v, nil
	}
	return As[any](v)
}

func isJSONValue(v any) bool {
	switch v := v.(type) {
	case nil, string, float64, bool, *big.Int:
		return true
	case []any:
		for _, el := range v {
			if !isJSONValue(el) {
				return false
			}
		}
		return true
	case map[string]any:
		for _, el := range v {
			if !isJSONValue(el) {
				return false
			}
		}
		return true
	}
	return false
}

func addHeader(h http.Header, name string, v any) {
	switch v := v.(type) {
	case nil:
	case string:
		h.Add(name, v)
	case float64:
		h.Add(name, strconv.FormatFloat(v, 'f', -1, 64))
	case bool:
		h.Add(name, strconv.FormatBool(v))
	case []any:
		for _, el := range v {
			addHeader(h, name, el)
		}
	default:
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(v); err != nil {
			h.Add(name, fmt.Sprint(v))
			return
		}
		h.Add(name, string(bytes.TrimSpace(buf.Bytes())))
	}
}
