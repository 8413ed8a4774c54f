// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"errors"
	"net/http"

	"github.com/gorilla/schema"
)

// maxFormMemory is the part of a multipart body kept in memory; the rest
// spills to temporary files.
const maxFormMemory = 32 << 20

var formDecoder = newFormDecoder()

func newFormDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.SetAliasTag("form")
	dec.IgnoreUnknownKeys(true)
	return dec
}

// FormAs decodes the form body of an endpoint declared with
// [shape.FormData] into the struct T. Fields are matched by their form
// tag. Both multipart and url encoded bodies are accepted.
//
// Failures are reported as a [ValidationError] at [LocationBody].
func FormAs[T any](req *Request) (T, error) {
	var t T
	r := req.Raw

	err := r.ParseMultipartForm(maxFormMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return t, &ValidationError{Location: LocationBody, Message: "Invalid form data"}
	}
	if errors.Is(err, http.ErrNotMultipart) {
		if err := r.ParseForm(); err != nil {
			return t, &ValidationError{Location: LocationBody, Message: "Invalid form data"}
		}
	}

	err = formDecoder.Decode(&t, r.PostForm)
	if err != nil {
		return t, &ValidationError{Location: LocationBody, Message: err.Error()}
	}
	return t, nil
}
