// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"net/http"

	"github.com/z5labs/typedapi/shape"
)

// Response declares one status keyed alternative of an endpoint's response.
// A nil Body or Headers means the response carries none.
type Response struct {
	Status          int
	Body            shape.Shape
	Headers         shape.Shape
	Representations []Representation
	Description     string
}

func (r Response) description() string {
	if r.Description != "" {
		return r.Description
	}
	return http.StatusText(r.Status)
}

func (r Response) withDefaults() Response {
	if len(r.Representations) == 0 {
		r.Representations = []Representation{JSON()}
	}
	if shape.IsIgnored(r.Body) {
		r.Body = nil
	}
	if shape.IsIgnored(r.Headers) {
		r.Headers = nil
	}
	return r
}

// FullResponse is returned by handlers of endpoints in full response mode.
// A nil Body or Headers is treated as absent.
type FullResponse struct {
	Status  int
	Body    any
	Headers any
}

// isFullResponse reports whether handlers must return a [FullResponse]
// rather than a bare body. This is the case when several successful
// statuses are declared or a successful variant declares headers.
func isFullResponse(rs []Response) bool {
	if len(rs) == 1 {
		return rs[0].Headers != nil
	}

	successes := 0
	for _, r := range rs {
		if r.Status >= 300 {
			continue
		}
		if r.Headers != nil {
			return true
		}
		successes++
	}
	return successes > 1
}

// simpleStatus is the status used for bare handler results.
func simpleStatus(rs []Response) int {
	for _, r := range rs {
		if r.Status < 300 {
			return r.Status
		}
	}
	return rs[0].Status
}
