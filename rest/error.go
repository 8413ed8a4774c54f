// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"fmt"
	"net/http"
)

// Location identifies the part of a request which failed validation.
type Location string

const (
	LocationBody     Location = "body"
	LocationQuery    Location = "query"
	LocationPath     Location = "path"
	LocationHeaders  Location = "headers"
	LocationSecurity Location = "security"
)

// ValidationError is returned when a request does not conform to its
// endpoint. Failures at [LocationSecurity] are reported as 401
// Unauthorized, every other location as 400 Bad Request.
type ValidationError struct {
	Location Location
	Message  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("request validation error: %s: %s", e.Location, e.Message)
}

// Status returns the HTTP status code the error is reported with.
func (e *ValidationError) Status() int {
	if e.Location == LocationSecurity {
		return http.StatusUnauthorized
	}
	return http.StatusBadRequest
}

type validationErrorBody struct {
	Error    string   `json:"error"`
	Location Location `json:"location,omitempty"`
	Message  string   `json:"message"`
}

// WriteHttpResponse implements [HttpResponseWriter].
func (e *ValidationError) WriteHttpResponse(ctx context.Context, w http.ResponseWriter) {
	if e.Location == LocationSecurity {
		writeJSON(w, http.StatusUnauthorized, validationErrorBody{
			Error:   "Unauthorized",
			Message: e.Message,
		})
		return
	}
	writeJSON(w, http.StatusBadRequest, validationErrorBody{
		Error:    "Request validation error",
		Location: e.Location,
		Message:  e.Message,
	})
}

// EncodingError is returned when a handler result could not be encoded
// into a response. Kind is one of "Invalid response", "Invalid response
// body" or "Invalid response headers".
type EncodingError struct {
	Kind    string
	Message string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteHttpResponse implements [HttpResponseWriter].
func (e *EncodingError) WriteHttpResponse(ctx context.Context, w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: e.Kind, Message: e.Message})
}

// DefectError is returned when a handler broke its own declared response
// contract, e.g. by responding with an undeclared status.
type DefectError struct {
	Message string
}

func (e *DefectError) Error() string {
	return "defect: " + e.Message
}

// WriteHttpResponse implements [HttpResponseWriter].
func (e *DefectError) WriteHttpResponse(ctx context.Context, w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Invalid response", Message: e.Message})
}

// StatusError lets handlers reply with an arbitrary status without
// declaring it as a response variant.
type StatusError struct {
	Status  int
	Message string
}

// Error creates a [StatusError].
func Error(status int, message string) *StatusError {
	return &StatusError{Status: status, Message: message}
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// WriteHttpResponse implements [HttpResponseWriter].
func (e *StatusError) WriteHttpResponse(ctx context.Context, w http.ResponseWriter) {
	writeJSON(w, e.Status, errorBody{Error: http.StatusText(e.Status), Message: e.Message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := JSON().Stringify(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}
