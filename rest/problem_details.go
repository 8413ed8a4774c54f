// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/z5labs/typedapi"
)

// ProblemDetail represents an RFC 7807 Problem Details error response.
//
// RFC 7807 defines a standard format for HTTP API error responses.
// Embed this struct in your custom error types to add extension fields.
//
// Example:
//
//	type OutOfStockError struct {
//	    rest.ProblemDetail
//	    Items []string `json:"items"`
//	}
//
//	return nil, OutOfStockError{
//	    ProblemDetail: rest.ProblemDetail{
//	        Type:   "https://api.example.com/problems/out-of-stock",
//	        Title:  "Out of stock",
//	        Status: http.StatusConflict,
//	        Detail: "One or more items are out of stock",
//	    },
//	    Items: []string{"apple", "pear"},
//	}
//
// Reference: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	// Type is a URI reference that identifies the problem type.
	// When dereferenced, it should provide human-readable documentation.
	// Defaults to "about:blank" when the problem has no specific type.
	Type string `json:"type"`

	// Title is a short, human-readable summary of the problem type.
	// It SHOULD NOT change from occurrence to occurrence of the problem,
	// except for purposes of localization.
	Title string `json:"title"`

	// Status is the HTTP status code for this occurrence of the problem.
	Status int `json:"status"`

	// Detail is a human-readable explanation specific to this occurrence
	// of the problem. Unlike Title, Detail can vary for different occurrences.
	Detail string `json:"detail,omitempty"`

	// Instance is a URI reference that identifies the specific occurrence
	// of the problem. It may or may not yield further information if dereferenced.
	Instance string `json:"instance,omitempty"`
}

// Error implements the error interface.
// Returns the Detail field if present, otherwise returns the Title.
// This allows ProblemDetail to be used directly as a Go error.
func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}

type problemDetailMarker interface {
	statusCode() int
}

func (p ProblemDetail) statusCode() int {
	return p.Status
}

// ProblemDetailsErrorHandler is an [ErrorHandler] that returns RFC 7807 Problem Details responses.
//
// Errors are detected in order:
//  1. Errors embedding [ProblemDetail] are marshaled directly with all extension fields.
//  2. [ValidationError]s and [StatusError]s are converted with their message as detail.
//  3. Every other error becomes a 500 with a fixed detail message so
//     internal details, including response encoding diagnostics, never reach clients.
//
// Example:
//
//	handler := rest.NewProblemDetailsErrorHandler(
//	    rest.WithDefaultType("https://api.example.com/problems/"),
//	)
//
//	rest.Handle(endpoint, handler, rest.OnError(handler))
type ProblemDetailsErrorHandler struct {
	config problemDetailsConfig
	log    *slog.Logger
}

// problemDetailsConfig configures the Problem Details error handler.
type problemDetailsConfig struct {
	// DefaultType is the default type URI for errors that don't specify one.
	// Defaults to "about:blank" per RFC 7807.
	DefaultType string
}

// ProblemDetailsOption configures a ProblemDetailsErrorHandler.
type ProblemDetailsOption func(*problemDetailsConfig)

// WithDefaultType sets the default type URI for errors that don't specify one.
// Defaults to "about:blank" per RFC 7807.
//
// For custom problem types, provide a base URI like:
// "https://api.example.com/problems/"
func WithDefaultType(uri string) ProblemDetailsOption {
	return func(c *problemDetailsConfig) {
		c.DefaultType = uri
	}
}

// NewProblemDetailsErrorHandler creates a new Problem Details error handler.
func NewProblemDetailsErrorHandler(opts ...ProblemDetailsOption) *ProblemDetailsErrorHandler {
	config := problemDetailsConfig{
		DefaultType: "about:blank",
	}
	for _, opt := range opts {
		opt(&config)
	}

	return &ProblemDetailsErrorHandler{
		config: config,
		log:    typedapi.Logger(instrumentationName),
	}
}

// OnError implements the [ErrorHandler] interface.
func (h *ProblemDetailsErrorHandler) OnError(ctx context.Context, w http.ResponseWriter, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}

	var body any
	var status int
	if pd, ok := err.(problemDetailMarker); ok {
		body = err
		status = pd.statusCode()
	} else {
		problemDetail := h.toProblemDetail(err)
		body = problemDetail
		status = problemDetail.Status
	}

	level := slog.LevelError
	if status < 500 {
		level = slog.LevelWarn
	}
	h.log.Log(ctx, level, "sending error response",
		slog.Int("status", status),
		slog.String("request_id", RequestID(ctx)),
		slog.Any("error", err),
	)

	b, encodeErr := json.Marshal(body)
	if encodeErr != nil {
		h.log.ErrorContext(ctx, "failed to encode problem details", slog.Any("error", encodeErr))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	w.Write(b)
}

// toProblemDetail converts framework errors
// to Problem Details format by unwrapping and checking for specific error types.
func (h *ProblemDetailsErrorHandler) toProblemDetail(err error) ProblemDetail {
	var verr *ValidationError
	if errors.As(err, &verr) {
		if verr.Location == LocationSecurity {
			return ProblemDetail{
				Type:   h.buildTypeURI("unauthorized"),
				Title:  "Unauthorized",
				Status: http.StatusUnauthorized,
				Detail: verr.Message,
			}
		}
		return ProblemDetail{
			Type:     h.buildTypeURI("request-validation"),
			Title:    "Request validation error",
			Status:   http.StatusBadRequest,
			Detail:   verr.Message,
			Instance: "#/" + string(verr.Location),
		}
	}

	var serr *StatusError
	if errors.As(err, &serr) {
		return ProblemDetail{
			Type:   h.config.DefaultType,
			Title:  http.StatusText(serr.Status),
			Status: serr.Status,
			Detail: serr.Message,
		}
	}

	var eerr *EncodingError
	if errors.As(err, &eerr) {
		return ProblemDetail{
			Type:   h.buildTypeURI("invalid-response"),
			Title:  eerr.Kind,
			Status: http.StatusInternalServerError,
			Detail: h.getDetailMessage(err),
		}
	}

	return ProblemDetail{
		Type:   h.buildTypeURI("internal-error"),
		Title:  "Internal Server Error",
		Status: http.StatusInternalServerError,
		Detail: h.getDetailMessage(err),
	}
}

// buildTypeURI constructs a type URI from a problem type identifier.
// If DefaultType is "about:blank", returns "about:blank" for all types.
// Otherwise, appends the problem type to the base URI.
func (h *ProblemDetailsErrorHandler) buildTypeURI(problemType string) string {
	if h.config.DefaultType == "about:blank" {
		return "about:blank"
	}
	// If custom base URI, append problem type
	return h.config.DefaultType + problemType
}

// getDetailMessage returns a hardcoded security message.
// This prevents leaking sensitive internal error information to API clients.
func (h *ProblemDetailsErrorHandler) getDetailMessage(err error) string {
	return "An internal server error occurred."
}
