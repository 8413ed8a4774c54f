// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
)

// HttpResponseWriter is an interface for errors that can write their own HTTP responses.
// When an error implementing this interface is returned from an operation handler,
// its WriteHttpResponse method is called to generate the HTTP response.
//
// [ValidationError], [EncodingError], [DefectError] and [StatusError] all implement it.
type HttpResponseWriter interface {
	WriteHttpResponse(context.Context, http.ResponseWriter)
}

// ErrorHandler handles errors that occur during request processing.
// The default error handler logs errors and writes the JSON error body
// of the error.
//
// Custom error handlers can be configured per-operation using [OnError].
type ErrorHandler interface {
	OnError(context.Context, http.ResponseWriter, error)
}

// ErrorHandlerFunc is a function adapter that implements [ErrorHandler].
// It allows regular functions to be used as error handlers.
//
// Example:
//
//	handler := rest.ErrorHandlerFunc(func(ctx context.Context, w http.ResponseWriter, err error) {
//	    log.Printf("Error: %v", err)
//	    w.WriteHeader(http.StatusInternalServerError)
//	})
type ErrorHandlerFunc func(context.Context, http.ResponseWriter, error)

func (f ErrorHandlerFunc) OnError(ctx context.Context, w http.ResponseWriter, err error) {
	f(ctx, w, err)
}

func statusOf(err error) int {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Status()
	}
	var serr *StatusError
	if errors.As(err, &serr) {
		return serr.Status
	}
	return http.StatusInternalServerError
}

func defaultErrorHandler(h slog.Handler) ErrorHandlerFunc {
	log := slog.New(h)

	return func(ctx context.Context, w http.ResponseWriter, err error) {
		if errors.Is(err, context.Canceled) {
			log.DebugContext(ctx, "request was canceled", slog.String("request_id", RequestID(ctx)))
			return
		}

		status := statusOf(err)
		level := slog.LevelError
		if status < 500 {
			level = slog.LevelWarn
		}
		log.Log(
			ctx,
			level,
			"sending error response",
			slog.Int("status", status),
			slog.String("request_id", RequestID(ctx)),
			slog.Any("error", err),
		)

		var hrw HttpResponseWriter
		if errors.As(err, &hrw) {
			hrw.WriteHttpResponse(ctx, w)
			return
		}

		w.WriteHeader(http.StatusInternalServerError)
	}
}
