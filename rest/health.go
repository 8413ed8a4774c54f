// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"log/slog"
	"net/http"

	"github.com/z5labs/typedapi"
	"github.com/z5labs/typedapi/health"
)

// healthHandler responds 200 while m is healthy and 503 otherwise.
// A nil monitor is always healthy.
func healthHandler(m health.Monitor) http.Handler {
	log := typedapi.Logger(instrumentationName)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil {
			w.WriteHeader(http.StatusOK)
			return
		}

		healthy, err := m.Healthy(r.Context())
		if err != nil {
			log.WarnContext(r.Context(), "health check failed", slog.Any("error", err))
		}
		if !healthy || err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}
