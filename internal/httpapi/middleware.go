// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Muvr Contributors

package httpapi

import (
	"net/http"
	"time"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument records metrics and a debug log line per request, labelled by
// the route pattern rather than the raw path.
func (s *Server) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(started)

		s.metrics.ObserveRequest(route, rec.status, elapsed)
		s.logger.DebugContext(r.Context(), "request",
			"route", route,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", elapsed,
		)
	})
}
