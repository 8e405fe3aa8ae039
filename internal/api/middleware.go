// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/alpenglow-dev/alpenglow/internal/metrics"
)

// requestMetrics records Prometheus request metrics per route pattern. The
// pattern is used instead of the raw path so the label cardinality stays
// bounded.
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := chi.RouteContext(r.Context()).RoutePattern()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RecordAPIRequest(r.Method, endpoint, strconv.Itoa(ww.Status()), time.Since(start))
	})
}
