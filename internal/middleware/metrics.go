package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"picpurge/internal/metrics"
)

// Metrics returns middleware recording request counts and durations.
// The /metrics endpoint itself is not recorded.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			metrics.HTTPRequestsInFlight.Inc()
			defer metrics.HTTPRequestsInFlight.Dec()

			start := time.Now()
			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			path := normalizePath(r.URL.Path)
			metrics.HTTPRequestsTotal.WithLabelValues(
				r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(
				r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// normalizePath collapses per-resource segments so label cardinality
// stays bounded: /api/image/123 and /thumbnails/<hash> record as one
// series each.
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/image/"):
		return "/api/image/{id}"
	case strings.HasPrefix(path, "/thumbnails/"):
		return "/thumbnails/{hash}"
	}
	return path
}
