// Package middleware provides the HTTP middleware used by the API
// server: request logging, Prometheus metrics, and gzip compression
// for JSON responses.
package middleware
