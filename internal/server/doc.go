// Package server assembles the HTTP API: gorilla/mux routing, the
// middleware chain, the Prometheus endpoint, and graceful shutdown.
package server
