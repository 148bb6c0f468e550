// Package metrics defines the Prometheus metrics exported by picpurge.
//
// Metrics cover the extraction pipeline, the batched insert path, database
// query latency, the two analysis passes, the in-memory thumbnail store,
// and the HTTP API. All metrics are registered with the default registry
// via promauto and served by the API server's /metrics endpoint.
package metrics
