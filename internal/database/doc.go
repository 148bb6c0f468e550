// Package database is the persistence gateway for picpurge. It owns the
// single SQLite handle for the process lifetime and exposes the batched
// insert path used by the pipeline, the per-row updates used by the
// analysis passes, and the derived read views consumed by the HTTP API
// and the sorter.
//
// Writes are serialized through one connection (SQLite is single-writer
// by nature); the extraction phase fully drains before the analysis
// passes read, so the two never overlap. The grouped duplicate and
// similarity views are recomputed on demand from the persisted flags and
// are never stored separately.
package database
