// Package pipeline coordinates the extraction phase: a fixed worker
// pool with one-in-one-out admission, a small-file recycle shortcut,
// per-file extraction timeouts, and a batched insert buffer in front
// of the single-writer store.
package pipeline
