// Package analysis holds the two post-extraction passes: the duplicate
// resolver (exact content-hash grouping with canonical selection) and
// the similarity clusterer (perceptual-hash connected components with
// geometric prefilters). Both are single-threaded, idempotent passes
// over the full record set and run only after extraction has drained.
package analysis
