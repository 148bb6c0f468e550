// Package walker enumerates candidate image files for the extraction
// pipeline. It filters by extension only; content-level validation is
// the extractor's job.
package walker
