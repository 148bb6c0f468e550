package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Default returns the default extraction concurrency: the number of
// available parallel hardware units minus one, minimum one. Leaving one
// CPU free keeps the coordinator and the insert buffer responsive while
// workers are busy decoding.
//
// Can be overridden with the PICPURGE_WORKERS environment variable.
func Default() int {
	if override := os.Getenv("PICPURGE_WORKERS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			return count
		}
	}

	// GOMAXPROCS is automatically set to the container CPU limit in Go 1.19+
	available := runtime.GOMAXPROCS(0)

	workers := available - 1
	if workers < 1 {
		workers = 1
	}
	return workers
}

// Clamp bounds a requested worker count to [1, limit]. Use limit 0 for
// no upper bound.
func Clamp(requested, limit int) int {
	if requested < 1 {
		requested = 1
	}
	if limit > 0 && requested > limit {
		requested = limit
	}
	return requested
}
