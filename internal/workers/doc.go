// Package workers provides worker-count sizing for the extraction
// pipeline based on available CPUs, with an environment override.
package workers
