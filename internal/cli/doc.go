// Package cli wires the cobra command tree: the scan command runs the
// full walk, extract, resolve, cluster sequence with optional sorting
// and an optional results server.
package cli
