// Package memory configures the Go heap limit from container memory
// limits, protecting the in-memory thumbnail store from OOM kills on
// large scans.
package memory
