// Package startup handles process configuration: environment-variable
// loading with defaults, required-directory validation, and the
// startup banner.
package startup
