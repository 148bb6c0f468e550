// Package logging provides a simple leveled logging interface for the
// picpurge application.
//
// It supports the following log levels:
//   - DEBUG: Verbose debugging information
//   - INFO: General operational messages
//   - WARN: Warning conditions
//   - ERROR: Error conditions
//   - FATAL: Fatal errors that terminate the application
//
// The log level is read from the LOG_LEVEL environment variable at startup
// and may be overridden at runtime with SetLevel.
package logging
