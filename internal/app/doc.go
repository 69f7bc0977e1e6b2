// Package app wires the application together: configuration, logging,
// OpenTelemetry, the results engine, and the HTTP server with its
// middleware stack. The binary under cmd/server delegates to Run,
// which blocks until an interrupt triggers graceful shutdown.
package app
