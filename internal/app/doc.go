// Package app assembles configuration, logging, telemetry, the
// dataset cache and the HTTP server into a runnable application.
package app
