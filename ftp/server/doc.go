// Package server implements the server side of the file retrieval
// protocol: an accept loop over control connections and the request handler
// that walks each accepted connection through one request-response cycle.
//
// The package focuses on:
//   - One goroutine per accepted connection, bounded by MaxSessions
//   - Strict per-request sequencing (command, status, data leg, transfer,
//     receipt) with the status always preceding the data connection
//   - Graceful shutdown via context cancellation with a bounded drain window
//   - Metrics and optional observability sidecars (Prometheus endpoint with
//     pprof, filesystem watcher on the served root)
//
// Key Components:
//
//   - FileServer: The server itself. Created with a configuration, a
//     transport connector and a payload source; Serve runs until the given
//     context is cancelled and returns nil on graceful shutdown.
//
//   - session: One accepted control connection with its optional data
//     connection. Sessions are tracked in a concurrent registry so the
//     shutdown path can cut connections that outlive the drain window.
//
// Failure philosophy: setup failures abort Serve, accept errors are logged
// and the loop continues, protocol violations are answered with a status
// token, per-session I/O failures abort only that session. A payload that
// could not be delivered completely is logged and counted, never retried.
package server
