// Package tcp implements TCP socket-based transport for the file retrieval
// service. It provides concrete implementations of the transport package's
// connector interfaces.
//
// This package builds on the base package's connection helpers, inheriting
// its retry behavior for the actively dialed data connection. See the base
// package documentation for details on the underlying mechanisms.
//
// Key Components:
//
//   - serverConnector: TCP-specific implementation of
//     transport.IServerConnector. Binds the control listener to the wildcard
//     address, tunes accepted connections and dials data connections back to
//     clients with the configured per-attempt timeout and retry budget.
//
//   - clientConnector: TCP-specific implementation of
//     transport.IClientConnector. Dials the control endpoint and opens the
//     local data listener the server connects back to.
//
// Accepted and dialed connections are tuned with the configured socket
// options (Nagle, buffer sizes, keep-alive, linger), which matters most for
// the data connection carrying bulk payloads.
package tcp
