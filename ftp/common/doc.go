// Package common provides core data structures and utilities shared across
// the file retrieval service. It defines configuration structures and the
// logging setup used by other packages.
//
// The package focuses on:
//   - Configuration structures for the server and client components
//   - Validation of user-supplied configuration with aggregated errors
//   - Custom logging implementation built on the dragonboat logger facade
//
// Key Components:
//
//   - ServerConfig: Comprehensive configuration for the file server, covering
//     the control port, the payload source backend (local directory or S3
//     bucket), session limits, data connection dialing behavior and socket
//     tuning. Validate collects every violation into a single error;
//     Advisories reports non-fatal warnings such as ports below the
//     recommended range.
//
//   - ClientConfig: Configuration for client components, controlling the
//     server endpoint, the local data port and timeouts.
//
//   - Logger: Custom logging implementation that plugs into the dragonboat
//     logging facade while providing consistent formatting across the
//     application. InitLoggers wires the named loggers used by the individual
//     packages.
package common
