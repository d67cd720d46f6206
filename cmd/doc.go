// Package cmd implements the command-line interface for the fetchd file
// retrieval service. It provides a hierarchical command structure with
// operations for running the server and interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - serve: Commands for starting and configuring the file server
//   - file: Commands for client operations (ls, get, shell, perf)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See fetchd -help for a list of all commands.
package cmd
