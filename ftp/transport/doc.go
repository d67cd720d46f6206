// Package transport defines the interfaces and abstractions for the network
// legs of the file retrieval service. It provides a common contract that all
// transport implementations must fulfill, keeping the server and client
// logic independent of the concrete network protocol.
//
// The package focuses on:
//   - Defining clear interfaces for the server and client transport layers
//   - Separating the passive control listener from the actively dialed
//     data connection
//   - Enabling alternative transport implementations and test doubles
//
// Key Components:
//
//   - IServerConnector: Interface for server-side transport implementations.
//     Covers the control listener, socket tuning of accepted connections and
//     the dial-back of data connections to clients.
//
//   - IClientConnector: Interface for client-side transport implementations.
//     Covers dialing the control endpoint and opening the local data
//     listener a server transfers payloads to.
package transport
