// Package base provides the protocol-agnostic building blocks shared by the
// transport connectors of the file retrieval service. It contains the
// low-level connection helpers both sides of the protocol are built on,
// independent of the specific network protocol.
//
// The package focuses on:
//   - Reliable bulk sending that covers partial writes (SendAll)
//   - Single bounded reads for the newline-insensitive control protocol
//   - Connection establishment with exponential backoff and jitter
//
// Key Components:
//
//   - SendAll/WriteChunk: Write a buffer completely or report how far the
//     transfer got. The protocol treats under-delivery as a diagnosable
//     condition rather than retrying, so the byte count is always returned.
//
//   - ReadChunk: Reads one bounded chunk from a connection. Commands, status
//     tokens and receipt acks are each sent in a single write by the peer,
//     so a single read is the unit of reception; ReadChunk enforces an upper
//     size limit and a deadline on it.
//
//   - DialWithRetry: Retries a connection attempt with exponential backoff
//     and a small random jitter. Used by the server to absorb the race
//     between announcing a transfer on the control connection and the
//     client's data listener becoming reachable.
package base
