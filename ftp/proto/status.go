package proto

import (
	"bytes"
	"fmt"
)

// --------------------------------------------------------------------------
// Status Type Definition
// --------------------------------------------------------------------------

// Status is the outcome signaled on the control connection after the
// server has processed a command.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusOK
	StatusInvalidCommand
	StatusDirReadError
	StatusFileNotFound
)

// Wire tokens for the status values. These are fixed by the protocol and
// must not change: clients match them verbatim.
const (
	tokenOK             = "OK"
	tokenInvalidCommand = "INVALID COMMAND"
	tokenDirReadError   = "ERROR READING DIRECTORY"
	tokenFileNotFound   = "FILE NOT FOUND"
)

// AckReceived is the receipt token a client sends on the control
// connection after it has consumed the full payload.
const AckReceived = "RECEIVED"

// Token returns the wire representation of the status.
func (s Status) Token() string {
	switch s {
	case StatusOK:
		return tokenOK
	case StatusInvalidCommand:
		return tokenInvalidCommand
	case StatusDirReadError:
		return tokenDirReadError
	case StatusFileNotFound:
		return tokenFileNotFound
	default:
		return ""
	}
}

// String returns a log friendly name for the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusInvalidCommand:
		return "invalid command"
	case StatusDirReadError:
		return "directory read error"
	case StatusFileNotFound:
		return "file not found"
	default:
		return "unknown"
	}
}

// ParseStatus matches a raw control-connection read against the known
// status tokens. Surrounding whitespace is ignored; anything else yields
// StatusUnknown.
func ParseStatus(raw []byte) Status {
	switch string(bytes.TrimSpace(raw)) {
	case tokenOK:
		return StatusOK
	case tokenInvalidCommand:
		return StatusInvalidCommand
	case tokenDirReadError:
		return StatusDirReadError
	case tokenFileNotFound:
		return StatusFileNotFound
	default:
		return StatusUnknown
	}
}

// --------------------------------------------------------------------------
// Status Error
// --------------------------------------------------------------------------

// StatusError is returned by clients when the server answers a command
// with a non-OK status token.
type StatusError struct {
	Status Status
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("server answered %q", e.Status.Token())
}
