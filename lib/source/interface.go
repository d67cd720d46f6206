package source

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// ISource is the generic interface for the payload sources the server
// serves files from. Implementations load whole payloads into memory; the
// protocol transfers a payload in one piece and has no notion of streaming.
type ISource interface {
	// List returns the listing payload: the name of every regular file,
	// each followed by a newline, in enumeration order. A source without
	// any files yields the EmptyListing placeholder.
	List() (listing []byte, err error)
	// Read returns the complete contents of the named file.
	Read(name string) (data []byte, err error)
	// Close releases any resources held by the source.
	Close() error
}

// EmptyListing is the placeholder payload for a source without any files.
// Its length of one keeps an empty listing distinguishable from a missing
// transfer on the wire.
var EmptyListing = []byte(" ")

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	errorCode := ""
	switch e.Code {
	case RetCNotFound:
		errorCode = "NotFound"
	case RetCListFailed:
		errorCode = "ListFailed"
	case RetCInternalError:
		errorCode = "InternalError"
	default:
		errorCode = "Unknown"
	}

	return fmt.Sprintf("SourceError (code %s): %s", errorCode, e.Msg)
}

// NewError creates a new source error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// CodeOf extracts the return code from an error returned by a source.
// Errors without a code map to RetCInternalError.
func CodeOf(err error) RetCode {
	var srcErr *Error
	if errors.As(err, &srcErr) {
		return srcErr.Code
	}
	return RetCInternalError
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess       RetCode = iota // 0: Operation executed successfully.
	RetCNotFound                     // 1: The named file could not be served.
	RetCListFailed                   // 2: The source could not be enumerated.
	RetCInternalError                // 3: Operation failed due to an internal error.
)
