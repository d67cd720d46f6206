package proto

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Protocol Limits
// --------------------------------------------------------------------------

const (
	// MaxCommandLen is the maximum number of bytes a command line may
	// occupy on the control connection, including the trailing newline.
	// Longer commands are rejected as invalid instead of being truncated.
	MaxCommandLen = 512

	// MaxTokenLen bounds single-token reads (status tokens, receipt acks)
	// on the control connection.
	MaxTokenLen = 64
)

// --------------------------------------------------------------------------
// Operation Type Definition
// --------------------------------------------------------------------------

// Operation identifies the action requested by a client command.
type Operation uint8

const (
	OpUnknown Operation = iota
	OpList              // request the server's directory listing
	OpGet               // request the contents of a named file
)

// Wire flags for the supported operations.
const (
	flagList = "-l"
	flagGet  = "-g"
)

// String returns the human readable name of the operation.
func (op Operation) String() string {
	switch op {
	case OpList:
		return "list"
	case OpGet:
		return "get"
	default:
		return "unknown"
	}
}

// Flag returns the wire token of the operation ("-l", "-g").
func (op Operation) Flag() string {
	switch op {
	case OpList:
		return flagList
	case OpGet:
		return flagGet
	default:
		return ""
	}
}

// parseOperation converts a wire token to an Operation.
// Unrecognized tokens yield OpUnknown.
func parseOperation(token string) Operation {
	switch token {
	case flagList:
		return OpList
	case flagGet:
		return OpGet
	default:
		return OpUnknown
	}
}

// --------------------------------------------------------------------------
// Command Parse Errors
// --------------------------------------------------------------------------

// All parse failures map to the INVALID COMMAND status token on the wire.
// They are distinct errors so logs and tests can tell the cases apart.
var (
	ErrEmptyCommand    = errors.New("empty command line")
	ErrUnknownOp       = errors.New("unknown operation flag")
	ErrMissingFilename = errors.New("get command without filename")
	ErrMissingDataPort = errors.New("command without data port")
	ErrTrailingTokens  = errors.New("unexpected trailing tokens")
	ErrCommandTooLong  = fmt.Errorf("command line exceeds %d bytes", MaxCommandLen)
)

// --------------------------------------------------------------------------
// Command
// --------------------------------------------------------------------------

// Command is one parsed control-connection request.
type Command struct {
	// Op is the requested operation (OpList or OpGet after a successful parse).
	Op Operation
	// Filename is the requested file for OpGet, empty for OpList.
	Filename string
	// DataPort is the client-supplied port for the data connection. It is
	// kept as the verbatim wire token: the protocol identifies the port by
	// string and leaves validation to the connect attempt.
	DataPort string
}

// String returns a log friendly representation of the command.
func (c Command) String() string {
	if c.Op == OpGet {
		return fmt.Sprintf("%s %q port=%s", c.Op, c.Filename, c.DataPort)
	}
	return fmt.Sprintf("%s port=%s", c.Op, c.DataPort)
}

// Format renders the command in wire form (no trailing newline).
func (c Command) Format() []byte {
	var sb strings.Builder
	sb.WriteString(c.Op.Flag())
	if c.Op == OpGet {
		sb.WriteByte(' ')
		sb.WriteString(c.Filename)
	}
	sb.WriteByte(' ')
	sb.WriteString(c.DataPort)
	return []byte(sb.String())
}

// ParseCommand parses one raw command line as received on the control
// connection. Token counts are strict: a list command is exactly
// "-l <dataPort>", a get command exactly "-g <filename> <dataPort>".
// Trailing CR/LF is ignored.
func ParseCommand(line []byte) (Command, error) {
	if len(line) > MaxCommandLen {
		return Command{}, ErrCommandTooLong
	}

	// Split on any whitespace; this also strips a trailing newline
	tokens := strings.Fields(string(bytes.TrimRight(line, "\r\n\x00")))
	if len(tokens) == 0 {
		return Command{}, ErrEmptyCommand
	}

	// First token selects the operation
	op := parseOperation(tokens[0])
	if op == OpUnknown {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownOp, tokens[0])
	}

	switch op {
	case OpList:
		if len(tokens) < 2 {
			return Command{}, ErrMissingDataPort
		}
		if len(tokens) > 2 {
			return Command{}, ErrTrailingTokens
		}
		return Command{Op: OpList, DataPort: tokens[1]}, nil

	default: // OpGet
		if len(tokens) < 2 {
			return Command{}, ErrMissingFilename
		}
		if len(tokens) < 3 {
			return Command{}, ErrMissingDataPort
		}
		if len(tokens) > 3 {
			return Command{}, ErrTrailingTokens
		}
		return Command{Op: OpGet, Filename: tokens[1], DataPort: tokens[2]}, nil
	}
}
