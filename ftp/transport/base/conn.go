package base

import (
	"errors"
	"io"
	"net"
	"time"

	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("ftp/transport")

// ErrOversizedRead is returned by ReadChunk when the peer sent more bytes
// in a single read than the caller allows.
var ErrOversizedRead = errors.New("read exceeds limit")

// --------------------------------------------------------------------------
// Connection Helpers
// --------------------------------------------------------------------------

// SendAll writes buf to w until every byte is written or a hard error
// occurs, covering partial writes. It returns the number of bytes actually
// written, which equals len(buf) exactly when err is nil.
func SendAll(w io.Writer, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := w.Write(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}

// ReadChunk performs a single bounded read from conn and returns whatever
// the peer sent in it, at most limit bytes. The protocol is
// newline-insensitive, so one read is the unit of reception: commands,
// status tokens and receipt acks each arrive in a single write on the other
// side. A read yielding more than limit bytes fails with ErrOversizedRead.
func ReadChunk(conn net.Conn, limit int, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		// A connection that rejects the deadline (already closed) reports
		// its real condition on the read itself
		_ = conn.SetReadDeadline(time.Now().Add(timeout))
	}

	buf := make([]byte, limit+1)
	n, err := conn.Read(buf)

	if n > limit {
		return nil, ErrOversizedRead
	}
	if n > 0 {
		// A read that returned data counts even if the connection also
		// reported an error. The error resurfaces on the next operation.
		return buf[:n], nil
	}
	if err != nil {
		return nil, err
	}
	return nil, io.ErrNoProgress
}

// WriteChunk writes buf to conn under a write deadline, covering partial
// writes. It returns the number of bytes actually written.
func WriteChunk(conn net.Conn, buf []byte, timeout time.Duration) (int, error) {
	if timeout > 0 {
		// Same fall-through as ReadChunk, the write reports the condition
		_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	return SendAll(conn, buf)
}
