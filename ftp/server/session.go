package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/fetchd/ftp/proto"
	"github.com/ValentinKolb/fetchd/ftp/transport/base"
)

// --------------------------------------------------------------------------
// Session
// --------------------------------------------------------------------------

// session is one accepted control connection progressing through a single
// request-response cycle
type session struct {
	id      uint64
	control net.Conn

	// mu guards data and closed against the shutdown drain closing the
	// session from another goroutine
	mu     sync.Mutex
	data   net.Conn
	closed bool
}

// setData attaches the established data connection to the session. When the
// session was already closed by the drain, the connection is closed
// immediately and false is returned.
func (sess *session) setData(conn net.Conn) bool {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.closed {
		conn.Close()
		return false
	}
	sess.data = conn
	return true
}

// close terminates both connections of the session. Safe to call more than
// once and from other goroutines.
func (sess *session) close() {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.closed = true
	if sess.control != nil {
		sess.control.Close()
	}
	if sess.data != nil {
		sess.data.Close()
	}
}

// --------------------------------------------------------------------------
// Request Handling
// --------------------------------------------------------------------------

// handleConnection runs one request-response cycle on an accepted control
// connection. Every exit path leaves both connections closed and the
// session deregistered.
func (s *FileServer) handleConnection(ctx context.Context, conn net.Conn) {
	sess := &session{
		id:      atomic.AddUint64(&s.nextSessionID, 1),
		control: conn,
	}
	s.sessions.Store(sess.id, sess)

	defer func() {
		// A broken session must never take the server down
		if r := recover(); r != nil {
			Logger.Errorf("Session %d: panic: %v", sess.id, r)
		}
		sess.close()
		s.sessions.Delete(sess.id)
	}()

	if err := s.connector.UpgradeConnection(conn, s.config); err != nil {
		Logger.Warningf("Session %d: failed to tune connection: %v", sess.id, err)
	}

	s.serveRequest(ctx, sess)
}

// serveRequest walks one session through the request-response cycle:
// command, payload production, status, data leg, transfer, receipt. The
// ordering is the protocol contract, the status always precedes any data
// connection attempt.
func (s *FileServer) serveRequest(ctx context.Context, sess *session) {
	timeout := time.Duration(s.config.TimeoutSecond) * time.Second

	// Read the command in a single bounded read
	line, err := base.ReadChunk(sess.control, proto.MaxCommandLen, timeout)
	if err != nil {
		if errors.Is(err, base.ErrOversizedRead) {
			// An oversized command is still answerable
			s.reject(sess, proto.OpUnknown, proto.StatusInvalidCommand,
				fmt.Sprintf("command exceeds %d bytes", proto.MaxCommandLen))
			return
		}
		Logger.Errorf("Session %d: failed to read command: %v", sess.id, err)
		s.metrics.readFailures.Inc()
		return
	}

	cmd, err := proto.ParseCommand(line)
	if err != nil {
		s.reject(sess, proto.OpUnknown, proto.StatusInvalidCommand,
			fmt.Sprintf("invalid command %q: %v", line, err))
		return
	}

	Logger.Infof("Session %d: %v from %s", sess.id, cmd, sess.control.RemoteAddr())

	// Produce the payload before anything is promised to the client
	var payload []byte
	switch cmd.Op {
	case proto.OpList:
		payload, err = s.source.List()
		if err != nil {
			s.reject(sess, cmd.Op, proto.StatusDirReadError, fmt.Sprintf("listing failed: %v", err))
			return
		}
	case proto.OpGet:
		payload, err = s.source.Read(cmd.Filename)
		if err != nil {
			s.reject(sess, cmd.Op, proto.StatusFileNotFound,
				fmt.Sprintf("retrieval of %q failed: %v", cmd.Filename, err))
			return
		}
	}

	// Positive status on the control connection. From here on the client
	// expects a data connection.
	if _, err := base.WriteChunk(sess.control, []byte(proto.StatusOK.Token()), timeout); err != nil {
		Logger.Errorf("Session %d: failed to send %v: %v", sess.id, proto.StatusOK, err)
		return
	}

	// Establish the data leg towards the announced port on the peer's host
	host, _, err := net.SplitHostPort(sess.control.RemoteAddr().String())
	if err != nil {
		Logger.Errorf("Session %d: failed to resolve peer host: %v", sess.id, err)
		return
	}

	dataConn, err := s.connector.DialData(ctx, host, cmd.DataPort, s.config)
	if err != nil {
		Logger.Errorf("Session %d: failed to dial data connection to %s port %s: %v",
			sess.id, host, cmd.DataPort, err)
		s.metrics.dataDialFailures.Inc()
		return
	}
	if !sess.setData(dataConn) {
		return
	}

	// Length header first, then the payload in one piece
	header := proto.AppendLengthHeader(nil, int64(len(payload)))
	if _, err := base.WriteChunk(dataConn, header, timeout); err != nil {
		Logger.Errorf("Session %d: failed to send length header: %v", sess.id, err)
		return
	}

	sent, err := base.WriteChunk(dataConn, payload, timeout)
	s.metrics.bytesSent.Add(sent)
	if err != nil || sent < len(payload) {
		// Delivery is at most once: under-delivery is diagnosed, not retried
		Logger.Warningf("Session %d: transfer incomplete, sent %d of %d bytes: %v",
			sess.id, sent, len(payload), err)
		s.metrics.incompleteTransfers.Inc()
		return
	}

	s.metrics.countRequest(cmd.Op, proto.StatusOK)
	Logger.Infof("Session %d: transferred %d bytes", sess.id, len(payload))

	// Await the client's receipt on the control connection. Absence is
	// tolerated, the transfer is already complete.
	if ack, err := base.ReadChunk(sess.control, proto.MaxTokenLen, timeout); err != nil {
		Logger.Debugf("Session %d: no receipt ack: %v", sess.id, err)
	} else {
		Logger.Debugf("Session %d: receipt ack %q", sess.id, ack)
	}
}

// reject answers the control connection with an error status and aborts
// the session
func (s *FileServer) reject(sess *session, op proto.Operation, status proto.Status, reason string) {
	Logger.Warningf("Session %d: %s", sess.id, reason)
	s.metrics.countRequest(op, status)

	timeout := time.Duration(s.config.TimeoutSecond) * time.Second
	if _, err := base.WriteChunk(sess.control, []byte(status.Token()), timeout); err != nil {
		Logger.Errorf("Session %d: failed to send %v: %v", sess.id, status, err)
	}
}
