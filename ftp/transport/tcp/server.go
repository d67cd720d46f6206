package tcp

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/ValentinKolb/fetchd/ftp/common"
	"github.com/ValentinKolb/fetchd/ftp/transport"
	"github.com/ValentinKolb/fetchd/ftp/transport/base"
)

// serverConnector implements the transport.IServerConnector interface for TCP sockets
type serverConnector struct{}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IServerConnector)
// --------------------------------------------------------------------------

func (c *serverConnector) GetName() string {
	return "tcp"
}

func (c *serverConnector) Listen(config common.ServerConfig) (net.Listener, error) {
	// Create TCP socket listener on the wildcard address (dual stack)
	listener, err := net.Listen("tcp", config.Endpoint())
	if err != nil {
		return nil, fmt.Errorf("failed to create TCP socket: %v", err)
	}

	return listener, nil
}

func (c *serverConnector) UpgradeConnection(conn net.Conn, config common.ServerConfig) error {
	return upgradeConn(conn, config.Transport)
}

func (c *serverConnector) DialData(ctx context.Context, host, port string, config common.ServerConfig) (net.Conn, error) {
	address := net.JoinHostPort(host, port)

	// Every attempt resolves and tries all candidate addresses of the host
	// within the per-attempt timeout
	dialer := net.Dialer{Timeout: time.Duration(config.DataDialTimeoutMs) * time.Millisecond}

	conn, err := base.DialWithRetry(ctx, address, func() (net.Conn, error) {
		return dialer.DialContext(ctx, "tcp", address)
	}, config.DataDialRetries)
	if err != nil {
		return nil, err
	}

	if err := upgradeConn(conn, config.Transport); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to upgrade data connection: %v", err)
	}

	return conn, nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// upgradeConn applies performance optimizations to a TCP connection
// using the configured socket tuning values
func upgradeConn(conn net.Conn, cfg common.TransportConfig) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil // Not a TCP connection, nothing to upgrade
	}

	// Disable Nagle's algorithm (TCPNoDelay) if configured
	if err := tcpConn.SetNoDelay(cfg.TCPNoDelay); err != nil {
		return err
	}

	// Set socket write buffer size if configured
	if cfg.WriteBufferSize > 0 {
		if err := tcpConn.SetWriteBuffer(cfg.WriteBufferSize); err != nil {
			return err
		}
	}

	// Set socket read buffer size if configured
	if cfg.ReadBufferSize > 0 {
		if err := tcpConn.SetReadBuffer(cfg.ReadBufferSize); err != nil {
			return err
		}
	}

	// Enable TCP keep-alive if configured
	if cfg.TCPKeepAliveSec > 0 {
		if err := tcpConn.SetKeepAlive(true); err != nil {
			return err
		}

		// Set keep-alive period
		keepAlivePeriod := time.Duration(cfg.TCPKeepAliveSec) * time.Second
		if err := tcpConn.SetKeepAlivePeriod(keepAlivePeriod); err != nil {
			return err
		}
	}

	// Set TCP linger option if explicitly configured. The zero value keeps
	// the OS default: SetLinger(0) would discard undelivered payload with a
	// reset on close.
	if cfg.TCPLingerSec > 0 {
		if err := tcpConn.SetLinger(cfg.TCPLingerSec); err != nil {
			return err
		}
	}

	return nil
}

// --------------------------------------------------------------------------
// Server Connector Factory Method
// --------------------------------------------------------------------------

// NewTCPServerConnector creates a new TCP server connector
func NewTCPServerConnector() transport.IServerConnector {
	return &serverConnector{}
}
