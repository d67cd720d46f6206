package transport

import (
	"context"
	"net"

	"github.com/ValentinKolb/fetchd/ftp/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// IServerConnector is the interface for the server side of the transport
// layer. It covers both connections the protocol uses: the passive control
// listener and the actively dialed data connection.
type IServerConnector interface {
	// Listen creates the control listener bound to the configured port
	Listen(config common.ServerConfig) (net.Listener, error)

	// UpgradeConnection applies socket tuning to an accepted control connection
	UpgradeConnection(conn net.Conn, config common.ServerConfig) error

	// DialData establishes the data connection to the given host and port.
	// The host is the control connection's peer address, the port the one
	// announced in the client's command. Implementations retry with backoff
	// until the context is cancelled or the configured attempts are
	// exhausted.
	DialData(ctx context.Context, host, port string, config common.ServerConfig) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "tcp")
	GetName() string
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IClientConnector is the interface for the client side of the transport
// layer. One request uses one control connection and one data listener.
type IClientConnector interface {
	// Connect dials the server's control endpoint
	Connect(config common.ClientConfig) (net.Conn, error)

	// ListenData opens the local listener the server dials the data
	// connection back to. Port zero selects an ephemeral port.
	ListenData(port int) (net.Listener, error)

	// GetName returns the name of the transport type (e.g., "tcp")
	GetName() string
}
