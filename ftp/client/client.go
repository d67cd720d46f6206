package client

import (
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/ValentinKolb/fetchd/ftp/common"
	"github.com/ValentinKolb/fetchd/ftp/proto"
	"github.com/ValentinKolb/fetchd/ftp/transport"
	"github.com/ValentinKolb/fetchd/ftp/transport/base"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("ftp/client")

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IFileClient is the interface for retrieving listings and files from a
// file server. Every call runs one complete protocol cycle on fresh
// connections, so a single client is safe for concurrent use.
type IFileClient interface {
	// List retrieves the raw listing payload from the server.
	List() (listing []byte, err error)
	// ListNames retrieves the listing and parses it into file names.
	ListNames() (names []string, err error)
	// Get retrieves the complete contents of the named file.
	Get(name string) (data []byte, err error)
}

// --------------------------------------------------------------------------
// Client Factory Method
// --------------------------------------------------------------------------

// NewFileClient creates a new file client
// The function takes a config and a transport connector as parameters
func NewFileClient(config common.ClientConfig, connector transport.IClientConnector) (IFileClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	Logger.Debugf("Created file client for %s", config.Endpoint)

	return &fileClient{
		config:    config,
		connector: connector,
	}, nil
}

type fileClient struct {
	config    common.ClientConfig
	connector transport.IClientConnector
}

// --------------------------------------------------------------------------
// Interface Methods (docu see IFileClient)
// --------------------------------------------------------------------------

func (c *fileClient) List() ([]byte, error) {
	return c.request(proto.Command{Op: proto.OpList})
}

func (c *fileClient) ListNames() ([]string, error) {
	listing, err := c.List()
	if err != nil {
		return nil, err
	}

	// One name per line; names may contain spaces. The empty-listing
	// placeholder is all whitespace and parses to no names.
	var names []string
	for _, name := range strings.Split(string(listing), "\n") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

func (c *fileClient) Get(name string) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("no filename given")
	}
	return c.request(proto.Command{Op: proto.OpGet, Filename: name})
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// request runs one complete request cycle: data listener first, then the
// command on a fresh control connection, the status, the transfer and the
// receipt ack. Failed requests are never retried.
func (c *fileClient) request(cmd proto.Command) ([]byte, error) {
	timeout := time.Duration(c.config.TimeoutSecond) * time.Second

	// The data listener opens before the command announces its port, so
	// the server's dial back finds it listening
	listener, err := c.connector.ListenData(c.config.DataPort)
	if err != nil {
		return nil, fmt.Errorf("failed to open data listener: %v", err)
	}
	defer listener.Close()

	// Announce the effective port, which matters for automatic selection
	_, port, err := net.SplitHostPort(listener.Addr().String())
	if err != nil {
		return nil, fmt.Errorf("failed to determine data port: %v", err)
	}
	cmd.DataPort = port

	control, err := c.connector.Connect(c.config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %v", c.config.Endpoint, err)
	}
	defer control.Close()

	if _, err := base.WriteChunk(control, cmd.Format(), timeout); err != nil {
		return nil, fmt.Errorf("failed to send command: %v", err)
	}

	// Single best-effort read for the status token
	raw, err := base.ReadChunk(control, proto.MaxTokenLen, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to read status: %v", err)
	}

	status := proto.ParseStatus(raw)
	if status != proto.StatusOK {
		return nil, &proto.StatusError{Status: status}
	}

	// Accept the server's data connection under a deadline
	if l, ok := listener.(interface{ SetDeadline(time.Time) error }); ok && timeout > 0 {
		l.SetDeadline(time.Now().Add(timeout))
	}
	dataConn, err := listener.Accept()
	if err != nil {
		return nil, fmt.Errorf("no data connection from server: %v", err)
	}
	defer dataConn.Close()

	payload, err := readTransfer(dataConn, timeout)
	if err != nil {
		return nil, err
	}

	// Receipt ack on the control connection, best effort
	if _, err := base.WriteChunk(control, []byte(proto.AckReceived), timeout); err != nil {
		Logger.Debugf("Failed to send receipt ack: %v", err)
	}

	Logger.Debugf("%v: received %d bytes", cmd, len(payload))
	return payload, nil
}

// readTransfer decodes one transfer from the data connection: the length
// header followed by exactly that many payload bytes
func readTransfer(conn net.Conn, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, fmt.Errorf("failed to set read deadline: %v", err)
		}
	}

	length, err := proto.ReadLengthHeader(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to read length header: %v", err)
	}

	payload := make([]byte, length)
	if n, err := io.ReadFull(conn, payload); err != nil {
		return nil, fmt.Errorf("transfer truncated after %d of %d bytes: %v", n, length, err)
	}

	return payload, nil
}
