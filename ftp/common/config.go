package common

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// --------------------------------------------------------------------------
// Port boundaries (process contract)
// --------------------------------------------------------------------------

const (
	// MinPort is the lowest port the server or a data connection may use.
	// Ports below this are reserved for system services.
	MinPort = 1024

	// MaxPort is the highest valid TCP port.
	MaxPort = 65535

	// AdvisoryMinPort is the recommended lower bound for the listen port.
	// Ports below it frequently collide with registered services, so
	// validation only warns about them.
	AdvisoryMinPort = 50000
)

// --------------------------------------------------------------------------
// Transport tuning configuration (shared by server and client side)
// --------------------------------------------------------------------------

// TransportConfig holds socket-level tuning options applied to accepted and
// dialed TCP connections.
type TransportConfig struct {
	// TCPNoDelay disables Nagle's algorithm when true
	TCPNoDelay bool
	// WriteBufferSize sets the socket write buffer size in bytes (0 = OS default)
	WriteBufferSize int
	// ReadBufferSize sets the socket read buffer size in bytes (0 = OS default)
	ReadBufferSize int
	// TCPKeepAliveSec enables keep-alive probes with the given period (0 = off)
	TCPKeepAliveSec int
	// TCPLingerSec sets the linger timeout on close (0 or negative = OS default)
	TCPLingerSec int
}

// --------------------------------------------------------------------------
// Server configuration struct
// --------------------------------------------------------------------------

// SourceBackend selects the payload source implementation the server serves
// files from.
type SourceBackend string

const (
	SourceBackendDir SourceBackend = "dir"
	SourceBackendS3  SourceBackend = "s3"
)

// S3Config holds the connection parameters for the s3 source backend.
type S3Config struct {
	Bucket         string
	Region         string
	Endpoint       string
	KeyPrefix      string
	ForcePathStyle bool
}

// ServerConfig holds all configuration parameters for the file server.
type ServerConfig struct {
	// Port is the control connection listen port
	Port int

	// Payload source parameters
	Source  SourceBackend
	RootDir string
	S3      S3Config

	// Session parameters
	TimeoutSecond int64
	MaxSessions   int

	// Data connection dialing parameters
	DataDialRetries   int
	DataDialTimeoutMs int64

	// Socket tuning
	Transport TransportConfig

	// Observability settings
	MetricsEndpoint string
	Watch           bool

	// Logging configuration
	LogLevel string
}

// Endpoint returns the wildcard listen address for the control port.
func (c *ServerConfig) Endpoint() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate checks the configuration and returns all violations at once so
// the user can fix them in a single pass.
func (c *ServerConfig) Validate() error {
	var result *multierror.Error

	if c.Port < MinPort || c.Port > MaxPort {
		result = multierror.Append(result, fmt.Errorf("port %d out of range [%d, %d]", c.Port, MinPort, MaxPort))
	}

	switch c.Source {
	case SourceBackendDir:
		if c.RootDir == "" {
			result = multierror.Append(result, fmt.Errorf("root directory must be set for the %s backend", SourceBackendDir))
		}
	case SourceBackendS3:
		if c.S3.Bucket == "" {
			result = multierror.Append(result, fmt.Errorf("bucket must be set for the %s backend", SourceBackendS3))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("unknown source backend %q (must be %q or %q)", c.Source, SourceBackendDir, SourceBackendS3))
	}

	if c.MaxSessions < 1 {
		result = multierror.Append(result, fmt.Errorf("max sessions must be at least 1, got %d", c.MaxSessions))
	}

	// A zero timeout would disable every deadline, letting a silent peer
	// hold a session slot indefinitely
	if c.TimeoutSecond < 1 {
		result = multierror.Append(result, fmt.Errorf("timeout must be at least 1 second, got %d", c.TimeoutSecond))
	}

	if c.DataDialRetries < 1 {
		result = multierror.Append(result, fmt.Errorf("data dial retries must be at least 1, got %d", c.DataDialRetries))
	}

	if c.DataDialTimeoutMs < 1 {
		result = multierror.Append(result, fmt.Errorf("data dial timeout must be at least 1 ms, got %d", c.DataDialTimeoutMs))
	}

	if !validLogLevel(c.LogLevel) {
		result = multierror.Append(result, fmt.Errorf("invalid log level %q (must be one of debug, info, warn, error)", c.LogLevel))
	}

	return result.ErrorOrNil()
}

// Advisories returns non-fatal warnings about the configuration. The caller
// is expected to log them and continue.
func (c *ServerConfig) Advisories() []string {
	var advisories []string

	if c.Port < AdvisoryMinPort {
		advisories = append(advisories, fmt.Sprintf("port %d is below %d, a port number above %d is recommended", c.Port, AdvisoryMinPort, AdvisoryMinPort))
	}

	return advisories
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// Server settings
	addSection("File Server")
	addField("Port", strconv.Itoa(c.Port))
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Max Sessions", strconv.Itoa(c.MaxSessions))

	// Payload source
	addSection("Payload Source")
	addField("Backend", string(c.Source))
	switch c.Source {
	case SourceBackendS3:
		addField("Bucket", c.S3.Bucket)
		addField("Region", c.S3.Region)
		if c.S3.Endpoint != "" {
			addField("Endpoint", c.S3.Endpoint)
		}
		if c.S3.KeyPrefix != "" {
			addField("Key Prefix", c.S3.KeyPrefix)
		}
		addField("Force Path Style", fmt.Sprintf("%t", c.S3.ForcePathStyle))
	default:
		addField("Root Directory", c.RootDir)
		addField("Watch", fmt.Sprintf("%t", c.Watch))
	}

	// Data connection
	addSection("Data Connection")
	addField("Dial Retries", strconv.Itoa(c.DataDialRetries))
	addField("Dial Timeout", fmt.Sprintf("%d ms", c.DataDialTimeoutMs))

	// Socket tuning
	addSection("Socket Tuning")
	addField("TCP No Delay", fmt.Sprintf("%t", c.Transport.TCPNoDelay))
	addField("Write Buffer Size", strconv.Itoa(c.Transport.WriteBufferSize))
	addField("Read Buffer Size", strconv.Itoa(c.Transport.ReadBufferSize))
	addField("TCP Keep Alive", fmt.Sprintf("%d sec", c.Transport.TCPKeepAliveSec))
	addField("TCP Linger", fmt.Sprintf("%d sec", c.Transport.TCPLingerSec))

	// Observability
	if c.MetricsEndpoint != "" {
		addSection("Metrics")
		addField("Endpoint", c.MetricsEndpoint)
	}

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

// ClientConfig holds all configuration parameters for the file client.
type ClientConfig struct {
	// Endpoint is the server control address (host:port)
	Endpoint string

	// DataPort is the local port the client listens on for the data
	// connection. Zero selects an ephemeral port automatically.
	DataPort int

	// TimeoutSecond bounds every network step of a request
	TimeoutSecond int

	// Logging configuration
	LogLevel string
}

// Validate checks the client configuration and returns all violations at once.
func (c *ClientConfig) Validate() error {
	var result *multierror.Error

	if c.Endpoint == "" {
		result = multierror.Append(result, fmt.Errorf("no server endpoint provided"))
	}

	if c.DataPort != 0 && (c.DataPort < MinPort || c.DataPort > MaxPort) {
		result = multierror.Append(result, fmt.Errorf("data port %d out of range [%d, %d] (or 0 for automatic)", c.DataPort, MinPort, MaxPort))
	}

	if c.TimeoutSecond < 1 {
		result = multierror.Append(result, fmt.Errorf("timeout must be at least 1 second, got %d", c.TimeoutSecond))
	}

	if !validLogLevel(c.LogLevel) {
		result = multierror.Append(result, fmt.Errorf("invalid log level %q (must be one of debug, info, warn, error)", c.LogLevel))
	}

	return result.ErrorOrNil()
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General client settings
	addSection("Client Configuration")
	addField("Endpoint", c.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	if c.DataPort == 0 {
		addField("Data Port", "automatic")
	} else {
		addField("Data Port", strconv.Itoa(c.DataPort))
	}

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}
