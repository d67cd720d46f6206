package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ValentinKolb/fetchd/ftp/common"
	"github.com/ValentinKolb/fetchd/ftp/transport"
	"github.com/ValentinKolb/fetchd/lib/source"
	"github.com/VictoriaMetrics/metrics"
	"github.com/gorilla/handlers"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"

	_ "net/http/pprof"
)

var Logger = logger.GetLogger("ftp/server")

// FileServer serves the two-connection file retrieval protocol: it accepts
// control connections, answers one command per connection and delivers the
// payload over a separately dialed data connection.
type FileServer struct {
	config    common.ServerConfig
	connector transport.IServerConnector
	source    source.ISource

	listener      net.Listener
	ready         chan struct{}
	sessions      *xsync.MapOf[uint64, *session]
	nextSessionID uint64

	metrics *serverMetrics
}

// NewFileServer creates a new file server
// It takes a config, transport connector and payload source as parameters
//
// Usage:
//
//	s := server.NewFileServer(
//		config,
//		tcp.NewTCPServerConnector(),
//		src,
//	)
//
//	if err := s.Serve(ctx); err != nil {
//		panic(err)
//	}
func NewFileServer(config common.ServerConfig, connector transport.IServerConnector, src source.ISource) *FileServer {
	sessions := xsync.NewMapOf[uint64, *session]()

	Logger.Infof("Created file server")
	Logger.Infof(config.String())

	return &FileServer{
		config:    config,
		connector: connector,
		source:    src,
		ready:     make(chan struct{}),
		sessions:  sessions,
		metrics: newServerMetrics(func() float64 {
			return float64(sessions.Size())
		}),
	}
}

// Addr returns the control listener address. It blocks until the listener
// is bound, so callers can start Serve in a goroutine and immediately ask
// for the effective port.
func (s *FileServer) Addr() net.Addr {
	<-s.ready
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve initializes the server and runs the accept loop until the context
// is cancelled. Sessions run concurrently, bounded by MaxSessions. On
// cancellation the listener is closed, in-flight sessions get a drain
// window and the remaining ones are cut. Returns nil on graceful shutdown.
func (s *FileServer) Serve(ctx context.Context) error {
	common.InitLoggers(s.config.LogLevel)

	listener, err := s.connector.Listen(s.config)
	if err != nil {
		close(s.ready)
		return fmt.Errorf("failed to start control listener: %v", err)
	}
	s.listener = listener
	close(s.ready)

	for _, warning := range s.config.Advisories() {
		Logger.Warningf(warning)
	}

	// Optional observability sidecars
	if s.config.MetricsEndpoint != "" {
		go s.serveMetrics(ctx)
	}
	if s.config.Watch && s.config.Source == common.SourceBackendDir {
		go s.watchRoot(ctx)
	}

	// Unblock Accept once the context is cancelled
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	Logger.Infof("Serving %s source on %s via %s", s.config.Source, listener.Addr(), s.connector.GetName())

	// Counting semaphore bounding concurrent sessions
	sessionSemaphore := make(chan struct{}, s.config.MaxSessions)
	var wg sync.WaitGroup

acceptLoop:
	for {
		conn, err := listener.Accept()
		if err != nil {
			// Case shutdown: the listener was closed by the context watcher
			if ctx.Err() != nil {
				break
			}
			Logger.Errorf("Accept error: %v", err)
			continue
		}

		// Acquire a session slot (blocks while MaxSessions sessions run)
		select {
		case sessionSemaphore <- struct{}{}:
		case <-ctx.Done():
			conn.Close()
			break acceptLoop
		}

		wg.Add(1)
		go func() {
			defer func() {
				<-sessionSemaphore
				wg.Done()
			}()
			s.handleConnection(ctx, conn)
		}()
	}

	s.drainSessions(&wg)
	Logger.Infof("Server stopped")
	return nil
}

// drainSessions waits for in-flight sessions to finish their cycle and
// cuts their connections once the drain window is over
func (s *FileServer) drainSessions(wg *sync.WaitGroup) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	drainTimeout := time.Duration(s.config.TimeoutSecond) * time.Second
	select {
	case <-done:
	case <-time.After(drainTimeout):
		Logger.Warningf("Drain window elapsed, closing %d open sessions", s.sessions.Size())
		s.sessions.Range(func(id uint64, sess *session) bool {
			sess.close()
			return true
		})
		<-done
	}
}

// serveMetrics exposes Prometheus metrics and pprof on the configured side
// endpoint until the context is cancelled
func (s *FileServer) serveMetrics(ctx context.Context) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})
	// pprof registers itself on the default mux
	mux.Handle("/debug/", http.DefaultServeMux)

	var handler http.Handler = mux
	if strings.ToLower(s.config.LogLevel) == "debug" {
		handler = handlers.CombinedLoggingHandler(os.Stdout, mux)
	}

	srv := &http.Server{Addr: s.config.MetricsEndpoint, Handler: handler}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	Logger.Infof("Serving metrics on %s", s.config.MetricsEndpoint)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		Logger.Errorf("Metrics endpoint failed: %v", err)
	}
}
