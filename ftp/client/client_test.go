package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/ValentinKolb/fetchd/ftp/common"
	"github.com/ValentinKolb/fetchd/ftp/proto"
	"github.com/ValentinKolb/fetchd/ftp/server"
	"github.com/ValentinKolb/fetchd/ftp/transport/tcp"
	"github.com/ValentinKolb/fetchd/lib/source/dirsource"
	"github.com/spf13/afero"
)

// startServer runs a file server over an in-memory directory containing
// the given files and returns its control endpoint
func startServer(t *testing.T, files map[string][]byte) string {
	t.Helper()

	cfg := common.ServerConfig{
		Port:              0,
		Source:            common.SourceBackendDir,
		RootDir:           "/srv/files",
		TimeoutSecond:     2,
		MaxSessions:       4,
		DataDialRetries:   5,
		DataDialTimeoutMs: 200,
		LogLevel:          "error",
	}

	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll(cfg.RootDir, 0o755); err != nil {
		t.Fatalf("failed to create root: %v", err)
	}
	for name, content := range files {
		if err := afero.WriteFile(fs, filepath.Join(cfg.RootDir, name), content, 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	src, err := dirsource.NewFileSystemSource(fs, cfg.RootDir)
	if err != nil {
		t.Fatalf("failed to create source: %v", err)
	}

	srv := server.NewFileServer(cfg, tcp.NewTCPServerConnector(), src)

	ctx, cancel := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case <-serveErr:
		case <-time.After(5 * time.Second):
			t.Error("server did not stop within the drain window")
		}
	})

	addr := srv.Addr()
	if addr == nil {
		t.Fatal("server failed to start")
	}
	return fmt.Sprintf("127.0.0.1:%d", addr.(*net.TCPAddr).Port)
}

// newClient creates a client for the given endpoint with an automatic
// data port
func newClient(t *testing.T, endpoint string) IFileClient {
	t.Helper()

	c, err := NewFileClient(common.ClientConfig{
		Endpoint:      endpoint,
		TimeoutSecond: 3,
		LogLevel:      "error",
	}, tcp.NewTCPClientConnector())
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

// TestClientGet tests the complete retrieval cycle through the client
func TestClientGet(t *testing.T) {
	content := []byte("The quick brown fox jumps over the lazy dog")
	endpoint := startServer(t, map[string][]byte{"report.txt": content})

	c := newClient(t, endpoint)

	data, err := c.Get("report.txt")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Errorf("Get returned %q, want %q", data, content)
	}
}

// TestClientListNames tests that the listing round trip yields exactly
// the served file names
func TestClientListNames(t *testing.T) {
	endpoint := startServer(t, map[string][]byte{
		"a.txt": []byte("aaa"),
		"b.txt": []byte("bb"),
		"c.bin": {0x00, 0x01},
	})

	c := newClient(t, endpoint)

	names, err := c.ListNames()
	if err != nil {
		t.Fatalf("ListNames failed: %v", err)
	}

	sort.Strings(names)
	want := []string{"a.txt", "b.txt", "c.bin"}
	if len(names) != len(want) {
		t.Fatalf("ListNames = %v, want %v", names, want)
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("ListNames = %v, want %v", names, want)
			break
		}
	}
}

// TestClientListNamesWithSpaces tests that a file name containing spaces
// stays one listing entry
func TestClientListNamesWithSpaces(t *testing.T) {
	endpoint := startServer(t, map[string][]byte{
		"annual report.txt": []byte("hello"),
	})

	c := newClient(t, endpoint)

	names, err := c.ListNames()
	if err != nil {
		t.Fatalf("ListNames failed: %v", err)
	}
	if len(names) != 1 || names[0] != "annual report.txt" {
		t.Errorf("ListNames = %v, want [\"annual report.txt\"]", names)
	}
}

// TestClientListEmpty tests that the placeholder listing parses to no names
func TestClientListEmpty(t *testing.T) {
	endpoint := startServer(t, nil)

	c := newClient(t, endpoint)

	listing, err := c.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listing) != 1 {
		t.Errorf("empty listing payload has length %d, want 1", len(listing))
	}

	names, err := c.ListNames()
	if err != nil {
		t.Fatalf("ListNames failed: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("ListNames on empty server = %v, want none", names)
	}
}

// TestClientGetMissing tests that a missing file surfaces as a StatusError
// carrying the FILE NOT FOUND token
func TestClientGetMissing(t *testing.T) {
	endpoint := startServer(t, map[string][]byte{"report.txt": []byte("hello")})

	c := newClient(t, endpoint)

	_, err := c.Get("missing.txt")
	if err == nil {
		t.Fatal("Get of missing file succeeded")
	}

	var statusErr *proto.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Get returned %T, want *proto.StatusError", err)
	}
	if statusErr.Status != proto.StatusFileNotFound {
		t.Errorf("status = %v, want FILE NOT FOUND", statusErr.Status)
	}
}

// TestClientGetEmptyName tests the client-side guard against empty names
func TestClientGetEmptyName(t *testing.T) {
	c := newClient(t, "localhost:1")

	if _, err := c.Get(""); err == nil {
		t.Error("Get with empty name succeeded")
	}
}

// TestClientLargePayload tests a transfer spanning many network reads
func TestClientLargePayload(t *testing.T) {
	content := bytes.Repeat([]byte("0123456789abcdef"), 64*1024) // 1 MiB
	endpoint := startServer(t, map[string][]byte{"big.bin": content})

	c := newClient(t, endpoint)

	data, err := c.Get("big.bin")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Errorf("large payload corrupted: got %d bytes, want %d", len(data), len(content))
	}
}
