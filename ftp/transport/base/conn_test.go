package base

import (
	"bytes"
	"errors"
	"io"
	"net"
	"testing"
	"time"
)

// --------------------------------------------------------------------------
// Test Helpers
// --------------------------------------------------------------------------

// shortWriter accepts at most chunk bytes per call, exercising the partial
// write handling of SendAll
type shortWriter struct {
	buf   bytes.Buffer
	chunk int
}

func (w *shortWriter) Write(p []byte) (int, error) {
	if len(p) > w.chunk {
		p = p[:w.chunk]
	}
	return w.buf.Write(p)
}

// failingWriter fails with a hard error once limit bytes have been accepted
type failingWriter struct {
	accepted int
	limit    int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	remaining := w.limit - w.accepted
	if len(p) <= remaining {
		w.accepted += len(p)
		return len(p), nil
	}
	w.accepted += remaining
	return remaining, errors.New("connection reset")
}

// stuckWriter accepts nothing without returning an error
type stuckWriter struct{}

func (stuckWriter) Write(p []byte) (int, error) { return 0, nil }

// --------------------------------------------------------------------------
// SendAll / WriteChunk
// --------------------------------------------------------------------------

// TestSendAllCoversPartialWrites tests that SendAll delivers the full
// buffer through a writer that only accepts small chunks
func TestSendAllCoversPartialWrites(t *testing.T) {
	payload := bytes.Repeat([]byte("abcdefgh"), 100)
	w := &shortWriter{chunk: 7}

	n, err := SendAll(w, payload)
	if err != nil {
		t.Fatalf("SendAll failed: %v", err)
	}
	if n != len(payload) {
		t.Errorf("SendAll wrote %d bytes, want %d", n, len(payload))
	}
	if !bytes.Equal(w.buf.Bytes(), payload) {
		t.Error("delivered bytes differ from payload")
	}
}

// TestSendAllReportsDeliveredCount tests that a hard mid-transfer error
// still reports how many bytes went out
func TestSendAllReportsDeliveredCount(t *testing.T) {
	payload := make([]byte, 1000)
	w := &failingWriter{limit: 300}

	n, err := SendAll(w, payload)
	if err == nil {
		t.Fatal("SendAll succeeded against failing writer")
	}
	if n != 300 {
		t.Errorf("SendAll reported %d bytes, want 300", n)
	}
}

// TestSendAllNoProgress tests that a writer accepting nothing does not
// loop forever
func TestSendAllNoProgress(t *testing.T) {
	_, err := SendAll(stuckWriter{}, []byte("data"))
	if !errors.Is(err, io.ErrShortWrite) {
		t.Errorf("expected ErrShortWrite, got %v", err)
	}
}

// TestSendAllEmpty tests the zero-length edge case
func TestSendAllEmpty(t *testing.T) {
	n, err := SendAll(&shortWriter{chunk: 1}, nil)
	if err != nil || n != 0 {
		t.Errorf("SendAll(nil) = (%d, %v), want (0, nil)", n, err)
	}
}

// TestWriteChunk tests the deadline-bounded write against a real pipe
func TestWriteChunk(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	payload := bytes.Repeat([]byte("x"), 4096)

	received := make(chan []byte, 1)
	go func() {
		buf := make([]byte, len(payload))
		if _, err := io.ReadFull(server, buf); err != nil {
			received <- nil
			return
		}
		received <- buf
	}()

	n, err := WriteChunk(client, payload, time.Second)
	if err != nil {
		t.Fatalf("WriteChunk failed: %v", err)
	}
	if n != len(payload) {
		t.Errorf("WriteChunk wrote %d bytes, want %d", n, len(payload))
	}
	if got := <-received; !bytes.Equal(got, payload) {
		t.Error("received bytes differ from payload")
	}
}

// --------------------------------------------------------------------------
// ReadChunk
// --------------------------------------------------------------------------

// TestReadChunkSingleRead tests that one peer write arrives as one chunk
func TestReadChunkSingleRead(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go client.Write([]byte("-l 51000"))

	got, err := ReadChunk(server, 512, time.Second)
	if err != nil {
		t.Fatalf("ReadChunk failed: %v", err)
	}
	if string(got) != "-l 51000" {
		t.Errorf("ReadChunk = %q, want %q", got, "-l 51000")
	}
}

// TestReadChunkOversize tests that a chunk above the limit is rejected
func TestReadChunkOversize(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	go func() {
		client.Write(make([]byte, 600))
		client.Close()
	}()

	_, err := ReadChunk(server, 512, time.Second)
	if !errors.Is(err, ErrOversizedRead) {
		t.Errorf("expected ErrOversizedRead, got %v", err)
	}
}

// TestReadChunkDeadline tests that a silent peer trips the read deadline
func TestReadChunkDeadline(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	start := time.Now()
	_, err := ReadChunk(server, 512, 50*time.Millisecond)
	if err == nil {
		t.Fatal("ReadChunk succeeded without data")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("ReadChunk blocked for %s despite deadline", elapsed)
	}
}

// TestReadChunkClosedPeer tests that a closed peer yields EOF
func TestReadChunkClosedPeer(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	client.Close()

	if _, err := ReadChunk(server, 512, time.Second); !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF, got %v", err)
	}
}
