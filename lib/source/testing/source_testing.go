package testing

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ValentinKolb/fetchd/lib/source"
)

// SourceFactory is a function that creates a new source instance serving
// exactly the given files (name to contents)
type SourceFactory func(t *testing.T, files map[string][]byte) source.ISource

// RunSourceTests runs the shared test suite for an ISource implementation.
func RunSourceTests(t *testing.T, name string, factory SourceFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("List", func(t *testing.T) {
			testList(t, factory)
		})

		t.Run("ListEmpty", func(t *testing.T) {
			testListEmpty(t, factory)
		})

		t.Run("Read", func(t *testing.T) {
			testRead(t, factory)
		})

		t.Run("ReadMissing", func(t *testing.T) {
			testReadMissing(t, factory)
		})

		t.Run("ReadEmptyFile", func(t *testing.T) {
			testReadEmptyFile(t, factory)
		})

		t.Run("ReadBinary", func(t *testing.T) {
			testReadBinary(t, factory)
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// listedNames parses a listing payload into its file names
func listedNames(listing []byte) []string {
	return strings.Fields(string(listing))
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testList(t *testing.T, factory SourceFactory) {
	src := factory(t, map[string][]byte{
		"report.txt": []byte("hello"),
		"data.bin":   {0x00, 0x01},
		"notes.md":   []byte("# notes\n"),
	})
	defer src.Close()

	listing, err := src.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if !bytes.HasSuffix(listing, []byte("\n")) {
		t.Errorf("listing %q does not end with a newline", listing)
	}

	names := listedNames(listing)
	if len(names) != 3 {
		t.Fatalf("expected 3 names, got %v", names)
	}

	want := map[string]bool{"report.txt": true, "data.bin": true, "notes.md": true}
	for _, name := range names {
		if !want[name] {
			t.Errorf("unexpected name %q in listing", name)
		}
		delete(want, name)
	}
	for name := range want {
		t.Errorf("name %q missing from listing", name)
	}
}

func testListEmpty(t *testing.T, factory SourceFactory) {
	src := factory(t, nil)
	defer src.Close()

	listing, err := src.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	// The placeholder keeps an empty listing distinguishable from a
	// zero-length payload
	if !bytes.Equal(listing, source.EmptyListing) {
		t.Errorf("empty source listing = %q, want %q", listing, source.EmptyListing)
	}
	if len(listing) != 1 {
		t.Errorf("empty source listing has length %d, want 1", len(listing))
	}
}

func testRead(t *testing.T, factory SourceFactory) {
	content := []byte("The quick brown fox jumps over the lazy dog")
	src := factory(t, map[string][]byte{
		"report.txt": content,
		"other.txt":  []byte("other"),
	})
	defer src.Close()

	data, err := src.Read("report.txt")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Errorf("Read returned %q, want %q", data, content)
	}
}

func testReadMissing(t *testing.T, factory SourceFactory) {
	src := factory(t, map[string][]byte{
		"report.txt": []byte("hello"),
	})
	defer src.Close()

	_, err := src.Read("missing.txt")
	if err == nil {
		t.Fatal("Read of missing file succeeded")
	}
	if code := source.CodeOf(err); code != source.RetCNotFound {
		t.Errorf("Read of missing file returned code %d, want RetCNotFound", code)
	}
}

func testReadEmptyFile(t *testing.T, factory SourceFactory) {
	src := factory(t, map[string][]byte{
		"empty.txt": {},
	})
	defer src.Close()

	data, err := src.Read("empty.txt")
	if err != nil {
		t.Fatalf("Read of empty file failed: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("Read of empty file returned %d bytes", len(data))
	}
}

func testReadBinary(t *testing.T, factory SourceFactory) {
	content := make([]byte, 256)
	for i := range content {
		content[i] = byte(i)
	}

	src := factory(t, map[string][]byte{
		"data.bin": content,
	})
	defer src.Close()

	data, err := src.Read("data.bin")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Error("binary contents corrupted in transfer")
	}
}
