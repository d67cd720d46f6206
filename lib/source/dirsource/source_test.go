package dirsource

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ValentinKolb/fetchd/lib/source"
	sourcetesting "github.com/ValentinKolb/fetchd/lib/source/testing"
	"github.com/spf13/afero"
)

// memFactory builds a source over an in-memory filesystem
func memFactory(t *testing.T, files map[string][]byte) source.ISource {
	fs := afero.NewMemMapFs()
	root := "/srv/files"
	if err := fs.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("failed to create root: %v", err)
	}

	for name, content := range files {
		if err := afero.WriteFile(fs, filepath.Join(root, name), content, 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	src, err := NewFileSystemSource(fs, root)
	if err != nil {
		t.Fatalf("failed to create source: %v", err)
	}
	return src
}

// osFactory builds a source over a temporary directory on the OS filesystem
func osFactory(t *testing.T, files map[string][]byte) source.ISource {
	root := t.TempDir()

	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), content, 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	src, err := NewDirSource(root)
	if err != nil {
		t.Fatalf("failed to create source: %v", err)
	}
	return src
}

func Test(t *testing.T) {
	sourcetesting.RunSourceTests(t, "MemMapFs", memFactory)
	sourcetesting.RunSourceTests(t, "OsFs", osFactory)
}

// TestListSkipsDirectories tests that subdirectories never appear in a
// listing
func TestListSkipsDirectories(t *testing.T) {
	fs := afero.NewMemMapFs()
	root := "/srv/files"
	fs.MkdirAll(filepath.Join(root, "subdir"), 0o755)
	afero.WriteFile(fs, filepath.Join(root, "report.txt"), []byte("hello"), 0o644)
	afero.WriteFile(fs, filepath.Join(root, "subdir", "nested.txt"), []byte("nested"), 0o644)

	src, err := NewFileSystemSource(fs, root)
	if err != nil {
		t.Fatalf("failed to create source: %v", err)
	}
	defer src.Close()

	listing, err := src.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	got := string(listing)
	if strings.Contains(got, "subdir") {
		t.Errorf("listing %q contains a directory", got)
	}
	if got != "report.txt\n" {
		t.Errorf("listing = %q, want %q", got, "report.txt\n")
	}
}

// TestListIsSorted tests that listings enumerate names in lexical order
func TestListIsSorted(t *testing.T) {
	src := memFactory(t, map[string][]byte{
		"zebra.txt": []byte("z"),
		"alpha.txt": []byte("a"),
		"mango.txt": []byte("m"),
	})
	defer src.Close()

	listing, err := src.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if string(listing) != "alpha.txt\nmango.txt\nzebra.txt\n" {
		t.Errorf("listing not sorted: %q", listing)
	}
}

// TestReadDirectory tests that reading a directory name reports NotFound
func TestReadDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	root := "/srv/files"
	fs.MkdirAll(filepath.Join(root, "subdir"), 0o755)

	src, err := NewFileSystemSource(fs, root)
	if err != nil {
		t.Fatalf("failed to create source: %v", err)
	}
	defer src.Close()

	_, err = src.Read("subdir")
	if err == nil {
		t.Fatal("Read of a directory succeeded")
	}
	if code := source.CodeOf(err); code != source.RetCNotFound {
		t.Errorf("Read of a directory returned code %d, want RetCNotFound", code)
	}
}

// TestNewFileSystemSourceValidatesRoot tests factory failures for missing
// or non-directory roots
func TestNewFileSystemSourceValidatesRoot(t *testing.T) {
	fs := afero.NewMemMapFs()

	if _, err := NewFileSystemSource(fs, "/missing"); err == nil {
		t.Error("source created for missing directory")
	}

	afero.WriteFile(fs, "/file.txt", []byte("x"), 0o644)
	if _, err := NewFileSystemSource(fs, "/file.txt"); err == nil {
		t.Error("source created for a regular file root")
	}
}
