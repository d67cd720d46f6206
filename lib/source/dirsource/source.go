package dirsource

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/ValentinKolb/fetchd/lib/source"
	"github.com/spf13/afero"
)

// dirSource implements the source.ISource interface on top of a single
// directory of an afero filesystem
type dirSource struct {
	fs   afero.Fs
	root string
}

// --------------------------------------------------------------------------
// Interface Methods (docu see source.ISource)
// --------------------------------------------------------------------------

func (s *dirSource) List() ([]byte, error) {
	entries, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		return nil, source.NewError(source.RetCListFailed, fmt.Sprintf("failed to read directory %s: %v", s.root, err))
	}

	var listing []byte
	for _, entry := range entries {
		// Only regular files are served, directories and specials are skipped
		if !entry.Mode().IsRegular() {
			continue
		}
		listing = append(listing, entry.Name()...)
		listing = append(listing, '\n')
	}

	if len(listing) == 0 {
		return append([]byte(nil), source.EmptyListing...), nil
	}

	return listing, nil
}

func (s *dirSource) Read(name string) ([]byte, error) {
	// The name is joined to the root without further sanitization, so
	// relative names can escape the root. Serving only trusted directories
	// to trusted clients is a deployment concern.
	path := filepath.Join(s.root, name)

	info, err := s.fs.Stat(path)
	if err != nil {
		return nil, source.NewError(source.RetCNotFound, fmt.Sprintf("failed to stat %s: %v", path, err))
	}
	if !info.Mode().IsRegular() {
		return nil, source.NewError(source.RetCNotFound, fmt.Sprintf("%s is not a regular file", path))
	}

	f, err := s.fs.Open(path)
	if err != nil {
		return nil, source.NewError(source.RetCNotFound, fmt.Sprintf("failed to open %s: %v", path, err))
	}
	defer f.Close()

	// Read exactly the stated size so the length header matches the payload
	data := make([]byte, info.Size())
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, source.NewError(source.RetCNotFound, fmt.Sprintf("failed to read %s: %v", path, err))
	}

	return data, nil
}

func (s *dirSource) Close() error {
	return nil
}

// --------------------------------------------------------------------------
// Source Factory Methods
// --------------------------------------------------------------------------

// NewFileSystemSource creates a source serving the regular files directly
// under root on the given filesystem.
func NewFileSystemSource(fs afero.Fs, root string) (source.ISource, error) {
	info, err := fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open source directory %s: %v", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source path %s is not a directory", root)
	}

	return &dirSource{fs: fs, root: root}, nil
}

// NewDirSource creates a source serving root on the OS filesystem.
func NewDirSource(root string) (source.ISource, error) {
	return NewFileSystemSource(afero.NewOsFs(), root)
}
