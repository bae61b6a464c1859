// Package staging manages the local scratch directory a transfer writes its
// intermediate documents to.
package staging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Dir is a private temporary directory. The caller must Remove it on every
// exit path.
type Dir struct {
	path string
}

// New creates a fresh directory under root. An empty root selects the
// system temporary directory.
func New(root, pattern string) (*Dir, error) {
	if root != "" {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("creating staging root: %w", err)
		}
	}
	path, err := os.MkdirTemp(root, pattern)
	if err != nil {
		return nil, fmt.Errorf("creating staging dir: %w", err)
	}
	return &Dir{path: path}, nil
}

// Path returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

// Join returns the path of name inside the directory.
func (d *Dir) Join(name string) string {
	return filepath.Join(d.path, name)
}

// Create creates or truncates name inside the directory.
func (d *Dir) Create(name string) (*os.File, error) {
	return os.Create(d.Join(name))
}

// Open opens name inside the directory for reading.
func (d *Dir) Open(name string) (*os.File, error) {
	return os.Open(d.Join(name))
}

// WriteFile writes data to name inside the directory.
func (d *Dir) WriteFile(name string, data []byte) error {
	return os.WriteFile(d.Join(name), data, 0o644)
}

// ReadFile reads name inside the directory.
func (d *Dir) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(d.Join(name))
}

// CopyFrom writes everything read from r to name inside the directory.
func (d *Dir) CopyFrom(name string, r io.Reader) (int64, error) {
	f, err := d.Create(name)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// Names returns the regular files in the directory, sorted.
func (d *Dir) Names() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Remove deletes the directory and everything in it. It is safe to call
// more than once.
func (d *Dir) Remove() error {
	if err := os.RemoveAll(d.path); err != nil {
		return fmt.Errorf("removing staging dir: %w", err)
	}
	return nil
}
