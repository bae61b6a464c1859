// Package diskstore implements a disk-based filesystem storage backend.
//
// Folders map to directories under the root and objects to files:
// <root>/<parent>/<name>.
package diskstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arman-k/stegdrive/internal/store"
)

// TempPrefix starts the names of files Create is still writing. List hides
// them, so folder and object names may not use it.
const TempPrefix = ".tmp-"

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is a disk-based filesystem storage backend.
type Store struct {
	root string
}

// New creates a new disk store rooted at the given directory.
// The directory must exist.
func New(root string) (*Store, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	return &Store{root: root}, nil
}

// Root returns the directory the store is rooted at.
func (s *Store) Root() string {
	return s.root
}

// Create writes content to <root>/<parent>/<name>. The file is written
// under a temporary name and renamed into place.
func (s *Store) Create(ctx context.Context, parent, name string, content []byte) (store.Object, error) {
	// Check for cancellation before starting I/O.
	if err := ctx.Err(); err != nil {
		return store.Object{}, err
	}
	if err := store.CheckCreate(parent, name); err != nil {
		return store.Object{}, err
	}
	if strings.HasPrefix(parent, TempPrefix) || strings.HasPrefix(name, TempPrefix) {
		return store.Object{}, fmt.Errorf("%w: %q uses the reserved prefix %q", store.ErrInvalidName, store.Join(parent, name), TempPrefix)
	}

	dir := filepath.Join(s.root, parent)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return store.Object{}, fmt.Errorf("creating folder: %w", err)
	}

	f, err := os.CreateTemp(dir, TempPrefix+name+"-*")
	if err != nil {
		return store.Object{}, fmt.Errorf("creating object: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(tmp)
		return store.Object{}, fmt.Errorf("writing object: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return store.Object{}, fmt.Errorf("writing object: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(dir, name)); err != nil {
		os.Remove(tmp)
		return store.Object{}, fmt.Errorf("renaming object: %w", err)
	}

	return store.Object{Name: name, ID: store.Join(parent, name), Size: int64(len(content))}, nil
}

// List returns the directories under the root, or the files in parent.
func (s *Store) List(ctx context.Context, parent string) ([]store.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := s.root
	if parent != "" {
		if err := store.ValidateName(parent); err != nil {
			return nil, err
		}
		dir = filepath.Join(s.root, parent)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing folder: %w", err)
	}

	var objs []store.Object
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), TempPrefix) {
			continue
		}
		if parent == "" {
			if e.IsDir() {
				objs = append(objs, store.Object{Name: e.Name(), ID: e.Name()})
			}
			continue
		}
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat object: %w", err)
		}
		objs = append(objs, store.Object{
			Name: e.Name(),
			ID:   store.Join(parent, e.Name()),
			Size: info.Size(),
		})
	}

	sort.Slice(objs, func(i, j int) bool { return objs[i].Name < objs[j].Name })
	return objs, nil
}

// Fetch reads the content of an object.
func (s *Store) Fetch(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.objectPath(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("reading object: %w", err)
	}
	return data, nil
}

// Delete removes an object, and its folder once the folder is empty.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.objectPath(id)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return store.ErrNotFound
		}
		return fmt.Errorf("deleting object: %w", err)
	}

	// Fails while other objects remain.
	_ = os.Remove(filepath.Dir(path))
	return nil
}

// Close releases any resources held by the store.
func (s *Store) Close() error {
	return nil
}

// objectPath returns the filesystem path for an object ID.
func (s *Store) objectPath(id string) (string, error) {
	parent, name, err := store.Split(id)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, parent, name), nil
}
