// Package memstore provides an in-memory store implementation for testing.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/arman-k/stegdrive/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store is an in-memory store for testing.
type Store struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		objects: make(map[string][]byte),
	}
}

// Create stores a copy of content.
func (s *Store) Create(ctx context.Context, parent, name string, content []byte) (store.Object, error) {
	if err := ctx.Err(); err != nil {
		return store.Object{}, err
	}
	if err := store.CheckCreate(parent, name); err != nil {
		return store.Object{}, err
	}

	// The data is copied to prevent caller mutations from affecting the store.
	copied := make([]byte, len(content))
	copy(copied, content)

	id := store.Join(parent, name)
	s.mu.Lock()
	s.objects[id] = copied
	s.mu.Unlock()

	return store.Object{Name: name, ID: id, Size: int64(len(content))}, nil
}

// List returns the folders at the top level, or the objects in parent.
func (s *Store) List(ctx context.Context, parent string) ([]store.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var objs []store.Object
	seen := make(map[string]bool)
	for id, data := range s.objects {
		p, name, err := store.Split(id)
		if err != nil {
			continue
		}
		switch {
		case parent == "":
			if !seen[p] {
				seen[p] = true
				objs = append(objs, store.Object{Name: p, ID: p})
			}
		case p == parent:
			objs = append(objs, store.Object{Name: name, ID: id, Size: int64(len(data))})
		}
	}

	sort.Slice(objs, func(i, j int) bool { return objs[i].Name < objs[j].Name })
	return objs, nil
}

// Fetch returns the content of an object.
func (s *Store) Fetch(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return data, nil
}

// Delete removes an object.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.objects, id)
	return nil
}

// Len returns the number of stored objects.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Close is a no-op for the memory store.
func (s *Store) Close() error {
	return nil
}
