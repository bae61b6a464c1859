package cachedstore

import (
	"context"

	"github.com/arman-k/stegdrive/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store wraps another Store with caching.
type Store struct {
	underlying store.Store
	backend    Backend
}

// New creates a new cached store wrapping the given store.
func New(underlying store.Store, backend Backend) *Store {
	return &Store{
		underlying: underlying,
		backend:    backend,
	}
}

// Create writes through to the underlying store.
func (s *Store) Create(ctx context.Context, parent, name string, content []byte) (store.Object, error) {
	obj, err := s.underlying.Create(ctx, parent, name, content)
	s.backend.Remove(store.Join(parent, name))
	return obj, err
}

// List lists the underlying store.
func (s *Store) List(ctx context.Context, parent string) ([]store.Object, error) {
	return s.underlying.List(ctx, parent)
}

// Fetch reads an object, checking the cache first.
func (s *Store) Fetch(ctx context.Context, id string) ([]byte, error) {
	// Check cache first.
	if data, ok := s.backend.Get(id); ok {
		return data, nil
	}

	// Cache miss - read from underlying store.
	data, err := s.underlying.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	// Cache the result.
	s.backend.Set(id, data)

	return data, nil
}

// Delete removes an object from the underlying store and the cache.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.backend.Remove(id)
	return s.underlying.Delete(ctx, id)
}

// Close closes the underlying store.
func (s *Store) Close() error {
	return s.underlying.Close()
}

// Stats returns cache statistics.
func (s *Store) Stats() Stats {
	return s.backend.Stats()
}
