// Package cachedstore provides a caching wrapper for Store implementations.
//
// Only Fetch is cached. Create and Delete pass through and invalidate the
// affected object; List always reaches the underlying store.
package cachedstore

// Backend defines the interface for cache storage backends.
// Implementations handle storage (memory, disk) and eviction strategy (LRU, MRU).
type Backend interface {
	// Get retrieves a cached object. Returns nil, false if not found.
	Get(id string) ([]byte, bool)

	// Set stores an object in the cache.
	Set(id string, data []byte)

	// Remove drops an object from the cache.
	Remove(id string)

	// Stats returns cache statistics.
	Stats() Stats
}

// Stats contains cache statistics.
type Stats struct {
	Hits   int64
	Misses int64
	Size   int // Current number of entries
}

// HitRate returns the cache hit rate as a percentage.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}
