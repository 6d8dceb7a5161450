package cache

import "context"

// Cache is a sharded, in-memory key/value cache with frame-style recency.
// All methods are safe for concurrent use by multiple goroutines.
//
// Every shard keeps its entries in an lrulist.List, so lookups are a map
// access plus O(1) list adjustments under the shard lock.
type Cache[K comparable, V any] interface {
	// Add inserts k→v only if k is not present.
	// Returns false if the key already exists (no update is performed).
	Add(k K, v V) bool

	// Set inserts or updates k→v and marks it as used in the current tick.
	Set(k K, v V)

	// Get returns the value for k and a boolean flag indicating presence.
	// On hit, the entry becomes the most recently used one.
	Get(k K) (V, bool)

	// Peek is Get without touching recency or hit/miss counters.
	Peek(k K) (V, bool)

	// Remove deletes k if present and returns true on success.
	// Removal is not an eviction: OnEvict is not called.
	Remove(k K) bool

	// Len returns the total number of resident entries across all shards.
	Len() int

	// Tick advances the recency clock of every shard by one, e.g. once per
	// rendered frame. It never evicts.
	Tick()

	// Maintain asks the policy about every shard's tail until it is
	// satisfied and returns the number of evicted entries. With the age
	// policy this drops entries idle for more than MaxAge ticks.
	Maintain() int

	// GetOrLoad returns the value for k, loading it via Options.Loader on miss.
	// Concurrent loads for the same key are coalesced (singleflight).
	// If no Loader was configured, returns ErrNoLoader.
	GetOrLoad(ctx context.Context, k K) (V, error)

	// Stats returns counters summed over all shards.
	Stats() Stats

	// Clear drops every entry without calling OnEvict.
	Clear()

	// Close marks the cache closed; later calls are ignored.
	Close() error
}

// Stats is a point-in-time summary of cache activity.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Len       int
	Cost      int64
}

// HitRatio returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
