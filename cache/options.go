package cache

import (
	"context"
	"fmt"

	"github.com/IvanBrykalov/uicore/policy"
	"github.com/IvanBrykalov/uicore/policy/age"
	"github.com/IvanBrykalov/uicore/policy/lru"
)

// EvictReason explains why an entry was removed.
type EvictReason = policy.Reason

const (
	// EvictCapacity: the shard was over its entry limit.
	EvictCapacity = policy.Capacity
	// EvictCost: the shard was over its cost budget.
	EvictCost = policy.Cost
	// EvictAge: the entry was idle for more than MaxAge ticks.
	EvictAge = policy.Age
)

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	// Size reports the totals over all shards after a change.
	Size(entries int, cost int64)
}

// Options configures the cache behavior. Zero values are safe;
// sane defaults are applied in New():
//   - nil Policy   => age policy when MaxAge > 0, LRU otherwise
//   - Shards <= 0  => auto (rounded up to power of two)
//   - nil Hash     => util.Hash (xxhash)
//   - nil Metrics  => NoopMetrics
type Options[K comparable, V any] struct {
	// Capacity is the entry count limit, split evenly across shards.
	Capacity int

	// Shards defines the number of shards. If 0, an automatic value is chosen
	// (≈ 2*GOMAXPROCS) and rounded to the next power of two.
	Shards int

	// Policy decides which tails are evicted; see package policy.
	Policy policy.Policy

	// MaxAge is the idle limit in ticks used when Policy is nil.
	MaxAge uint32

	// Cost-based limiting (e.g., bytes). If Cost is non-nil and MaxCost > 0,
	// the cache evicts until both entry count and total cost limits are satisfied.
	Cost    func(v V) int // nil = all entries have equal cost (0)
	MaxCost int64         // total cost limit; 0 disables cost limiting

	// Hash maps keys to shards. Keys that are not strings or integers must
	// implement util.Hasher or come with a Hash function.
	Hash func(K) uint64

	// Loader fetches a value on cache miss. Used by GetOrLoad.
	Loader func(ctx context.Context, k K) (V, error)

	// OnEvict is called on eviction under the shard lock; keep callbacks lightweight.
	OnEvict func(k K, v V, reason EvictReason)
	Metrics Metrics
}

// PolicyNamed resolves a policy by its configuration name. maxAge only
// applies to the age policy.
func PolicyNamed(name string, maxAge uint32) (policy.Policy, error) {
	switch name {
	case "", lru.Name:
		return lru.New(), nil
	case age.Name:
		return age.New(maxAge), nil
	}
	return nil, fmt.Errorf("cache: unknown policy %q", name)
}
