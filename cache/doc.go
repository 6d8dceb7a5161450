// Package cache provides a generic, sharded in-memory cache built on the
// generation-stamped recency list of package lrulist, with pluggable
// eviction policies, cost accounting, singleflight loading and metrics hooks.
//
// Design
//
//   - Concurrency: the cache is split into shards, each protected by a
//     mutex. The default shard count is 2*GOMAXPROCS rounded up to a power of
//     two. Keys are spread over shards with xxhash.
//
//   - Storage: each shard keeps a map[K]lrulist.Handle for lookups and an
//     lrulist.List for ordering. The list stores entries in a flat slot pool,
//     so steady-state inserts and evictions do not allocate.
//
//   - Recency clock: Tick advances every shard's epoch (typically once per
//     frame). Entries remember the epoch they were last used in.
//
//   - Policies: after every insert, and on Maintain, the shard asks its
//     policy.Policy whether the tail has to go. policy/lru enforces Capacity
//     and MaxCost; policy/age additionally drops entries idle for more than
//     MaxAge ticks.
//
//   - Cost/MaxCost: besides entry count (Capacity), you may account a user-defined
//     "cost" per value (Options.Cost) and enforce a global MaxCost. Shards split
//     the MaxCost budget evenly.
//
//   - GetOrLoad: coalesces concurrent loads for the same key using
//     golang.org/x/sync/singleflight. If Loader is nil, GetOrLoad returns
//     ErrNoLoader.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size signals.
//     By default NoopMetrics is used; see metrics/prom for a Prometheus adapter.
//
//   - Callbacks: Options.OnEvict(k, v, reason) is called for every eviction
//     (reason is one of EvictCapacity, EvictCost, EvictAge).
//
// Basic usage
//
//	c := cache.New[string, []byte](cache.Options[string, []byte]{Capacity: 10_000})
//	c.Set("a", []byte("1"))
//	if v, ok := c.Get("a"); ok {
//	    _ = v
//	}
//	c.Remove("a")
//
// Per-frame maintenance
//
//	c := cache.New[rune, *image.Alpha](cache.Options[rune, *image.Alpha]{
//	    Capacity: 4096,
//	    MaxAge:   64, // frames
//	})
//	for frame := range frames {
//	    c.Tick()
//	    render(frame, c)
//	    c.Maintain() // drops glyphs unused for 64 frames
//	}
//
// With GetOrLoad (singleflight)
//
//	c := cache.New[string, string](cache.Options[string, string]{
//	    Capacity: 1024,
//	    Loader: func(ctx context.Context, k string) (string, error) {
//	        return "v:" + k, nil
//	    },
//	})
//	v, err := c.GetOrLoad(context.Background(), "key")
//
// Thread-safety & complexity
//
// All methods on Cache are safe for concurrent use. Typical operation cost is
// O(1) expected time: one map access and a constant amount of index fixes.
// Eviction work is also O(1) per removed item.
package cache
