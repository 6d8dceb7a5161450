package cache

import (
	"sync"

	"github.com/IvanBrykalov/uicore/internal/util"
	"github.com/IvanBrykalov/uicore/lrulist"
	"github.com/IvanBrykalov/uicore/policy"
)

// entry is the payload stored in a shard's list.
type entry[K comparable, V any] struct {
	key  K
	val  V
	cost int32
}

// shard is an independent partition of the cache with its own lock, map
// and recency list (head=MRU, tail=LRU).
type shard[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu      sync.Mutex
	m       map[K]lrulist.Handle
	list    *lrulist.List[entry[K, V]]
	cost    int64
	cap     int
	maxCost int64

	opt    *Options[K, V]
	totals *totals

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_      util.CacheLinePad
	hits   util.PaddedUint64
	misses util.PaddedUint64
	evicts util.PaddedUint64
}

func newShard[K comparable, V any](capacity int, maxCost int64, opt *Options[K, V], t *totals) *shard[K, V] {
	return &shard[K, V]{
		m:       make(map[K]lrulist.Handle, capacity),
		list:    lrulist.New[entry[K, V]](capacity + 1), // room for the insert that precedes eviction
		cap:     capacity,
		maxCost: maxCost,
		opt:     opt,
		totals:  t,
	}
}

// Add inserts a NEW entry (no update) as MRU.
// Returns false if the key already exists.
func (s *shard[K, V]) Add(k K, v V, cost int32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.m[k]; exists {
		return false
	}
	s.insertLocked(k, v, cost)
	s.enforceLocked()
	return true
}

// Set inserts or updates an entry and marks it used.
func (s *shard[K, V]) Set(k K, v V, cost int32) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.m[k]; ok {
		e := s.list.Data(h)
		delta := int64(cost) - int64(e.cost)
		e.val = v
		e.cost = cost
		s.list.Ping(h)
		s.addCostLocked(delta)
		s.enforceLocked()
		return
	}
	s.insertLocked(k, v, cost)
	s.enforceLocked()
}

// Get returns the value and promotes the entry to MRU.
func (s *shard[K, V]) Get(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.m[k]
	if !ok {
		s.misses.Add(1)
		s.opt.Metrics.Miss()
		var zero V
		return zero, false
	}
	s.list.Ping(h)
	s.hits.Add(1)
	s.opt.Metrics.Hit()
	return s.list.Data(h).val, true
}

// Peek returns the value without touching recency or counters.
func (s *shard[K, V]) Peek(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.m[k]; ok {
		return s.list.Data(h).val, true
	}
	var zero V
	return zero, false
}

// Remove deletes an entry by key. Returns true if the entry existed.
func (s *shard[K, V]) Remove(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.m[k]
	if !ok {
		return false
	}
	cost := s.list.Data(h).cost
	s.list.Remove(h)
	delete(s.m, k)
	s.totals.len.Add(-1)
	s.addCostLocked(-int64(cost))
	s.reportSize()
	return true
}

// Len returns the number of resident entries in this shard.
func (s *shard[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list.Len()
}

// Tick advances the shard's recency clock.
func (s *shard[K, V]) Tick() {
	s.mu.Lock()
	s.list.Tick()
	s.mu.Unlock()
}

// Maintain evicts tails while the policy asks for it.
func (s *shard[K, V]) Maintain() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enforceLocked()
}

// Clear drops all entries, keeping the list's slot pool.
func (s *shard[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.list.Len()
	for s.list.Len() > 0 {
		s.list.EvictLast()
	}
	clear(s.m)
	s.totals.len.Add(-int64(n))
	s.addCostLocked(-s.cost)
}

// -------------------- internals (mu held) --------------------

func (s *shard[K, V]) insertLocked(k K, v V, cost int32) {
	s.m[k] = s.list.Add(entry[K, V]{key: k, val: v, cost: cost})
	s.totals.len.Add(1)
	s.addCostLocked(int64(cost))
}

func (s *shard[K, V]) addCostLocked(delta int64) {
	if delta == 0 {
		return
	}
	s.cost += delta
	s.totals.cost.Add(delta)
}

func (s *shard[K, V]) state() policy.State {
	return policy.State{
		Len:      s.list.Len(),
		Capacity: s.cap,
		Cost:     s.cost,
		MaxCost:  s.maxCost,
		TailAge:  s.list.LastEntryAge(),
	}
}

// enforceLocked evicts tails until the policy is satisfied and reports the
// number of evicted entries.
func (s *shard[K, V]) enforceLocked() int {
	n := 0
	for {
		reason, ok := s.opt.Policy.Evict(s.state())
		if !ok || s.list.Len() == 0 {
			break
		}
		s.evictTailLocked(reason)
		n++
	}
	s.reportSize()
	return n
}

// evictTailLocked removes the LRU entry, updates counters and calls OnEvict.
func (s *shard[K, V]) evictTailLocked(reason EvictReason) {
	e := *s.list.Last()
	s.list.EvictLast()
	delete(s.m, e.key)
	s.totals.len.Add(-1)
	s.addCostLocked(-int64(e.cost))

	s.evicts.Add(1)
	s.opt.Metrics.Evict(reason)
	if cb := s.opt.OnEvict; cb != nil {
		cb(e.key, e.val, reason)
	}
}

func (s *shard[K, V]) reportSize() {
	s.opt.Metrics.Size(int(s.totals.len.Load()), s.totals.cost.Load())
}
