package cache

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/IvanBrykalov/uicore/internal/util"
	"github.com/IvanBrykalov/uicore/policy/age"
	"github.com/IvanBrykalov/uicore/policy/lru"
)

// ErrNoLoader is returned by GetOrLoad when no Loader was configured in Options.
var ErrNoLoader = errors.New("cache: no Loader provided")

// cache is a sharded in-memory KV store with a pluggable eviction policy.
type cache[K comparable, V any] struct {
	shards []*shard[K, V]
	hash   func(K) uint64
	closed atomic.Bool

	opt Options[K, V]

	// totals are shared by all shards and feed Metrics.Size.
	totals totals

	// sf coalesces concurrent loads in GetOrLoad.
	sf singleflight.Group
}

type totals struct {
	len  util.PaddedInt64
	cost util.PaddedInt64
}

// New constructs a cache with the provided Options.
// It panics if Capacity is not positive.
func New[K comparable, V any](opt Options[K, V]) Cache[K, V] {
	if opt.Capacity <= 0 {
		panic("cache: Capacity must be > 0")
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Policy == nil {
		if opt.MaxAge > 0 {
			opt.Policy = age.New(opt.MaxAge)
		} else {
			opt.Policy = lru.New()
		}
	}
	if opt.Hash == nil {
		opt.Hash = util.Hash[K]
	}

	n := util.ShardCount(opt.Shards)
	opt.Shards = n

	c := &cache[K, V]{
		shards: make([]*shard[K, V], n),
		hash:   opt.Hash,
		opt:    opt,
	}
	perShardCap := int(util.SplitCeil(int64(opt.Capacity), n))
	var perShardCost int64
	if opt.MaxCost > 0 {
		perShardCost = util.SplitCeil(opt.MaxCost, n)
	}
	for i := range c.shards {
		c.shards[i] = newShard(perShardCap, perShardCost, &c.opt, &c.totals)
	}
	return c
}

// ---- Cache[K,V] implementation ----

func (c *cache[K, V]) Add(k K, v V) bool {
	if c.closed.Load() {
		return false
	}
	return c.getShard(k).Add(k, v, c.costOf(v))
}

func (c *cache[K, V]) Set(k K, v V) {
	if c.closed.Load() {
		return
	}
	c.getShard(k).Set(k, v, c.costOf(v))
}

func (c *cache[K, V]) Get(k K) (V, bool) {
	if c.closed.Load() {
		var zero V
		return zero, false
	}
	return c.getShard(k).Get(k)
}

func (c *cache[K, V]) Peek(k K) (V, bool) {
	if c.closed.Load() {
		var zero V
		return zero, false
	}
	return c.getShard(k).Peek(k)
}

func (c *cache[K, V]) Remove(k K) bool {
	if c.closed.Load() {
		return false
	}
	return c.getShard(k).Remove(k)
}

func (c *cache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		total += s.Len()
	}
	return total
}

func (c *cache[K, V]) Tick() {
	for _, s := range c.shards {
		s.Tick()
	}
}

func (c *cache[K, V]) Maintain() int {
	if c.closed.Load() {
		return 0
	}
	n := 0
	for _, s := range c.shards {
		n += s.Maintain()
	}
	return n
}

func (c *cache[K, V]) Stats() Stats {
	var st Stats
	for _, s := range c.shards {
		st.Hits += s.hits.Load()
		st.Misses += s.misses.Load()
		st.Evictions += s.evicts.Load()
	}
	st.Len = int(c.totals.len.Load())
	st.Cost = c.totals.cost.Load()
	return st
}

func (c *cache[K, V]) Clear() {
	for _, s := range c.shards {
		s.Clear()
	}
	c.opt.Metrics.Size(int(c.totals.len.Load()), c.totals.cost.Load())
}

// Close marks the cache as closed. Future operations are ignored.
func (c *cache[K, V]) Close() error {
	c.closed.Store(true)
	return nil
}

// GetOrLoad returns the value for k; on miss it loads via Options.Loader,
// coalescing concurrent loads for the same key. The loader gets the values
// of the caller that started the flight but not its cancellation, so one
// caller giving up never fails the others: a caller whose ctx ends stops
// waiting and gets ctx.Err() while the load carries on.
func (c *cache[K, V]) GetOrLoad(ctx context.Context, k K) (V, error) {
	var zero V
	if v, ok := c.Get(k); ok {
		return v, nil
	}
	if c.opt.Loader == nil {
		return zero, ErrNoLoader
	}

	ch := c.sf.DoChan(flightKey(k), func() (any, error) {
		// Double-check: a previous flight may have stored it meanwhile.
		if v, ok := c.Peek(k); ok {
			return v, nil
		}
		v, err := c.opt.Loader(context.WithoutCancel(ctx), k)
		if err == nil {
			c.Set(k, v)
		}
		return v, err
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(V)
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// ---- helpers ----

// getShard picks a shard by hashing the key.
func (c *cache[K, V]) getShard(k K) *shard[K, V] {
	return c.shards[util.ShardIndex(c.hash(k), len(c.shards))]
}

// costOf computes the per-entry cost (clamped to int32 range).
func (c *cache[K, V]) costOf(v V) int32 {
	if c.opt.Cost == nil {
		return 0
	}
	iv := c.opt.Cost(v)
	if iv < 0 {
		iv = 0
	}
	if iv > math.MaxInt32 {
		iv = math.MaxInt32
	}
	return int32(iv)
}

// flightKey names a key for singleflight, which only takes strings.
func flightKey[K comparable](k K) string {
	if s, ok := any(k).(string); ok {
		return s
	}
	return fmt.Sprintf("%#v", k)
}
