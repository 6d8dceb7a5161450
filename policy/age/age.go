// Package age implements a frame-lifetime eviction policy: on top of the
// usual limits, entries not used for more than MaxAge ticks are dropped.
//
// It suits per-frame caches such as glyph atlases, where the cache is
// ticked once per frame and maintained at the end of it.
package age

import "github.com/IvanBrykalov/uicore/policy"

// Name identifies the policy in configuration files.
const Name = "age"

// DefaultMaxAge is used when New is given zero.
const DefaultMaxAge = 64

type age struct{ maxAge uint32 }

// New returns a Policy evicting entries idle for more than maxAge ticks.
func New(maxAge uint32) policy.Policy {
	if maxAge == 0 {
		maxAge = DefaultMaxAge
	}
	return age{maxAge: maxAge}
}

func (age) Name() string { return Name }

// MaxAge returns the idle limit in ticks.
func (p age) MaxAge() uint32 { return p.maxAge }

// Evict applies the shard limits first, then the idle limit. Because the
// tail is always the least recently used entry, evicting aged tails one by
// one removes every aged entry and stops at the first fresh one.
func (p age) Evict(s policy.State) (policy.Reason, bool) {
	if r, ok := policy.OverLimits(s); ok {
		return r, true
	}
	if s.Len > 0 && s.TailAge > p.maxAge {
		return policy.Age, true
	}
	return 0, false
}
