// Package policy defines the eviction policies consulted by cache shards.
//
// A shard keeps its entries in recency order (see package lrulist) and asks
// its Policy, under the shard lock, whether the least recently used entry
// has to go. The shard evicts and asks again until the policy is satisfied,
// so a Policy only ever decides about the tail and never touches the list.
package policy

// Reason explains why an entry was evicted.
type Reason uint8

const (
	// Capacity: the shard holds more entries than its capacity.
	Capacity Reason = iota
	// Cost: the shard's total cost exceeds its cost budget.
	Cost
	// Age: the tail entry has not been used for too many ticks.
	Age
)

func (r Reason) String() string {
	switch r {
	case Capacity:
		return "capacity"
	case Cost:
		return "cost"
	case Age:
		return "age"
	}
	return "unknown"
}

// State is a snapshot of one shard, taken under the shard lock.
type State struct {
	Len      int   // resident entries
	Capacity int   // entry limit of the shard
	Cost     int64 // total cost of resident entries
	MaxCost  int64 // cost limit of the shard; 0 disables cost limiting
	TailAge  uint32
}

// Policy decides whether the least recently used entry of a shard is evicted.
// Implementations must be stateless or safe for concurrent use: one Policy
// value is shared by all shards.
type Policy interface {
	// Name is a short identifier used in configuration and logs.
	Name() string
	// Evict reports whether the tail should be evicted and why.
	Evict(s State) (Reason, bool)
}

// OverLimits applies the entry and cost limits every policy honours.
func OverLimits(s State) (Reason, bool) {
	if s.Len == 0 {
		return 0, false
	}
	if s.Len > s.Capacity {
		return Capacity, true
	}
	if s.MaxCost > 0 && s.Cost > s.MaxCost {
		return Cost, true
	}
	return 0, false
}
