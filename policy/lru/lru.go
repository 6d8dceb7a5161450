// Package lru implements the plain least-recently-used eviction policy.
package lru

import "github.com/IvanBrykalov/uicore/policy"

// Name identifies the policy in configuration files.
const Name = "lru"

type lru struct{}

// New returns a Policy that evicts the least recently used entry only when
// the shard is over its entry or cost limit.
func New() policy.Policy { return lru{} }

func (lru) Name() string { return Name }

// Evict defers entirely to the shard limits.
func (lru) Evict(s policy.State) (policy.Reason, bool) { return policy.OverLimits(s) }
