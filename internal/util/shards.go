package util

import (
	"math/bits"
	"runtime"
)

// MaxShards caps the automatic shard count.
const MaxShards = 256

// NextPow2 returns the smallest power of two >= x, with NextPow2(0) == 1.
// Values above 1<<63 clamp to 1<<63.
func NextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	n := bits.Len64(x - 1)
	if n >= 64 {
		return 1 << 63
	}
	return 1 << n
}

// ShardCount returns the shard count to use for a requested value: n rounded
// up to a power of two, or 2*GOMAXPROCS (clamped to MaxShards) when n <= 0.
func ShardCount(n int) int {
	if n > 0 {
		return int(NextPow2(uint64(n)))
	}
	p := runtime.GOMAXPROCS(0)
	if p < 1 {
		p = 1
	}
	n = int(NextPow2(uint64(2 * p)))
	if n > MaxShards {
		n = MaxShards
	}
	return n
}

// ShardIndex maps a hash to one of shards partitions. shards must be a
// power of two.
func ShardIndex(hash uint64, shards int) int {
	return int(hash & uint64(shards-1))
}

// SplitCeil divides total across n parts, rounding up so the parts cover it.
func SplitCeil(total int64, n int) int64 {
	if n <= 1 {
		return total
	}
	return (total + int64(n) - 1) / int64(n)
}
