// Package util holds small internal helpers shared by the cache packages:
// key hashing, shard sizing and cache-line padded counters.
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Hasher is implemented by composite keys that know how to hash themselves.
// Hash64 must be consistent with ==.
type Hasher interface {
	Hash64() uint64
}

// Hash returns a 64-bit xxhash of k for shard selection.
// Supported: string, []byte, all int/uint widths, uintptr, Hasher and
// fmt.Stringer. Other key types panic; supply Options.Hash for them.
func Hash[K comparable](k K) uint64 {
	switch v := any(k).(type) {
	case string:
		return xxhash.Sum64String(v)
	case []byte:
		return xxhash.Sum64(v)
	case Hasher:
		return v.Hash64()

	case uint8:
		return HashUint64(uint64(v))
	case uint16:
		return HashUint64(uint64(v))
	case uint32:
		return HashUint64(uint64(v))
	case uint64:
		return HashUint64(v)
	case uint:
		return HashUint64(uint64(v))
	case uintptr:
		return HashUint64(uint64(v))
	case int8:
		return HashUint64(uint64(uint8(v)))
	case int16:
		return HashUint64(uint64(uint16(v)))
	case int32:
		return HashUint64(uint64(uint32(v)))
	case int64:
		return HashUint64(uint64(v))
	case int:
		return HashUint64(uint64(v))

	case fmt.Stringer:
		return xxhash.Sum64String(v.String())
	default:
		panic(fmt.Sprintf("util.Hash: unsupported key type %T; implement util.Hasher or set Options.Hash", k))
	}
}

// HashUint64 hashes the 8 little-endian bytes of u.
func HashUint64(u uint64) uint64 {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], u)
	return xxhash.Sum64(b[:])
}
