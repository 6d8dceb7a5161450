package util

import (
	"sync/atomic"
	"unsafe"
)

// CacheLineSize is the padding unit. 64 bytes fits current amd64 and arm64.
const CacheLineSize = 64

// CacheLinePad separates groups of hot fields so they do not share a line.
type CacheLinePad struct{ _ [CacheLineSize]byte }

// PaddedUint64 is an atomic counter occupying a whole cache line, for
// counters bumped from many goroutines.
type PaddedUint64 struct {
	atomic.Uint64
	_ [CacheLineSize - 8]byte
}

// PaddedInt64 is the signed counterpart, used for gauges that go down.
type PaddedInt64 struct {
	atomic.Int64
	_ [CacheLineSize - 8]byte
}

var (
	_ [CacheLineSize - int(unsafe.Sizeof(PaddedUint64{}))]byte
	_ [CacheLineSize - int(unsafe.Sizeof(PaddedInt64{}))]byte
)
