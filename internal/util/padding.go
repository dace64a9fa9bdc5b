// Package util contains internal helpers shared across the cache.
package util

import (
	"sync/atomic"
	"unsafe"
)

// CacheLineSize is a reasonable default for current CPUs. 64 works well in
// practice; the runtime's own constant is unexported.
const CacheLineSize = 64

// CacheLinePad separates groups of hot fields into distinct cache lines to
// reduce false sharing. Place between the mutex-guarded state and the
// atomic counters.
type CacheLinePad struct{ _ [CacheLineSize]byte }

// PaddedAtomicUint64 is an atomic uint64 padded to exactly one cache line,
// for counters bumped from many goroutines.
type PaddedAtomicUint64 struct {
	atomic.Uint64
	_ [CacheLineSize - 8]byte // 8 = size of uint64
}

// Compile-time size check: the build fails if the type outgrows one cache
// line.
var _ [CacheLineSize - int(unsafe.Sizeof(PaddedAtomicUint64{}))]byte
