package cache

import (
	"errors"
	"fmt"
	"unsafe"
)

// ErrCapacityRejected is returned by Resize when the estimated footprint of
// the requested capacity exceeds the platform's available memory.
var ErrCapacityRejected = errors.New("cache: resize rejected, estimated footprint exceeds available memory")

const ptrSize = unsafe.Sizeof(uintptr(0))

// entryFootprint is a rough minimum per-entry memory estimate: the key
// index slot plus its overhead, the key node, and one and a half frequency
// buckets to approximate partial bucket creation. It is advisory only; the
// real footprint depends on the payload and on map internals.
func entryFootprint[K comparable]() uint64 {
	var (
		k  K
		kn keyNode[K]
		fn freqNode[K]
		mi mapItem[K]
	)
	n := uint64(unsafe.Sizeof(k))
	n += uint64(ptrSize) + uint64(ptrSize)/2 // index overhead per slot
	n += uint64(unsafe.Sizeof(kn))
	n += uint64(unsafe.Sizeof(mi))
	n += uint64(unsafe.Sizeof(fn)) + uint64(unsafe.Sizeof(fn))/2
	return n
}

// Resize changes the capacity. The request is checked against the memory
// probe first: when the per-entry estimate times the new capacity would
// not fit in available memory (plus 1KiB of slack), the resize is rejected
// and the cache is left untouched. Shrinking evicts through the normal
// LFRU path until the cache fits.
func (c *memcache[K, V]) Resize(capacity int) error {
	if c.closed.Load() {
		return nil
	}
	if capacity <= 0 {
		return fmt.Errorf("cache: resize: capacity must be > 0, got %d", capacity)
	}

	available, err := c.opt.AvailableMemory()
	if err != nil {
		return fmt.Errorf("cache: resize: memory probe: %w", err)
	}
	if need := uint64(capacity) * entryFootprint[K](); need > available+1024 {
		return fmt.Errorf("%w: capacity %d needs ~%d bytes, %d available",
			ErrCapacityRejected, capacity, need, available)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cap = capacity
	for c.size > c.cap {
		c.evictOneLocked(EvictCapacity)
	}
	c.opt.Metrics.Size(c.size, c.bytes)
	return nil
}
