package cache

import (
	"context"
	"time"
)

// Cache is a bounded in-memory key/value cache with LFRU eviction and
// per-entry TTL. All methods are safe for concurrent use by multiple
// goroutines.
//
// Typical complexity for operations is O(1): a map lookup plus a constant
// amount of pointer fixes in the frequency index, under a single mutex.
// Get and Set additionally pay for (de)compression and (de)serialization
// of the value.
type Cache[K comparable, V any] interface {
	// Get returns the value for k and a presence flag. On hit, the entry's
	// frequency is promoted by one; the stored payload is decompressed and
	// decoded, and a failure there is returned in the error (the flag is
	// false in that case). An entry past its TTL deadline reads as a miss.
	Get(k K) (V, bool, error)

	// Set inserts or updates k→v using the cache's DefaultTTL (if any).
	// Updating a live key overwrites its payload and promotes it by one.
	// Inserting into a full cache evicts exactly one entry first.
	Set(k K, v V) error

	// SetWithTTL is Set with a per-key TTL. A non-positive ttl disables
	// expiration for this entry (and erases any previous deadline).
	SetWithTTL(k K, v V, ttl time.Duration) error

	// Add inserts k→v only if k is not resident.
	// Returns false if the key already exists (no update, no promotion).
	Add(k K, v V) (bool, error)

	// Remove deletes k if present and returns true on success.
	// Removing an absent key returns false; it is not an error.
	Remove(k K) bool

	// Contains reports whether k is resident and not past its deadline.
	// It does not promote the entry.
	Contains(k K) bool

	// Len returns the number of resident entries.
	Len() int

	// Clear drops every entry and resets the cache to its initial state.
	Clear()

	// Resize changes the capacity. Shrinking evicts entries until the
	// cache fits. The request is sanity-checked against the platform's
	// available memory; ErrCapacityRejected is returned (and nothing
	// changes) when the estimated footprint would not fit.
	Resize(capacity int) error

	// Stats returns a snapshot of the cache counters.
	Stats() Stats

	// GetOrLoad returns the value for k, loading it via Options.Loader on
	// miss. Concurrent loads for the same key are coalesced (singleflight).
	// If no Loader was configured, returns ErrNoLoader.
	GetOrLoad(ctx context.Context, k K) (V, error)

	// Close stops the background reaper and marks the cache closed.
	// It blocks until the reaper has exited and is safe to call twice.
	// Get, Set, SetWithTTL, Add, Remove, Contains, Clear and Resize on a
	// closed cache are no-ops returning zero values; Len and Stats still
	// report the state the cache had when it was closed.
	Close() error
}

// Stats is a point-in-time snapshot of the cache counters.
type Stats struct {
	Hits        uint64
	Misses      uint64
	Evictions   uint64 // capacity + resize evictions
	Expirations uint64 // TTL removals (reaper and lazy)
	Entries     int    // resident entries
	Bytes       int64  // total compressed payload bytes
}
