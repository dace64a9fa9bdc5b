package cache

import (
	"context"
	"time"

	"github.com/s-bose7/memcache/codec"
)

// EvictReason explains why an entry was removed.
type EvictReason int

const (
	// EvictLFRU — removed by the eviction policy on insert at capacity.
	EvictLFRU EvictReason = iota
	// EvictTTL — expired by TTL (reaper sweep or lazy on access).
	EvictTTL
	// EvictCapacity — removed while shrinking via Resize.
	EvictCapacity
)

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int, bytes int64)
}

// Clock provides time in UnixNano; useful for deterministic TTL tests.
type Clock interface{ NowUnixNano() int64 }

// Options configures the cache behavior. Capacity must be set (New panics
// on a non-positive one); the other fields may be left zero, and sane
// defaults are applied in New():
//   - nil Codec           => codec.Auto[V]()
//   - nil Compressor      => codec.S2{}
//   - nil Metrics         => NoopMetrics
//   - SweepInterval <= 0  => 1s
//   - nil AvailableMemory => sysmem.Available (gopsutil)
type Options[K comparable, V any] struct {
	// Capacity is the entry count limit. Must be > 0.
	Capacity int

	// Codec translates values to the byte form kept in memory.
	Codec codec.Codec[V]

	// Compressor is applied to every encoded payload before storing.
	// Use codec.Nop{} to store encoded bytes verbatim.
	Compressor codec.Compressor

	// DefaultTTL applies to Set/Add when a per-key TTL is not provided
	// (0 = entries never expire).
	DefaultTTL time.Duration

	// SweepInterval is how often the reaper scans for expired entries.
	SweepInterval time.Duration

	// Loader fetches a value on cache miss. Used by GetOrLoad.
	Loader func(ctx context.Context, k K) (V, error)

	// OnEvict is called for every eviction and expiration, under the cache
	// mutex; keep callbacks lightweight and do not call back into the cache.
	// Explicit Remove and Clear do not trigger it.
	OnEvict func(k K, reason EvictReason)

	Metrics Metrics

	// Clock allows overriding the time source (tests). Nil => time.Now().
	Clock Clock

	// AvailableMemory reports the platform's free-RAM estimate in bytes.
	// Used only by Resize admission. Nil => sysmem.Available.
	AvailableMemory func() (uint64, error)
}
