// Package cache provides a bounded, generic, in-memory key/value cache with
// a hybrid LFU/LRU (LFRU) eviction policy, per-entry TTL expiration, and
// compressed value storage.
//
// Design
//
//   - Concurrency: a single mutex guards the whole cache. Get promotes the
//     entry's frequency, so even reads are writers; a reader/writer split
//     would not help here. Operations are linearizable under the mutex.
//
//   - Storage: a map[K]*mapItem for lookups plus a two-level intrusive
//     index: a doubly linked list of frequency buckets (strictly ascending,
//     anchored by a sentinel at frequency 0), each bucket holding its own
//     MRU↔LRU recency list of key nodes. All operations are O(1).
//
//   - Eviction: on insert at capacity the victim is the least-recently-used
//     key of the least-frequent bucket (or its sole member). Resize shrinks
//     through the same path.
//
//   - Values: every stored value passes through a pluggable codec and
//     compressor (Options.Codec, Options.Compressor). The cache keeps only
//     the compressed serialization; Get decompresses and decodes on the
//     way out. Defaults handle numeric scalars, strings/byte slices, and
//     arbitrary types (msgpack), compressed with s2.
//
//   - TTL: SetWithTTL records an absolute deadline; ttl <= 0 means the
//     entry never expires. A background reaper sweeps expired entries once
//     per Options.SweepInterval (default 1s) under the cache mutex, using
//     the already-locked removal path. Get additionally treats an entry
//     past its deadline as a miss. Close stops and joins the reaper.
//
//   - Resize: admission is sanity-checked against the platform's available
//     memory (Options.AvailableMemory, gopsutil by default) using a rough
//     per-entry footprint estimate; rejected resizes leave the cache
//     untouched and return ErrCapacityRejected.
//
//   - GetOrLoad: coalesces concurrent loads for the same key using
//     singleflight. If Loader is nil, GetOrLoad returns ErrNoLoader.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size signals.
//     By default NoopMetrics is used; plug the Prometheus adapter from
//     metrics/prom to export them. Stats() returns a local snapshot.
//
// Basic usage
//
//	c := cache.New[string, int](cache.Options[string, int]{Capacity: 1024})
//	defer c.Close()
//	_ = c.Set("a", 1)
//	if v, ok, _ := c.Get("a"); ok {
//	    _ = v // use value
//	}
//	c.Remove("a")
//
// With TTL
//
//	_ = c.SetWithTTL("tmp", 7, 2*time.Second)
//	time.Sleep(3 * time.Second)
//	_, ok, _ := c.Get("tmp") // ok == false (expired)
package cache
