package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/s-bose7/memcache/codec"
	"github.com/s-bose7/memcache/internal/singleflight"
	"github.com/s-bose7/memcache/internal/sysmem"
	"github.com/s-bose7/memcache/internal/util"
)

// ErrNoLoader is returned by GetOrLoad when no Loader was configured in Options.
var ErrNoLoader = errors.New("cache: no Loader provided")

// mapItem is what the key index stores per resident key: the compressed
// serialized value and a non-owning handle into the frequency index.
type mapItem[K comparable] struct {
	payload []byte
	node    *keyNode[K]
}

// memcache is the cache implementation. One mutex guards every structure:
// the key index, the expiry index, the frequency list, and the counters
// size/bytes/cap. Get promotes and is therefore a writer too.
type memcache[K comparable, V any] struct {
	mu     sync.Mutex
	byKey  map[K]*mapItem[K]
	expiry map[K]int64 // key -> absolute deadline, UnixNano; finite TTLs only
	head   *freqNode[K]
	size   int
	bytes  int64
	cap    int

	opt Options[K, V]
	enc codec.Codec[V]
	cmp codec.Compressor

	closed atomic.Bool
	stop   chan struct{}
	reaper sync.WaitGroup

	// singleflight group for coalescing concurrent loads in GetOrLoad.
	sf singleflight.Group[K, V]

	// hot counters (separate cache lines to avoid false sharing)
	_       util.CacheLinePad
	hits    util.PaddedAtomicUint64
	misses  util.PaddedAtomicUint64
	evicts  util.PaddedAtomicUint64
	expired util.PaddedAtomicUint64
}

// New constructs a cache with the provided Options and starts its reaper.
// Defaults:
//   - nil Codec           -> codec.Auto[V]()
//   - nil Compressor      -> codec.S2{}
//   - nil Metrics         -> NoopMetrics
//   - SweepInterval <= 0  -> 1s
//   - nil AvailableMemory -> sysmem.Available
func New[K comparable, V any](opt Options[K, V]) Cache[K, V] {
	if opt.Capacity <= 0 {
		panic("Capacity must be > 0")
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Codec == nil {
		opt.Codec = codec.Auto[V]()
	}
	if opt.Compressor == nil {
		opt.Compressor = codec.S2{}
	}
	if opt.SweepInterval <= 0 {
		opt.SweepInterval = time.Second
	}
	if opt.AvailableMemory == nil {
		opt.AvailableMemory = sysmem.Available
	}

	c := &memcache[K, V]{
		byKey:  make(map[K]*mapItem[K], opt.Capacity),
		expiry: make(map[K]int64),
		head:   newFreqList[K](),
		cap:    opt.Capacity,
		opt:    opt,
		enc:    opt.Codec,
		cmp:    opt.Compressor,
		stop:   make(chan struct{}),
	}

	c.reaper.Add(1)
	go c.runReaper()

	// return pointer-to-impl as the interface (avoids unexported-return lint)
	return c
}

// ---- Cache[K,V] implementation ----

// Get returns the value for k and promotes its frequency by one.
// An entry past its deadline is removed and reads as a miss.
func (c *memcache[K, V]) Get(k K) (V, bool, error) {
	var zero V
	if c.closed.Load() {
		return zero, false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.byKey[k]
	if !ok {
		c.misses.Add(1)
		c.opt.Metrics.Miss()
		return zero, false, nil
	}
	if dl, has := c.expiry[k]; has && dl <= c.now() {
		delete(c.expiry, k)
		c.removeLocked(k)
		c.expired.Add(1)
		c.opt.Metrics.Evict(EvictTTL)
		if cb := c.opt.OnEvict; cb != nil {
			cb(k, EvictTTL)
		}
		c.misses.Add(1)
		c.opt.Metrics.Miss()
		return zero, false, nil
	}

	c.promoteLocked(it.node)
	v, err := c.decode(it.payload)
	if err != nil {
		return zero, false, err
	}
	c.hits.Add(1)
	c.opt.Metrics.Hit()
	return v, true, nil
}

// Set inserts or updates k→v using DefaultTTL.
func (c *memcache[K, V]) Set(k K, v V) error {
	if c.closed.Load() {
		return nil
	}
	return c.set(k, v, c.deadline(c.opt.DefaultTTL))
}

// SetWithTTL inserts or updates k→v with a per-key TTL.
// A non-positive ttl means the entry never expires.
func (c *memcache[K, V]) SetWithTTL(k K, v V, ttl time.Duration) error {
	if c.closed.Load() {
		return nil
	}
	return c.set(k, v, c.deadline(ttl))
}

// Add inserts k→v only if absent, using DefaultTTL.
// Returns false if the key already exists (no update is performed).
func (c *memcache[K, V]) Add(k K, v V) (bool, error) {
	if c.closed.Load() {
		return false, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byKey[k]; exists {
		return false, nil
	}
	payload, err := c.encode(v)
	if err != nil {
		return false, err
	}
	if dl := c.deadline(c.opt.DefaultTTL); dl > 0 {
		c.expiry[k] = dl
	} else {
		// A deadline left behind by an earlier Remove must not outlive
		// the key's new life.
		delete(c.expiry, k)
	}
	c.insertLocked(k, payload)
	return true, nil
}

// Remove deletes an entry by key. Returns true if the entry existed.
// The expiry index is left alone; the reaper tolerates orphaned deadlines.
func (c *memcache[K, V]) Remove(k K) bool {
	if c.closed.Load() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeLocked(k)
}

// Contains reports residency without promoting. An entry whose deadline
// already passed reports false even before the reaper collects it.
func (c *memcache[K, V]) Contains(k K) bool {
	if c.closed.Load() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byKey[k]; !ok {
		return false
	}
	if dl, has := c.expiry[k]; has && dl <= c.now() {
		return false
	}
	return true
}

// Len returns the number of resident entries.
func (c *memcache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Clear drops all entries and both indexes and installs a fresh sentinel.
// The previous structure becomes unreachable and is reclaimed by the GC.
func (c *memcache[K, V]) Clear() {
	if c.closed.Load() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.byKey = make(map[K]*mapItem[K], c.cap)
	c.expiry = make(map[K]int64)
	c.head = newFreqList[K]()
	c.size = 0
	c.bytes = 0
	c.opt.Metrics.Size(0, 0)
}

// Stats returns a snapshot of the cache counters.
func (c *memcache[K, V]) Stats() Stats {
	c.mu.Lock()
	entries, bytes := c.size, c.bytes
	c.mu.Unlock()
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Evictions:   c.evicts.Load(),
		Expirations: c.expired.Load(),
		Entries:     entries,
		Bytes:       bytes,
	}
}

// GetOrLoad returns the value for k; on miss it loads via Options.Loader,
// coalescing concurrent loads for the same key (singleflight).
func (c *memcache[K, V]) GetOrLoad(ctx context.Context, k K) (V, error) {
	// fast path
	if v, ok, err := c.Get(k); err != nil {
		return v, err
	} else if ok {
		return v, nil
	}
	if c.opt.Loader == nil {
		var zero V
		return zero, ErrNoLoader
	}

	// singleflight: exactly one real load for the key
	return c.sf.Do(ctx, k, func() (V, error) {
		// double-check after flight join
		if v, ok, err := c.Get(k); err != nil {
			return v, err
		} else if ok {
			return v, nil
		}
		v, err := c.opt.Loader(ctx, k)
		if err == nil {
			err = c.Set(k, v)
		}
		return v, err
	})
}

// Close stops the reaper and marks the cache closed. It blocks until the
// reaper goroutine has exited, so no sweep can touch the structures after
// Close returns. Safe to call more than once.
func (c *memcache[K, V]) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.stop)
	c.reaper.Wait()
	return nil
}

// -------------------- internals (mu held) --------------------

// set takes the mutex itself (unlike the helpers below), records the
// deadline, then updates-and-promotes or inserts.
func (c *memcache[K, V]) set(k K, v V, deadline int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	payload, err := c.encode(v)
	if err != nil {
		return err
	}

	if deadline > 0 {
		c.expiry[k] = deadline
	} else {
		// Refreshing with "never expire" must drop any older deadline.
		delete(c.expiry, k)
	}

	if it, ok := c.byKey[k]; ok {
		c.bytes += int64(len(payload)) - int64(len(it.payload))
		it.payload = payload
		c.promoteLocked(it.node)
		c.opt.Metrics.Size(c.size, c.bytes)
		return nil
	}

	c.insertLocked(k, payload)
	return nil
}

// insertLocked places a new key into the frequency-1 bucket, evicting
// exactly once if the cache is full.
func (c *memcache[K, V]) insertLocked(k K, payload []byte) {
	if c.size == c.cap {
		c.evictOneLocked(EvictLFRU)
	}

	first := c.head.next
	if first == c.head || first.frequency != 1 {
		first = spliceAfter(c.head, 1)
	}
	n := &keyNode[K]{key: k}
	first.attach(n)

	c.byKey[k] = &mapItem[K]{payload: payload, node: n}
	c.size++
	c.bytes += int64(len(payload))
	c.opt.Metrics.Size(c.size, c.bytes)
}

// promoteLocked moves the node from its bucket at frequency f to the
// bucket at f+1, splicing that bucket in when the immediate neighbour is
// not it, and collapsing the old bucket when it empties.
func (c *memcache[K, V]) promoteLocked(n *keyNode[K]) {
	cur := n.parent
	target := cur.next
	if target == c.head || target.frequency != cur.frequency+1 {
		target = spliceAfter(cur, cur.frequency+1)
	}
	cur.detach(n)
	if cur.length == 0 {
		cur.unlink()
	}
	target.attach(n)
}

// evictOneLocked removes the LRU key of the least-frequent bucket
// (its sole member when the bucket is a singleton). The victim's deadline,
// if any, is dropped opportunistically.
func (c *memcache[K, V]) evictOneLocked(reason EvictReason) {
	lfu := c.head.next
	if lfu == c.head {
		return
	}
	k := lfu.victim().key
	c.removeLocked(k)
	delete(c.expiry, k)
	c.evicts.Add(1)
	c.opt.Metrics.Evict(reason)
	if cb := c.opt.OnEvict; cb != nil {
		cb(k, reason)
	}
}

// removeLocked unlinks the key's node (collapsing its bucket if emptied)
// and erases the key from the index. It does not touch the expiry index.
func (c *memcache[K, V]) removeLocked(k K) bool {
	it, ok := c.byKey[k]
	if !ok {
		return false
	}
	parent := it.node.parent
	parent.detach(it.node)
	if parent.length == 0 {
		parent.unlink()
	}
	delete(c.byKey, k)
	c.size--
	c.bytes -= int64(len(it.payload))
	return true
}

// -------------------- helpers --------------------

// encode serializes and compresses a value into its stored payload.
func (c *memcache[K, V]) encode(v V) ([]byte, error) {
	raw, err := c.enc.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("cache: encode: %w", err)
	}
	return c.cmp.Compress(raw), nil
}

// decode decompresses and deserializes a stored payload.
func (c *memcache[K, V]) decode(payload []byte) (V, error) {
	raw, err := c.cmp.Decompress(payload)
	if err != nil {
		var zero V
		return zero, fmt.Errorf("cache: decompress: %w", err)
	}
	v, err := c.enc.Decode(raw)
	if err != nil {
		return v, fmt.Errorf("cache: decode: %w", err)
	}
	return v, nil
}

// deadline converts a relative TTL into an absolute UnixNano deadline.
// A non-positive ttl returns 0 (no expiration).
func (c *memcache[K, V]) deadline(ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return c.now() + int64(ttl)
}

func (c *memcache[K, V]) now() int64 {
	if c.opt.Clock != nil {
		return c.opt.Clock.NowUnixNano()
	}
	return time.Now().UnixNano()
}
