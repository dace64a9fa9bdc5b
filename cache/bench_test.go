package cache

import (
	"math/rand"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/s-bose7/memcache/codec"
)

// benchmarkMix exercises a read/write mix against a warm cache.
// It uses parallel workers (RunParallel spawns GOMAXPROCS goroutines).
// Every operation pays the full codec path, which is the point: this is an
// end-to-end benchmark of the cache as deployed, not of the index alone.
func benchmarkMix(b *testing.B, readsPct int) {
	c := New[string, string](Options[string, string]{
		Capacity:        100_000,
		AvailableMemory: func() (uint64, error) { return 1 << 40, nil },
	})
	b.Cleanup(func() { _ = c.Close() })

	// Preload half the capacity to get a realistic hit-rate.
	for i := 0; i < 50_000; i++ {
		k := "k:" + strconv.Itoa(i)
		_ = c.Set(k, "v")
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	keyMask := (1 << 16) - 1 // hot keyspace (power of two for fast &-mask)

	b.RunParallel(func(pb *testing.PB) {
		// Independent RNG stream for each worker.
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		i := 0
		for pb.Next() {
			k := "k:" + strconv.Itoa(i&keyMask)
			if r.Intn(100) < readsPct {
				c.Get(k)
			} else {
				_ = c.Set(k, "v")
			}
			i++
		}
	})
}

func BenchmarkCache_90r10w(b *testing.B) { benchmarkMix(b, 90) }
func BenchmarkCache_50r50w(b *testing.B) { benchmarkMix(b, 50) }

// benchmarkMixInt uses int keys and values with compression disabled.
// This removes strconv/s2 noise and better exposes the index hot path.
func benchmarkMixInt(b *testing.B, readsPct int) {
	c := New[int, int](Options[int, int]{
		Capacity:   100_000,
		Compressor: codec.Nop{},
	})
	b.Cleanup(func() { _ = c.Close() })

	for i := 0; i < 50_000; i++ {
		_ = c.Set(i, 1)
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	keyMask := (1 << 16) - 1

	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		i := 0
		for pb.Next() {
			k := i & keyMask
			if r.Intn(100) < readsPct {
				c.Get(k)
			} else {
				_ = c.Set(k, 1)
			}
			i++
		}
	})
}

func BenchmarkCache_IntKeys_90r10w(b *testing.B) { benchmarkMixInt(b, 90) }
func BenchmarkCache_IntKeys_50r50w(b *testing.B) { benchmarkMixInt(b, 50) }
