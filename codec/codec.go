// Package codec provides the value codec and payload compressor the cache
// stores values through: writes go serialize→compress, reads go
// uncompress→deserialize. Both halves are pluggable; Auto and S2 are the
// defaults.
package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"
)

// Codec translates values to and from the byte representation the cache
// keeps in memory. Implementations must round-trip:
// Decode(Encode(v)) == v for every supported value.
type Codec[V any] interface {
	Encode(v V) ([]byte, error)
	Decode(b []byte) (V, error)
}

// pair packages an encode/decode function pair as a Codec.
type pair[V any] struct {
	enc func(V) ([]byte, error)
	dec func([]byte) (V, error)
}

func (p pair[V]) Encode(v V) ([]byte, error) { return p.enc(v) }
func (p pair[V]) Decode(b []byte) (V, error) { return p.dec(b) }

// Auto returns the default codec for V. The branch is selected once, when
// the codec is built, by inspecting the value type:
//   - byte strings (string, []byte) are stored verbatim
//   - numeric scalars and bool use a fixed-width little-endian encoding
//   - everything else goes through msgpack
//
// The cache is oblivious to the branch; it only sees bytes.
func Auto[V any]() Codec[V] {
	var zero V
	switch any(zero).(type) {
	case string:
		return pair[V]{
			enc: func(v V) ([]byte, error) { return []byte(any(v).(string)), nil },
			dec: func(b []byte) (V, error) { return any(string(b)).(V), nil },
		}
	case []byte:
		// Copy both ways: stored payloads must not alias caller slices.
		return pair[V]{
			enc: func(v V) ([]byte, error) {
				src := any(v).([]byte)
				dst := make([]byte, len(src))
				copy(dst, src)
				return dst, nil
			},
			dec: func(b []byte) (V, error) {
				dst := make([]byte, len(b))
				copy(dst, b)
				return any(dst).(V), nil
			},
		}
	case bool:
		return pair[V]{
			enc: func(v V) ([]byte, error) {
				if any(v).(bool) {
					return []byte{1}, nil
				}
				return []byte{0}, nil
			},
			dec: func(b []byte) (V, error) {
				if len(b) != 1 {
					var z V
					return z, fmt.Errorf("codec: bool payload must be 1 byte, got %d", len(b))
				}
				return any(b[0] == 1).(V), nil
			},
		}
	case int:
		return numeric(
			func(v V) uint64 { return uint64(int64(any(v).(int))) },
			func(u uint64) V { return any(int(int64(u))).(V) })
	case int8:
		return numeric(
			func(v V) uint64 { return uint64(int64(any(v).(int8))) },
			func(u uint64) V { return any(int8(int64(u))).(V) })
	case int16:
		return numeric(
			func(v V) uint64 { return uint64(int64(any(v).(int16))) },
			func(u uint64) V { return any(int16(int64(u))).(V) })
	case int32:
		return numeric(
			func(v V) uint64 { return uint64(int64(any(v).(int32))) },
			func(u uint64) V { return any(int32(int64(u))).(V) })
	case int64:
		return numeric(
			func(v V) uint64 { return uint64(any(v).(int64)) },
			func(u uint64) V { return any(int64(u)).(V) })
	case uint:
		return numeric(
			func(v V) uint64 { return uint64(any(v).(uint)) },
			func(u uint64) V { return any(uint(u)).(V) })
	case uint8:
		return numeric(
			func(v V) uint64 { return uint64(any(v).(uint8)) },
			func(u uint64) V { return any(uint8(u)).(V) })
	case uint16:
		return numeric(
			func(v V) uint64 { return uint64(any(v).(uint16)) },
			func(u uint64) V { return any(uint16(u)).(V) })
	case uint32:
		return numeric(
			func(v V) uint64 { return uint64(any(v).(uint32)) },
			func(u uint64) V { return any(uint32(u)).(V) })
	case uint64:
		return numeric(
			func(v V) uint64 { return any(v).(uint64) },
			func(u uint64) V { return any(u).(V) })
	case float32:
		return numeric(
			func(v V) uint64 { return uint64(math.Float32bits(any(v).(float32))) },
			func(u uint64) V { return any(math.Float32frombits(uint32(u))).(V) })
	case float64:
		return numeric(
			func(v V) uint64 { return math.Float64bits(any(v).(float64)) },
			func(u uint64) V { return any(math.Float64frombits(u)).(V) })
	default:
		return Msgpack[V]()
	}
}

// numeric builds an 8-byte little-endian codec from word conversion
// functions. All scalar kinds widen to a single uint64 word.
func numeric[V any](to func(V) uint64, from func(uint64) V) Codec[V] {
	return pair[V]{
		enc: func(v V) ([]byte, error) {
			b := make([]byte, 8)
			binary.LittleEndian.PutUint64(b, to(v))
			return b, nil
		},
		dec: func(b []byte) (V, error) {
			if len(b) != 8 {
				var z V
				return z, fmt.Errorf("codec: numeric payload must be 8 bytes, got %d", len(b))
			}
			return from(binary.LittleEndian.Uint64(b)), nil
		},
	}
}

// Msgpack returns a codec that serializes V with msgpack. It is the Auto
// branch for opaque user types; it also works for any type Auto special-
// cases, if a self-describing encoding is preferred.
func Msgpack[V any]() Codec[V] {
	return pair[V]{
		enc: func(v V) ([]byte, error) { return msgpack.Marshal(v) },
		dec: func(b []byte) (V, error) {
			var v V
			err := msgpack.Unmarshal(b, &v)
			return v, err
		},
	}
}
