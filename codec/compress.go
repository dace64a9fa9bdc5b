package codec

import "github.com/klauspost/compress/s2"

// Compressor shrinks encoded payloads before the cache stores them.
// Implementations must round-trip: Decompress(Compress(b)) == b.
type Compressor interface {
	Compress(b []byte) []byte
	Decompress(b []byte) ([]byte, error)
}

// S2 compresses payloads with the s2 block format (a Snappy derivative
// tuned for throughput). It is the default compressor.
type S2 struct{}

func (S2) Compress(b []byte) []byte            { return s2.Encode(nil, b) }
func (S2) Decompress(b []byte) ([]byte, error) { return s2.Decode(nil, b) }

// Nop stores payloads verbatim. Use it when values are tiny or already
// compressed and the s2 framing overhead is not worth paying.
type Nop struct{}

func (Nop) Compress(b []byte) []byte            { return b }
func (Nop) Decompress(b []byte) ([]byte, error) { return b, nil }

var (
	_ Compressor = S2{}
	_ Compressor = Nop{}
)
