package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func roundTrip[V comparable](t *testing.T, v V) {
	t.Helper()
	c := Auto[V]()
	b, err := c.Encode(v)
	require.NoError(t, err)
	got, err := c.Decode(b)
	require.NoError(t, err)
	require.Equal(t, v, got)
}

func TestAuto_Scalars(t *testing.T) {
	roundTrip(t, 0)
	roundTrip(t, -42)
	roundTrip(t, int(1<<62))
	roundTrip(t, int8(-128))
	roundTrip(t, int16(-30000))
	roundTrip(t, int32(-2147483648))
	roundTrip(t, int64(-1))
	roundTrip(t, uint(7))
	roundTrip(t, uint8(255))
	roundTrip(t, uint16(65535))
	roundTrip(t, uint32(4294967295))
	roundTrip(t, uint64(1<<63))
	roundTrip(t, float32(3.5))
	roundTrip(t, 2.718281828459045)
	roundTrip(t, true)
	roundTrip(t, false)
}

func TestAuto_Strings(t *testing.T) {
	roundTrip(t, "")
	roundTrip(t, "hello")
	roundTrip(t, "αβγ🙂")
	roundTrip(t, strings.Repeat("x", 1<<16))
}

func TestAuto_ByteSlice(t *testing.T) {
	c := Auto[[]byte]()

	src := []byte("payload")
	b, err := c.Encode(src)
	require.NoError(t, err)

	// The stored form must not alias the caller's slice.
	src[0] = 'X'
	got, err := c.Decode(b)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), got)
}

type user struct {
	ID    int64
	Name  string
	Tags  []string
	Score float64
}

func TestAuto_OpaqueStruct(t *testing.T) {
	c := Auto[user]()
	want := user{ID: 7, Name: "ada", Tags: []string{"x", "y"}, Score: 0.5}

	b, err := c.Encode(want)
	require.NoError(t, err)
	got, err := c.Decode(b)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestAuto_NumericRejectsShortPayload(t *testing.T) {
	c := Auto[int]()
	_, err := c.Decode([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestMsgpack_CoversScalarsToo(t *testing.T) {
	c := Msgpack[int]()
	b, err := c.Encode(123456)
	require.NoError(t, err)
	got, err := c.Decode(b)
	require.NoError(t, err)
	require.Equal(t, 123456, got)
}

func TestCompressors(t *testing.T) {
	payloads := [][]byte{
		nil,
		[]byte(""),
		[]byte("tiny"),
		[]byte(strings.Repeat("abcd", 4096)), // highly compressible
	}
	for _, cmp := range []Compressor{S2{}, Nop{}} {
		for _, p := range payloads {
			got, err := cmp.Decompress(cmp.Compress(p))
			require.NoError(t, err)
			require.Equal(t, len(p), len(got))
			require.Equal(t, string(p), string(got))
		}
	}
}

func TestS2_ActuallyShrinksRedundantInput(t *testing.T) {
	p := []byte(strings.Repeat("redundant ", 1000))
	packed := S2{}.Compress(p)
	require.Less(t, len(packed), len(p))
}
