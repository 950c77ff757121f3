package dex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUleb128Decode(t *testing.T) {
	tests := []struct {
		in   []byte
		want uint32
		n    int
	}{
		{[]byte{0x00}, 0, 1},
		{[]byte{0x01}, 1, 1},
		{[]byte{0x7f}, 127, 1},
		{[]byte{0x80, 0x01}, 128, 2},
		{[]byte{0xb4, 0x07}, 948, 2},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0xffffffff, 5},
		// Trailing bytes after the terminator are not consumed.
		{[]byte{0x02, 0xff}, 2, 1},
	}
	for _, tt := range tests {
		v, n, err := Uleb128(tt.in)
		require.NoError(t, err, "input % x", tt.in)
		require.Equal(t, tt.want, v, "input % x", tt.in)
		require.Equal(t, tt.n, n, "input % x", tt.in)
	}
}

func TestUleb128Errors(t *testing.T) {
	var fe *FormatError

	// No terminator within the five-byte maximum.
	_, _, err := Uleb128([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x00})
	require.ErrorAs(t, err, &fe)

	// Buffer ends mid-encoding.
	_, _, err = Uleb128([]byte{0x80, 0x80})
	require.ErrorAs(t, err, &fe)

	_, _, err = Uleb128(nil)
	require.ErrorAs(t, err, &fe)
}

func TestUleb128RoundTrip(t *testing.T) {
	values := []uint32{0, 1, 127, 128, 129, 948, 16384, 1 << 20, 0x7fffffff, 0xffffffff}
	for _, want := range values {
		enc := AppendUleb128(nil, want)
		v, n, err := Uleb128(enc)
		require.NoError(t, err)
		require.Equal(t, want, v)
		require.Equal(t, len(enc), n, "encoding of %d is not minimal", want)

		// Decoding and re-encoding a value reproduces its minimal form.
		require.Equal(t, enc, AppendUleb128(nil, v))
	}
}

func TestCursorAdvances(t *testing.T) {
	c := cursor{data: []byte{0x80, 0x01, 0x05, 0x34, 0x12}}

	v, err := c.uleb()
	require.NoError(t, err)
	require.Equal(t, uint32(128), v)
	require.Equal(t, 2, c.off)

	b, err := c.byte()
	require.NoError(t, err)
	require.Equal(t, byte(0x05), b)

	u, err := c.uint(2)
	require.NoError(t, err)
	require.Equal(t, uint64(0x1234), u)

	_, err = c.byte()
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
}
