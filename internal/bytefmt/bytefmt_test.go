package bytefmt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBase64RoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte{},
		[]byte("a"),
		[]byte("ab"),
		[]byte("abc"),
		[]byte("simplex messaging protocol"),
		make([]byte, 256),
	}
	for _, c := range cases {
		enc := EncodeBase64(c)
		dec, err := DecodeBase64(enc)
		require.NoError(t, err)
		require.True(t, bytes.Equal(c, dec), "round trip of %q", c)
	}
}

func TestEncodeBase64Length(t *testing.T) {
	for n := 0; n < 32; n++ {
		b := make([]byte, n)
		enc := EncodeBase64(b)
		want := ((n + 2) / 3) * 4
		require.Equal(t, want, len(enc), "n=%d", n)
	}
}

func TestUint32BERoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	PutUint32BE(buf, 0xdeadbeef)
	require.Equal(t, uint32(0xdeadbeef), Uint32BE(buf))
}

func TestUint16BERoundTrip(t *testing.T) {
	buf := make([]byte, 2)
	PutUint16BE(buf, 0xbeef)
	require.Equal(t, uint16(0xbeef), Uint16BE(buf))
}

func TestDecimalRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 255, 4096, 65536} {
		d := Decimal(n)
		got, err := ParseDecimal(d)
		require.NoError(t, err)
		require.Equal(t, n, got)
	}
}

func TestPadRight(t *testing.T) {
	out := PadRight([]byte("hi"), 5, '#')
	require.Equal(t, []byte("hi###"), out)

	out = PadRight([]byte("hello"), 5, '#')
	require.Equal(t, []byte("hello"), out)
}

func TestIsSpace(t *testing.T) {
	require.True(t, IsSpace(' '))
	require.False(t, IsSpace('a'))
	require.False(t, IsSpace('\t'))
}
