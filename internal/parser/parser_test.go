package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWordAdvancesPastButNotThroughSpace(t *testing.T) {
	p := New([]byte("NEW rsa:abcd"))
	w := p.Word()
	require.Equal(t, []byte("NEW"), w)
	require.True(t, p.Space())
	w = p.Word()
	require.Equal(t, []byte("rsa:abcd"), w)
	require.True(t, p.End())
}

func TestWordEmptyAtSpace(t *testing.T) {
	p := New([]byte(" x"))
	w := p.Word()
	require.Equal(t, []byte{}, w)
}

func TestSpaceNoAdvanceOnFailure(t *testing.T) {
	p := New([]byte("ab"))
	require.False(t, p.Space())
	require.Equal(t, 0, p.Pos())
}

func TestStrMatch(t *testing.T) {
	p := New([]byte("PING rest"))
	require.True(t, p.Str([]byte("PING")))
	require.Equal(t, 4, p.Pos())
}

func TestStrNoMatchNoAdvance(t *testing.T) {
	p := New([]byte("PONG"))
	require.False(t, p.Str([]byte("PING")))
	require.Equal(t, 0, p.Pos())
}

func TestSomeStrLongestMatch(t *testing.T) {
	tags := []TagEntry{
		{Key: "NEW", Tag: []byte("NEW")},
		{Key: "NEWX", Tag: []byte("NEWX")},
	}
	p := New([]byte("NEWX rest"))
	key, ok := p.SomeStr(tags)
	require.True(t, ok)
	require.Equal(t, "NEWX", key)
	require.Equal(t, 4, p.Pos())
}

func TestSomeStrNoMatch(t *testing.T) {
	tags := []TagEntry{{Key: "NEW", Tag: []byte("NEW")}}
	p := New([]byte("OLD rest"))
	_, ok := p.SomeStr(tags)
	require.False(t, ok)
	require.Equal(t, 0, p.Pos())
}

func TestBase64(t *testing.T) {
	p := New([]byte("aGVsbG8= rest"))
	b, ok := p.Base64()
	require.True(t, ok)
	require.Equal(t, []byte("hello"), b)
	require.True(t, p.Space())
}

func TestBase64EmptyFails(t *testing.T) {
	p := New([]byte(" rest"))
	_, ok := p.Base64()
	require.False(t, ok)
	require.Equal(t, 0, p.Pos())
}

func TestDecimal(t *testing.T) {
	p := New([]byte("12345 rest"))
	n, ok := p.Decimal()
	require.True(t, ok)
	require.Equal(t, 12345, n)
}

func TestDecimalFailsOnNonDigit(t *testing.T) {
	p := New([]byte("-1"))
	_, ok := p.Decimal()
	require.False(t, ok)
	require.Equal(t, 0, p.Pos())
}

func TestDateRoundTrip(t *testing.T) {
	p := New([]byte("2024-01-02T03:04:05.000000000Z rest"))
	_, ok := p.Date()
	require.True(t, ok)
	require.True(t, p.Space())
}

func TestDateFailsNoAdvance(t *testing.T) {
	p := New([]byte("not-a-date rest"))
	_, ok := p.Date()
	require.False(t, ok)
	require.Equal(t, 0, p.Pos())
}

func TestVersionParsesFourComponents(t *testing.T) {
	p := New([]byte("0.4.1.0 rest"))
	v, ok := p.Version()
	require.True(t, ok)
	require.Equal(t, [4]int{0, 4, 1, 0}, v)
	require.True(t, p.Space())
}

func TestVersionFailsOnMalformedToken(t *testing.T) {
	p := New([]byte("not-a-version rest"))
	_, ok := p.Version()
	require.False(t, ok)
	require.Equal(t, 0, p.Pos())
}

func TestVersionFailsOnOverlongToken(t *testing.T) {
	long := make([]byte, 60)
	for i := range long {
		long[i] = '1'
	}
	p := New(long)
	_, ok := p.Version()
	require.False(t, ok)
	require.Equal(t, 0, p.Pos())
}

func TestTryRestoresOnFailure(t *testing.T) {
	p := New([]byte("abc"))
	_, ok := Try(p, func() (struct{}, bool) {
		p.Take(2)
		return struct{}{}, false
	})
	require.False(t, ok)
	require.Equal(t, 0, p.Pos())
}

func TestTryKeepsAdvanceOnSuccess(t *testing.T) {
	p := New([]byte("abc"))
	_, ok := Try(p, func() (struct{}, bool) {
		p.Take(2)
		return struct{}{}, true
	})
	require.True(t, ok)
	require.Equal(t, 2, p.Pos())
}

func TestEnd(t *testing.T) {
	p := New([]byte("ab"))
	require.False(t, p.End())
	p.Take(2)
	require.True(t, p.End())
}
