package bkey

import (
	"bytes"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLCP(t *testing.T) {
	assert.Equal(t, 3, LCP([]byte("abcdef"), []byte("abcxyz")))
	assert.Equal(t, 0, LCP([]byte("a"), []byte("b")))
	assert.Equal(t, 2, LCP([]byte("ab"), []byte("ab")))
	assert.Equal(t, 0, LCP(nil, []byte("x")))
}

func TestFenceHead32OrderMatchesByteOrder(t *testing.T) {
	keys := [][]byte{
		{}, {0x01}, {0x01, 0x02}, {'a'}, {'a', 'b'}, {'a', 'b', 'c'}, {'a', 'c'},
	}
	sorted := make([][]byte, len(keys))
	copy(sorted, keys)
	sort.Slice(sorted, func(i, j int) bool { return bytes.Compare(sorted[i], sorted[j]) < 0 })

	heads := make([]uint32, len(sorted))
	for i, k := range sorted {
		h, ok := FenceHead32(k)
		require.True(t, ok)
		heads[i] = h
	}
	for i := 1; i < len(heads); i++ {
		assert.Less(t, heads[i-1], heads[i], "fence head order must track byte order")
	}
}

func TestFenceHead32RoundTrip(t *testing.T) {
	for _, k := range [][]byte{{}, {1}, {1, 2}, {1, 2, 3}} {
		h, ok := FenceHead32(k)
		require.True(t, ok)
		assert.Equal(t, k, RestoreHead32(h))
	}
}

func TestFenceHead32RejectsLongKeys(t *testing.T) {
	_, ok := FenceHead32([]byte{1, 2, 3, 4})
	assert.False(t, ok)
}

func TestNeedleHead32Saturates(t *testing.T) {
	// A needle head never fails regardless of key length, and a key whose
	// first 4 bytes equal another key's first 4 bytes produces the same
	// needle head even if their full lengths differ.
	h1 := NeedleHead32([]byte("abcd"))
	h2 := NeedleHead32([]byte("abcdxyz"))
	assert.Equal(t, h1, h2)
}

// TestNeedleHead32OrdersAgainstShortFenceHead guards the exact failure the
// old saturating-with-no-length-byte scheme produced: a separator "a" has
// fence head {'a',0,0,1}. A query key "a\x00" is lexicographically greater
// than "a", so its needle head must compare greater too, which only holds
// if short needle heads reuse the length byte the same way fence heads do.
func TestNeedleHead32OrdersAgainstShortFenceHead(t *testing.T) {
	fence, ok := FenceHead32([]byte("a"))
	require.True(t, ok)
	needle := NeedleHead32([]byte("a\x00"))
	assert.Greater(t, needle, fence)
}

func TestFenceBounds(t *testing.T) {
	assert.True(t, WithinUpper([]byte("m"), nil))
	assert.True(t, WithinUpper([]byte("m"), []byte("z")))
	assert.False(t, WithinUpper([]byte("m"), []byte("a")))
	assert.True(t, WithinUpper([]byte("m"), []byte("m")))

	assert.True(t, WithinLower([]byte("m"), nil))
	assert.True(t, WithinLower([]byte("m"), []byte("a")))
	assert.False(t, WithinLower([]byte("m"), []byte("z")))
	assert.False(t, WithinLower([]byte("m"), []byte("m")))
}

func TestFenceHead64(t *testing.T) {
	k := []byte("abcdefg")
	h, ok := FenceHead64(k)
	require.True(t, ok)
	assert.Equal(t, k, RestoreHead64(h))

	_, ok = FenceHead64([]byte("abcdefgh"))
	assert.False(t, ok)
}
