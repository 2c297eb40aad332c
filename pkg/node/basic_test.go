package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adtree/pkg/store"
)

func TestBasicEncodeDecodeRoundTrip(t *testing.T) {
	meta := BasicMeta{Lower: []byte("aaa"), Upper: []byte("azz")}
	entries := []Entry{
		{Key: []byte("aab"), Val: []byte("1")},
		{Key: []byte("aac"), Val: []byte("2")},
		{Key: []byte("aba"), Val: []byte("3")},
	}
	p, size := EncodeBasic(TagBasicLeaf, meta, entries)
	require.LessOrEqual(t, size, len(p))

	tag, gotMeta, gotEntries := DecodeBasic(p)
	assert.Equal(t, TagBasicLeaf, tag)
	assert.Equal(t, meta.Lower, gotMeta.Lower)
	assert.Equal(t, meta.Upper, gotMeta.Upper)
	require.Len(t, gotEntries, 3)
	for i, e := range entries {
		assert.Equal(t, e.Key, gotEntries[i].Key)
		assert.Equal(t, e.Val, gotEntries[i].Val)
	}
}

func TestBasicLookupInsertRemove(t *testing.T) {
	b := Basic{Tag: TagBasicLeaf, Meta: BasicMeta{Lower: []byte("a"), Upper: []byte("z")}}
	b = b.WithInsert([]byte("m"), []byte("1"))
	b = b.WithInsert([]byte("b"), []byte("2"))
	b = b.WithInsert([]byte("x"), []byte("3"))

	v, ok := b.Lookup([]byte("b"))
	require.True(t, ok)
	assert.Equal(t, []byte("2"), v)

	// keys stay sorted
	require.Len(t, b.Entries, 3)
	assert.Equal(t, []byte("b"), b.Entries[0].Key)
	assert.Equal(t, []byte("m"), b.Entries[1].Key)
	assert.Equal(t, []byte("x"), b.Entries[2].Key)

	// update in place
	b = b.WithInsert([]byte("m"), []byte("updated"))
	v, ok = b.Lookup([]byte("m"))
	require.True(t, ok)
	assert.Equal(t, []byte("updated"), v)

	nb, removed := b.WithRemove([]byte("b"))
	require.True(t, removed)
	assert.Len(t, nb.Entries, 2)
	_, ok = nb.Lookup([]byte("b"))
	assert.False(t, ok)

	_, removed = nb.WithRemove([]byte("not-there"))
	assert.False(t, removed)
}

func TestBasicHintOnlyBuiltAboveThreshold(t *testing.T) {
	meta := BasicMeta{Lower: []byte(""), Upper: []byte("\xff")}
	entries := make([]Entry, 5)
	for i := range entries {
		entries[i] = Entry{Key: []byte{byte(i)}, Val: []byte{byte(i)}}
	}
	p, _ := EncodeBasic(TagBasicLeaf, meta, entries)
	hint := Hint(p)
	for _, h := range hint {
		assert.Equal(t, uint32(0), h)
	}
}

func TestBasicInnerChildNavigation(t *testing.T) {
	b := Basic{Tag: TagBasicInner, Meta: BasicMeta{Lower: []byte("a"), Upper: []byte("z"), UpperChild: 99}}
	b = b.WithInsertChild(0, []byte("m"), 1)
	b = b.WithInsertChild(1, []byte("t"), 2)

	assert.Equal(t, 3, b.ChildCount())
	assert.Equal(t, store.ID(1), b.GetChild(0))
	assert.Equal(t, store.ID(2), b.GetChild(1))
	assert.Equal(t, store.ID(99), b.GetChild(2))

	assert.Equal(t, 0, b.FindChildIndex([]byte("c")))
	assert.Equal(t, 1, b.FindChildIndex([]byte("n")))
	assert.Equal(t, 2, b.FindChildIndex([]byte("z")))
}
