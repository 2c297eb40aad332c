package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adtree/pkg/store"
)

func buildBasicInner(t *testing.T) Basic {
	t.Helper()
	b := Basic{Tag: TagBasicInner, Meta: BasicMeta{Lower: []byte(""), Upper: []byte("\xff"), UpperChild: 3}}
	b = b.WithInsertChild(0, []byte("m"), 1)
	b = b.WithInsertChild(1, []byte("t"), 2)
	return b
}

func TestConvertBasicToU32HeadAndBack(t *testing.T) {
	b := buildBasicInner(t)
	src := basicInnerSource{b}

	p, _, ok := (u32HeadSink{}).TryBuild(src)
	require.True(t, ok)
	u := DecodeU32HeadNode(p)
	require.Equal(t, 3, u.ChildCount())
	assert.Equal(t, store.ID(1), u.GetChild(0))
	assert.Equal(t, store.ID(2), u.GetChild(1))
	assert.Equal(t, store.ID(3), u.GetChild(2))

	// round trip back to Basic
	back := u32HeadSource{u}
	p2, _, ok := (basicInnerSink{}).TryBuild(back)
	require.True(t, ok)
	nb := DecodeBasicNode(p2)
	require.Len(t, nb.Entries, 2)
	assert.Equal(t, []byte("m"), nb.Entries[0].Key)
	assert.Equal(t, []byte("t"), nb.Entries[1].Key)
}

func TestFallbackSinkFallsBackWhenSeparatorTooWide(t *testing.T) {
	b := Basic{Tag: TagBasicInner, Meta: BasicMeta{Lower: []byte(""), Upper: []byte("\xff\xff\xff\xff\xff"), UpperChild: 2}}
	b = b.WithInsertChild(0, []byte{1, 2, 3, 4}, 1) // 4 bytes: too wide for a 4-byte fence head
	src := basicInnerSource{b}

	_, _, ok := (u32HeadSink{}).TryBuild(src)
	assert.False(t, ok, "u32 sink must reject a 4-byte stripped separator")

	p, _, ok := DefaultInnerSinks.TryBuild(src)
	require.True(t, ok, "fallback chain must still succeed via u64 or basic")
	require.NotNil(t, p)
	require.True(t, IsInnerTag(p[0]))
}

func TestWrapDispatchesOnTag(t *testing.T) {
	meta := BasicMeta{Lower: []byte("a"), Upper: []byte("z")}
	p, _ := EncodeBasic(TagBasicLeaf, meta, []Entry{{Key: []byte("m"), Val: []byte("1")}})
	leaf := WrapLeaf(p)
	v, ok := leaf.Lookup([]byte("m"))
	require.True(t, ok)
	assert.Equal(t, []byte("1"), v)

	hp, _ := EncodeHashLeaf([]byte("a"), []byte("z"), []Entry{{Key: []byte("m"), Val: []byte("2")}}, 1)
	hleaf := WrapLeaf(hp)
	v, ok = hleaf.Lookup([]byte("m"))
	require.True(t, ok)
	assert.Equal(t, []byte("2"), v)

	inner := buildBasicInner(t)
	ip, _ := inner.Encode()
	iw := WrapInner(ip)
	assert.Equal(t, 3, iw.ChildCount())
}
