package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adtree/pkg/store"
)

func TestU32HeadEncodeDecodeRoundTrip(t *testing.T) {
	lower, upper := []byte("a"), []byte("z")
	keys := []uint32{}
	children := []store.ID{10}
	u := U32Head{Lower: lower, Upper: upper, Keys: keys, Children: children}
	u, ok := u.WithInsertChild(0, []byte("am"), 20)
	require.True(t, ok)
	u, ok = u.WithInsertChild(1, []byte("at"), 30)
	require.True(t, ok)

	p, size := u.Encode()
	require.LessOrEqual(t, size, len(p))

	gotLower, gotUpper, gotKeys, gotChildren := DecodeU32Head(p)
	assert.Equal(t, lower, gotLower)
	assert.Equal(t, upper, gotUpper)
	require.Len(t, gotKeys, 2)
	require.Len(t, gotChildren, 3)
	assert.Equal(t, store.ID(20), gotChildren[0])
	assert.Equal(t, store.ID(30), gotChildren[1])
	assert.Equal(t, store.ID(10), gotChildren[2])
}

func TestU32HeadFindChildIndex(t *testing.T) {
	u := U32Head{Lower: []byte("a"), Upper: []byte("z"), Children: []store.ID{99}}
	u, ok := u.WithInsertChild(0, []byte("am"), 1)
	require.True(t, ok)
	u, ok = u.WithInsertChild(1, []byte("at"), 2)
	require.True(t, ok)

	assert.Equal(t, 0, u.FindChildIndex([]byte("aa")))
	assert.Equal(t, 1, u.FindChildIndex([]byte("ar")))
	assert.Equal(t, 2, u.FindChildIndex([]byte("az")))
}

func TestU32HeadRejectsOversizeSeparator(t *testing.T) {
	u := U32Head{Lower: []byte(""), Upper: []byte("\xff\xff\xff\xff\xff"), Children: []store.ID{1}}
	_, ok := u.WithInsertChild(0, []byte{1, 2, 3, 4}, 2)
	assert.False(t, ok)
}

func TestFindChildU32LowerBoundConvention(t *testing.T) {
	keys := []uint32{10, 20, 30}
	assert.Equal(t, 0, FindChildU32(keys, 5))
	assert.Equal(t, 0, FindChildU32(keys, 10))
	assert.Equal(t, 1, FindChildU32(keys, 11))
	assert.Equal(t, 3, FindChildU32(keys, 31))
}

func TestMaxStrippedKeyLen(t *testing.T) {
	b := Basic{Tag: TagBasicInner, Meta: BasicMeta{Lower: []byte("a"), Upper: []byte("z"), UpperChild: 1}}
	b = b.WithInsertChild(0, []byte("am"), 2)
	b = b.WithInsertChild(1, []byte("atlantic"), 3)

	src := basicInnerSource{b}
	assert.Equal(t, len("atlantic"), MaxStrippedKeyLen(src))
}
