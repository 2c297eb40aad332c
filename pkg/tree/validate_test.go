package tree

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adtree/pkg/node"
	"adtree/pkg/store"
)

func TestValidateEmptyTree(t *testing.T) {
	tr := newTestTree()
	assert.NoError(t, tr.Validate())
}

func TestValidatePassesAfterManyInsertsAndDeletes(t *testing.T) {
	tr := newTestTree()
	const n = 1200
	for i := 0; i < n; i++ {
		tr.Insert([]byte(fmt.Sprintf("k%06d", i)), []byte(fmt.Sprintf("v%d", i)))
		if i%37 == 0 {
			require.NoError(t, tr.Validate())
		}
	}
	for i := 0; i < n; i += 2 {
		tr.Delete([]byte(fmt.Sprintf("k%06d", i)))
	}
	require.NoError(t, tr.Validate())
}

// TestValidateSharedPrefixInnerNodes drives enough inserts sharing a
// 10-byte prefix to force multiple inner splits, then checks every
// non-root inner node has prefix_len >= 10 (spec.md end-to-end scenario
// table, #5).
func TestValidateSharedPrefixInnerNodes(t *testing.T) {
	tr := newTestTree()
	const n = 4000
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("prefixABCD%06d", i)
		tr.Insert([]byte(key), []byte(fmt.Sprintf("v%d", i)))
	}
	require.NoError(t, tr.Validate())

	var checkInner func(id store.ID, isRoot bool)
	checkInner = func(id store.ID, isRoot bool) {
		p := tr.Arena.Get(id)
		if node.IsLeafTag(p.Tag()) {
			return
		}
		inner := node.WrapInner(p)
		if !isRoot {
			assert.GreaterOrEqual(t, inner.PrefixLen(), 10)
		}
		src := inner.AsConversionSource()
		for i := 0; i < inner.ChildCount(); i++ {
			checkInner(src.GetChild(i), false)
		}
	}
	checkInner(tr.Root, true)
}

// TestValidateAdaptationToU32Head drives enough 3-byte keys through the
// tree, with AdaptK set to 1 so every qualifying inner rebuild narrows,
// that inner-node adaptation converts a node to U32Head (spec.md
// end-to-end scenario table, #6), then checks every key is still
// reachable and the tree remains structurally valid.
func TestValidateAdaptationToU32Head(t *testing.T) {
	tr := newTestTree()
	tr.Config.AdaptK = 1
	const n = 4000
	for i := 0; i < n; i++ {
		tr.Insert([]byte(fmt.Sprintf("%03x", i)), []byte(fmt.Sprintf("v%d", i)))
	}
	require.NoError(t, tr.Validate())

	found := false
	for _, id := range tr.Arena.LiveIDs() {
		if tr.Arena.Get(id).Tag() == node.TagU32Head {
			found = true
			break
		}
	}
	assert.True(t, found, "expected at least one U32Head inner node among %d inserts", n)

	for i := 0; i < n; i++ {
		k := fmt.Sprintf("%03x", i)
		_, ok := tr.Lookup([]byte(k))
		require.True(t, ok, "lookup %s", k)
	}
}
