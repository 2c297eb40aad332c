package tree

import (
	"bytes"

	"adtree/pkg/node"
	"adtree/pkg/store"
)

// Tree is a B+ tree over a page Arena. The zero value is not usable;
// construct one with NewTree. Tree is not safe for concurrent use (see
// store.Arena's doc comment); pkg/db serializes access at its boundary.
type Tree struct {
	// Root is the arena ID of the tree's root page. Zero means the tree
	// is empty.
	Root store.ID

	Arena  *store.Arena
	Config Config

	cache *branchCache
}

// NewTree creates an empty tree backed by arena.
func NewTree(arena *store.Arena) *Tree {
	return &Tree{
		Arena:  arena,
		Config: DefaultConfig,
		cache:  newBranchCache(DefaultConfig.BranchCacheLevels),
	}
}

// Insert adds or updates the value stored under key.
func (t *Tree) Insert(key, val []byte) {
	t.cache.invalidate()

	if t.Root == 0 {
		leaf := node.Basic{Tag: node.TagBasicLeaf}
		leaf = leaf.WithInsert(key, val)
		page, size := leaf.Encode()
		if size > store.PageSize {
			panic(ErrKeyTooLarge)
		}
		t.Root = t.Arena.New(page)
		return
	}

	parts := t.insert(t.Root, key, val)
	t.Root = t.installRoot(parts)
}

// installRoot takes the (possibly split) replacement pieces for the root
// and returns the new root ID, growing the tree by one level when the old
// root split (spec.md §4.6: a split that reaches the root adds a level).
func (t *Tree) installRoot(parts []piece) store.ID {
	if len(parts) == 1 {
		return parts[0].id
	}

	entries := make([]node.Entry, len(parts)-1)
	for i := 0; i < len(parts)-1; i++ {
		entries[i] = node.Entry{Key: parts[i].upper, Val: node.EncodeChildID(parts[i].id)}
	}
	meta := node.BasicMeta{Lower: nil, Upper: nil, UpperChild: parts[len(parts)-1].id}
	page, size := node.EncodeBasic(node.TagBasicInner, meta, entries)
	if size > store.PageSize {
		panic("tree: new root does not fit a page")
	}
	return t.Arena.New(page)
}

// Lookup returns the value stored under key, if present.
func (t *Tree) Lookup(key []byte) ([]byte, bool) {
	if t.Root == 0 {
		return nil, false
	}
	return t.lookup(t.Root, key, 0)
}

func (t *Tree) lookup(id store.ID, key []byte, level int) ([]byte, bool) {
	p := t.Arena.Get(id)

	if node.IsLeafTag(p.Tag()) {
		return node.WrapLeaf(p).Lookup(key)
	}

	inner := node.WrapInner(p)

	idx, ok := t.cache.predict(level, id, key)
	if !ok {
		idx = inner.FindChildIndex(key)
	}

	childLower, childUpper := childFenceBounds(inner, idx)
	t.cache.record(level, id, idx, childLower, childUpper)

	return t.lookup(inner.GetChild(idx), key, level+1)
}

// childFenceBounds returns child idx's fence bounds: separator idx-1
// (exclusive lower) and separator idx (inclusive upper), falling back to
// the node's own fences at either end.
func childFenceBounds(inner node.InnerNode, idx int) (lower, upper []byte) {
	n := inner.ChildCount() - 1
	src := inner.AsConversionSource()
	if idx == 0 {
		lower = inner.Lower()
	} else {
		lower = src.GetKey(idx-1, false)
	}
	if idx == n {
		upper = inner.Upper()
	} else {
		upper = src.GetKey(idx, false)
	}
	return lower, upper
}

// CacheAccuracy reports the branch predictor's hit rate since the tree
// was created, for callers instrumenting lookup performance.
func (t *Tree) CacheAccuracy() float64 {
	return t.cache.accuracy()
}

// Delete removes key, reporting whether it was present.
func (t *Tree) Delete(key []byte) bool {
	if t.Root == 0 {
		return false
	}
	t.cache.invalidate()

	parts, found := t.delete(t.Root, key)
	if !found {
		return false
	}
	if parts == nil {
		t.Root = 0
		return true
	}

	root := parts[0]
	t.Root = root.id
	t.collapseRoot()
	return true
}

// collapseRoot drops a level whenever the root is an inner node with no
// separators left (a single surviving child), the classic B+ tree height
// shrink after repeated merges.
func (t *Tree) collapseRoot() {
	for {
		p := t.Arena.Get(t.Root)
		if node.IsLeafTag(p.Tag()) {
			return
		}
		inner := node.WrapInner(p)
		if inner.ChildCount() != 1 {
			return
		}
		only := inner.GetChild(0)
		t.Arena.Del(t.Root)
		t.Root = only
	}
}

// RangeAscending returns every key/value pair in [start,end) in ascending
// key order. A nil start or end means unbounded on that side.
func (t *Tree) RangeAscending(start, end []byte) []node.Entry {
	if t.Root == 0 {
		return nil
	}
	var out []node.Entry
	t.walkLeaves(t.Root, func(e node.Entry) bool {
		if start != nil && bytes.Compare(e.Key, start) < 0 {
			return true
		}
		if end != nil && bytes.Compare(e.Key, end) >= 0 {
			return false
		}
		out = append(out, e)
		return true
	})
	return out
}

// Traverse visits every key/value pair in ascending key order.
func (t *Tree) Traverse(visit func(key, val []byte)) {
	if t.Root == 0 {
		return
	}
	t.walkLeaves(t.Root, func(e node.Entry) bool {
		visit(e.Key, e.Val)
		return true
	})
}

// walkLeaves visits every leaf entry reachable from id in ascending key
// order, stopping early if visit returns false.
func (t *Tree) walkLeaves(id store.ID, visit func(node.Entry) bool) bool {
	p := t.Arena.Get(id)
	if node.IsLeafTag(p.Tag()) {
		for _, e := range node.WrapLeaf(p).RangeAscending() {
			if !visit(e) {
				return false
			}
		}
		return true
	}
	inner := node.WrapInner(p)
	for i := 0; i < inner.ChildCount(); i++ {
		if !t.walkLeaves(inner.GetChild(i), visit) {
			return false
		}
	}
	return true
}

// RangeDescending returns every key/value pair in [start,end) in
// descending key order (spec.md §4.6's range_lookup_desc: "the mirror
// image using lower fences and reverse slot order"). A nil start or end
// means unbounded on that side.
func (t *Tree) RangeDescending(start, end []byte) []node.Entry {
	if t.Root == 0 {
		return nil
	}
	var out []node.Entry
	t.walkLeavesDescending(t.Root, func(e node.Entry) bool {
		if end != nil && bytes.Compare(e.Key, end) >= 0 {
			return true
		}
		if start != nil && bytes.Compare(e.Key, start) < 0 {
			return false
		}
		out = append(out, e)
		return true
	})
	return out
}

// walkLeavesDescending is walkLeaves' mirror image: same whole-subtree
// recursive walk, but children and leaf entries are visited back to
// front, so a single in-order traversal yields descending key order
// without reconstructing a "next key" to re-descend from the root between
// leaves.
func (t *Tree) walkLeavesDescending(id store.ID, visit func(node.Entry) bool) bool {
	p := t.Arena.Get(id)
	if node.IsLeafTag(p.Tag()) {
		for _, e := range node.WrapLeaf(p).RangeDescending() {
			if !visit(e) {
				return false
			}
		}
		return true
	}
	inner := node.WrapInner(p)
	for i := inner.ChildCount() - 1; i >= 0; i-- {
		if !t.walkLeavesDescending(inner.GetChild(i), visit) {
			return false
		}
	}
	return true
}
