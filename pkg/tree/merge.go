package tree

import (
	"adtree/pkg/node"
	"adtree/pkg/store"
)

// maybeMergeChild inspects the child at position idx (of n original
// children, idx==n meaning the upperChild slot) after a delete, and — if
// it has shrunk below Config.MergeThreshold — tries folding it into its
// left, then its right, sibling, grounded on the teacher's shouldMerge/
// nodeMerge (pkg/btree/tree.go): same left-then-right preference, same
// "only merge if the combined node still fits a page" gate, generalized
// from the teacher's single fixed-size BNode to any pair of (possibly
// differently represented) leaf or inner siblings.
func (t *Tree) maybeMergeChild(entries []node.Entry, upperChild store.ID, idx, n int) ([]node.Entry, store.ID) {
	updatedID := childIDAt(entries, upperChild, idx, n)
	updatedPage := t.Arena.Get(updatedID)
	if _, size := node.Wrap(updatedPage).Encode(); size > t.Config.MergeThreshold {
		return entries, upperChild
	}

	if idx > 0 {
		leftID := childIDAt(entries, upperChild, idx-1, n)
		leftPage := t.Arena.Get(leftID)
		if merged, _, ok := t.tryMergeSiblings(leftPage, updatedPage); ok {
			t.Arena.Del(leftID)
			t.Arena.Del(updatedID)
			mergedID := t.Arena.New(merged)
			return collapseChildren(entries, upperChild, idx-1, idx, n, mergedID)
		}
	}

	if idx < n {
		rightID := childIDAt(entries, upperChild, idx+1, n)
		rightPage := t.Arena.Get(rightID)
		if merged, _, ok := t.tryMergeSiblings(updatedPage, rightPage); ok {
			t.Arena.Del(updatedID)
			t.Arena.Del(rightID)
			mergedID := t.Arena.New(merged)
			return collapseChildren(entries, upperChild, idx, idx+1, n, mergedID)
		}
	}

	return entries, upperChild
}

func childIDAt(entries []node.Entry, upperChild store.ID, i, n int) store.ID {
	if i == n {
		return upperChild
	}
	return node.DecodeChildID(entries[i].Val)
}

// collapseChildren replaces the two adjacent children at lo and hi
// (hi == lo+1) with a single merged child, dropping the separator between
// them.
func collapseChildren(entries []node.Entry, upperChild store.ID, lo, hi, n int, mergedID store.ID) ([]node.Entry, store.ID) {
	if hi == n {
		return entries[:lo], mergedID
	}
	rebuilt := append([]node.Entry(nil), entries[:lo]...)
	rebuilt = append(rebuilt, node.Entry{Key: entries[hi].Key, Val: node.EncodeChildID(mergedID)})
	rebuilt = append(rebuilt, entries[hi+1:]...)
	return rebuilt, upperChild
}

// tryMergeSiblings merges two adjacent leaf or two adjacent inner nodes
// (a before b) into one page, reporting ok=false if the combined node
// would not fit a page. Both inputs are always the same kind (leaf or
// inner), since siblings live at the same tree level. A merged leaf goes
// through the same representation draw as a freshly split leaf
// (t.encodeLeaf); a merged inner node always rebuilds as Basic — merge
// only ever shrinks a node, and the adaptation draw gets another chance
// to narrow it the next time an insert or delete rebuilds it.
func (t *Tree) tryMergeSiblings(a, b store.Page) (store.Page, int, bool) {
	if node.IsLeafTag(a.Tag()) {
		la, lb := node.WrapLeaf(a), node.WrapLeaf(b)
		entries := append(append([]node.Entry(nil), la.RangeAscending()...), lb.RangeAscending()...)
		p, size := t.encodeLeaf(la.Lower(), lb.Upper(), entries)
		return p, size, size <= store.PageSize
	}

	aLower, aUpper, aEntries, aUpperChild := node.ReadInner(a)
	_, bUpper, bEntries, bUpperChild := node.ReadInner(b)
	combined := append([]node.Entry(nil), aEntries...)
	combined = append(combined, node.Entry{Key: aUpper, Val: node.EncodeChildID(aUpperChild)})
	combined = append(combined, bEntries...)
	meta := node.BasicMeta{Lower: aLower, Upper: bUpper, UpperChild: bUpperChild}
	p, size := node.EncodeBasic(node.TagBasicInner, meta, combined)
	return p, size, size <= store.PageSize
}
