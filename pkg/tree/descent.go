package tree

import (
	"adtree/pkg/node"
	"adtree/pkg/store"
)

// insert descends to the leaf responsible for key, inserts (or updates)
// it there, and returns the pieces that should replace id in its parent —
// a single piece when no split occurred (spec.md §4.6: split on page
// overflow, otherwise 1).
func (t *Tree) insert(id store.ID, key, val []byte) []piece {
	p := t.Arena.Get(id)

	if node.IsLeafTag(p.Tag()) {
		leaf := node.WrapLeaf(p)
		updated := leaf.WithInsert(key, val)
		parts := splitLeaf(updated.Lower(), updated.Upper(), updated.RangeAscending())
		t.Arena.Del(id)
		return t.materializeLeaf(parts)
	}

	inner := node.WrapInner(p)
	idx := inner.FindChildIndex(key)
	childID := inner.GetChild(idx)

	childParts := t.insert(childID, key, val)

	lower, upper, entries, upperChild := node.ReadInner(p)
	n := len(entries)
	entries, upperChild = spliceChildren(entries, upperChild, idx, n, childParts)
	t.Arena.Del(id)

	parts := splitInner(lower, upper, entries, upperChild)
	return t.materializeInner(parts)
}

// delete descends to the leaf responsible for key, removes it if present,
// and returns the updated pieces (always exactly one: delete never
// splits) together with whether key was found. A nil piece slice paired
// with found=true at a leaf with zero remaining entries signals the
// caller to drop this child from its parent entirely, mirroring the
// teacher's empty-BNode convention (pkg/btree/tree.go's treeDelete).
func (t *Tree) delete(id store.ID, key []byte) ([]piece, bool) {
	p := t.Arena.Get(id)

	if node.IsLeafTag(p.Tag()) {
		leaf := node.WrapLeaf(p)
		updated, found := leaf.WithRemove(key)
		if !found {
			return []piece{{lower: leaf.Lower(), upper: leaf.Upper(), id: id}}, false
		}
		t.Arena.Del(id)
		if updated.Len() == 0 {
			return nil, true
		}
		page, size := updated.Encode()
		if size > store.PageSize {
			// A removal can never grow a node; this cannot happen for a
			// representation that fit before the removal.
			panic("tree: leaf grew during delete")
		}
		return []piece{{lower: updated.Lower(), upper: updated.Upper(), id: t.Arena.New(page)}}, true
	}

	inner := node.WrapInner(p)
	idx := inner.FindChildIndex(key)
	childID := inner.GetChild(idx)

	childParts, found := t.delete(childID, key)
	if !found {
		return []piece{{lower: inner.Lower(), upper: inner.Upper(), id: id}}, false
	}

	lower, upper, entries, upperChild := node.ReadInner(p)
	n := len(entries)
	t.Arena.Del(id)

	if childParts == nil {
		entries, upperChild = dropChild(entries, upperChild, idx, n)
		if n == 0 {
			// The only child vanished with nothing left to promote, so
			// this node is empty too and its parent drops it in turn (at
			// the root, Tree.Delete empties the tree).
			return nil, true
		}
	} else {
		entries, upperChild = spliceChildren(entries, upperChild, idx, n, childParts)
		entries, upperChild = t.maybeMergeChild(entries, upperChild, idx, n)
	}

	parts := splitInner(lower, upper, entries, upperChild)
	return t.materializeInner(parts), true
}

// spliceChildren replaces the child at position idx (of n original
// children, idx==n meaning the upperChild slot) with parts, a
// representation-neutral rebuild of the parent's separator list (spec.md
// §4.6's insert-child protocol, generalized to any number of split
// pieces instead of the teacher's fixed 1-3).
func spliceChildren(entries []node.Entry, upperChild store.ID, idx, n int, parts []piece) ([]node.Entry, store.ID) {
	if idx == n {
		rebuilt := append([]node.Entry(nil), entries...)
		for i := 0; i < len(parts)-1; i++ {
			rebuilt = append(rebuilt, node.Entry{Key: parts[i].upper, Val: node.EncodeChildID(parts[i].id)})
		}
		return rebuilt, parts[len(parts)-1].id
	}

	rebuilt := append([]node.Entry(nil), entries[:idx]...)
	for _, part := range parts {
		rebuilt = append(rebuilt, node.Entry{Key: part.upper, Val: node.EncodeChildID(part.id)})
	}
	rebuilt = append(rebuilt, entries[idx+1:]...)
	return rebuilt, upperChild
}

// dropChild removes the child at position idx entirely (its subtree
// became empty), promoting the next child in if the dropped child held
// the separator that bounded it.
func dropChild(entries []node.Entry, upperChild store.ID, idx, n int) ([]node.Entry, store.ID) {
	if idx == n {
		if len(entries) == 0 {
			return entries, upperChild
		}
		return entries[:len(entries)-1], node.DecodeChildID(entries[len(entries)-1].Val)
	}
	rebuilt := append([]node.Entry(nil), entries[:idx]...)
	rebuilt = append(rebuilt, entries[idx+1:]...)
	return rebuilt, upperChild
}

func (t *Tree) materializeLeaf(parts []leafPiece) []piece {
	out := make([]piece, len(parts))
	for i, part := range parts {
		page, size := t.encodeLeaf(part.lower, part.upper, part.entries)
		if size > store.PageSize {
			panic("tree: leaf split still exceeds a page")
		}
		out[i] = piece{lower: part.lower, upper: part.upper, id: t.Arena.New(page)}
	}
	return out
}

func (t *Tree) materializeInner(parts []innerPiece) []piece {
	out := make([]piece, len(parts))
	for i, part := range parts {
		page, size := t.encodeInner(part.lower, part.upper, part.entries, part.upperChild)
		if size > store.PageSize {
			panic("tree: inner split still exceeds a page")
		}
		out[i] = piece{lower: part.lower, upper: part.upper, id: t.Arena.New(page)}
	}
	return out
}
