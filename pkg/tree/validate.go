package tree

import (
	"bytes"
	"fmt"

	set3 "github.com/TomTonic/Set3"

	"adtree/pkg/bkey"
	"adtree/pkg/node"
	"adtree/pkg/store"
)

// fenced is satisfied by every LeafNode and InnerNode; it lets validateNode
// read a decoded node's bounds without switching on its tag.
type fenced interface {
	Lower() []byte
	Upper() []byte
}

// Validate walks the tree from the root and checks every structural
// invariant spec.md §8 lists: containment within fences, prefix_len ==
// lcp(lower,upper), sorted/distinct keys, hash-leaf hash correctness,
// head-array separator order, fence equality with the parent's separators,
// and that every live arena page is reachable from the root exactly once.
// It is grounded on the teacher's scattered assert() calls throughout
// node.go/tree.go, generalized into one recursive walk. Unlike
// internal/debug.Assert, which panics inline during normal operation on a
// debug build, Validate is a point-in-time external check meant for tests
// and operational tooling, always compiled in.
func (t *Tree) Validate() error {
	reachable := set3.Empty[store.ID]()
	if t.Root != 0 {
		if err := t.validateNode(t.Root, nil, nil, reachable); err != nil {
			return err
		}
	}

	live := t.Arena.LiveIDs()
	for _, id := range live {
		if !reachable.Contains(id) {
			return fmt.Errorf("tree: page %d is allocated but not reachable from the root", id)
		}
	}
	if reachable.Len() != len(live) {
		return fmt.Errorf("tree: reachable page count %d does not match live page count %d", reachable.Len(), len(live))
	}
	return nil
}

func (t *Tree) validateNode(id store.ID, lower, upper []byte, reachable *set3.Set3[store.ID]) error {
	if reachable.Contains(id) {
		return fmt.Errorf("tree: page %d reachable more than once", id)
	}
	reachable.Add(id)

	p := t.Arena.Get(id)
	n := node.Wrap(p)

	f, ok := n.(fenced)
	if !ok {
		return fmt.Errorf("tree: page %d has no fences", id)
	}
	if !bytes.Equal(f.Lower(), lower) {
		return fmt.Errorf("tree: page %d lower fence %q does not match parent separator %q", id, f.Lower(), lower)
	}
	if !bytes.Equal(f.Upper(), upper) {
		return fmt.Errorf("tree: page %d upper fence %q does not match parent separator %q", id, f.Upper(), upper)
	}

	wantPrefix := bkey.LCP(lower, upper)
	if n.PrefixLen() != wantPrefix {
		return fmt.Errorf("tree: page %d prefix_len %d != lcp(lower,upper) %d", id, n.PrefixLen(), wantPrefix)
	}

	if node.IsLeafTag(p.Tag()) {
		return validateLeaf(id, p, lower, upper)
	}
	return t.validateInner(id, n.(node.InnerNode), lower, upper, reachable)
}

func validateLeaf(id store.ID, p store.Page, lower, upper []byte) error {
	leaf := node.WrapLeaf(p)
	entries := leaf.RangeAscending()
	for i, e := range entries {
		if !bkey.WithinLower(e.Key, lower) || !bkey.WithinUpper(e.Key, upper) {
			return fmt.Errorf("tree: page %d key %q out of fence bounds (%q,%q]", id, e.Key, lower, upper)
		}
		if i > 0 && bytes.Compare(entries[i-1].Key, e.Key) >= 0 {
			return fmt.Errorf("tree: page %d keys out of order or duplicate around index %d", id, i)
		}
	}

	if p.Tag() != node.TagHashLeaf {
		return nil
	}

	_, _, rawEntries, sortedCount := node.DecodeHashLeaf(p)
	hashArr := node.HashArray(p)
	prefixLen := node.WrapLeaf(p).PrefixLen()
	for i, e := range rawEntries {
		if i > 0 && i < sortedCount && bytes.Compare(rawEntries[i-1].Key, e.Key) >= 0 {
			return fmt.Errorf("tree: hash leaf page %d sorted prefix out of order at %d", id, i)
		}
		if got, want := hashArr[i], node.HashByte(e.Key[prefixLen:]); got != want {
			return fmt.Errorf("tree: hash leaf page %d slot %d hash byte %d != H(key) %d", id, i, got, want)
		}
	}
	return nil
}

func (t *Tree) validateInner(id store.ID, inner node.InnerNode, lower, upper []byte, reachable *set3.Set3[store.ID]) error {
	src := inner.AsConversionSource()
	n := src.ChildCount() - 1

	var prevKey []byte
	for i := 0; i < n; i++ {
		key := src.GetKey(i, false)
		if i > 0 && bytes.Compare(prevKey, key) >= 0 {
			return fmt.Errorf("tree: page %d separators out of order at index %d", id, i)
		}
		prevKey = key
	}

	childLower := lower
	for i := 0; i <= n; i++ {
		childUpper := upper
		if i < n {
			childUpper = src.GetKey(i, false)
		}
		if err := t.validateNode(src.GetChild(i), childLower, childUpper, reachable); err != nil {
			return err
		}
		childLower = childUpper
	}
	return nil
}
