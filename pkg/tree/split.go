package tree

import (
	"adtree/pkg/node"
	"adtree/pkg/store"
)

// piece is one fence-bounded chunk of a node that a split produced. A
// single-element slice means no split was needed.
type piece struct {
	lower, upper []byte
	id           store.ID
}

// leafPiece is one fence-bounded chunk of a split leaf, still decoded.
type leafPiece struct {
	lower, upper []byte
	entries      []node.Entry
}

func basicLeafFits(lower, upper []byte, entries []node.Entry) bool {
	_, size := node.EncodeBasic(node.TagBasicLeaf, node.BasicMeta{Lower: lower, Upper: upper}, entries)
	return size <= store.PageSize
}

func splitLeaf(lower, upper []byte, entries []node.Entry) []leafPiece {
	if len(entries) < 2 || basicLeafFits(lower, upper, entries) {
		return []leafPiece{{lower: lower, upper: upper, entries: entries}}
	}
	// sep must be the left piece's maximum key, not the right piece's
	// minimum: fences are lower-exclusive/upper-inclusive (bkey.WithinLower/
	// WithinUpper), and descent routes a key equal to a separator via
	// find_child_index's lower-bound convention, so a separator that isn't
	// itself a member of the left piece sends lookups for that exact key to
	// the wrong sibling. mid is (len-1)/2 rather than len/2 so that, after
	// folding entries[mid] into the left half, the right half is still
	// guaranteed at least one entry (and strictly fewer than len(entries)),
	// which len/2 does not guarantee at len(entries) == 2.
	mid := (len(entries) - 1) / 2
	sep := entries[mid].Key
	left := splitLeaf(lower, sep, entries[:mid+1])
	right := splitLeaf(sep, upper, entries[mid+1:])
	return append(left, right...)
}

// innerPiece is one fence-bounded chunk of a split inner node, still
// decoded. The parent's separator for a piece is the piece's upper fence
// (see spliceChildren); the last piece takes over the original child's
// upper fence and slot.
type innerPiece struct {
	lower, upper []byte
	entries      []node.Entry
	upperChild   store.ID
}

func basicInnerFits(lower, upper []byte, entries []node.Entry, upperChild store.ID) bool {
	meta := node.BasicMeta{Lower: lower, Upper: upper, UpperChild: upperChild}
	_, size := node.EncodeBasic(node.TagBasicInner, meta, entries)
	return size <= store.PageSize
}

// splitInner splits an inner node's separator/child list, pushing the
// middle separator up rather than copying it (classic B+ tree internal
// split: the middle child becomes the left piece's new upperChild, and
// the middle separator's key becomes the left fence of the right piece —
// which is also exactly the key the parent must insert as its new
// separator, since a pushed-up key belongs to neither child).
func splitInner(lower, upper []byte, entries []node.Entry, upperChild store.ID) []innerPiece {
	if len(entries) < 1 || basicInnerFits(lower, upper, entries, upperChild) {
		return []innerPiece{{lower: lower, upper: upper, entries: entries, upperChild: upperChild}}
	}
	mid := len(entries) / 2
	sep := entries[mid].Key
	sepChild := node.DecodeChildID(entries[mid].Val)

	left := splitInner(lower, sep, entries[:mid], sepChild)
	right := splitInner(sep, upper, entries[mid+1:], upperChild)
	return append(left, right...)
}
