package tree

import (
	"math/rand/v2"

	"adtree/pkg/bkey"
	"adtree/pkg/node"
	"adtree/pkg/store"
)

// sliceSource adapts a bare (lower, upper, entries, upperChild) tuple —
// the representation-neutral shape every inner split/merge/insert
// produces — to node.ConversionSource, so the freshly rebuilt node can be
// handed straight to the conversion sinks without a round trip through an
// encoded page.
type sliceSource struct {
	lower, upper []byte
	entries      []node.Entry
	upperChild   store.ID
}

func (s sliceSource) Lower() []byte { return s.lower }
func (s sliceSource) Upper() []byte { return s.upper }

func (s sliceSource) ChildCount() int { return len(s.entries) + 1 }

func (s sliceSource) GetChild(i int) store.ID {
	if i == len(s.entries) {
		return s.upperChild
	}
	return node.DecodeChildID(s.entries[i].Val)
}

func (s sliceSource) GetKey(i int, stripped bool) []byte {
	k := s.entries[i].Key
	if stripped {
		return k[bkey.LCP(s.lower, s.upper):]
	}
	return k
}

// encodeInner builds the page for a freshly rebuilt inner node. With
// probability 1/Config.AdaptK it first tries narrowing the node into a
// head-array representation (spec.md §4.8), gated the way adapt_inner
// gates it: a node with fewer than 20 separators is left Basic outright
// (too few entries for the narrower layout to pay for itself), and
// MaxStrippedKeyLen skips the attempt entirely once the longest stripped
// separator exceeds 8 bytes, since no head width could ever encode it. Within
// that window the conversion still only succeeds when every separator's
// stripped key fits the target width and the result fits a page, so a node
// that doesn't qualify falls back to Basic exactly as it would without
// adaptation; DefaultInnerSinks' narrowest-first order (U32Head, then
// U64Head) does the max_len-ranged branching §4.8 spells out explicitly,
// short of its "trailing-zeros risk" tie-break between U32Head and U64Head
// at max_len==4, which this collapses into a plain fallback (DESIGN.md).
func (t *Tree) encodeInner(lower, upper []byte, entries []node.Entry, upperChild store.ID) (store.Page, int) {
	src := sliceSource{lower: lower, upper: upper, entries: entries, upperChild: upperChild}
	if len(entries) >= 20 && node.MaxStrippedKeyLen(src) <= 8 && rand.IntN(t.Config.AdaptK) == 0 {
		if p, size, ok := node.DefaultInnerSinks.TryBuild(src); ok && size <= store.PageSize {
			return p, size
		}
	}
	meta := node.BasicMeta{Lower: lower, Upper: upper, UpperChild: upperChild}
	return node.EncodeBasic(node.TagBasicInner, meta, entries)
}

// encodeLeaf builds the page for a freshly rebuilt leaf. With probability
// 1/Config.HashLeafK it builds a hash leaf instead of a sorted-slot leaf —
// entries arrives already sorted (every leaf split/merge produces its
// pieces in ascending order), so the hash leaf starts out fully sorted
// (sortedCount == len(entries)), matching spec.md §4.3's description of a
// freshly built hash leaf before any further unsorted arrivals land in its
// tail. A hash leaf never rejects a build the way a head-array inner node
// can, so there is no fallback path here.
func (t *Tree) encodeLeaf(lower, upper []byte, entries []node.Entry) (store.Page, int) {
	if rand.IntN(t.Config.HashLeafK) == 0 {
		return node.EncodeHashLeaf(lower, upper, entries, len(entries))
	}
	meta := node.BasicMeta{Lower: lower, Upper: upper}
	return node.EncodeBasic(node.TagBasicLeaf, meta, entries)
}
