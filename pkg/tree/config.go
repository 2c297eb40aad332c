// Package tree implements the B+ tree driver: descent with a branch-cache
// predictor, the split/insert-child protocol, underflow-triggered merge,
// range iteration, and the probabilistic representation adaptation that
// converts inner nodes into narrower head-array formats.
//
// It is grounded on the teacher's pkg/btree.BTree (tree.go) — the same
// recursive insert/split/delete/merge shape — generalized from the
// teacher's single fixed BNode layout to pkg/node's four representations
// addressed through the node.LeafNode/node.InnerNode capability interfaces,
// and from the teacher's first-key-is-separator convention to explicit
// fence keys (spec.md §3/§4.6).
package tree

import "adtree/pkg/store"

// Config holds tunables for the tree driver.
type Config struct {
	// MergeThreshold is the encoded size (bytes) below which a node is a
	// merge candidate after a delete, grounded on the teacher's
	// shouldMerge (pkg/btree/tree.go), which uses page_size/4.
	MergeThreshold int

	// AdaptK is the "1 in K" probability denominator adaptation uses when
	// deciding whether to attempt converting an inner node into a narrower
	// head-array representation each time an insert or delete rebuilds it
	// (spec.md §4.8). Inner nodes produced by a merge are always Basic.
	AdaptK int

	// BranchCacheLevels bounds how many levels from the root the branch
	// cache predicts (spec.md §4.7).
	BranchCacheLevels int

	// HashLeafK is the "1 in K" probability denominator used when deciding
	// whether a leaf rebuilt by an insert or a merge is built as a hash
	// leaf instead of a sorted-slot leaf. Set to 4 to match spec.md §2's
	// component table, which weights hash leaves and sorted-slot leaves
	// equally (25% each) among the engine's responsibilities.
	HashLeafK int
}

// DefaultConfig matches the teacher's defaults (pkg/btree.DefaultConfig)
// where the shapes correspond, scaled to this package's node sizes.
var DefaultConfig = Config{
	MergeThreshold:    store.PageSize / 4,
	AdaptK:            8,
	BranchCacheLevels: 4,
	HashLeafK:         4,
}
