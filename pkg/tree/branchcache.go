package tree

import (
	"adtree/pkg/bkey"
	"adtree/pkg/store"
)

// branchCache predicts, for each of a tree's top BranchCacheLevels levels,
// which child a read descent is likely to take next, based on the
// previous descent through that level (spec.md §4.7). A prediction is
// only ever trusted after confirming the target key still falls within
// the child's recorded fence bounds, so a stale prediction costs a
// FindChildIndex call it was trying to save, never a wrong answer — the
// one exception (arena ID reuse aliasing a stale nodeID onto an unrelated
// node) is closed by invalidating the whole cache on every mutation,
// since a reused ID can only appear after the node that held it was
// deleted by a split, merge, or conversion (see Tree.Insert/Tree.Delete).
type branchCache struct {
	entries      []branchCacheEntry
	hits, misses int
}

type branchCacheEntry struct {
	valid                  bool
	nodeID                 store.ID
	childIdx               int
	childLower, childUpper []byte
}

func newBranchCache(levels int) *branchCache {
	return &branchCache{entries: make([]branchCacheEntry, levels)}
}

// predict returns a cached child index for nodeID at level, if the cache
// holds one whose recorded fence bounds still contain key.
func (c *branchCache) predict(level int, nodeID store.ID, key []byte) (int, bool) {
	if level >= len(c.entries) {
		return 0, false
	}
	e := c.entries[level]
	if !e.valid || e.nodeID != nodeID {
		return 0, false
	}
	if !bkey.WithinLower(key, e.childLower) || !bkey.WithinUpper(key, e.childUpper) {
		c.misses++
		return 0, false
	}
	c.hits++
	return e.childIdx, true
}

// record stores nodeID's descent decision at level for future predictions.
func (c *branchCache) record(level int, nodeID store.ID, childIdx int, childLower, childUpper []byte) {
	if level >= len(c.entries) {
		return
	}
	c.entries[level] = branchCacheEntry{
		valid:      true,
		nodeID:     nodeID,
		childIdx:   childIdx,
		childLower: childLower,
		childUpper: childUpper,
	}
}

// accuracy reports the cache's observed hit rate over the tree's lifetime
// (invalidate clears the predictions, not the counters).
func (c *branchCache) accuracy() float64 {
	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total)
}

// invalidate drops every cached prediction. Called before any mutating
// descent (Insert/Delete), since a mutation anywhere in the tree can
// reuse a deleted node's arena ID for an unrelated node elsewhere.
func (c *branchCache) invalidate() {
	for i := range c.entries {
		c.entries[i] = branchCacheEntry{}
	}
}
