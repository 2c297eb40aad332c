package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBranchCachePredictMissesWhenEmpty(t *testing.T) {
	c := newBranchCache(4)
	_, ok := c.predict(0, 1, []byte("k"))
	assert.False(t, ok)
}

func TestBranchCacheRecordThenPredictHitsWithinBounds(t *testing.T) {
	c := newBranchCache(4)
	c.record(0, 1, 3, []byte("a"), []byte("m"))

	idx, ok := c.predict(0, 1, []byte("h"))
	assert.True(t, ok)
	assert.Equal(t, 3, idx)
	assert.Equal(t, 1, c.hits)
}

func TestBranchCachePredictMissesOutsideBounds(t *testing.T) {
	c := newBranchCache(4)
	c.record(0, 1, 3, []byte("a"), []byte("m"))

	_, ok := c.predict(0, 1, []byte("z"))
	assert.False(t, ok)
	assert.Equal(t, 1, c.misses)
}

func TestBranchCachePredictMissesOnDifferentNode(t *testing.T) {
	c := newBranchCache(4)
	c.record(0, 1, 3, []byte("a"), []byte("m"))

	_, ok := c.predict(0, 2, []byte("h"))
	assert.False(t, ok)
}

func TestBranchCacheBeyondConfiguredDepthNeverCaches(t *testing.T) {
	c := newBranchCache(2)
	c.record(5, 1, 3, []byte("a"), []byte("m"))
	_, ok := c.predict(5, 1, []byte("h"))
	assert.False(t, ok)
}

func TestBranchCacheInvalidateClearsAllLevels(t *testing.T) {
	c := newBranchCache(4)
	c.record(0, 1, 3, []byte("a"), []byte("m"))
	c.record(1, 2, 1, []byte("a"), []byte("m"))

	c.invalidate()

	_, ok := c.predict(0, 1, []byte("h"))
	assert.False(t, ok)
	_, ok = c.predict(1, 2, []byte("h"))
	assert.False(t, ok)
}

func TestBranchCacheAccuracy(t *testing.T) {
	c := newBranchCache(4)
	assert.Equal(t, 0.0, c.accuracy())

	c.record(0, 1, 0, []byte("a"), []byte("m"))
	c.predict(0, 1, []byte("h")) // hit
	c.predict(0, 1, []byte("z")) // miss (out of bounds)

	assert.InDelta(t, 0.5, c.accuracy(), 0.001)
}
