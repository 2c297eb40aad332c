// Package db wraps pkg/tree in a convenience layer matching the teacher's
// pkg/db: a thread-safe Put/Get/Delete/Traverse surface over the bare tree
// driver. There is no file underneath it — the tree lives entirely in a
// store.Arena (see pkg/store's doc comment: this engine is in-memory
// only) — so this package's whole job is the boundary the core pushes out
// to its caller (tree.Tree is not safe for concurrent use): a RWMutex for
// real exclusion, plus a routine.ThreadLocal-backed marker that records the
// writing goroutine's id for the duration of each write, grounded on
// flier-goutil's internal/debug goroutine tagging. A ThreadLocal value is
// visible only to the goroutine that set it, so the marker does not detect
// writes running on other goroutines; exclusion comes from the RWMutex.
package db

import (
	"sync"

	"github.com/timandy/routine"

	"adtree/pkg/node"
	"adtree/pkg/store"
	"adtree/pkg/tree"
)

// DB is a thread-safe key-value store backed by a B+ tree over an
// in-memory page arena.
type DB struct {
	mu    sync.RWMutex
	tr    *tree.Tree
	owner routine.ThreadLocal[int64]
}

// NewDB creates an empty, ready-to-use database.
func NewDB() *DB {
	return &DB{
		tr:    tree.NewTree(store.NewArena()),
		owner: routine.NewThreadLocal[int64](),
	}
}

// enterWrite records the calling goroutine as the lock holder in its own
// ThreadLocal slot, and panics if that slot already holds an id, i.e. a
// write is already in flight on the calling goroutine itself. Writes on
// other goroutines are not visible through the ThreadLocal.
func (db *DB) enterWrite() {
	if id := db.owner.Get(); id != 0 {
		panic("db: concurrent write detected without holding DB's mutex")
	}
	db.owner.Set(routine.Goid())
}

func (db *DB) exitWrite() {
	db.owner.Set(0)
}

// Put inserts or updates the value stored under key.
func (db *DB) Put(key, value []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.enterWrite()
	defer db.exitWrite()

	db.tr.Insert(key, value)
	return nil
}

// Get retrieves the value stored under key.
func (db *DB) Get(key []byte) ([]byte, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.tr.Lookup(key)
}

// Delete removes key if it is present. It always returns nil; whether the
// key was present is not reported.
func (db *DB) Delete(key []byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.enterWrite()
	defer db.exitWrite()

	db.tr.Delete(key)
	return nil
}

// Range returns every key/value pair in [start,end) in ascending key
// order. A nil start or end means unbounded on that side.
func (db *DB) Range(start, end []byte) []node.Entry {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.tr.RangeAscending(start, end)
}

// RangeDescending returns every key/value pair in [start,end) in
// descending key order. A nil start or end means unbounded on that side.
func (db *DB) RangeDescending(start, end []byte) []node.Entry {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.tr.RangeDescending(start, end)
}

// Traverse walks every key-value pair in ascending key order.
func (db *DB) Traverse(visit func(key, value []byte)) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	db.tr.Traverse(visit)
}

// BranchCacheAccuracy reports the tree's branch-predictor hit rate since
// the database was created, for callers instrumenting lookup performance.
func (db *DB) BranchCacheAccuracy() float64 {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.tr.CacheAccuracy()
}
