package store

import (
	set3 "github.com/TomTonic/Set3"
)

// Arena is the in-memory page allocator. Every inner page uniquely owns the
// child pages addressed by its child-pointer array (spec.md §3.2), so the
// arena itself performs no reference counting: it only hands out fresh IDs
// on New and tracks which IDs are currently live, mirroring
// pkg/testutil.MockStorage's page-number map but replacing its plain
// map[uint64]struct{} bookkeeping with a Set3, the way TomTonic-multimap
// tracks membership.
//
// Arena is not safe for concurrent use, matching spec.md §5: the core
// exposes no synchronization primitives, and callers that share a tree
// across goroutines must serialize externally (pkg/db does this at the
// boundary).
type Arena struct {
	pages  map[ID]Page
	live   *set3.Set3[ID]
	free   []ID
	nextID ID
}

// NewArena creates an empty page arena.
func NewArena() *Arena {
	return &Arena{
		pages: make(map[ID]Page),
		live:  set3.Empty[ID](),
		nextID: 1, // 0 is reserved as "no page"
	}
}

// Get returns the page stored under id. It panics if id was never
// allocated or has since been deallocated: callers only ever dereference
// IDs they read out of a parent's child array or the tree's root pointer,
// so a miss here is an invariant violation, not a recoverable outcome.
func (a *Arena) Get(id ID) Page {
	p, ok := a.pages[id]
	if !ok {
		panic("store: dereferenced a page id that is not live")
	}
	return p
}

// New allocates a fresh page, copies p's contents into it, and returns its
// ID. The caller's p is not aliased by the returned page.
func (a *Arena) New(p Page) ID {
	cp := make(Page, PageSize)
	copy(cp, p)

	var id ID
	if n := len(a.free); n > 0 {
		id = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		id = a.nextID
		a.nextID++
	}

	a.pages[id] = cp
	a.live.Add(id)
	return id
}

// Del releases the page stored under id back to the allocator.
func (a *Arena) Del(id ID) {
	if _, ok := a.pages[id]; !ok {
		panic("store: double free of page id")
	}
	delete(a.pages, id)
	a.live.Remove(id)
	a.free = append(a.free, id)
}

// LiveCount returns the number of pages currently allocated.
func (a *Arena) LiveCount() int {
	return a.live.Len()
}

// IsLive reports whether id currently addresses an allocated page.
func (a *Arena) IsLive(id ID) bool {
	return a.live.Contains(id)
}

// LiveIDs returns every currently allocated page id, in no particular
// order. Used by validate_tree's orphan-page reachability check.
func (a *Arena) LiveIDs() []ID {
	ids := make([]ID, 0, len(a.pages))
	for id := range a.pages {
		ids = append(ids, id)
	}
	return ids
}
