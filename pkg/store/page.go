// Package store implements the page arena: the allocator that hands out
// fixed-size, aligned 4096-byte regions to node representations and
// reclaims them on merge or conversion. It replaces the teacher's
// pkg/storage (a file-backed, thread-safe byte range reader/writer): this
// tree is in-memory only (see spec.md's non-goals — no persistence, no
// crash recovery), so the arena keeps pages in a map instead of a file, but
// preserves the same Get/New/Del shape pkg/btree.BTree called through.
package store

// PageSize is the fixed size of every node page, in bytes.
const PageSize = 4096

// MaxPayload is the largest key_len+val_len a single stored entry may use
// (page_size / 4, per spec.md §3.3/§6.1).
const MaxPayload = PageSize / 4

// Page is one node's backing storage: a byte slice exactly PageSize long.
// Its first byte is always a tag identifying which node representation has
// laid data out over the rest of it (pkg/node owns that layout).
type Page []byte

// NewPage returns a zeroed, PageSize-long page.
func NewPage() Page {
	return make(Page, PageSize)
}

// Tag returns the page's representation tag, the first byte of every page.
func (p Page) Tag() byte { return p[0] }

// ID identifies a page within an Arena. The zero ID is never allocated, so
// it doubles as "no page" (an empty tree's root, for instance).
type ID uint32
