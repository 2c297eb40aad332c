package node

import (
	"adtree/pkg/bkey"
	"adtree/pkg/store"
)

// ConversionSource exposes an inner node's fences, children, and
// separators in a representation-neutral form, so that a node built in one
// layout (Basic, U32Head, U64Head) can be rebuilt in another (spec.md
// §4.4/§4.8's adaptation protocol).
type ConversionSource interface {
	Lower() []byte
	Upper() []byte
	// ChildCount returns len(separators)+1.
	ChildCount() int
	GetChild(i int) store.ID
	// GetKey returns separator i's key, i in [0, ChildCount()-1). If
	// stripped is true, the node's common fence prefix is omitted.
	GetKey(i int, stripped bool) []byte
}

// ConversionSink builds a fresh inner-node page from a ConversionSource.
// TryBuild reports ok=false when the sink's representation cannot hold one
// of src's separators (e.g. a stripped key too long for a head array),
// leaving the caller free to fall back to a wider sink.
type ConversionSink interface {
	TryBuild(src ConversionSource) (page store.Page, size int, ok bool)
}

// basicInnerSource adapts a Basic inner node to ConversionSource.
type basicInnerSource struct{ Basic }

func (s basicInnerSource) Lower() []byte { return s.Basic.Meta.Lower }
func (s basicInnerSource) Upper() []byte { return s.Basic.Meta.Upper }

func (s basicInnerSource) GetKey(i int, stripped bool) []byte {
	k := s.Basic.Entries[i].Key
	if stripped {
		return k[s.Basic.PrefixLen():]
	}
	return k
}

// u32HeadSource adapts a U32Head inner node to ConversionSource.
type u32HeadSource struct{ U32Head }

func (s u32HeadSource) Lower() []byte { return s.U32Head.Lower }
func (s u32HeadSource) Upper() []byte { return s.U32Head.Upper }

// u64HeadSource adapts a U64Head inner node to ConversionSource.
type u64HeadSource struct{ U64Head }

func (s u64HeadSource) Lower() []byte { return s.U64Head.Lower }
func (s u64HeadSource) Upper() []byte { return s.U64Head.Upper }

// basicInnerSink rebuilds src as a Basic inner node. It never fails: every
// separator fits as a byte slice.
type basicInnerSink struct{}

func (basicInnerSink) TryBuild(src ConversionSource) (store.Page, int, bool) {
	n := src.ChildCount() - 1
	entries := make([]Entry, n)
	for i := 0; i < n; i++ {
		entries[i] = Entry{Key: src.GetKey(i, false), Val: encodeChildID(src.GetChild(i))}
	}
	meta := BasicMeta{Lower: src.Lower(), Upper: src.Upper(), UpperChild: src.GetChild(n)}
	p, size := EncodeBasic(TagBasicInner, meta, entries)
	return p, size, true
}

// u32HeadSink rebuilds src as a U32Head inner node, failing if any
// separator's stripped key does not fit a 4-byte fence head.
type u32HeadSink struct{}

func (u32HeadSink) TryBuild(src ConversionSource) (store.Page, int, bool) {
	n := src.ChildCount() - 1
	keys := make([]uint32, n)
	children := make([]store.ID, n+1)
	for i := 0; i < n; i++ {
		head, ok := bkey.FenceHead32(src.GetKey(i, true))
		if !ok {
			return nil, 0, false
		}
		keys[i] = head
		children[i] = src.GetChild(i)
	}
	children[n] = src.GetChild(n)
	p, size := EncodeU32Head(src.Lower(), src.Upper(), keys, children)
	return p, size, true
}

// u64HeadSink rebuilds src as a U64Head inner node, failing if any
// separator's stripped key does not fit an 8-byte fence head.
type u64HeadSink struct{}

func (u64HeadSink) TryBuild(src ConversionSource) (store.Page, int, bool) {
	n := src.ChildCount() - 1
	keys := make([]uint64, n)
	children := make([]store.ID, n+1)
	for i := 0; i < n; i++ {
		head, ok := bkey.FenceHead64(src.GetKey(i, true))
		if !ok {
			return nil, 0, false
		}
		keys[i] = head
		children[i] = src.GetChild(i)
	}
	children[n] = src.GetChild(n)
	p, size := EncodeU64Head(src.Lower(), src.Upper(), keys, children)
	return p, size, true
}

// FallbackSink tries A first and, if A cannot hold every separator, falls
// back to B (spec.md §4.4: a head array that fails to encode a key falls
// back to the Basic representation).
type FallbackSink struct {
	A, B ConversionSink
}

func (f FallbackSink) TryBuild(src ConversionSource) (store.Page, int, bool) {
	if p, size, ok := f.A.TryBuild(src); ok {
		return p, size, true
	}
	return f.B.TryBuild(src)
}

// DefaultInnerSinks lists the sinks adaptation tries, narrowest first,
// falling back to Basic (spec.md §4.8): U32Head, then U64Head, then Basic.
var DefaultInnerSinks = FallbackSink{
	A: u32HeadSink{},
	B: FallbackSink{A: u64HeadSink{}, B: basicInnerSink{}},
}

// ReadInner decodes any inner-tagged page into a representation-neutral
// separator/child list. pkg/tree never mutates an inner node in its
// original representation: every split, merge, or insert-child rebuilds
// the node from scratch (the same copy-on-write idiom every representation
// already uses internally), so reading through ConversionSource once here
// lets tree code stay representation-agnostic.
func ReadInner(p store.Page) (lower, upper []byte, entries []Entry, upperChild store.ID) {
	src := WrapInner(p).AsConversionSource()
	n := src.ChildCount() - 1
	lower, upper = src.Lower(), src.Upper()
	entries = make([]Entry, n)
	for i := 0; i < n; i++ {
		entries[i] = Entry{Key: src.GetKey(i, false), Val: encodeChildID(src.GetChild(i))}
	}
	upperChild = src.GetChild(n)
	return
}
