package node

import "adtree/pkg/store"

// LeafNode is the capability interface every leaf representation (Basic
// leaf, HashNode) satisfies, letting pkg/tree operate on a decoded leaf
// without switching on its tag (spec.md §4.5).
type LeafNode interface {
	Lower() []byte
	Upper() []byte
	PrefixLen() int
	Lookup(key []byte) ([]byte, bool)
	WithInsert(key, val []byte) LeafNode
	WithRemove(key []byte) (LeafNode, bool)
	RangeAscending() []Entry
	RangeDescending() []Entry
	Encode() (store.Page, int)
	Len() int
}

// InnerNode is the capability interface every inner representation (Basic
// inner, U32Head, U64Head) satisfies.
type InnerNode interface {
	Lower() []byte
	Upper() []byte
	PrefixLen() int
	ChildCount() int
	GetChild(i int) store.ID
	FindChildIndex(key []byte) int
	Encode() (store.Page, int)
	// AsConversionSource exposes this node's separators/children for
	// rebuilding into a different inner representation (spec.md §4.4).
	AsConversionSource() ConversionSource
}

// Node is any decoded node, leaf or inner.
type Node interface {
	PrefixLen() int
	Encode() (store.Page, int)
}

// Wrap decodes p's tag byte and returns the matching typed wrapper
// (basicLeafNode/hashLeafNode for leaves, basicInnerNode/u32HeadNode/
// u64HeadNode for inner nodes), dispatching exactly on the tag values
// spec.md §6.2 fixes.
func Wrap(p store.Page) Node {
	switch p[0] {
	case TagBasicLeaf:
		return basicLeafNode{DecodeBasicNode(p)}
	case TagBasicInner:
		return basicInnerNode{DecodeBasicNode(p)}
	case TagHashLeaf:
		return hashLeafNode{DecodeHashNode(p)}
	case TagU64Head:
		return u64HeadNode{DecodeU64HeadNode(p)}
	case TagU32Head:
		return u32HeadNode{DecodeU32HeadNode(p)}
	default:
		panic("node: unknown tag byte")
	}
}

// WrapLeaf decodes p as a LeafNode; callers must already know p's tag is a
// leaf tag (IsLeafTag).
func WrapLeaf(p store.Page) LeafNode { return Wrap(p).(LeafNode) }

// WrapInner decodes p as an InnerNode; callers must already know p's tag is
// an inner tag (IsInnerTag).
func WrapInner(p store.Page) InnerNode { return Wrap(p).(InnerNode) }

// --- Basic leaf ---

type basicLeafNode struct{ Basic }

func (n basicLeafNode) Lower() []byte { return n.Basic.Meta.Lower }
func (n basicLeafNode) Upper() []byte { return n.Basic.Meta.Upper }

func (n basicLeafNode) WithInsert(key, val []byte) LeafNode {
	return basicLeafNode{n.Basic.WithInsert(key, val)}
}

func (n basicLeafNode) WithRemove(key []byte) (LeafNode, bool) {
	nb, ok := n.Basic.WithRemove(key)
	return basicLeafNode{nb}, ok
}

func (n basicLeafNode) RangeAscending() []Entry { return n.Basic.Entries }

// RangeDescending reads Entries back to front: Basic always keeps Entries
// sorted ascending (every insert goes through LowerBound), so there is no
// separate sort step, unlike HashNode.
func (n basicLeafNode) RangeDescending() []Entry {
	asc := n.Basic.Entries
	out := make([]Entry, len(asc))
	for i, e := range asc {
		out[len(asc)-1-i] = e
	}
	return out
}

func (n basicLeafNode) Len() int { return len(n.Basic.Entries) }

// --- Basic inner ---

type basicInnerNode struct{ Basic }

func (n basicInnerNode) Lower() []byte { return n.Basic.Meta.Lower }
func (n basicInnerNode) Upper() []byte { return n.Basic.Meta.Upper }

func (n basicInnerNode) AsConversionSource() ConversionSource { return basicInnerSource{n.Basic} }

// --- Hash leaf ---

type hashLeafNode struct{ HashNode }

func (n hashLeafNode) Lower() []byte { return n.HashNode.Lower }
func (n hashLeafNode) Upper() []byte { return n.HashNode.Upper }

func (n hashLeafNode) WithInsert(key, val []byte) LeafNode {
	return hashLeafNode{n.HashNode.WithInsert(key, val)}
}

func (n hashLeafNode) WithRemove(key []byte) (LeafNode, bool) {
	nh, ok := n.HashNode.WithRemove(key)
	return hashLeafNode{nh}, ok
}

// RangeAscending and RangeDescending are promoted from the embedded
// HashNode.

func (n hashLeafNode) Len() int { return len(n.HashNode.Entries) }

// --- U32Head inner ---

type u32HeadNode struct{ U32Head }

func (n u32HeadNode) Lower() []byte { return n.U32Head.Lower }
func (n u32HeadNode) Upper() []byte { return n.U32Head.Upper }

func (n u32HeadNode) AsConversionSource() ConversionSource { return u32HeadSource{n.U32Head} }

// --- U64Head inner ---

type u64HeadNode struct{ U64Head }

func (n u64HeadNode) Lower() []byte { return n.U64Head.Lower }
func (n u64HeadNode) Upper() []byte { return n.U64Head.Upper }

func (n u64HeadNode) AsConversionSource() ConversionSource { return u64HeadSource{n.U64Head} }
