package node

import (
	"adtree/pkg/bkey"
	"adtree/pkg/store"
)

// Head-array inner node layout (U32Head: W=4, tag 5; U64Head: W=8, tag 3),
// grounded on the Basic inner layout but replacing the separator/value
// slot directory with two fixed-width parallel arrays — a compact
// representation for inner nodes whose separators all fit in W bytes
// (spec.md §3.1/§4.4):
//
//	0   tag
//	1   keyCount       (uint16)
//	3   keyCapacity    (uint16, == keyCount here: every encode rebuilds
//	                     the node from scratch, so there is no reserved
//	                     slack to grow into in place)
//	5   lowerFenceLen  (uint16)
//	7   upperFenceLen  (uint16)
//	9   keys[keyCapacity]      (W bytes each)
//	... children[keyCapacity+1] (4 bytes each, store.ID)
//	end upper fence, then lower fence
const headArrayFixed = 9

// EncodeU32Head builds a U32Head page from keys (strictly increasing fence
// heads) and children (len(keys)+1 entries).
func EncodeU32Head(lower, upper []byte, keys []uint32, children []store.ID) (store.Page, int) {
	return encodeHeadArray(TagU32Head, 4, lower, upper, len(keys), func(p store.Page, ko, co int) {
		for i, k := range keys {
			putUint32(p[ko+i*4:], k)
		}
		for i, c := range children {
			putUint32(p[co+i*4:], uint32(c))
		}
	})
}

// DecodeU32Head reconstructs a U32Head page's fences, keys, and children.
func DecodeU32Head(p store.Page) (lower, upper []byte, keys []uint32, children []store.ID) {
	lower, upper, count := decodeHeadArrayFences(p, 4)
	ko := headArrayFixed
	keys = make([]uint32, count)
	for i := range keys {
		keys[i] = getUint32(p[ko+i*4:])
	}
	co := ko + count*4
	children = make([]store.ID, count+1)
	for i := range children {
		children[i] = store.ID(getUint32(p[co+i*4:]))
	}
	return
}

// EncodeU64Head builds a U64Head page.
func EncodeU64Head(lower, upper []byte, keys []uint64, children []store.ID) (store.Page, int) {
	return encodeHeadArray(TagU64Head, 8, lower, upper, len(keys), func(p store.Page, ko, co int) {
		for i, k := range keys {
			putUint64(p[ko+i*8:], k)
		}
		for i, c := range children {
			putUint32(p[co+i*4:], uint32(c))
		}
	})
}

// DecodeU64Head reconstructs a U64Head page's fences, keys, and children.
func DecodeU64Head(p store.Page) (lower, upper []byte, keys []uint64, children []store.ID) {
	lower, upper, count := decodeHeadArrayFences(p, 8)
	ko := headArrayFixed
	keys = make([]uint64, count)
	for i := range keys {
		keys[i] = getUint64(p[ko+i*8:])
	}
	co := ko + count*8
	children = make([]store.ID, count+1)
	for i := range children {
		children[i] = store.ID(getUint32(p[co+i*4:]))
	}
	return
}

func encodeHeadArray(tag byte, width int, lower, upper []byte, count int, write func(p store.Page, keyOff, childOff int)) (store.Page, int) {
	keyBytes := count * width
	childBytes := (count + 1) * 4
	fenceBytes := len(lower) + len(upper)
	total := headArrayFixed + keyBytes + childBytes + fenceBytes
	bufLen := total
	if bufLen < store.PageSize {
		bufLen = store.PageSize
	}

	p := make(store.Page, bufLen)
	p[0] = tag
	putUint16(p[1:], uint16(count))
	putUint16(p[3:], uint16(count)) // keyCapacity == keyCount: no reserved slack
	putUint16(p[5:], uint16(len(lower)))
	putUint16(p[7:], uint16(len(upper)))

	ko := headArrayFixed
	co := ko + keyBytes
	write(p, ko, co)

	upperStart := bufLen - len(upper)
	lowerStart := upperStart - len(lower)
	copy(p[upperStart:], upper)
	copy(p[lowerStart:], lower)

	return p, total
}

func decodeHeadArrayFences(p store.Page, width int) (lower, upper []byte, count int) {
	count = int(getUint16(p[1:]))
	lowerLen := int(getUint16(p[5:]))
	upperLen := int(getUint16(p[7:]))
	bufLen := len(p)
	upperStart := bufLen - upperLen
	lowerStart := upperStart - lowerLen
	upper = append([]byte(nil), p[upperStart:upperStart+upperLen]...)
	lower = append([]byte(nil), p[lowerStart:lowerStart+lowerLen]...)
	return
}

// FindChildU32 returns the index of the child responsible for a query
// whose needle head is `needle`, under the convention that keys[i] is
// child i's inclusive upper-bound fence head.
func FindChildU32(keys []uint32, needle uint32) int {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := (lo + hi) / 2
		if keys[mid] < needle {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// FindChildU64 is FindChildU32 for the 8-byte-head representation.
func FindChildU64(keys []uint64, needle uint64) int {
	lo, hi := 0, len(keys)
	for lo < hi {
		mid := (lo + hi) / 2
		if keys[mid] < needle {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// MaxStrippedKeyLen returns the longest stripped-key length among src's
// separators, the statistic adaptation (spec.md §4.8) branches on.
func MaxStrippedKeyLen(src ConversionSource) int {
	n := src.ChildCount() - 1
	max := 0
	for i := 0; i < n; i++ {
		if l := len(src.GetKey(i, true)); l > max {
			max = l
		}
	}
	return max
}

// U32Head is the decoded, in-memory form of a U32Head inner node: every
// separator is a 4-byte projection of its stripped key (spec.md
// §3.1), restorable because FenceHead32 tucks the original length into the
// head's low byte.
type U32Head struct {
	Lower, Upper []byte
	Keys         []uint32
	Children     []store.ID
}

// DecodeU32HeadNode decodes p into a U32Head.
func DecodeU32HeadNode(p store.Page) U32Head {
	lower, upper, keys, children := DecodeU32Head(p)
	return U32Head{Lower: lower, Upper: upper, Keys: keys, Children: children}
}

// Encode re-encodes u. size may exceed store.PageSize; callers must check.
func (u U32Head) Encode() (store.Page, int) {
	return EncodeU32Head(u.Lower, u.Upper, u.Keys, u.Children)
}

// PrefixLen is the common byte prefix of the node's fences.
func (u U32Head) PrefixLen() int { return bkey.LCP(u.Lower, u.Upper) }

// ChildCount returns the number of children (len(Keys)+1).
func (u U32Head) ChildCount() int { return len(u.Keys) + 1 }

// GetChild returns child i.
func (u U32Head) GetChild(i int) store.ID { return u.Children[i] }

// GetKey returns separator i's stripped bytes, restored from its fence
// head, optionally reattaching the node's common prefix.
func (u U32Head) GetKey(i int, stripped bool) []byte {
	s := bkey.RestoreHead32(u.Keys[i])
	if stripped {
		return s
	}
	full := make([]byte, u.PrefixLen()+len(s))
	copy(full, u.Lower[:u.PrefixLen()])
	copy(full[u.PrefixLen():], s)
	return full
}

// FindChildIndex returns the index of the child responsible for key, under
// the NeedleHead32 projection of key's stripped bytes.
func (u U32Head) FindChildIndex(key []byte) int {
	stripped := key[u.PrefixLen():]
	return FindChildU32(u.Keys, bkey.NeedleHead32(stripped))
}

// WithInsertChild returns a new U32Head with a separator/child pair
// inserted at position i. ok is false if sepKey's stripped form does not
// fit a 4-byte fence head, in which case the caller must fall back to a
// wider representation (spec.md §4.4 FallbackSink).
func (u U32Head) WithInsertChild(i int, sepKey []byte, child store.ID) (U32Head, bool) {
	head, ok := bkey.FenceHead32(sepKey[u.PrefixLen():])
	if !ok {
		return u, false
	}
	nu := U32Head{Lower: u.Lower, Upper: u.Upper}
	nu.Keys = make([]uint32, len(u.Keys)+1)
	copy(nu.Keys, u.Keys[:i])
	nu.Keys[i] = head
	copy(nu.Keys[i+1:], u.Keys[i:])

	nu.Children = make([]store.ID, len(u.Children)+1)
	copy(nu.Children, u.Children[:i])
	nu.Children[i] = child
	copy(nu.Children[i+1:], u.Children[i:])
	return nu, true
}

// U64Head is U32Head's 8-byte-head counterpart.
type U64Head struct {
	Lower, Upper []byte
	Keys         []uint64
	Children     []store.ID
}

// DecodeU64HeadNode decodes p into a U64Head.
func DecodeU64HeadNode(p store.Page) U64Head {
	lower, upper, keys, children := DecodeU64Head(p)
	return U64Head{Lower: lower, Upper: upper, Keys: keys, Children: children}
}

// Encode re-encodes u. size may exceed store.PageSize; callers must check.
func (u U64Head) Encode() (store.Page, int) {
	return EncodeU64Head(u.Lower, u.Upper, u.Keys, u.Children)
}

// PrefixLen is the common byte prefix of the node's fences.
func (u U64Head) PrefixLen() int { return bkey.LCP(u.Lower, u.Upper) }

// ChildCount returns the number of children (len(Keys)+1).
func (u U64Head) ChildCount() int { return len(u.Keys) + 1 }

// GetChild returns child i.
func (u U64Head) GetChild(i int) store.ID { return u.Children[i] }

// GetKey returns separator i's stripped bytes, restored from its fence
// head, optionally reattaching the node's common prefix.
func (u U64Head) GetKey(i int, stripped bool) []byte {
	s := bkey.RestoreHead64(u.Keys[i])
	if stripped {
		return s
	}
	full := make([]byte, u.PrefixLen()+len(s))
	copy(full, u.Lower[:u.PrefixLen()])
	copy(full[u.PrefixLen():], s)
	return full
}

// FindChildIndex returns the index of the child responsible for key, under
// the NeedleHead64 projection of key's stripped bytes.
func (u U64Head) FindChildIndex(key []byte) int {
	stripped := key[u.PrefixLen():]
	return FindChildU64(u.Keys, bkey.NeedleHead64(stripped))
}

// WithInsertChild returns a new U64Head with a separator/child pair
// inserted at position i. ok is false if sepKey's stripped form does not
// fit an 8-byte fence head.
func (u U64Head) WithInsertChild(i int, sepKey []byte, child store.ID) (U64Head, bool) {
	head, ok := bkey.FenceHead64(sepKey[u.PrefixLen():])
	if !ok {
		return u, false
	}
	nu := U64Head{Lower: u.Lower, Upper: u.Upper}
	nu.Keys = make([]uint64, len(u.Keys)+1)
	copy(nu.Keys, u.Keys[:i])
	nu.Keys[i] = head
	copy(nu.Keys[i+1:], u.Keys[i:])

	nu.Children = make([]store.ID, len(u.Children)+1)
	copy(nu.Children, u.Children[:i])
	nu.Children[i] = child
	copy(nu.Children[i+1:], u.Children[i:])
	return nu, true
}
