package node

import (
	"bytes"

	"adtree/pkg/bkey"
	"adtree/pkg/store"
)

// Basic node (sorted-slot) layout, grounded on the teacher's BNode
// (pkg/btree/node.go): a fixed header, a 16-entry hint array, a slot
// directory of fixed-size records, and a heap of prefix-stripped key/value
// bytes that grows backward from the fences at the page's tail.
//
//	0       tag                  (1 byte)
//	1       count                (uint16)
//	3       prefixLen            (uint16, derived, kept for fast reads)
//	5       lowerFenceLen        (uint16)
//	7       upperFenceLen        (uint16)
//	9       upperChild           (uint32, inner only)
//	13      used                 (uint16, accounting per spec.md §8)
//	15      heapTop              (uint16, start of the live heap region)
//	17      hint[16]             (16 x uint32 = 64 bytes)
//	81      slot directory       (count x 10 bytes: heapOff,keyLen,valLen,head32)
//	...     heap                 (grows backward)
//	end     upper fence, then lower fence bytes
const (
	basicHintSlots  = 16
	basicHeaderSize = 81
	basicSlotSize   = 10
)

// BasicMeta carries a Basic node's fences and (for inner nodes) its
// rightmost child pointer.
type BasicMeta struct {
	Lower, Upper []byte
	UpperChild   store.ID
}

// EncodeBasic builds a sorted-slot page holding entries in ascending
// full-key order. The returned page may be longer than store.PageSize
// (mirroring the teacher's oversized scratch buffer in nodeSplit3): callers
// must check the returned size against store.PageSize and split before
// handing the page to an Arena.
func EncodeBasic(tag byte, meta BasicMeta, entries []Entry) (store.Page, int) {
	prefixLen := bkey.LCP(meta.Lower, meta.Upper)
	count := len(entries)
	slotsEnd := basicHeaderSize + count*basicSlotSize
	fenceBytes := len(meta.Lower) + len(meta.Upper)

	payload := 0
	for _, e := range entries {
		payload += (len(e.Key) - prefixLen) + len(e.Val)
	}

	total := slotsEnd + payload + fenceBytes
	bufLen := total
	if bufLen < store.PageSize {
		bufLen = store.PageSize
	}

	p := make(store.Page, bufLen)
	p[0] = tag
	putUint16(p[1:], uint16(count))
	putUint16(p[3:], uint16(prefixLen))
	putUint16(p[5:], uint16(len(meta.Lower)))
	putUint16(p[7:], uint16(len(meta.Upper)))
	putUint32(p[9:], uint32(meta.UpperChild))

	upperStart := bufLen - len(meta.Upper)
	lowerStart := upperStart - len(meta.Lower)
	copy(p[upperStart:], meta.Upper)
	copy(p[lowerStart:], meta.Lower)

	heapPos := lowerStart
	for i, e := range entries {
		stripped := e.Key[prefixLen:]
		heapPos -= len(stripped) + len(e.Val)
		so := basicHeaderSize + i*basicSlotSize
		putUint16(p[so:], uint16(heapPos))
		putUint16(p[so+2:], uint16(len(stripped)))
		putUint16(p[so+4:], uint16(len(e.Val)))
		putUint32(p[so+6:], bkey.SlotHead32(stripped))
		copy(p[heapPos:], stripped)
		copy(p[heapPos+len(stripped):], e.Val)
	}

	putUint16(p[13:], uint16(fenceBytes+payload))
	putUint16(p[15:], uint16(heapPos))
	writeHint(p, buildHint(entries, prefixLen))

	return p, total
}

func buildHint(entries []Entry, prefixLen int) [basicHintSlots]uint32 {
	var hint [basicHintSlots]uint32
	count := len(entries)
	if count <= 32 {
		return hint
	}
	dist := count / 17
	if dist == 0 {
		return hint
	}
	for i := 0; i < basicHintSlots; i++ {
		idx := (i + 1) * dist
		if idx >= count {
			break
		}
		hint[i] = bkey.SlotHead32(entries[idx].Key[prefixLen:])
	}
	return hint
}

func writeHint(p store.Page, hint [basicHintSlots]uint32) {
	for i, h := range hint {
		putUint32(p[17+i*4:], h)
	}
}

func readHint(p store.Page) [basicHintSlots]uint32 {
	var hint [basicHintSlots]uint32
	for i := range hint {
		hint[i] = getUint32(p[17+i*4:])
	}
	return hint
}

// DecodeBasic reconstructs a sorted-slot node's fences, rightmost child
// pointer, and ordered entries (with full, unstripped keys) from a page.
func DecodeBasic(p store.Page) (tag byte, meta BasicMeta, entries []Entry) {
	tag = p[0]
	count := int(getUint16(p[1:]))
	prefixLen := int(getUint16(p[3:]))
	lowerLen := int(getUint16(p[5:]))
	upperLen := int(getUint16(p[7:]))
	meta.UpperChild = store.ID(getUint32(p[9:]))

	bufLen := len(p)
	upperStart := bufLen - upperLen
	lowerStart := upperStart - lowerLen
	meta.Upper = append([]byte(nil), p[upperStart:upperStart+upperLen]...)
	meta.Lower = append([]byte(nil), p[lowerStart:lowerStart+lowerLen]...)

	var prefix []byte
	if prefixLen > 0 {
		prefix = meta.Lower[:prefixLen]
	}

	entries = make([]Entry, count)
	for i := 0; i < count; i++ {
		so := basicHeaderSize + i*basicSlotSize
		heapOff := int(getUint16(p[so:]))
		klen := int(getUint16(p[so+2:]))
		vlen := int(getUint16(p[so+4:]))
		stripped := p[heapOff : heapOff+klen]
		val := p[heapOff+klen : heapOff+klen+vlen]

		full := make([]byte, prefixLen+klen)
		copy(full, prefix)
		copy(full[prefixLen:], stripped)
		entries[i] = Entry{Key: full, Val: append([]byte(nil), val...)}
	}
	return
}

// Used returns the page's accounted byte total (spec.md §8's accounting
// invariant: fence bytes + Σ(key_len+val_len)).
func Used(p store.Page) int { return int(getUint16(p[13:])) }

// Hint returns the page's 16-entry coarse index, for tests asserting the
// hint-array invariant directly against the formula in spec.md §4.2.
func Hint(p store.Page) [basicHintSlots]uint32 { return readHint(p) }

// LowerBound returns the index of the first entry whose key is >= target,
// and whether that entry's key equals target exactly.
func LowerBound(entries []Entry, target []byte) (int, bool) {
	lo, hi := 0, len(entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if bytes.Compare(entries[mid].Key, target) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, lo < len(entries) && bytes.Equal(entries[lo].Key, target)
}

// Basic is the decoded, in-memory form of a sorted-slot node (leaf or
// inner, depending on Tag), used as the unit of mutation: every mutating
// method returns a new Basic built from a spliced copy of Entries, which
// the caller encodes and checks for overflow.
type Basic struct {
	Tag     byte
	Meta    BasicMeta
	Entries []Entry
}

// DecodeBasicNode decodes p into a Basic.
func DecodeBasicNode(p store.Page) Basic {
	tag, meta, entries := DecodeBasic(p)
	return Basic{Tag: tag, Meta: meta, Entries: entries}
}

// Encode re-encodes b. size may exceed store.PageSize; callers must check.
func (b Basic) Encode() (store.Page, int) {
	return EncodeBasic(b.Tag, b.Meta, b.Entries)
}

// PrefixLen is the common byte prefix of the node's fences.
func (b Basic) PrefixLen() int { return bkey.LCP(b.Meta.Lower, b.Meta.Upper) }

func (b Basic) clone() Basic {
	return Basic{Tag: b.Tag, Meta: b.Meta, Entries: cloneEntries(b.Entries)}
}

// Lookup returns the value stored under key (leaf use).
func (b Basic) Lookup(key []byte) ([]byte, bool) {
	i, found := LowerBound(b.Entries, key)
	if !found {
		return nil, false
	}
	return b.Entries[i].Val, true
}

// WithInsert returns a new Basic with key/val inserted or, if key is
// already present, updated in place.
func (b Basic) WithInsert(key, val []byte) Basic {
	nb := b.clone()
	i, found := LowerBound(nb.Entries, key)
	e := Entry{Key: append([]byte(nil), key...), Val: append([]byte(nil), val...)}
	if found {
		nb.Entries[i] = e
		return nb
	}
	nb.Entries = append(nb.Entries, Entry{})
	copy(nb.Entries[i+1:], nb.Entries[i:])
	nb.Entries[i] = e
	return nb
}

// WithRemove returns a new Basic with key removed, and whether key was
// present.
func (b Basic) WithRemove(key []byte) (Basic, bool) {
	i, found := LowerBound(b.Entries, key)
	if !found {
		return b, false
	}
	nb := b.clone()
	nb.Entries = append(nb.Entries[:i:i], nb.Entries[i+1:]...)
	return nb, true
}

// --- inner-node specifics ---

// ChildCount returns the number of children (len(Entries)+1).
func (b Basic) ChildCount() int { return len(b.Entries) + 1 }

// GetChild returns child i; i==ChildCount()-1 returns the upper child.
func (b Basic) GetChild(i int) store.ID {
	if i == len(b.Entries) {
		return b.Meta.UpperChild
	}
	return decodeChildID(b.Entries[i].Val)
}

// FindChildIndex returns the index of the child responsible for key, under
// the convention that separator i is child i's inclusive upper fence.
func (b Basic) FindChildIndex(key []byte) int {
	i, _ := LowerBound(b.Entries, key)
	return i
}

// WithInsertChild returns a new Basic with a separator/child pair inserted
// at position i.
func (b Basic) WithInsertChild(i int, sepKey []byte, child store.ID) Basic {
	nb := b.clone()
	e := Entry{Key: append([]byte(nil), sepKey...), Val: encodeChildID(child)}
	nb.Entries = append(nb.Entries, Entry{})
	copy(nb.Entries[i+1:], nb.Entries[i:])
	nb.Entries[i] = e
	return nb
}

// WithReplaceRange rebuilds the node keeping children/separators
// [0,from) ++ [to,end) and splicing in the replacement in their place, used
// by merge to collapse two children and their shared separator into one.
func (b Basic) WithReplaceRange(from, to int, sep []byte, child store.ID) Basic {
	nb := Basic{Tag: b.Tag, Meta: b.Meta}
	nb.Entries = append(nb.Entries, cloneEntries(b.Entries[:from])...)
	if sep != nil {
		nb.Entries = append(nb.Entries, Entry{Key: append([]byte(nil), sep...), Val: encodeChildID(child)})
	}
	nb.Entries = append(nb.Entries, cloneEntries(b.Entries[to:])...)
	return nb
}
