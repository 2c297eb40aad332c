package node

import (
	"bytes"
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/dolthub/maphash"

	"adtree/internal/debug"
	"adtree/pkg/bkey"
	"adtree/pkg/store"
)

// keyHasher is the hash leaf's fixed, 8-bit-reducing byte hash H (spec.md
// §4.3/§8): one process-lifetime maphash.Hasher, grounded on
// flier-goutil's pkg/arena/swiss/map.go (maphash.Hasher[K]/NewHasher[K]),
// reduced to a single byte. A package-level singleton keeps H fixed across
// every insert, lookup, and merge a hash leaf ever does, which the
// hash-leaf invariant (hash[i] == H(slot[i].key)) requires.
var keyHasher = maphash.NewHasher[string]()

// HashByte computes the hash leaf's one-byte hash of a stripped key.
func HashByte(stripped []byte) byte {
	return byte(keyHasher.Hash(string(stripped)) >> 56)
}

// Hash leaf layout, grounded on the Basic sorted-slot layout but with a
// narrower slot (no head32 — the hash side array does that job) and an
// extra hash-area region between the slot directory and the heap:
//
//	0   tag (2)
//	1   count            (uint16)
//	3   sortedCount      (uint16)
//	5   prefixLen        (uint16)
//	7   lowerFenceLen    (uint16)
//	9   upperFenceLen    (uint16)
//	11  used             (uint16)
//	13  heapTop          (uint16)
//	15  hashCap          (uint16, count.next_power_of_two())
//	17  slot directory   (count x 6 bytes: heapOff,keyLen,valLen)
//	... hash side array  (hashCap bytes, one per slot capacity)
//	... heap             (grows backward)
//	end upper fence, then lower fence
const (
	hashHeaderSize = 17
	hashSlotSize   = 6
)

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// EncodeHashLeaf builds a hash leaf page. entries[0:sortedCount] must
// already be sorted by stripped key; entries[sortedCount:] is the unsorted
// arrival tail (spec.md §4.3).
func EncodeHashLeaf(lower, upper []byte, entries []Entry, sortedCount int) (store.Page, int) {
	prefixLen := bkey.LCP(lower, upper)
	count := len(entries)
	hashCap := nextPow2(count)
	if count == 0 {
		hashCap = 0
	}
	slotsEnd := hashHeaderSize + count*hashSlotSize
	hashEnd := slotsEnd + hashCap
	fenceBytes := len(lower) + len(upper)

	payload := 0
	for _, e := range entries {
		payload += (len(e.Key) - prefixLen) + len(e.Val)
	}

	total := hashEnd + payload + fenceBytes
	bufLen := total
	if bufLen < store.PageSize {
		bufLen = store.PageSize
	}

	p := make(store.Page, bufLen)
	p[0] = TagHashLeaf
	putUint16(p[1:], uint16(count))
	putUint16(p[3:], uint16(sortedCount))
	putUint16(p[5:], uint16(prefixLen))
	putUint16(p[7:], uint16(len(lower)))
	putUint16(p[9:], uint16(len(upper)))
	putUint16(p[15:], uint16(hashCap))

	upperStart := bufLen - len(upper)
	lowerStart := upperStart - len(lower)
	copy(p[upperStart:], upper)
	copy(p[lowerStart:], lower)

	heapPos := lowerStart
	for i, e := range entries {
		stripped := e.Key[prefixLen:]
		heapPos -= len(stripped) + len(e.Val)
		so := hashHeaderSize + i*hashSlotSize
		putUint16(p[so:], uint16(heapPos))
		putUint16(p[so+2:], uint16(len(stripped)))
		putUint16(p[so+4:], uint16(len(e.Val)))
		p[slotsEnd+i] = HashByte(stripped)
		copy(p[heapPos:], stripped)
		copy(p[heapPos+len(stripped):], e.Val)
	}

	putUint16(p[11:], uint16(fenceBytes+payload+hashCap))
	putUint16(p[13:], uint16(heapPos))

	return p, total
}

// DecodeHashLeaf reconstructs a hash leaf's fences and ordered entries
// (full keys, original arrival order preserved across [0,sortedCount) then
// [sortedCount,count)).
func DecodeHashLeaf(p store.Page) (lower, upper []byte, entries []Entry, sortedCount int) {
	count := int(getUint16(p[1:]))
	sortedCount = int(getUint16(p[3:]))
	prefixLen := int(getUint16(p[5:]))
	lowerLen := int(getUint16(p[7:]))
	upperLen := int(getUint16(p[9:]))

	bufLen := len(p)
	upperStart := bufLen - upperLen
	lowerStart := upperStart - lowerLen
	upper = append([]byte(nil), p[upperStart:upperStart+upperLen]...)
	lower = append([]byte(nil), p[lowerStart:lowerStart+lowerLen]...)

	var prefix []byte
	if prefixLen > 0 {
		prefix = lower[:prefixLen]
	}

	entries = make([]Entry, count)
	for i := 0; i < count; i++ {
		so := hashHeaderSize + i*hashSlotSize
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

// HashArray returns the hash leaf's one-byte-per-slot hash side array,
// read directly from the page (the region scalarScan/bitsetScan operate
// on).
func HashArray(p store.Page) []byte {
	count := int(getUint16(p[1:]))
	slotsEnd := hashHeaderSize + count*hashSlotSize
	hashCap := int(getUint16(p[15:]))
	return p[slotsEnd : slotsEnd+hashCap]
}

// scalarScan linearly scans a hash side array for every slot whose hash
// byte equals target, up to count slots.
func scalarScan(hashArr []byte, count int, target byte) []int {
	var out []int
	for i := 0; i < count; i++ {
		if hashArr[i] == target {
			out = append(out, i)
		}
	}
	return out
}

// bitsetScan scans the hash side array in aligned 64-byte chunks, building
// an equality mask per chunk and iterating its set bits, grounded on
// gaissmai-bart's bitset-backed node representation (node.go, allot_tbl.go)
// as the portable stand-in for the spec's aligned-SIMD equality scan.
func bitsetScan(hashArr []byte, count int, target byte) []int {
	var out []int
	n := len(hashArr)
	for base := 0; base < n && base < count; base += 64 {
		end := base + 64
		if end > n {
			end = n
		}
		chunkLen := uint(end - base)
		mask := bitset.New(chunkLen)
		for j := uint(0); j < chunkLen; j++ {
			if hashArr[base+int(j)] == target {
				mask.Set(j)
			}
		}
		for j, ok := mask.NextSet(0); ok; j, ok = mask.NextSet(j + 1) {
			pos := base + int(j)
			if pos >= count {
				return out
			}
			out = append(out, pos)
		}
	}
	return out
}

// ScanHashArray finds every candidate slot index whose hash byte equals
// H(key) inside page p, using the scalar scan as the source of truth and,
// in debug builds, asserting the bitset-based scan agrees exactly (spec.md
// §4.3: "Both implementations must yield identical indices").
func ScanHashArray(p store.Page, target byte) []int {
	count := int(getUint16(p[1:]))
	arr := HashArray(p)
	candidates := scalarScan(arr, count, target)
	if debug.Enabled {
		alt := bitsetScan(arr, count, target)
		debug.Assert(len(candidates) == len(alt), "hash leaf scalar/bitset scan length mismatch: %d vs %d", len(candidates), len(alt))
		for i := range candidates {
			debug.Assert(candidates[i] == alt[i], "hash leaf scalar/bitset scan index mismatch at %d: %d vs %d", i, candidates[i], alt[i])
		}
	}
	return candidates
}

// HashNode is the decoded, in-memory form of a hash leaf.
type HashNode struct {
	Lower, Upper []byte
	SortedCount  int
	Entries      []Entry
}

// DecodeHashNode decodes p into a HashNode.
func DecodeHashNode(p store.Page) HashNode {
	lower, upper, entries, sc := DecodeHashLeaf(p)
	return HashNode{Lower: lower, Upper: upper, Entries: entries, SortedCount: sc}
}

// Encode re-encodes h. size may exceed store.PageSize; callers must check.
func (h HashNode) Encode() (store.Page, int) {
	return EncodeHashLeaf(h.Lower, h.Upper, h.Entries, h.SortedCount)
}

// PrefixLen is the common byte prefix of the node's fences.
func (h HashNode) PrefixLen() int { return bkey.LCP(h.Lower, h.Upper) }

func (h HashNode) clone() HashNode {
	return HashNode{Lower: h.Lower, Upper: h.Upper, SortedCount: h.SortedCount, Entries: cloneEntries(h.Entries)}
}

// Lookup scans every entry whose stripped key hashes to H(key) (using
// ScanHashArray against the node's current encoding would require a round
// trip through Encode; since HashNode already holds decoded entries, this
// walks them directly after a cheap hash pre-check, which is the same
// filtering ScanHashArray performs over the page bytes).
func (h HashNode) Lookup(key []byte) ([]byte, bool) {
	prefixLen := h.PrefixLen()
	stripped := key[prefixLen:]
	want := HashByte(stripped)
	for _, e := range h.Entries {
		es := e.Key[prefixLen:]
		if HashByte(es) != want {
			continue
		}
		if bytes.Equal(es, stripped) {
			return e.Val, true
		}
	}
	return nil, false
}

// WithInsert inserts or updates key. A new key always joins the unsorted
// tail (SortedCount is left unchanged), matching spec.md §4.3 step 5.
func (h HashNode) WithInsert(key, val []byte) HashNode {
	prefixLen := h.PrefixLen()
	stripped := key[prefixLen:]
	for i, e := range h.Entries {
		if bytes.Equal(e.Key[prefixLen:], stripped) {
			nh := h.clone()
			nh.Entries[i] = Entry{Key: append([]byte(nil), key...), Val: append([]byte(nil), val...)}
			return nh
		}
	}
	nh := h.clone()
	nh.Entries = append(nh.Entries, Entry{Key: append([]byte(nil), key...), Val: append([]byte(nil), val...)})
	return nh
}

// WithRemove removes key by swapping in the last slot (spec.md §4.3
// deletion: O(1) directory work), resetting SortedCount to
// min(SortedCount, i).
func (h HashNode) WithRemove(key []byte) (HashNode, bool) {
	prefixLen := h.PrefixLen()
	stripped := key[prefixLen:]
	idx := -1
	for i, e := range h.Entries {
		if bytes.Equal(e.Key[prefixLen:], stripped) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return h, false
	}
	nh := h.clone()
	last := len(nh.Entries) - 1
	if idx < last {
		nh.Entries[idx] = nh.Entries[last]
	}
	nh.Entries = nh.Entries[:last]
	if nh.SortedCount > idx {
		nh.SortedCount = idx
	}
	return nh, true
}

// Sorted merges the unsorted tail into the sorted prefix (spec.md §4.3
// sort()), returning a HashNode with SortedCount == len(Entries).
func (h HashNode) Sorted() HashNode {
	if h.SortedCount == len(h.Entries) {
		return h
	}
	prefixLen := h.PrefixLen()
	nh := h.clone()

	sortedPart := nh.Entries[:nh.SortedCount]
	tail := append([]Entry(nil), nh.Entries[nh.SortedCount:]...)
	sort.Slice(tail, func(i, j int) bool {
		return bytes.Compare(tail[i].Key[prefixLen:], tail[j].Key[prefixLen:]) < 0
	})

	merged := make([]Entry, 0, len(nh.Entries))
	si, ti := 0, 0
	for si < len(sortedPart) && ti < len(tail) {
		if bytes.Compare(sortedPart[si].Key[prefixLen:], tail[ti].Key[prefixLen:]) <= 0 {
			merged = append(merged, sortedPart[si])
			si++
		} else {
			merged = append(merged, tail[ti])
			ti++
		}
	}
	merged = append(merged, sortedPart[si:]...)
	merged = append(merged, tail[ti:]...)

	nh.Entries = merged
	nh.SortedCount = len(merged)
	return nh
}

// RangeAscending returns entries in ascending key order, sorting first if
// needed (spec.md: "Range scans call sort() before iterating").
func (h HashNode) RangeAscending() []Entry {
	return h.Sorted().Entries
}

// RangeDescending returns entries in descending key order (spec.md §4.5/
// §4.6's range_lookup_desc: "the mirror image using lower fences and
// reverse slot order"). It sorts first the same way RangeAscending does,
// then reads the sorted slice back to front rather than maintaining a
// second, descending-sorted copy.
func (h HashNode) RangeDescending() []Entry {
	asc := h.Sorted().Entries
	out := make([]Entry, len(asc))
	for i, e := range asc {
		out[len(asc)-1-i] = e
	}
	return out
}
