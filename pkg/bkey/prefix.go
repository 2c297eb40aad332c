// Package bkey implements the fence/prefix/head projections shared by every
// node representation: computing the common prefix of a node's fence keys,
// stripping it from stored keys, and projecting the leading bytes of a
// stripped key into fixed-width, order-preserving integers ("heads") that
// let node code compare keys without touching the full byte slice in the
// common case.
package bkey

import (
	"bytes"
	"encoding/binary"
)

// LCP returns the length of the longest common byte prefix of a and b.
func LCP(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

// Strip removes the first n bytes of k. It panics if n > len(k); callers
// strip by a node's prefix_len, which is always <= len(k) for any key
// stored in (or looked up against) that node.
func Strip(k []byte, n int) []byte {
	return k[n:]
}

// SlotHead32 projects the first 4 bytes of a stripped key into a big-endian
// uint32, zero-padding if the key is shorter than 4 bytes. It is a coarse,
// order-preserving-but-lossy comparator: equal SlotHead32 values do not
// imply equal keys beyond the first 4 bytes, so callers must always follow
// up with a full byte comparison on a match or a tie.
func SlotHead32(stripped []byte) uint32 {
	var buf [4]byte
	copy(buf[:], stripped)
	return binary.BigEndian.Uint32(buf[:])
}

// A node's fences bound the full keys it may hold: exclusive below
// (lower), inclusive above (upper). A nil fence is unbounded, the
// convention the root's fences (and any node descended down the
// leftmost/rightmost spine) use.

// WithinUpper reports whether key <= upper, treating a nil upper as +inf.
func WithinUpper(key, upper []byte) bool {
	return upper == nil || bytes.Compare(key, upper) <= 0
}

// WithinLower reports whether key > lower, treating a nil lower as -inf.
func WithinLower(key, lower []byte) bool {
	return lower == nil || bytes.Compare(key, lower) > 0
}
