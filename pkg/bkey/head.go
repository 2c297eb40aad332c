package bkey

import "encoding/binary"

// Head-array inner nodes (pkg/node's U32Head/U64Head) store separators as
// fixed-width integers instead of byte slices. Two encodings exist for a
// given width W:
//
//   - FenceHeadW encodes a stripped key of length < W as
//     key_bytes ‖ zero-pad ‖ key_len, using the low byte to carry the
//     length. This is only defined for keys shorter than W and is the only
//     encoding actually stored in a head array (as separators), because it
//     is the one that can be restored losslessly.
//   - NeedleHeadW projects a *query* key, which may be W bytes or longer,
//     into something comparable against the stored fence heads. For
//     stripped < W bytes it uses the identical length-byte encoding as
//     FenceHeadW, so a query key shorter than W compares correctly against
//     a stored separator of the same bytes. Only once stripped reaches W
//     bytes does it saturate: the low byte becomes the sentinel W (one past
//     any real length byte FenceHeadW can produce), and the remaining W-1
//     bytes carry the first W-1 bytes of the key. Reusing the length byte
//     for the short case is what keeps ordering consistent: a fence head for
//     "a" must sort below a needle head for "a\x00", and dropping the length
//     byte breaks exactly that comparison.
//
// Both encodings are big-endian integers, so numeric comparison of heads
// matches lexicographic comparison of the bytes they were built from.

// FenceHead32 encodes stripped as a uint32 fence head. ok is false if
// stripped is 4 bytes or longer, which cannot be represented this way.
func FenceHead32(stripped []byte) (head uint32, ok bool) {
	if len(stripped) >= 4 {
		return 0, false
	}
	var buf [4]byte
	copy(buf[:3], stripped)
	buf[3] = byte(len(stripped))
	return binary.BigEndian.Uint32(buf[:]), true
}

// NeedleHead32 projects stripped into a uint32 needle head: the same
// length-byte encoding as FenceHead32 for stripped < 4 bytes, saturating to
// the first 3 bytes with a low byte of 4 once stripped reaches 4 bytes.
func NeedleHead32(stripped []byte) uint32 {
	if len(stripped) < 4 {
		head, _ := FenceHead32(stripped)
		return head
	}
	var buf [4]byte
	copy(buf[:3], stripped[:3])
	buf[3] = 4
	return binary.BigEndian.Uint32(buf[:])
}

// RestoreHead32 reconstructs the stripped key bytes encoded by a fence
// head produced by FenceHead32.
func RestoreHead32(head uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], head)
	n := buf[3]
	out := make([]byte, n)
	copy(out, buf[:n])
	return out
}

// FenceHead64 encodes stripped as a uint64 fence head. ok is false if
// stripped is 8 bytes or longer.
func FenceHead64(stripped []byte) (head uint64, ok bool) {
	if len(stripped) >= 8 {
		return 0, false
	}
	var buf [8]byte
	copy(buf[:7], stripped)
	buf[7] = byte(len(stripped))
	return binary.BigEndian.Uint64(buf[:]), true
}

// NeedleHead64 projects stripped into a uint64 needle head: the same
// length-byte encoding as FenceHead64 for stripped < 8 bytes, saturating to
// the first 7 bytes with a low byte of 8 once stripped reaches 8 bytes.
func NeedleHead64(stripped []byte) uint64 {
	if len(stripped) < 8 {
		head, _ := FenceHead64(stripped)
		return head
	}
	var buf [8]byte
	copy(buf[:7], stripped[:7])
	buf[7] = 8
	return binary.BigEndian.Uint64(buf[:])
}

// RestoreHead64 reconstructs the stripped key bytes encoded by a fence
// head produced by FenceHead64.
func RestoreHead64(head uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], head)
	n := buf[7]
	out := make([]byte, n)
	copy(out, buf[:n])
	return out
}
