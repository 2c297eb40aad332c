package bkey

import "golang.org/x/text/unicode/norm"

// Key is a plain byte-slice key. The tree compares keys lexicographically
// by raw byte value; Key exists only to give callers a named type and a
// couple of convenience constructors, the way TomTonic-multimap's Key does
// for its own map.
type Key []byte

// FromString returns a Key built from s after normalizing it to Unicode
// NFC. Two strings that are canonically equivalent but encoded with
// different combining-character sequences produce the same Key and
// therefore compare equal and collide on lookup, which is usually what a
// caller storing human-entered text wants.
func FromString(s string) Key {
	return Key(norm.NFC.String(s))
}

// FromBytes returns a copy of b as a Key.
func FromBytes(b []byte) Key {
	k := make(Key, len(b))
	copy(k, b)
	return k
}
