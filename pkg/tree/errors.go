package tree

import "errors"

// ErrKeyTooLarge is the value Insert panics with when the first key/value
// pair inserted into an empty tree cannot fit a single leaf page. An
// oversized pair inserted into a non-empty tree makes Insert panic from
// the leaf split path with a different message; Insert never returns an
// error.
var ErrKeyTooLarge = errors.New("tree: key/value pair exceeds a single page")
