//go:build debug

// Package debug gates the tree's invariant checks (spec.md §7: fatal in any
// build, but expensive enough — full containment/sort-order/hash-area
// walks — that a release build should not pay for them on every
// operation). The two-file, build-tag-gated shape is grounded on
// flier-goutil's internal/debug (debug.go / nodbg.go).
package debug

import (
	"fmt"

	"github.com/timandy/routine"
)

// Enabled is true when the binary is built with -tags debug.
const Enabled = true

// Assert panics with a goroutine-tagged message if cond is false. Its one
// caller is pkg/node's ScanHashArray, which asserts that the scalar and
// bitset hash scans agree; the other tree invariants are checked by
// tree.Validate, which is not gated by this package. In this
// single-threaded-core design
// the goroutine id is not load-bearing, but tagging it the way
// flier-goutil's debug.Log does makes a panic trace immediately show
// which goroutine's tree was misused without external serialization
// (spec.md §5).
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("adtree: invariant violation [g%d]: %s", routine.Goid(), fmt.Sprintf(format, args...)))
	}
}
