//go:build !debug

package debug

// Enabled is false in release builds; Assert below compiles away to
// nothing a caller needs to branch around.
const Enabled = false

// Assert is a no-op outside of -tags debug builds.
func Assert(cond bool, format string, args ...any) {}
