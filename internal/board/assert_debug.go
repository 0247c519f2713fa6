//go:build jungine_debug

package board

import "fmt"

// assertInvariant panics with context when built with -tags jungine_debug.
// Release builds (default) compile this to a no-op in assert_release.go —
// spec §7 treats invariant violations as bugs, asserted only in debug
// builds, trusted by construction otherwise.
func assertInvariant(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("board: invariant violated: "+format, args...))
	}
}
