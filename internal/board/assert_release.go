//go:build !jungine_debug

package board

func assertInvariant(cond bool, format string, args ...any) {}
