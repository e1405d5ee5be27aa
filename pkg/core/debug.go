package core

// DebugMode controls development-time assertions, most importantly the
// hook-slot-count check between renders of one instance. When false, a
// slot-count mismatch silently corrupts slot alignment, so leave this on
// outside of benchmarks.
var DebugMode = true

// SetDebugMode enables or disables development-time assertions.
func SetDebugMode(debug bool) {
	DebugMode = debug
}
