// Package internal is a package outside of ldtest for ldtest's own tests to call through, so
// that the stacktraces they look at contain something other than ldtest frames.
package internal

// Call calls fn.
func Call(fn func()) {
	fn()
}
