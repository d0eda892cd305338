// Package platform wraps OS-specific I/O hints. Every hint is advisory:
// failures are ignored and unsupported platforms get no-ops.
package platform

import "os"

// Preallocate reserves size bytes for f without changing its visible
// length, so a short or failed copy never leaves a file padded with zeros.
func Preallocate(f *os.File, size int64) {
	if size <= 0 {
		return
	}
	preallocate(f, size)
}

// AdviseSequential tells the kernel f will be read front to back once.
func AdviseSequential(f *os.File) {
	adviseSequential(f)
}
