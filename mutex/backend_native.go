//go:build !ccore_portable_mutex

package mutex

import "sync"

// nativeMutex wraps the stdlib sync.Mutex, which is itself backed by the
// platform's native exclusion primitive (futex on Linux, a kernel
// critical-section-equivalent on other platforms the Go runtime targets).
// This is spec.md's "natural blocking call" backend.
type nativeMutex struct {
	mu sync.Mutex
}

func newBackend() ops {
	return &nativeMutex{}
}

func (n *nativeMutex) Lock() {
	n.mu.Lock()
}

func (n *nativeMutex) TryLock() bool {
	return n.mu.TryLock()
}

func (n *nativeMutex) Unlock() bool {
	n.mu.Unlock()
	return true
}
