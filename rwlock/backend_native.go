//go:build !ccore_composite_rwlock

package rwlock

import "sync"

// nativeRW wraps the stdlib sync.RWMutex, which is itself writer-preferring
// on every platform the Go runtime supports -- the same property spec.md
// §4.3 requires of the POSIX pthread_rwlock_* and Solaris rwlock_* native
// backends it models. TryRLock/TryLock were added to sync.RWMutex in the
// same Go generation as sync.Mutex.TryLock.
type nativeRW struct {
	mu sync.RWMutex
}

func newBackend() ops {
	return &nativeRW{}
}

func (n *nativeRW) ReaderLock()      { n.mu.RLock() }
func (n *nativeRW) ReaderTryLock() bool { return n.mu.TryRLock() }
func (n *nativeRW) ReaderUnlock() bool {
	n.mu.RUnlock()
	return true
}

func (n *nativeRW) WriterLock()      { n.mu.Lock() }
func (n *nativeRW) WriterTryLock() bool { return n.mu.TryLock() }
func (n *nativeRW) WriterUnlock() bool {
	n.mu.Unlock()
	return true
}
