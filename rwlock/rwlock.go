// Package rwlock implements the shared/exclusive lock described by
// spec.md §4.3: either a thin wrapper over a native primitive, or a
// composite of {mutex, two condition variables, active counter, waiting
// counter} with writer preference.
package rwlock

import (
	"github.com/corefn/ccore/alloc"
	"github.com/corefn/ccore/ccoreerr"
	"github.com/corefn/ccore/internal/dlog"
)

// RwLock is a shared/exclusive lock. Construct one with New.
type RwLock struct {
	backend ops
	backing []byte
}

// ops is the backend trait spec.md §9 calls for.
type ops interface {
	ReaderLock()
	ReaderTryLock() bool
	ReaderUnlock() bool
	WriterLock()
	WriterTryLock() bool
	WriterUnlock() bool
}

const rwlockRecordSize = 96

// New allocates and returns a ready-to-use RwLock. ok is false only on
// allocator failure.
func New(vt alloc.Vtable) (l *RwLock, ok bool) {
	return NewWithError(vt, nil)
}

// NewWithError is New, additionally populating errOut on failure.
func NewWithError(vt alloc.Vtable, errOut *ccoreerr.Error) (l *RwLock, ok bool) {
	backing, allocated := vt.Alloc(rwlockRecordSize)
	if !allocated {
		if errOut != nil {
			errOut.Set(ccoreerr.DomainAlloc, ccoreerr.CodeOutOfMemory, "rwlock: allocator returned no memory")
		}
		dlog.Warningf("rwlock.New: allocation failed")
		return nil, false
	}
	l = &RwLock{backend: newBackend(), backing: backing}
	return l, true
}

// ReaderLock acquires l for shared read access, blocking while a writer is
// active or queued (writer preference, spec.md §4.3).
func (l *RwLock) ReaderLock() bool {
	l.backend.ReaderLock()
	return true
}

// ReaderTryLock attempts to acquire l for shared read access without
// blocking.
func (l *RwLock) ReaderTryLock() bool {
	return l.backend.ReaderTryLock()
}

// ReaderUnlock releases a reader's hold on l.
func (l *RwLock) ReaderUnlock() bool {
	return l.backend.ReaderUnlock()
}

// WriterLock acquires l for exclusive access, blocking until every prior
// reader and writer has released.
func (l *RwLock) WriterLock() bool {
	l.backend.WriterLock()
	return true
}

// WriterTryLock attempts to acquire l for exclusive access without
// blocking.
func (l *RwLock) WriterTryLock() bool {
	return l.backend.WriterTryLock()
}

// WriterUnlock releases a writer's hold on l.
func (l *RwLock) WriterUnlock() bool {
	return l.backend.WriterUnlock()
}

// Free releases l's resources. Destroying a held lock is a caller bug
// (spec.md §3).
func (l *RwLock) Free(vt alloc.Vtable) {
	vt.Free(l.backing)
	l.backing = nil
}
