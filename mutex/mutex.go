// Package mutex implements the binary exclusion primitive over a
// kernel-owned handle described by spec.md §4.2.
//
// spec.md's backend list (POSIX mutexes, Windows critical sections, OS/2
// mutex semaphores, AtheOS/Syllable semaphores, BeOS/Haiku semaphores) maps,
// on every platform the Go runtime actually supports, onto the same kernel
// primitive: sync.Mutex already wraps the OS-native exclusion object per
// platform. That is this package's default ("native") backend. The
// alternative ("portable") backend, selected with the ccore_portable_mutex
// build tag, is the spinlock-plus-waiter-queue algorithm nsync.Mu uses --
// kept as a real, exercised second backend rather than a theoretical one.
// Its waiter queue (internal/waitq) is shared with the condition variables
// of the rwlock package's composite backend.
package mutex

import (
	"github.com/corefn/ccore/alloc"
	"github.com/corefn/ccore/ccoreerr"
	"github.com/corefn/ccore/internal/dlog"
)

// Mutex is a non-recursive mutual-exclusion lock. Its zero value is not
// ready for use; construct one with New.
//
// A Mutex is non-recursive by contract: relocking from the same goroutine
// deadlocks (spec.md §4.2). Unlock by a goroutine other than the owner is
// undefined; this implementation does not attempt to detect it beyond what
// the backend does on its own.
type Mutex struct {
	backend ops
	backing []byte // routed through the allocator vtable; see alloc package doc.
}

// ops is the backend trait spec.md §9 calls for ("the design treats each
// backend as an implementation of the same trait").
type ops interface {
	Lock()
	TryLock() bool
	Unlock() bool
}

// New allocates and returns a ready-to-use Mutex. It reports ok=false only
// on allocator failure (spec.md §7's "resource exhaustion" category); no
// partial Mutex is published in that case.
func New(vt alloc.Vtable) (m *Mutex, ok bool) {
	return NewWithError(vt, nil)
}

// NewWithError is New, additionally populating errOut on failure per the
// error-reporting-object boundary contract (spec.md §6).
func NewWithError(vt alloc.Vtable, errOut *ccoreerr.Error) (m *Mutex, ok bool) {
	backing, allocated := vt.Alloc(mutexRecordSize)
	if !allocated {
		if errOut != nil {
			errOut.Set(ccoreerr.DomainAlloc, ccoreerr.CodeOutOfMemory, "mutex: allocator returned no memory")
		}
		dlog.Warningf("mutex.New: allocation failed")
		return nil, false
	}
	m = &Mutex{backend: newBackend(), backing: backing}
	return m, true
}

// mutexRecordSize is a nominal size passed to the allocator vtable; it has
// no bearing on Go's actual memory layout and exists only so the vtable
// contract in spec.md §6 has a concrete argument to carry.
const mutexRecordSize = 64

// Lock blocks until m is free, then acquires it. Interrupted blocking
// (e.g. a platform's signal delivery) is retried transparently by every
// backend; Lock never reports failure to the caller once the allocator has
// already succeeded, matching spec.md's "lock(m) -> bool" contract which
// only ever returns true in practice on every supported backend.
func (m *Mutex) Lock() bool {
	m.backend.Lock()
	return true
}

// TryLock attempts to acquire m without blocking and reports whether it
// succeeded.
func (m *Mutex) TryLock() bool {
	return m.backend.TryLock()
}

// Unlock releases ownership of m. It is undefined behavior to call Unlock
// from a goroutine that does not hold m.
func (m *Mutex) Unlock() bool {
	return m.backend.Unlock()
}

// Free releases m's resources. The caller must have already unlocked m;
// freeing a locked Mutex has undefined results (spec.md §3).
func (m *Mutex) Free(vt alloc.Vtable) {
	vt.Free(m.backing)
	m.backing = nil
}
