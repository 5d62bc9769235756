// Package alloc implements the L0 allocator vtable that spec.md §6 requires
// every core allocation to flow through: {alloc(size), realloc(ptr, size),
// free(ptr)}. Go components don't need custom allocation to be memory-safe
// -- the runtime already provides that -- but the vtable is kept as a real,
// swappable seam so that (a) resource-exhaustion failure paths (spec.md §7)
// are genuinely exercisable in tests by installing a vtable whose AllocFunc
// returns nil, and (b) the lifecycle's "write-once-per-init-cycle" rule
// (spec.md §3, §5) has something concrete to guard.
package alloc

import "sync/atomic"

// Vtable mirrors the three required hooks. All three must be supplied
// together: a caller that sets one and leaves the others nil gets the
// defaults for the rest via New.
type Vtable struct {
	AllocFunc   func(size int) []byte
	ReallocFunc func(buf []byte, size int) []byte
	FreeFunc    func(buf []byte)
}

// New returns a Vtable with any nil hook filled in from the default system
// allocator, matching "realloc with null behaves like alloc; free with null
// is a no-op" (spec.md §6).
func New(v Vtable) Vtable {
	if v.AllocFunc == nil {
		v.AllocFunc = systemAlloc
	}
	if v.ReallocFunc == nil {
		v.ReallocFunc = systemRealloc
	}
	if v.FreeFunc == nil {
		v.FreeFunc = systemFree
	}
	return v
}

// Default is the system allocator: make()-backed, Free is a no-op because
// the Go runtime reclaims unreachable memory on its own.
func Default() Vtable {
	return New(Vtable{})
}

func systemAlloc(size int) []byte {
	if size < 0 {
		return nil
	}
	return make([]byte, size)
}

func systemRealloc(buf []byte, size int) []byte {
	if buf == nil {
		return systemAlloc(size)
	}
	if size < 0 {
		return nil
	}
	grown := make([]byte, size)
	copy(grown, buf)
	return grown
}

func systemFree(buf []byte) {
	// No-op: the Go garbage collector owns reclamation. Kept as a call
	// site so components that wrap non-Go resources (platform handles)
	// have a uniform place to route release logic through, per spec.md's
	// "all core allocations go through this vtable" invariant.
}

// Alloc calls v.AllocFunc, returning (nil, false) on failure so that
// callers can implement spec.md §7's "surfaced as absent return" contract
// without checking for a nil slice vs. a zero-length one.
func (v Vtable) Alloc(size int) ([]byte, bool) {
	buf := v.AllocFunc(size)
	return buf, buf != nil
}

// Realloc calls v.ReallocFunc; a nil buf behaves like Alloc.
func (v Vtable) Realloc(buf []byte, size int) ([]byte, bool) {
	grown := v.ReallocFunc(buf, size)
	return grown, grown != nil
}

// Free calls v.FreeFunc; a nil buf is always safe.
func (v Vtable) Free(buf []byte) {
	v.FreeFunc(buf)
}

var active atomic.Value // holds Vtable

func init() {
	active.Store(Default())
}

// Install replaces the process-wide default vtable returned by Active.
// The lifecycle package calls this during Init (spec.md §4.5 step 1);
// components that take an explicit Vtable argument are unaffected by it.
func Install(v Vtable) {
	active.Store(New(v))
}

// Active returns the process-wide default vtable last installed by
// Install, or the system allocator if Install has never been called.
func Active() Vtable {
	return active.Load().(Vtable)
}
