// Package lifecycle implements spec.md §4.5: the process-wide, one-shot
// Init/Shutdown pair that brings up and tears down every other component
// in a fixed order.
//
// Init runs, in order: install the allocator vtable, bring up the atomics
// backend, bring up the rwlock globals, bring up the thread subsystem.
// Shutdown runs the same steps in reverse. Both are one-shot per process
// cycle: a second Init, or a second Shutdown, fails rather than silently
// repeating work, and Init after Shutdown also fails until Reset is
// called, mirroring
// the "write-once-per-init-cycle" rule spec.md §3 places on process state.
package lifecycle

import (
	"sync/atomic"

	"github.com/corefn/ccore/alloc"
	ccatomic "github.com/corefn/ccore/atomic"
	"github.com/corefn/ccore/ccoreerr"
	"github.com/corefn/ccore/internal/dlog"
	"github.com/corefn/ccore/thread"
)

type cycleState int32

const (
	stateUninitialized cycleState = iota
	stateInitialized
	stateShutdown
)

var state int32 // cycleState, accessed only via sync/atomic

// Options holds the one piece of this module's configuration that is a
// genuine runtime choice rather than a build-time backend selection: the
// process-wide default allocator vtable returned by alloc.Active.
// Components that take an explicit Vtable argument, such as mutex.New and
// rwlock.New, use the one they are given instead. Everything
// else spec.md's configuration surface covers (atomics backend, rwlock
// backend) is fixed at compile time via build tags, so it has no field
// here.
type Options struct {
	// Vtable is installed as the process-wide default allocator. Unset
	// hooks are filled in from the system allocator (see alloc.New), so the
	// zero value installs the system allocator.
	Vtable alloc.Vtable
}

// Init brings up the process. It must be called exactly once before any
// other package in this module is used; a second call before a matching
// Shutdown returns false without repeating any step.
func Init(opts Options) bool {
	return InitWithError(opts, nil)
}

// InitWithError is Init, additionally populating errOut on failure.
func InitWithError(opts Options, errOut *ccoreerr.Error) bool {
	if !atomic.CompareAndSwapInt32(&state, int32(stateUninitialized), int32(stateInitialized)) {
		if errOut != nil {
			errOut.Set(ccoreerr.DomainLifecycle, ccoreerr.CodeAlreadyInitialized, "lifecycle: Init called more than once in this process cycle")
		}
		dlog.Warningf("lifecycle.Init: already initialized this cycle")
		return false
	}

	alloc.Install(opts.Vtable)
	// Atomics backend selection happens at compile time via build tags
	// (ccore_emulated_atomics); there is no runtime state to bring up.
	// The rwlock native and composite backends are likewise ready from
	// their zero value; composite's condition variables are built on
	// internal/waitq, which needs no process-wide setup either.
	thread.InitSubsystem()

	dlog.Infof("lifecycle: initialized (atomics lock-free=%v)", ccatomic.IsLockFree())
	return true
}

// Shutdown tears down the process in the reverse of Init's order. It must
// be called exactly once after a successful Init; a call with no matching
// Init, or a second call, returns false.
func Shutdown() bool {
	return ShutdownWithError(nil)
}

// ShutdownWithError is Shutdown, additionally populating errOut on failure.
func ShutdownWithError(errOut *ccoreerr.Error) bool {
	if !atomic.CompareAndSwapInt32(&state, int32(stateInitialized), int32(stateShutdown)) {
		if errOut != nil {
			errOut.Set(ccoreerr.DomainLifecycle, ccoreerr.CodeNotInitialized, "lifecycle: Shutdown called without a matching Init")
		}
		dlog.Warningf("lifecycle.Shutdown: no matching Init this cycle")
		return false
	}

	thread.ShutdownSubsystem()
	alloc.Install(alloc.Default())
	dlog.Infof("lifecycle: shut down")
	return true
}

// Reset returns the process to its pre-Init state, allowing Init to be
// called again. Production code has no legitimate reason to call this --
// a real process only goes through one lifecycle -- but tests that need
// more than one Init/Shutdown cycle in the same process need a way back
// to stateUninitialized.
func Reset() {
	atomic.StoreInt32(&state, int32(stateUninitialized))
}
