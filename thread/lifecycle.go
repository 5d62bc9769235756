package thread

import "github.com/corefn/ccore/internal/goid"

// InitSubsystem is called once by lifecycle.Init (spec.md §4.5 step 4). The
// registry and the spawn-protocol spinlock are both zero-value-ready, so
// there is nothing to allocate; this exists as the call site spec.md's
// ordered-initialization design expects the thread subsystem to have.
func InitSubsystem() {}

// ShutdownSubsystem is called once by lifecycle.Shutdown, in reverse order
// from InitSubsystem. It runs the calling goroutine's thread-local
// destructors to a fixed point -- spec.md §4.4.2's chain is also walked at
// process teardown, not only at individual thread exit -- since the
// goroutine calling Shutdown is the only one this package can identify at
// that point.
func ShutdownSubsystem() {
	runDestructors(goid.Current())
}

// RunDestructorsForCurrent runs the calling goroutine's thread-local
// destructors to a fixed point without waiting for it to exit. Exposed for
// callers that need TLS cleanup to happen on a goroutine that will keep
// running afterward.
func RunDestructorsForCurrent() {
	runDestructors(goid.Current())
}
