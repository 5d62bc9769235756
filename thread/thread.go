// Package thread implements spec.md §4.4: threads as refcounted records
// wrapping a unit of work, plus the thread-local storage keys in tls.go.
//
// A "thread" here is a goroutine the package itself spawned, paired with
// a record tracking its return code, priority, and joinability. Go
// multiplexes goroutines onto OS threads M:N, so there is no native
// handle to wrap the way spec.md's pthread_t/HANDLE backends do; the
// record plus a done channel is the idiomatic Go analogue, grounded on
// the same refcounted-record shape nsync's waiter pool (waitq.Waiter, from
// vanadium-go.lib/nsync/waiter.go) uses for its own short-lived records.
package thread

import (
	"runtime"
	"sync"
	"time"

	"github.com/corefn/ccore/atomic"
	"github.com/corefn/ccore/internal/dlog"
	"github.com/corefn/ccore/internal/goid"
	"github.com/corefn/ccore/internal/waitq"
)

// Priority mirrors the priority ladder in spec.md §4.4.1 / original_source
// unic's thread.h. Go's scheduler gives user code no lever over OS thread
// priority, so every value past PriorityInherit is record-only: SetPriority
// always succeeds and simply remembers what was asked, the same fallback
// spec.md documents for platforms without scheduling control.
type Priority int

const (
	PriorityInherit Priority = iota
	PriorityIdle
	PriorityLowest
	PriorityLow
	PriorityNormal
	PriorityHigh
	PriorityHighest
	PriorityTimeCritical
)

// Func is the work a thread runs. Its return value becomes the thread's
// return code, observable through Join.
type Func func(arg interface{}) int

// Thread is a refcounted handle on a unit of work running on its own
// goroutine. Obtain one with Create or CreateFull; every Thread obtained
// that way, plus every Thread returned by Current for a foreign goroutine,
// must eventually be balanced with Unref.
type Thread struct {
	refcount atomic.Int

	fn       Func
	arg      interface{}
	joinable bool
	priority Priority

	// ownedByCore is false for the minimal record Current() fabricates on
	// first observing a goroutine this package did not spawn (spec.md
	// §4.4.1's "externally-created thread" case).
	ownedByCore bool

	returnCode int
	done       chan struct{}

	gid int64
}

// justSpawnedLock is the spawn-protocol barrier from spec.md §4.4.1: the
// parent holds it while constructing the record and setting fn/arg, the
// child takes-then-releases it before reading either. The `go` statement
// already gives the child a happens-before edge over everything the
// parent wrote before spawning it (Go memory model), so in this runtime
// the barrier is redundant with language guarantees -- it is kept anyway
// so the spawn protocol spec.md describes has a real, visible holder
// rather than being silently dropped.
var justSpawnedLock uint32

var registry sync.Map // goroutine id (int64) -> *Thread

// Create spawns fn(arg) on a new goroutine with PriorityInherit and
// joinable=true. Equivalent to CreateFull(fn, arg, true, PriorityInherit).
func Create(fn Func, arg interface{}) *Thread {
	return CreateFull(fn, arg, true, PriorityInherit)
}

// CreateFull spawns fn(arg) on a new goroutine. The returned Thread holds
// two references: one for the spawned goroutine itself, released when it
// exits, and one returned to the caller, which the caller must Unref.
func CreateFull(fn Func, arg interface{}, joinable bool, priority Priority) *Thread {
	if priority == PriorityInherit {
		priority = inheritedPriority()
	}

	t := &Thread{
		joinable:    joinable,
		priority:    priority,
		ownedByCore: true,
		done:        make(chan struct{}),
	}
	t.refcount.Set(2)

	waitq.SpinLock(&justSpawnedLock)
	t.fn = fn
	t.arg = arg
	go t.run()
	waitq.SpinUnlock(&justSpawnedLock)

	return t
}

func inheritedPriority() Priority {
	if cur, ok := lookupCurrent(); ok {
		return cur.priority
	}
	return PriorityNormal
}

func (t *Thread) run() {
	waitq.SpinLock(&justSpawnedLock)
	waitq.SpinUnlock(&justSpawnedLock)

	t.gid = goid.Current()
	registry.Store(t.gid, t)

	defer t.finish()
	t.returnCode = t.fn(t.arg)
}

func (t *Thread) finish() {
	runDestructors(t.gid)
	close(t.done)
	registry.Delete(t.gid)
	Unref(t)
}

// Exit terminates the calling thread immediately, as if its thread
// function had returned code. Deferred cleanup along the calling
// goroutine's stack still runs, matching runtime.Goexit's semantics,
// which this is built on.
//
// Calling Exit from a goroutine this package did not spawn is a caller
// bug (spec.md's open question on exit-from-foreign-thread): there is no
// thread record to terminate, so this logs a warning and returns instead
// of tearing down an arbitrary goroutine.
func Exit(code int) {
	t, ok := lookupCurrent()
	if !ok || !t.ownedByCore {
		dlog.Warningf("thread.Exit called from a thread not owned by this package; ignoring")
		return
	}
	t.returnCode = code
	runtime.Goexit()
}

// Join blocks until t's goroutine exits and returns its return code. Join
// on a non-joinable thread returns -1 immediately. Join does not release
// either of t's references; the caller still owns the reference it was
// given at creation and must Unref it.
func Join(t *Thread) int {
	if !t.joinable {
		return -1
	}
	<-t.done
	return t.returnCode
}

// Yield offers the calling goroutine's remaining time slice to the Go
// scheduler.
func Yield() {
	runtime.Gosched()
}

// SetPriority records p as t's priority and always reports success: Go's
// M:N goroutine scheduler gives no caller-visible lever over OS thread
// priority, so every platform this runs on falls into spec.md's
// "platform without scheduling control" case.
func SetPriority(t *Thread, p Priority) bool {
	t.priority = p
	return true
}

// GetPriority returns t's last recorded priority.
func GetPriority(t *Thread) Priority {
	return t.priority
}

// IdealCount reports the number of threads that could run concurrently
// without oversubscribing the machine. Falls back to 1 if the runtime
// cannot answer, matching spec.md's §4.4.1 fallback for platforms whose
// CPU-count probe can fail.
func IdealCount() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	return n
}

// Sleep blocks the calling goroutine for msec milliseconds. Negative
// durations are rejected.
func Sleep(msec int) int {
	if msec < 0 {
		return -1
	}
	time.Sleep(time.Duration(msec) * time.Millisecond)
	return 0
}

// Current returns the Thread record for the calling goroutine, fabricating
// a minimal, non-joinable, non-owned record on first observation of a
// goroutine this package did not spawn (spec.md §4.4.1). The returned
// Thread's reference is owned by the caller and must eventually be
// released with Unref.
func Current() *Thread {
	t, existed := lookupCurrent()
	if existed {
		t.refcount.Inc()
		return t
	}

	gid := goid.Current()
	fresh := &Thread{
		priority:    PriorityNormal,
		ownedByCore: false,
		gid:         gid,
		done:        make(chan struct{}),
	}
	// One reference, returned to this caller: there is no spawned-goroutine
	// side to balance it, since this package did not spawn this goroutine.
	fresh.refcount.Set(1)
	actual, loaded := registry.LoadOrStore(gid, fresh)
	winner := actual.(*Thread)
	if loaded {
		winner.refcount.Inc()
	}
	return winner
}

// CurrentID returns the calling goroutine's numeric identity, stable for
// its lifetime.
func CurrentID() int64 {
	return goid.Current()
}

func lookupCurrent() (*Thread, bool) {
	v, ok := registry.Load(goid.Current())
	if !ok {
		return nil, false
	}
	return v.(*Thread), true
}

// Ref adds a reference to t and returns t, mirroring spec.md's
// increment-and-return refcount convention.
func Ref(t *Thread) *Thread {
	t.refcount.Inc()
	return t
}

// Unref drops a reference to t. The record is released once the count
// reaches zero; a joinable thread's record survives past its goroutine's
// exit until both the spawned-goroutine and caller references are gone.
func Unref(t *Thread) {
	if t.refcount.DecAndTest() {
		t.fn = nil
		t.arg = nil
	}
}
