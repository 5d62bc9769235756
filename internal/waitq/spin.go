package waitq

import (
	"runtime"
	"sync/atomic"
)

// backoff implements the same escalating spin-then-yield delay nsync uses in
// its lock/unlock retry loops: busy-spin for the first several attempts,
// then fall back to Gosched so a heavily contended lock doesn't starve the
// rest of the runtime.
type backoff struct {
	attempts uint
}

func (b *backoff) delay() {
	if b.attempts < 7 {
		for i := 0; i != 1<<b.attempts; i++ {
		}
		b.attempts++
	} else {
		runtime.Gosched()
	}
}

// Delay applies one step of escalating spin-then-yield backoff, tracking
// state in attempts across calls. Callers that retry a CAS in a loop
// should call Delay once per failed attempt.
func Delay(attempts *uint) {
	b := backoff{attempts: *attempts}
	b.delay()
	*attempts = b.attempts
}

// SpinLock busy-waits until it can change *word from 0 to 1, using the same
// backoff as other contended spins in this package.
func SpinLock(word *uint32) {
	var b backoff
	for !atomic.CompareAndSwapUint32(word, 0, 1) {
		b.delay()
	}
}

// SpinUnlock releases a lock taken by SpinLock.
func SpinUnlock(word *uint32) {
	atomic.StoreUint32(word, 0)
}

// TestAndSet spins until (*word & test) == 0, then atomically performs
// *word |= set and returns the previous value. It is the primitive nsync
// calls spinTestAndSet, used to acquire a bit-packed spinlock that coexists
// with other flag bits in the same word (e.g. Mu's muSpinlock bit).
func TestAndSet(word *uint32, test, set uint32) uint32 {
	var b backoff
	old := atomic.LoadUint32(word)
	for (old&test) != 0 || !atomic.CompareAndSwapUint32(word, old, old|set) {
		b.delay()
		old = atomic.LoadUint32(word)
	}
	return old
}
