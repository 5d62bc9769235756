//go:build ccore_portable_mutex

package mutex

import (
	"sync/atomic"

	"github.com/corefn/ccore/internal/waitq"
)

// portableMutex is the word-packed spinlock-plus-waiter-queue algorithm
// nsync.Mu uses, adapted to back this package's Mutex instead of a
// standalone type: a bit-packed word, a spinlock bit protecting a waiter
// queue, and a "designated waker" bit to avoid redundant wakeups. The
// waiter queue comes from internal/waitq, which also backs the condition
// variables of the rwlock package's composite backend.
type portableMutex struct {
	word    uint32
	waiters waitq.Head
	init    uint32 // 1 once waiters has been MakeEmpty'd
}

const (
	bitLocked      = 1 << 0
	bitSpinlock    = 1 << 1
	bitWaiting     = 1 << 2
	bitDesigWaker  = 1 << 3
)

func newBackend() ops {
	return &portableMutex{}
}

func (m *portableMutex) ensureInit() {
	if atomic.CompareAndSwapUint32(&m.init, 0, 1) {
		m.waiters.MakeEmpty()
	}
}

func (m *portableMutex) TryLock() bool {
	if atomic.CompareAndSwapUint32(&m.word, 0, bitLocked) {
		return true
	}
	old := atomic.LoadUint32(&m.word)
	return (old&bitLocked) == 0 && atomic.CompareAndSwapUint32(&m.word, old, old|bitLocked)
}

func (m *portableMutex) Lock() {
	if atomic.CompareAndSwapUint32(&m.word, 0, bitLocked) {
		return
	}
	old := atomic.LoadUint32(&m.word)
	if (old&bitLocked) == 0 && atomic.CompareAndSwapUint32(&m.word, old, old|bitLocked) {
		return
	}
	m.lockSlow(waitq.Get(), 0)
}

// lockSlow acquires m, waiting on w if necessary. clear holds bits that must
// be cleared from m.word the moment w either acquires or goes back to sleep
// -- this is how a "designated waker" (a just-woken thread that hasn't
// acquired yet) hands that status off cleanly.
func (m *portableMutex) lockSlow(w *waitq.Waiter, clear uint32) {
	m.ensureInit()
	var attempts uint
	for {
		old := atomic.LoadUint32(&m.word)
		if (old & bitLocked) == 0 {
			if atomic.CompareAndSwapUint32(&m.word, old, (old|bitLocked)&^clear) {
				waitq.Put(w)
				return
			}
			continue
		}
		if (old&bitSpinlock) == 0 &&
			atomic.CompareAndSwapUint32(&m.word, old, (old|bitSpinlock|bitWaiting)&^clear) {
			waitq.Enqueue(&m.waiters, w)

			// Release the spinlock bit without a plain store: another
			// thread may be concurrently unlocking even while we hold it.
			rel := atomic.LoadUint32(&m.word)
			for !atomic.CompareAndSwapUint32(&m.word, rel, rel&^bitSpinlock) {
				rel = atomic.LoadUint32(&m.word)
			}

			waitq.Park(w)
			attempts = 0
			clear = bitDesigWaker
			continue
		}
		waitq.Delay(&attempts)
	}
}

func (m *portableMutex) Unlock() bool {
	newWord := atomic.AddUint32(&m.word, ^uint32(bitLocked-1))
	if (newWord&(bitLocked|bitWaiting)) == 0 || (newWord&(bitLocked|bitDesigWaker)) == bitDesigWaker {
		return true
	}
	if (newWord & bitLocked) != 0 {
		panic("mutex: Unlock of a free mutex")
	}

	var attempts uint
	for {
		old := atomic.LoadUint32(&m.word)
		if (old&bitWaiting) == 0 || (old&bitDesigWaker) == bitDesigWaker {
			return true // no one to wake, or a designated waker is already on the way.
		}
		if (old&bitSpinlock) == 0 &&
			atomic.CompareAndSwapUint32(&m.word, old, old|bitSpinlock|bitDesigWaker) {

			wake := m.waiters.PopOldest()
			clearOnRelease := uint32(bitSpinlock)
			if wake == nil {
				clearOnRelease |= bitDesigWaker
			}
			if m.waiters.IsEmpty() {
				clearOnRelease |= bitWaiting
			}

			rel := atomic.LoadUint32(&m.word)
			for !atomic.CompareAndSwapUint32(&m.word, rel, (rel|bitDesigWaker)&^clearOnRelease) {
				rel = atomic.LoadUint32(&m.word)
			}
			if wake != nil {
				waitq.Wake(wake)
			}
			return true
		}
		waitq.Delay(&attempts)
	}
}
