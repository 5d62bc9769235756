package waitq

import (
	"sync"
	"sync/atomic"
)

// Cond is a Mesa-style condition variable adapted from nsync.CV, trimmed
// of deadline/cancellation support: spec.md §5 is explicit that neither
// Mu nor RwLock have timed waits, so the deadline machinery nsync.CV
// carries (a pooled *time.Timer per waiter, a cancel channel select) has
// nothing in this module's domain to serve. What's kept is the part every
// composite rwlock in spec.md §4.3 actually needs: a waiter queue
// decoupled from the mutex it's used with, so Signal/Broadcast can hand
// off to exactly the right number of waiters under spin-protected
// bookkeeping instead of a plain channel broadcast.
//
// The zero value is a valid, empty Cond.
type Cond struct {
	word    uint32 // bit 0: spinlock held; bit 1: waiter queue non-empty.
	waiters Head
}

const (
	condSpinlock  = 1 << 0
	condNonEmpty  = 1 << 1
)

// Wait atomically releases locker and blocks the caller on c. It
// reacquires locker before returning. As with every Mesa-style condition
// variable, Wait must be called in a loop that re-checks the predicate.
func (c *Cond) Wait(locker sync.Locker) {
	w := Get()
	atomic.StoreUint32(&w.Waiting, 1)

	old := TestAndSet(&c.word, condSpinlock, condSpinlock|condNonEmpty)
	if (old & condNonEmpty) == 0 {
		c.waiters.MakeEmpty()
	}
	w.q.InsertAfter(&c.waiters)
	atomic.StoreUint32(&c.word, old|condNonEmpty)

	locker.Unlock()
	Park(w)
	Put(w)
	locker.Lock()
}

// Signal wakes at least one goroutine blocked in Wait on c, if any.
func (c *Cond) Signal() {
	if atomic.LoadUint32(&c.word) & condNonEmpty == 0 {
		return
	}
	old := TestAndSet(&c.word, condSpinlock, condSpinlock)
	var woken *Waiter
	if !c.waiters.IsEmpty() {
		woken = c.waiters.PopOldest()
		if c.waiters.IsEmpty() {
			old &^= condNonEmpty
		}
	}
	atomic.StoreUint32(&c.word, old&^condSpinlock)
	if woken != nil {
		Wake(woken)
	}
}

// Broadcast wakes every goroutine currently blocked in Wait on c.
func (c *Cond) Broadcast() {
	if atomic.LoadUint32(&c.word)&condNonEmpty == 0 {
		return
	}
	TestAndSet(&c.word, condSpinlock, condSpinlock)
	var all []*Waiter
	for !c.waiters.IsEmpty() {
		all = append(all, c.waiters.PopOldest())
	}
	atomic.StoreUint32(&c.word, 0)
	for _, w := range all {
		Wake(w)
	}
}
