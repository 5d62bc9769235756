// Package waitq provides the spinlock-protected waiter queue that backs the
// portable (non-OS-native) mutex and rwlock backends. The queue itself, the
// backoff helper, and the per-waiter binary semaphore use the same technique
// nsync uses to implement Mu/CV over nothing but atomics and channels; this
// package generalizes that technique so both mutex and rwlock can share one
// implementation instead of each hand-rolling a waiter list.
package waitq

import "sync/atomic"

// Head is an element of a doubly-linked, circular waiter list. A Head used
// as the root of a list has Owner == nil; a Head embedded in a Waiter
// points back to that Waiter via Owner.
type Head struct {
	next  *Head
	prev  *Head
	Owner *Waiter
}

// MakeEmpty turns h into an empty list. Requires that h is not currently
// part of a non-empty list.
func (h *Head) MakeEmpty() {
	h.next = h
	h.prev = h
}

// IsEmpty reports whether list h (used as a root) has no elements.
func (h *Head) IsEmpty() bool {
	return h.next == h
}

// InsertAfter links h into the list immediately after p.
func (h *Head) InsertAfter(p *Head) {
	h.next = p.next
	h.prev = p
	h.next.prev = h
	h.prev.next = h
}

// Remove unlinks h from whatever list currently holds it.
func (h *Head) Remove() {
	h.next.prev = h.prev
	h.prev.next = h.next
}

// InList reports whether h can be reached by walking from root.
func (h *Head) InList(root *Head) bool {
	p := root.next
	for p != h && p != root {
		p = p.next
	}
	return p == h
}

// Oldest returns the waiter nearest root.prev -- the oldest still-queued
// entry under the convention that new entries are InsertAfter(root) -- or
// nil if root is empty.
func (root *Head) Oldest() *Waiter {
	if root.IsEmpty() {
		return nil
	}
	return root.prev.Owner
}

// Newest returns the waiter nearest root.next, or nil if root is empty.
func (root *Head) Newest() *Waiter {
	if root.IsEmpty() {
		return nil
	}
	return root.next.Owner
}

// PopOldest removes and returns the oldest queued waiter, or nil.
func (root *Head) PopOldest() *Waiter {
	w := root.Oldest()
	if w != nil {
		w.q.Remove()
	}
	return w
}

// Waiter represents a single blocked goroutine queued on a Mutex or RwLock
// waiter list. Waiters are pooled: Get/Put recycle them instead of
// allocating on every contended lock/unlock pair.
type Waiter struct {
	q       Head
	sem     binarySemaphore
	Waiting uint32 // non-zero while queued; read/written atomically.
}

var freeList Head
var freeListLock uint32

func init() {
	freeList.MakeEmpty()
}

// Get returns an unused *Waiter from the pool, allocating one if empty.
func Get() *Waiter {
	SpinLock(&freeListLock)
	var w *Waiter
	if !freeList.IsEmpty() {
		h := freeList.next
		h.Remove()
		w = h.Owner
	}
	SpinUnlock(&freeListLock)
	if w == nil {
		w = new(Waiter)
		w.sem.init()
		w.q.Owner = w
	}
	return w
}

// Put returns w to the pool.
func Put(w *Waiter) {
	SpinLock(&freeListLock)
	w.q.InsertAfter(&freeList)
	SpinUnlock(&freeListLock)
}

// Enqueue adds w to the list rooted at head and marks it waiting. The
// caller must hold whatever spinlock protects head.
func Enqueue(head *Head, w *Waiter) {
	atomic.StoreUint32(&w.Waiting, 1)
	w.q.InsertAfter(head)
}

// InQueue reports whether w is still linked into the list rooted at head.
func InQueue(head *Head, w *Waiter) bool {
	return w.q.InList(head)
}

// Dequeue removes w from its current list.
func Dequeue(w *Waiter) {
	w.q.Remove()
}

// Park blocks the calling goroutine until w is woken by Wake.
//
// Neither Mu nor RwLock support timed waits (spec: the only timeout-bearing
// operation in this library is thread.Sleep), so Park is an unconditional
// block -- unlike nsync's CV.WaitWithDeadline, there is no deadline channel.
func Park(w *Waiter) {
	for atomic.LoadUint32(&w.Waiting) != 0 {
		w.sem.p()
	}
}

// Wake marks w runnable and releases its semaphore. The caller must have
// already removed w from whatever waiter list held it.
func Wake(w *Waiter) {
	atomic.StoreUint32(&w.Waiting, 0)
	w.sem.v()
}
