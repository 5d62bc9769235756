//go:build ccore_composite_rwlock

package rwlock

import (
	"sync"

	"github.com/corefn/ccore/internal/waitq"
)

// compositeRW is the portable fallback from spec.md §4.3: a mutex, two
// condition variables, an "active" word (writer-present bit + reader
// count), and a "waiting" word (queued-writer count + queued-reader
// count). The bit layout mirrors dijkstracula-go-ilock's packed-state
// intention lock (mask/offset pairs over a single word) even though here
// the packed words are read only under mu, not via lock-free CAS --
// spec.md's data model calls for the packing itself, not necessarily for
// it to be done without a lock.
type compositeRW struct {
	mu sync.Mutex

	readCV  waitq.Cond // signaled when a reader may proceed
	writeCV waitq.Cond // signaled when a writer may proceed

	active  uint32 // bit 31: writer present; bits 0-30: active reader count
	waiting uint32 // bits 16-31: waiting writers; bits 0-15: waiting readers
}

const (
	activeWriterBit = 1 << 31
	activeReaderMask = activeWriterBit - 1

	waitingWriterShift = 16
	waitingReaderMask  = (1 << waitingWriterShift) - 1
)

func newBackend() ops {
	return &compositeRW{}
}

func activeWriter(active uint32) bool { return active&activeWriterBit != 0 }
func activeReaders(active uint32) uint32 { return active & activeReaderMask }

func waitingWriters(waiting uint32) uint32 { return waiting >> waitingWriterShift }
func waitingReaders(waiting uint32) uint32 { return waiting & waitingReaderMask }

func (l *compositeRW) ReaderLock() {
	l.mu.Lock()
	for activeWriter(l.active) || waitingWriters(l.waiting) > 0 {
		l.waiting += 1 // increment waiting-reader half
		l.readCV.Wait(&l.mu)
		l.waiting -= 1
	}
	l.active++
	l.mu.Unlock()
}

func (l *compositeRW) ReaderTryLock() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if activeWriter(l.active) || waitingWriters(l.waiting) > 0 {
		return false
	}
	l.active++
	return true
}

func (l *compositeRW) ReaderUnlock() bool {
	l.mu.Lock()
	if activeReaders(l.active) == 0 {
		l.mu.Unlock()
		panic("rwlock: ReaderUnlock of a lock with no active readers")
	}
	l.active--
	if activeReaders(l.active) == 0 && waitingWriters(l.waiting) > 0 {
		l.writeCV.Signal()
	}
	l.mu.Unlock()
	return true
}

func (l *compositeRW) WriterLock() {
	l.mu.Lock()
	l.waiting += 1 << waitingWriterShift
	for activeWriter(l.active) || activeReaders(l.active) > 0 {
		l.writeCV.Wait(&l.mu)
	}
	l.waiting -= 1 << waitingWriterShift
	l.active |= activeWriterBit
	l.mu.Unlock()
}

func (l *compositeRW) WriterTryLock() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if activeWriter(l.active) || activeReaders(l.active) > 0 {
		return false
	}
	l.active |= activeWriterBit
	return true
}

func (l *compositeRW) WriterUnlock() bool {
	l.mu.Lock()
	if !activeWriter(l.active) {
		l.mu.Unlock()
		panic("rwlock: WriterUnlock of a lock with no active writer")
	}
	l.active &^= activeWriterBit
	if waitingWriters(l.waiting) > 0 {
		l.writeCV.Signal()
	} else {
		l.readCV.Broadcast()
	}
	l.mu.Unlock()
	return true
}
