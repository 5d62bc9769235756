//go:build ccore_emulated_atomics

package atomic

import "sync"

// Backend 6: the emulated fallback. A single process-wide mutex serializes
// every atomic operation across every cell, guaranteeing linearizability at
// the cost of contention proportional to total atomic traffic rather than
// to the number of cells in use (spec.md §4.1's "Emulated backend
// rationale and correctness"). emulatedMu is ready from its zero value, so
// this backend needs no setup from lifecycle.Init before first use.

const lockFree = false

var emulatedMu sync.Mutex

func intGet(v *int64) int64 {
	emulatedMu.Lock()
	defer emulatedMu.Unlock()
	return *v
}

func intSet(v *int64, nv int64) {
	emulatedMu.Lock()
	defer emulatedMu.Unlock()
	*v = nv
}

func intAdd(v *int64, d int64) int64 {
	emulatedMu.Lock()
	defer emulatedMu.Unlock()
	old := *v
	*v = old + d
	return old
}

func intCAS(v *int64, old, nv int64) bool {
	emulatedMu.Lock()
	defer emulatedMu.Unlock()
	if *v != old {
		return false
	}
	*v = nv
	return true
}

func uintGet(v *uint64) uint64 {
	emulatedMu.Lock()
	defer emulatedMu.Unlock()
	return *v
}

func uintSet(v *uint64, nv uint64) {
	emulatedMu.Lock()
	defer emulatedMu.Unlock()
	*v = nv
}

func uintAdd(v *uint64, d uint64) uint64 {
	emulatedMu.Lock()
	defer emulatedMu.Unlock()
	old := *v
	*v = old + d
	return old
}

func uintCAS(v *uint64, old, nv uint64) bool {
	emulatedMu.Lock()
	defer emulatedMu.Unlock()
	if *v != old {
		return false
	}
	*v = nv
	return true
}

func uintAnd(v *uint64, mask uint64) uint64 {
	emulatedMu.Lock()
	defer emulatedMu.Unlock()
	old := *v
	*v = old & mask
	return old
}

func uintOr(v *uint64, mask uint64) uint64 {
	emulatedMu.Lock()
	defer emulatedMu.Unlock()
	old := *v
	*v = old | mask
	return old
}

func uintXor(v *uint64, mask uint64) uint64 {
	emulatedMu.Lock()
	defer emulatedMu.Unlock()
	old := *v
	*v = old ^ mask
	return old
}

func ptrGet(v *uintptr) uintptr {
	emulatedMu.Lock()
	defer emulatedMu.Unlock()
	return *v
}

func ptrSet(v *uintptr, nv uintptr) {
	emulatedMu.Lock()
	defer emulatedMu.Unlock()
	*v = nv
}

func ptrAdd(v *uintptr, d uintptr) uintptr {
	emulatedMu.Lock()
	defer emulatedMu.Unlock()
	old := *v
	*v = old + d
	return old
}

func ptrCAS(v *uintptr, old, nv uintptr) bool {
	emulatedMu.Lock()
	defer emulatedMu.Unlock()
	if *v != old {
		return false
	}
	*v = nv
	return true
}

func ptrAnd(v *uintptr, mask uintptr) uintptr {
	emulatedMu.Lock()
	defer emulatedMu.Unlock()
	old := *v
	*v = old & mask
	return old
}

func ptrOr(v *uintptr, mask uintptr) uintptr {
	emulatedMu.Lock()
	defer emulatedMu.Unlock()
	old := *v
	*v = old | mask
	return old
}

func ptrXor(v *uintptr, mask uintptr) uintptr {
	emulatedMu.Lock()
	defer emulatedMu.Unlock()
	old := *v
	*v = old ^ mask
	return old
}
