// Package atomic provides ordered loads, stores, and read-modify-writes on
// word-sized integer and pointer cells (spec.md §4.1).
//
// The original library picks among six backends at build time: native
// typed atomics, fetch-style compiler builtins, legacy __sync builtins,
// vendor intrinsics, platform interlocked primitives, or an emulated
// mutex-serialized fallback. In Go, backends 1 through 5 collapse into one
// implementation -- sync/atomic already selects the right CPU instruction
// per platform at compile time, so there is no separate "builtin" vs.
// "intrinsic" vs. "interlocked" axis to expose. This package therefore
// keeps exactly the two backends that are semantically distinct from a
// caller's point of view: native (sync/atomic, always lock-free) and
// emulated (a single process-wide mutex serializing every cell access,
// matching spec.md's "Emulated backend rationale" -- contention
// proportional to total atomic traffic, not cell count).
//
// The emulated backend is selected with the ccore_emulated_atomics build
// tag; see atomic_native.go and atomic_emulated.go.
package atomic

// Int is a signed, word-sized atomic cell.
type Int struct{ v int64 }

// Uint is an unsigned, word-sized atomic cell.
type Uint struct{ v uint64 }

// Pointer is a pointer-sized atomic cell.
type Pointer struct{ v uintptr }

// Get returns the current value of c with acquire-and-release ordering
// relative to every other operation on c (spec.md's "full bidirectional
// fence" contract -- equivalent to sequential consistency from the
// caller's point of view).
func (c *Int) Get() int64 { return intGet(&c.v) }

// Set stores v into c.
func (c *Int) Set(v int64) { intSet(&c.v, v) }

// Inc increments c by one.
func (c *Int) Inc() { intAdd(&c.v, 1) }

// DecAndTest decrements c by one and reports whether the post-decrement
// value is exactly zero. It never resets or clamps c. intAdd returns the
// pre-operation value, so the post-decrement value is one less than that.
func (c *Int) DecAndTest() bool { return intAdd(&c.v, -1) == 1 }

// Add adds delta to c and returns the pre-addition value.
func (c *Int) Add(delta int64) int64 { return intAdd(&c.v, delta) }

// CompareAndSwap swaps new into c if c currently holds old, and reports
// whether the swap occurred. A CAS where old already equals the current
// value still performs the write and still returns true.
func (c *Int) CompareAndSwap(old, new int64) bool { return intCAS(&c.v, old, new) }

// Get returns the current value of c.
func (c *Uint) Get() uint64 { return uintGet(&c.v) }

// Set stores v into c.
func (c *Uint) Set(v uint64) { uintSet(&c.v, v) }

// Add adds delta to c and returns the pre-addition value.
func (c *Uint) Add(delta uint64) uint64 { return uintAdd(&c.v, delta) }

// And ANDs mask into c and returns the pre-operation value.
func (c *Uint) And(mask uint64) uint64 { return uintAnd(&c.v, mask) }

// Or ORs mask into c and returns the pre-operation value.
func (c *Uint) Or(mask uint64) uint64 { return uintOr(&c.v, mask) }

// Xor XORs mask into c and returns the pre-operation value.
func (c *Uint) Xor(mask uint64) uint64 { return uintXor(&c.v, mask) }

// CompareAndSwap swaps new into c if c currently holds old.
func (c *Uint) CompareAndSwap(old, new uint64) bool { return uintCAS(&c.v, old, new) }

// Get returns the current value of c.
func (c *Pointer) Get() uintptr { return ptrGet(&c.v) }

// Set stores v into c.
func (c *Pointer) Set(v uintptr) { ptrSet(&c.v, v) }

// Add adds delta to c and returns the pre-addition value.
func (c *Pointer) Add(delta uintptr) uintptr { return ptrAdd(&c.v, delta) }

// And ANDs mask into c and returns the pre-operation value.
func (c *Pointer) And(mask uintptr) uintptr { return ptrAnd(&c.v, mask) }

// Or ORs mask into c and returns the pre-operation value.
func (c *Pointer) Or(mask uintptr) uintptr { return ptrOr(&c.v, mask) }

// Xor XORs mask into c and returns the pre-operation value.
func (c *Pointer) Xor(mask uintptr) uintptr { return ptrXor(&c.v, mask) }

// CompareAndSwap swaps new into c if c currently holds old.
func (c *Pointer) CompareAndSwap(old, new uintptr) bool { return ptrCAS(&c.v, old, new) }
