package thread

import (
	"sync"
	"sync/atomic"

	"github.com/corefn/ccore/internal/goid"
)

// sentinelUnset marks a Key whose platform slot has not yet been
// materialized. spec.md §4.4.2: a key is created with a sentinel slot-id
// and only allocates a real slot on first access.
const sentinelUnset int32 = -1

var globalSlotCounter int32 = sentinelUnset

// destructorNode links a materialized key's destructor into the
// process-wide chain walked at thread exit and at Shutdown. The chain is
// append-only: materialize links onto it, nothing ever unlinks a node, so
// the chain can be walked concurrently with new links being added.
type destructorNode struct {
	next *destructorNode
	key  *Key
}

var chainHead atomic.Pointer[destructorNode]

// tlsAllocMu is the process-wide TLS mutex from spec.md §4.4.2: it
// serializes slot materialization, not slot access. Ordinary get/set/
// replace calls never take it once a key is materialized.
var tlsAllocMu sync.Mutex

// Key is a thread-local storage key. Zero value is not usable; create one
// with LocalNew.
type Key struct {
	slot       int32 // atomic; sentinelUnset until materialize() runs
	destructor func(interface{})
	values     sync.Map // goroutine id (int64) -> interface{}
}

// LocalNew creates a thread-local key. destructor, if non-nil, is invoked
// on a goroutine's stored value when that goroutine exits through this
// package (Exit or falling off the end of its thread function), provided
// the value is non-nil. Shutdown runs it only on the values of the
// goroutine that calls lifecycle.Shutdown; values held by other goroutines
// are not destroyed there.
func LocalNew(destructor func(interface{})) *Key {
	return &Key{slot: sentinelUnset, destructor: destructor}
}

// LocalFree detaches k. The platform slot spec.md describes is not a
// scarce resource under this package's map-backed implementation, so
// there is nothing to reclaim; this exists for API fidelity and so a
// caller that holds its last reference to k can drop it deterministically.
func LocalFree(k *Key) {}

func (k *Key) materialize() {
	if atomic.LoadInt32(&k.slot) != sentinelUnset {
		return
	}
	tlsAllocMu.Lock()
	defer tlsAllocMu.Unlock()
	if atomic.LoadInt32(&k.slot) != sentinelUnset {
		return
	}
	newSlot := atomic.AddInt32(&globalSlotCounter, 1)
	if k.destructor != nil {
		node := &destructorNode{key: k}
		for {
			head := chainHead.Load()
			node.next = head
			if chainHead.CompareAndSwap(head, node) {
				break
			}
		}
	}
	atomic.StoreInt32(&k.slot, newSlot)
}

// GetLocal returns the calling goroutine's value for k, or nil if unset.
func GetLocal(k *Key) interface{} {
	k.materialize()
	v, _ := k.values.Load(goid.Current())
	return v
}

// SetLocal stores v as the calling goroutine's value for k. Unlike
// ReplaceLocal, it never invokes k's destructor on the value it overwrites
// -- spec.md §4.4.2 reserves that for ReplaceLocal.
func SetLocal(k *Key, v interface{}) {
	k.materialize()
	k.values.Store(goid.Current(), v)
}

// ReplaceLocal stores v as the calling goroutine's value for k and, if a
// prior non-nil value existed and k has a destructor, invokes it on the
// value being replaced.
func ReplaceLocal(k *Key, v interface{}) {
	k.materialize()
	gid := goid.Current()
	old, had := k.values.Load(gid)
	k.values.Store(gid, v)
	if had && old != nil && k.destructor != nil {
		k.destructor(old)
	}
}

// runDestructors walks the destructor chain to a fixed point for the given
// goroutine: spec.md §4.4.2's thread-exit sweep repeats full passes until
// one completes without invoking a single destructor, so that a
// destructor which itself sets a new value on another key is still
// cleaned up. Each slot's value is cleared before its destructor runs.
func runDestructors(gid int64) {
	for {
		progressed := false
		for node := chainHead.Load(); node != nil; node = node.next {
			v, ok := node.key.values.LoadAndDelete(gid)
			if ok && v != nil {
				node.key.destructor(v)
				progressed = true
			}
		}
		if !progressed {
			return
		}
	}
}
