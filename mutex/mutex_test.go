package mutex

import (
	"sync"
	"testing"

	"github.com/corefn/ccore/alloc"
	"github.com/stretchr/testify/require"
)

func TestLockUnlockBasic(t *testing.T) {
	m, ok := New(alloc.Default())
	require.True(t, ok)
	require.True(t, m.Lock())
	require.True(t, m.Unlock())
}

func TestTryLockContended(t *testing.T) {
	m, ok := New(alloc.Default())
	require.True(t, ok)
	require.True(t, m.TryLock())
	require.False(t, m.TryLock())
	require.True(t, m.Unlock())
	require.True(t, m.TryLock())
	require.True(t, m.Unlock())
}

func TestAllocationFailureReturnsAbsent(t *testing.T) {
	failingVtable := alloc.New(alloc.Vtable{
		AllocFunc: func(size int) []byte { return nil },
	})
	m, ok := New(failingVtable)
	require.False(t, ok)
	require.Nil(t, m)
}

// TestNoTwoHoldersSimultaneously is the invariant from spec.md §8: for any
// mutex, at no time do two goroutines observe themselves holding it.
func TestNoTwoHoldersSimultaneously(t *testing.T) {
	m, ok := New(alloc.Default())
	require.True(t, ok)

	const goroutines = 50
	const iterations = 2000
	var holders int32
	var maxObserved int32
	var observedMu sync.Mutex

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i != goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j != iterations; j++ {
				m.Lock()
				holders++
				if holders > 1 {
					observedMu.Lock()
					if holders > maxObserved {
						maxObserved = holders
					}
					observedMu.Unlock()
				}
				holders--
				m.Unlock()
			}
		}()
	}
	wg.Wait()
	require.LessOrEqual(t, maxObserved, int32(1))
}

// TestProducerConsumer mirrors the shape of spec.md §8 end-to-end scenario
// 1: two goroutines mutate a shared cell under a single mutex, one doing
// N=1000 increments and the other N=1000 decrements, and the cell must end
// back where it started.
func TestProducerConsumer(t *testing.T) {
	m, ok := New(alloc.Default())
	require.True(t, ok)

	cell := 10
	const n = 1000
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i != n; i++ {
			m.Lock()
			cell++
			m.Unlock()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i != n; i++ {
			m.Lock()
			cell--
			m.Unlock()
		}
	}()
	wg.Wait()
	require.Equal(t, 10, cell)
}
