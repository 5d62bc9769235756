package lifecycle

import (
	"testing"

	"github.com/corefn/ccore/alloc"
	"github.com/corefn/ccore/ccoreerr"
	"github.com/stretchr/testify/require"
)

func TestInitThenShutdownSucceeds(t *testing.T) {
	Reset()
	require.True(t, Init(Options{Vtable: alloc.Default()}))
	require.True(t, Shutdown())
}

func TestSecondInitBeforeShutdownFails(t *testing.T) {
	Reset()
	require.True(t, Init(Options{Vtable: alloc.Default()}))
	defer Shutdown()

	var errOut ccoreerr.Error
	ok := InitWithError(Options{Vtable: alloc.Default()}, &errOut)
	require.False(t, ok)
	require.True(t, errOut.IsSet())
	require.Equal(t, ccoreerr.DomainLifecycle, errOut.Domain)
	require.Equal(t, ccoreerr.CodeAlreadyInitialized, errOut.Code)
}

func TestShutdownWithoutInitFails(t *testing.T) {
	Reset()

	var errOut ccoreerr.Error
	ok := ShutdownWithError(&errOut)
	require.False(t, ok)
	require.True(t, errOut.IsSet())
	require.Equal(t, ccoreerr.CodeNotInitialized, errOut.Code)
}

func TestSecondShutdownFails(t *testing.T) {
	Reset()
	require.True(t, Init(Options{Vtable: alloc.Default()}))
	require.True(t, Shutdown())
	require.False(t, Shutdown())
}

func TestInitInstallsProcessWideAllocator(t *testing.T) {
	Reset()
	defer Reset()

	var calls int
	vt := alloc.New(alloc.Vtable{
		AllocFunc: func(size int) []byte {
			calls++
			return make([]byte, size)
		},
	})
	require.True(t, Init(Options{Vtable: vt}))
	defer Shutdown()

	buf, ok := alloc.Active().Alloc(8)
	require.True(t, ok)
	require.Len(t, buf, 8)
	require.Equal(t, 1, calls)
}

func TestFullCycleRepeatable(t *testing.T) {
	Reset()
	for i := 0; i != 3; i++ {
		require.True(t, Init(Options{Vtable: alloc.Default()}))
		require.True(t, Shutdown())
		Reset()
	}
}
