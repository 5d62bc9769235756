package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultAllocRealloc(t *testing.T) {
	v := Default()

	buf, ok := v.Alloc(16)
	require.True(t, ok)
	require.Len(t, buf, 16)

	grown, ok := v.Realloc(buf, 32)
	require.True(t, ok)
	require.Len(t, grown, 32)

	// realloc(nil, n) behaves like alloc(n).
	fresh, ok := v.Realloc(nil, 8)
	require.True(t, ok)
	require.Len(t, fresh, 8)

	v.Free(buf) // no-op, must not panic
	v.Free(nil) // no-op on nil
}

func TestInstalledFailureInjection(t *testing.T) {
	v := New(Vtable{
		AllocFunc: func(size int) []byte { return nil },
	})
	buf, ok := v.Alloc(16)
	require.False(t, ok)
	require.Nil(t, buf)
}
