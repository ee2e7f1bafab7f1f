package native

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSystemLibc(t *testing.T) {
	libc := NewLibrary("libc", "libc-does-not-exist.so.0", "libc.so.6")
	libc.OnSymbolFailure = ContinueOnMissing
	plan := Consolidate([]ImportRequest{
		{Symbol: "strlen", Library: libc},
		{Symbol: "no_such_symbol_in_libc", Library: libc},
		{Symbol: "environ", Library: libc, Kind: DataReference, Condition: Atom("linux")},
	})
	if plan.Groups[0].Resolve() != Resolved {
		t.Skip("libc.so.6 is not loadable here")
	}
	require.NotZero(t, plan.Slots[0].Address())
	require.Zero(t, plan.Slots[1].Address())
	require.NotZero(t, plan.Groups[0].Handle())

	var strlen func(string) int
	require.NoError(t, Bind(&strlen, plan.Slots[0]))
	require.Equal(t, 5, strlen("hello"))

	require.ErrorIs(t, Bind(&strlen, plan.Slots[2]), ErrKind)
	require.Error(t, Bind(&strlen, plan.Slots[1]))

	env, err := Ref[uintptr](plan.Slots[2])
	require.NoError(t, err)
	require.NotNil(t, env)
	_, err = Ref[uintptr](plan.Slots[0])
	require.ErrorIs(t, err, ErrKind)
}
