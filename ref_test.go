package native

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestRef(t *testing.T) {
	loader := newFakeLoader(map[string]map[string]uintptr{"lib": {"table": 0x4000, "f": 0x10}})
	lib, _, _ := fakeLibrary("lib", loader, nil, "lib")
	plan := Consolidate([]ImportRequest{
		{Symbol: "table", Library: lib, Kind: DataReference},
		{Symbol: "absent", Library: lib, Kind: DataReference},
		{Symbol: "f", Library: lib},
	})

	p, err := Ref[int32](plan.Slots[0])
	require.NoError(t, err)
	require.Equal(t, uintptr(0x4000), uintptr(unsafe.Pointer(p)))

	p, err = Ref[int32](plan.Slots[1])
	require.Nil(t, p)
	var se *SymbolLoadError
	require.ErrorAs(t, err, &se)
	require.ErrorIs(t, err, ErrMissingSymbol)
	require.Equal(t, "lib", se.Library)
	require.Equal(t, "absent", se.Symbol)

	_, err = Ref[int32](plan.Slots[2])
	require.ErrorIs(t, err, ErrKind)
}
