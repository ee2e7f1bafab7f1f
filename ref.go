package native

import (
	"errors"
	"fmt"
	"unsafe"
)

// ErrKind occurs when a slot is used as the wrong kind of symbol.
var ErrKind = errors.New("wrong symbol kind")

// As reinterprets a resolved address as a pointer to T.
func As[T any](addr uintptr) *T {
	return *(**T)(unsafe.Pointer(&addr))
}

// Ref is the typed view of a DataReference slot. An unresolved slot yields a *SymbolLoadError, as in Bind.
func Ref[T any](slot *Slot) (*T, error) {
	if slot.Kind() != DataReference {
		return nil, fmt.Errorf("ref %s: %w: is %s", slot.Symbol(), ErrKind, slot.Kind())
	}
	p := slot.Address()
	if p == 0 {
		return nil, &SymbolLoadError{Library: slot.group.library.String(), Symbol: slot.Symbol(), Err: ErrMissingSymbol}
	}
	return As[T](p), nil
}
