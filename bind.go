//go:build darwin || freebsd || linux || netbsd || windows

package native

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// Bind makes fptr, a pointer to a Go function variable, call the native function of slot.
// The slot is resolved on first use. The Go signature is the caller's contract with the native code.
func Bind(fptr any, slot *Slot) (err error) {
	if slot.Kind() != Function {
		return fmt.Errorf("bind %s: %w: is %s", slot.Symbol(), ErrKind, slot.Kind())
	}
	p := slot.Address()
	if p == 0 {
		return &SymbolLoadError{Library: slot.group.library.String(), Symbol: slot.Symbol(), Err: ErrMissingSymbol}
	}
	defer func() {
		switch x := recover().(type) {
		case nil:
		case error:
			err = fmt.Errorf("bind %s: %w", slot.Symbol(), x)
		default:
			err = fmt.Errorf("bind %s: %v", slot.Symbol(), x)
		}
	}()
	purego.RegisterFunc(fptr, p)
	return
}

// MustBind is Bind that panics on error.
func MustBind(fptr any, slot *Slot) {
	if err := Bind(fptr, slot); err != nil {
		panic(err)
	}
}
