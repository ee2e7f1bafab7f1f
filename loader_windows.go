//go:build windows

package native

import (
	"golang.org/x/sys/windows"
)

const (
	libPrefix           = ""
	libSuffix           = ".dll"
	tryApplicationDir = false //LoadLibraryEx honors the search flags itself
	defaultMode         = 0
)

func open(path string, policy LoadPolicy) (Handle, error) {
	h, err := windows.LoadLibraryEx(path, 0, uintptr(policy.Search))
	if err != nil {
		return 0, err
	}
	return Handle(h), nil
}

func lookup(h Handle, symbol string) (uintptr, error) {
	p, err := windows.GetProcAddress(windows.Handle(h), symbol)
	if err != nil {
		return 0, err
	}
	if p == 0 {
		return 0, ErrMissingSymbol
	}
	return p, nil
}

// Close releases a handle opened by System.
func Close(h Handle) error {
	return windows.FreeLibrary(windows.Handle(h))
}
