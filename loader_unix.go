//go:build darwin || freebsd || linux || netbsd

package native

import (
	"fmt"
	"runtime"

	"github.com/ebitengine/purego"
)

const (
	libPrefix           = "lib"
	tryApplicationDir = true
	defaultMode         = purego.RTLD_NOW | purego.RTLD_GLOBAL
)

var libSuffix = func() string {
	if runtime.GOOS == "darwin" {
		return ".dylib"
	}
	return ".so"
}()

func open(path string, policy LoadPolicy) (Handle, error) {
	mode := policy.Mode
	if mode == 0 {
		mode = defaultMode
	}
	h, err := purego.Dlopen(path, mode)
	if err != nil {
		return 0, err
	}
	if h == 0 {
		return 0, fmt.Errorf("dlopen %s: nil handle", path)
	}
	return Handle(h), nil
}

func lookup(h Handle, symbol string) (uintptr, error) {
	p, err := purego.Dlsym(uintptr(h), symbol)
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
	return purego.Dlclose(uintptr(h))
}
