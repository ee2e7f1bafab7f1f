//go:build !(darwin || freebsd || linux || netbsd || windows)

package native

import "errors"

const (
	libPrefix           = "lib"
	libSuffix           = ".so"
	tryApplicationDir = false
)

// ErrUnsupported occurs when the platform has no native loader.
var ErrUnsupported = errors.New("native libraries are not supported on this platform")

func open(string, LoadPolicy) (Handle, error) { return 0, ErrUnsupported }

func lookup(Handle, string) (uintptr, error) { return 0, ErrUnsupported }

// Close releases a handle opened by System.
func Close(Handle) error { return ErrUnsupported }
