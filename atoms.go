package native

import (
	"os"
	"runtime"
	"strings"
)

// EnvPrefix marks atoms that test an environment variable, e.g. "env:WAYLAND_DISPLAY".
const EnvPrefix = "env:"

var unixes = map[string]bool{
	"aix": true, "android": true, "darwin": true, "dragonfly": true, "freebsd": true, "hurd": true,
	"illumos": true, "ios": true, "linux": true, "netbsd": true, "openbsd": true, "solaris": true,
}

// Platform answers atoms about the running process:
// the GOOS and GOARCH names, "unix" on unix-like systems, and "env:NAME" for a non-empty variable.
// Any other name is false.
func Platform(name string) bool {
	switch {
	case name == runtime.GOOS, name == runtime.GOARCH:
		return true
	case name == "unix":
		return unixes[runtime.GOOS]
	case name == "macos":
		return runtime.GOOS == "darwin"
	case strings.HasPrefix(name, EnvPrefix):
		return os.Getenv(strings.TrimPrefix(name, EnvPrefix)) != ""
	}
	return false
}

// Atoms is a fixed set of atom values, missing names are false.
type Atoms map[string]bool

// Evaluate is the AtomEvaluator of the set.
func (a Atoms) Evaluate(name string) bool { return a[name] }

// Overlay answers from set first and falls back to base.
func Overlay(base AtomEvaluator, set map[string]bool) AtomEvaluator {
	return func(name string) bool {
		if v, ok := set[name]; ok {
			return v
		}
		if base == nil {
			return false
		}
		return base(name)
	}
}
