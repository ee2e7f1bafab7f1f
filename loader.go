package native

import (
	"os"
	"path/filepath"
	"strings"
)

type (
	// Handle is an opened native library.
	Handle uintptr
	// SearchPath selects the directories a candidate name is looked up in.
	// The values are the LOAD_LIBRARY_SEARCH flags of LoadLibraryEx, unix loaders honor SearchApplicationDir only.
	SearchPath uint32
	// LoadPolicy is handed unchanged from the LibraryNameProvider to the Loader.
	LoadPolicy struct {
		Mode   int        //dlopen mode on unix, zero selects RTLD_NOW|RTLD_GLOBAL
		Search SearchPath //directories to search
	}
	// Loader opens libraries and looks symbols up in them.
	Loader interface {
		Open(name string, policy LoadPolicy) (Handle, error)
		Lookup(h Handle, symbol string) (uintptr, error)
	}
)

const (
	SearchDllLoadDir     SearchPath = 0x00000100
	SearchApplicationDir SearchPath = 0x00000200
	SearchUserDirs       SearchPath = 0x00000400
	SearchSystem32       SearchPath = 0x00000800
	SearchDefaultDirs    SearchPath = 0x00001000
)

// DefaultPolicy searches the executable directory first, then the platform defaults.
var DefaultPolicy = LoadPolicy{Search: SearchApplicationDir | SearchDefaultDirs}

// System is the loader of the operating system.
var System Loader = systemLoader{}

var searchNames = map[string]SearchPath{
	"dll":         SearchDllLoadDir,
	"application": SearchApplicationDir,
	"user":        SearchUserDirs,
	"system":      SearchSystem32,
	"default":     SearchDefaultDirs,
}

// ParseSearchPath combines named search flags: dll, application, user, system and default.
func ParseSearchPath(names ...string) (s SearchPath, err error) {
	for _, n := range names {
		f, ok := searchNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return 0, &os.PathError{Op: "search", Path: n, Err: os.ErrInvalid}
		}
		s |= f
	}
	return
}

// candidatePaths lists the file names tried for a candidate, in order.
func candidatePaths(name string, policy LoadPolicy) (paths []string) {
	names := []string{name}
	if !strings.ContainsAny(name, `/\`) {
		if !hasLibSuffix(name) {
			names = append(names, name+libSuffix)
			if !strings.HasPrefix(name, libPrefix) {
				names = append(names, libPrefix+name+libSuffix)
			}
		}
		if policy.Search&SearchApplicationDir != 0 && tryApplicationDir {
			if exe, err := os.Executable(); err == nil {
				dir := filepath.Dir(exe)
				local := make([]string, 0, len(names))
				for _, n := range names {
					local = append(local, filepath.Join(dir, n))
				}
				names = append(local, names...)
			}
		}
	}
	return names
}

func hasLibSuffix(name string) bool {
	return strings.HasSuffix(name, libSuffix) || strings.Contains(name, libSuffix+".")
}

type systemLoader struct{}

func (systemLoader) Open(name string, policy LoadPolicy) (h Handle, err error) {
	var first error
	for _, p := range candidatePaths(name, policy) {
		if h, err = open(p, policy); err == nil {
			return
		}
		if first == nil {
			first = err
		}
	}
	return 0, first
}

func (systemLoader) Lookup(h Handle, symbol string) (uintptr, error) {
	return lookup(h, symbol)
}
