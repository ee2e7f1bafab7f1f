//go:build goloader

package host

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ZenLiuCN/fn"
	"github.com/ZenLiuCN/native"
	"github.com/pkujhd/goloader"
)

// Self is the library name of the running executable, an empty name means the same.
const Self = "self"

var ErrUnknownHandle = errors.New("unknown host handle")

// Loader is a native.Loader over goloader symbol tables. Handle 1 is always the executable.
type Loader struct {
	tables []map[string]uintptr
	paths  map[string]native.Handle
	err    error
	once   sync.Once
	sync.RWMutex
}

// Default is shared by libraries that resolve against the executable.
var Default = New()

func New() *Loader {
	return &Loader{paths: make(map[string]native.Handle)}
}

func (l *Loader) self() error {
	l.once.Do(func() {
		m := make(map[string]uintptr)
		if l.err = goloader.RegSymbol(m); l.err != nil {
			return
		}
		l.Lock()
		l.tables = append(l.tables, m)
		l.Unlock()
	})
	return l.err
}

// Open reads the symbol table of name: Self, a shared object (.so, .dylib, .dll) or a Go executable.
// A file opened twice yields the same handle.
func (l *Loader) Open(name string, _ native.LoadPolicy) (native.Handle, error) {
	if err := l.self(); err != nil {
		return 0, fmt.Errorf("host symbols: %w", err)
	}
	if name == "" || name == Self {
		return 1, nil
	}
	l.Lock()
	defer l.Unlock()
	if h, ok := l.paths[name]; ok {
		return h, nil
	}
	m := make(map[string]uintptr)
	var err error
	switch strings.ToLower(filepath.Ext(name)) {
	case ".so", ".dylib", ".dll":
		err = goloader.RegSymbolWithSo(m, name)
	default:
		err = goloader.RegSymbolWithPath(m, name)
	}
	if err != nil {
		return 0, err
	}
	l.tables = append(l.tables, m)
	h := native.Handle(len(l.tables))
	l.paths[name] = h
	return h, nil
}

func (l *Loader) table(h native.Handle) (map[string]uintptr, error) {
	l.RLock()
	defer l.RUnlock()
	if h < 1 || int(h) > len(l.tables) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHandle, h)
	}
	return l.tables[h-1], nil
}

// Lookup finds symbol in the table of h.
func (l *Loader) Lookup(h native.Handle, symbol string) (uintptr, error) {
	m, err := l.table(h)
	if err != nil {
		return 0, err
	}
	l.RLock()
	p := m[symbol]
	l.RUnlock()
	if p == 0 {
		return 0, native.ErrMissingSymbol
	}
	return p, nil
}

// Symbols dump sorted symbol names of h
func (l *Loader) Symbols(h native.Handle) ([]string, error) {
	m, err := l.table(h)
	if err != nil {
		return nil, err
	}
	l.RLock()
	n := fn.MapKeys(m)
	l.RUnlock()
	sort.Strings(n)
	return n, nil
}

// Types registers the type descriptors of values into the executable table.
func (l *Loader) Types(values ...any) error {
	if err := l.self(); err != nil {
		return err
	}
	l.Lock()
	goloader.RegTypes(l.tables[0], values...)
	l.Unlock()
	return nil
}

// Library binds a library resolved by this loader from the first readable candidate.
func (l *Loader) Library(name string, candidates ...string) *native.Library {
	if len(candidates) == 0 {
		candidates = []string{Self}
	}
	lib := native.NewLibrary(name, candidates...)
	lib.Loader = l
	return lib
}
