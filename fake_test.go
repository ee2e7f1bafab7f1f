package native

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

var errNotFound = errors.New("library not found")

// fakeLoader serves libraries from memory and records every call.
type fakeLoader struct {
	mu      sync.Mutex
	libs    map[string]map[string]uintptr
	handles []string
	opens   []string
	lookups []string
}

func newFakeLoader(libs map[string]map[string]uintptr) *fakeLoader {
	return &fakeLoader{libs: libs}
}

func (f *fakeLoader) Open(name string, _ LoadPolicy) (Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens = append(f.opens, name)
	if _, ok := f.libs[name]; !ok {
		return 0, fmt.Errorf("%w: %s", errNotFound, name)
	}
	f.handles = append(f.handles, name)
	return Handle(len(f.handles)), nil
}

func (f *fakeLoader) Lookup(h Handle, symbol string) (uintptr, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, symbol)
	p, ok := f.libs[f.handles[h-1]][symbol]
	if !ok {
		return 0, ErrMissingSymbol
	}
	return p, nil
}

func (f *fakeLoader) Opens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.opens...)
}

func (f *fakeLoader) Lookups() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.lookups...)
}

// countingAtoms answers from a fixed set and counts the questions per atom.
type countingAtoms struct {
	mu     sync.Mutex
	values map[string]bool
	calls  map[string]int
}

func newCountingAtoms(values map[string]bool) *countingAtoms {
	return &countingAtoms{values: values, calls: make(map[string]int)}
}

func (c *countingAtoms) Evaluate(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[name]++
	return c.values[name]
}

func (c *countingAtoms) Calls(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}

// fakeLibrary binds a candidate chain on loader and counts provider calls.
func fakeLibrary(name string, loader Loader, atoms AtomEvaluator, candidates ...string) (*Library, *Candidates, *atomic.Int32) {
	c := NewCandidates(DefaultPolicy, candidates...)
	calls := new(atomic.Int32)
	return &Library{
		Name: name,
		Names: func() (string, LoadPolicy) {
			calls.Add(1)
			return c.Next()
		},
		OnLoadFailure: c.Retry,
		Atoms:         atoms,
		Loader:        loader,
	}, c, calls
}
