package pool

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ZenLiuCN/native"
)

// Pool collects import requests from many call sites and consolidates them once, on first use.
type Pool struct {
	requests []native.ImportRequest
	plan     *native.Plan
	sync.RWMutex
}

// Import is the ticket of one declared request.
type Import struct {
	native.ImportRequest
	pool  *Pool
	index int
}

var (
	ErrSealed      = errors.New("pool already consolidated")
	ErrNotDeclared = errors.New("symbol not declared")
	ErrRejected    = errors.New("import rejected")
)

// Default is the pool used by the package level Declare.
var Default = NewPool()

// NewPool create new pool
func NewPool() *Pool {
	return new(Pool)
}

// Declare adds a request to Default.
func Declare(r native.ImportRequest) (*Import, error) {
	return Default.Declare(r)
}

// Declare adds a request. It fails with ErrSealed once the pool has been consolidated.
func (p *Pool) Declare(r native.ImportRequest) (*Import, error) {
	p.Lock()
	defer p.Unlock()
	if p.plan != nil {
		return nil, ErrSealed
	}
	p.requests = append(p.requests, r)
	return &Import{ImportRequest: r, pool: p, index: len(p.requests) - 1}, nil
}

// MustDeclare is Declare that panics on error.
func (p *Pool) MustDeclare(r native.ImportRequest) *Import {
	i, err := p.Declare(r)
	if err != nil {
		panic(err)
	}
	return i
}

// Plan consolidates the declared requests on the first call and returns the same plan afterwards.
func (p *Pool) Plan() *native.Plan {
	p.RLock()
	plan := p.plan
	p.RUnlock()
	if plan != nil {
		return plan
	}
	p.Lock()
	defer p.Unlock()
	if p.plan == nil {
		p.plan = native.Consolidate(p.requests)
		for _, r := range p.plan.Rejected {
			native.Logger.Warn().Err(r).Msg("import rejected")
		}
	}
	return p.plan
}

// Sealed reports whether the pool has been consolidated.
func (p *Pool) Sealed() bool {
	p.RLock()
	defer p.RUnlock()
	return p.plan != nil
}

// Len is the number of declared requests.
func (p *Pool) Len() int {
	p.RLock()
	defer p.RUnlock()
	return len(p.requests)
}

// Resolve resolves every library of the pool.
func (p *Pool) Resolve() []native.LoadState {
	return p.Plan().ResolveAll()
}

// Require fetch the address of symbol from lib: the unconditional slot first, then the first resolved bucket slot.
func (p *Pool) Require(lib *native.Library, symbol string) (uintptr, error) {
	g, ok := p.Plan().Group(lib)
	if !ok {
		return 0, fmt.Errorf("%w: %s!%s", ErrNotDeclared, lib, symbol)
	}
	var slots []*native.Slot
	if s, ok := g.Slot(symbol); ok {
		slots = append(slots, s)
	}
	for _, b := range g.Buckets() {
		if s, ok := b.Slot(symbol); ok {
			slots = append(slots, s)
		}
	}
	if len(slots) == 0 {
		return 0, fmt.Errorf("%w: %s!%s", ErrNotDeclared, lib, symbol)
	}
	for _, s := range slots {
		if a := s.Address(); a != 0 {
			return a, nil
		}
	}
	return 0, &native.SymbolLoadError{Library: lib.String(), Symbol: symbol, Err: native.ErrMissingSymbol}
}

// Slot is the slot shared by this import, nil when the request was rejected.
func (i *Import) Slot() *native.Slot {
	return i.pool.Plan().Slots[i.index]
}

// Address resolves the library on first use and returns the symbol address, zero when unresolved.
func (i *Import) Address() uintptr {
	s := i.Slot()
	if s == nil {
		return 0
	}
	return s.Address()
}

// Err tells why the import has no address.
func (i *Import) Err() error {
	plan := i.pool.Plan()
	for _, r := range plan.Rejected {
		if r.Index == i.index {
			return fmt.Errorf("%w: %w", ErrRejected, r)
		}
	}
	s := plan.Slots[i.index]
	switch st := s.Group().Resolve(); {
	case s.Resolved():
		return nil
	case st == native.Resolved:
		return &native.SymbolLoadError{Library: i.Library.String(), Symbol: i.Symbol, Err: native.ErrMissingSymbol}
	default:
		return fmt.Errorf("%s: library %s", st, i.Library)
	}
}
