package native

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// LoadState is the lifecycle of a LibraryGroup. It moves at most once, away from NotStarted.
type LoadState int32

const (
	NotStarted             LoadState = iota
	SkippedNoConditionTrue           //no symbol was needed, the library was never loaded
	LibraryLoadAborted               //no candidate could be loaded
	Resolved                         //ran to completion or stopped on a fatal symbol failure
)

func (s LoadState) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case SkippedNoConditionTrue:
		return "skipped"
	case LibraryLoadAborted:
		return "aborted"
	case Resolved:
		return "resolved"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Terminal reports whether the state is final.
func (s LoadState) Terminal() bool { return s != NotStarted }

type (
	// Slot is the shared address cell of one (library, bucket, symbol) triple.
	Slot struct {
		group  *LibraryGroup
		index  int
		bucket int //-1 for unconditional
		symbol string
		kind   Kind
		addr   uintptr
		set    bool
	}
	// Bucket is the set of symbols imported under one condition.
	Bucket struct {
		Condition *Condition
		index     int
		slots     []*Slot
		bySymbol  map[string]*Slot
	}
	// LibraryGroup holds every slot of one library. It is built by Consolidate and resolved at most once.
	LibraryGroup struct {
		library       *Library
		slots         []*Slot
		unconditional []*Slot
		bySymbol      map[string]*Slot
		buckets       []*Bucket
		once          sync.Once
		state         atomic.Int32
		handle        Handle
	}
)

// Index is the group-local position of the slot.
func (s *Slot) Index() int { return s.index }

// Bucket is the index of the conditional bucket of the slot, -1 when unconditional.
func (s *Slot) Bucket() int { return s.bucket }

// Symbol is the native name of the slot.
func (s *Slot) Symbol() string { return s.symbol }

// Kind is the kind of the first request assigned to the slot.
func (s *Slot) Kind() Kind { return s.kind }

// Group is the owner of the slot.
func (s *Slot) Group() *LibraryGroup { return s.group }

// Address resolves the owning group on first use and returns the symbol address, zero when unresolved.
func (s *Slot) Address() uintptr {
	s.group.Resolve()
	return s.addr
}

// Resolved reports whether the slot holds an address, resolving the owning group on first use.
func (s *Slot) Resolved() bool {
	s.group.Resolve()
	return s.set
}

func (s *Slot) String() string {
	return fmt.Sprintf("#%d %s", s.index, s.symbol)
}

// store writes the address once.
func (s *Slot) store(p uintptr) {
	if s.set {
		return
	}
	s.addr, s.set = p, true
}

// Index is the position of the bucket in its group.
func (b *Bucket) Index() int { return b.index }

// Slots are the slots of the bucket in first-seen order.
func (b *Bucket) Slots() []*Slot { return b.slots }

// Slot finds the slot of symbol in the bucket.
func (b *Bucket) Slot(symbol string) (*Slot, bool) {
	s, ok := b.bySymbol[symbol]
	return s, ok
}

// Library is the key of the group.
func (g *LibraryGroup) Library() *Library { return g.library }

// Slots are all slots in index order: unconditional first, then each bucket.
func (g *LibraryGroup) Slots() []*Slot { return g.slots }

// Unconditional are the slots resolved whenever the library is loaded.
func (g *LibraryGroup) Unconditional() []*Slot { return g.unconditional }

// Slot finds the unconditional slot of symbol.
func (g *LibraryGroup) Slot(symbol string) (*Slot, bool) {
	s, ok := g.bySymbol[symbol]
	return s, ok
}

// Buckets are the conditional buckets in first-seen order.
func (g *LibraryGroup) Buckets() []*Bucket { return g.buckets }

// State is the current load state, it does not trigger resolution.
func (g *LibraryGroup) State() LoadState { return LoadState(g.state.Load()) }

// Handle is the loaded library, zero unless the library was loaded.
func (g *LibraryGroup) Handle() Handle {
	if g.State() != Resolved {
		return 0
	}
	return g.handle
}

func (g *LibraryGroup) String() string {
	return fmt.Sprintf("%s[%d slots, %d buckets, %s]", g.library, len(g.slots), len(g.buckets), g.State())
}

// finish records the terminal state once.
func (g *LibraryGroup) finish(s LoadState) {
	g.state.CompareAndSwap(int32(NotStarted), int32(s))
}
