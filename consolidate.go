package native

import (
	"fmt"
	"io"
)

// Plan is the outcome of one consolidation pass.
type Plan struct {
	Groups   []*LibraryGroup    //one per library with at least one valid request, in first-seen order
	Slots    []*Slot            //Slots[i] is the slot of request i, nil when rejected
	Rejected []*ValidationError //invalid requests, in input order
}

type partition struct {
	group   *LibraryGroup
	buckets map[string]*Bucket
}

// Consolidate groups requests by library, then by condition identity, then by symbol name.
// Requests sharing all three share one Slot. The layout only depends on the input order.
func Consolidate(requests []ImportRequest) *Plan {
	p := &Plan{Slots: make([]*Slot, len(requests))}
	parts := make(map[*Library]*partition)
	for i, r := range requests {
		if err := r.Validate(); err != nil {
			p.Rejected = append(p.Rejected, &ValidationError{Index: i, Request: r, Err: err})
			continue
		}
		pt, ok := parts[r.Library]
		if !ok {
			pt = &partition{
				group:   &LibraryGroup{library: r.Library, bySymbol: make(map[string]*Slot)},
				buckets: make(map[string]*Bucket),
			}
			parts[r.Library] = pt
			p.Groups = append(p.Groups, pt.group)
		}
		p.Slots[i] = pt.assign(r)
	}
	for _, g := range p.Groups {
		g.index()
	}
	return p
}

func (pt *partition) assign(r ImportRequest) *Slot {
	g := pt.group
	if r.Condition == nil {
		if s, ok := g.bySymbol[r.Symbol]; ok {
			return s
		}
		s := &Slot{group: g, bucket: -1, symbol: r.Symbol, kind: r.Kind}
		g.bySymbol[r.Symbol] = s
		g.unconditional = append(g.unconditional, s)
		return s
	}
	key := r.Condition.Key()
	b, ok := pt.buckets[key]
	if !ok {
		b = &Bucket{Condition: r.Condition, index: len(g.buckets), bySymbol: make(map[string]*Slot)}
		pt.buckets[key] = b
		g.buckets = append(g.buckets, b)
	}
	if s, ok := b.bySymbol[r.Symbol]; ok {
		return s
	}
	s := &Slot{group: g, bucket: b.index, symbol: r.Symbol, kind: r.Kind}
	b.bySymbol[r.Symbol] = s
	b.slots = append(b.slots, s)
	return s
}

// index numbers the slots: unconditional first, then bucket by bucket.
func (g *LibraryGroup) index() {
	g.slots = make([]*Slot, 0, len(g.unconditional))
	g.slots = append(g.slots, g.unconditional...)
	for _, b := range g.buckets {
		g.slots = append(g.slots, b.slots...)
	}
	for i, s := range g.slots {
		s.index = i
	}
}

// Group finds the group of a library.
func (p *Plan) Group(lib *Library) (*LibraryGroup, bool) {
	for _, g := range p.Groups {
		if g.library == lib {
			return g, true
		}
	}
	return nil, false
}

// Dump writes the layout of the plan, one line per library, bucket and slot.
func (p *Plan) Dump(w io.Writer) (err error) {
	pf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}
	for _, g := range p.Groups {
		pf("library %s\n", g.library)
		if len(g.unconditional) > 0 {
			pf("  unconditional\n")
			for _, s := range g.unconditional {
				pf("    #%d %s (%s)\n", s.index, s.symbol, s.kind)
			}
		}
		for i, b := range g.buckets {
			pf("  bucket %d when %s\n", i, b.Condition)
			for _, s := range b.slots {
				pf("    #%d %s (%s)\n", s.index, s.symbol, s.kind)
			}
		}
	}
	for _, r := range p.Rejected {
		pf("rejected %s\n", r)
	}
	return
}
