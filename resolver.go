package native

import (
	"strings"
)

// Resolve loads the library and resolves the slots of the group, at most once for the process lifetime.
// Concurrent callers block until the first one is done. The returned state is always terminal.
//
// A handler that panics propagates to the caller that ran the resolution, the group still records a
// terminal state and is never resolved again.
func (g *LibraryGroup) Resolve() LoadState {
	g.once.Do(g.resolve)
	return g.State()
}

type resolution struct {
	group  *LibraryGroup
	lib    *Library
	loader Loader
	atoms  AtomEvaluator
	memo   map[string]bool
	loaded bool
}

func (g *LibraryGroup) resolve() {
	r := &resolution{
		group:  g,
		lib:    g.library,
		loader: g.library.loader(),
		atoms:  g.library.atoms(),
		memo:   make(map[string]bool, len(g.buckets)),
	}
	defer func() {
		if g.State().Terminal() {
			return
		}
		if r.loaded {
			g.finish(Resolved)
		} else {
			g.finish(LibraryLoadAborted)
		}
	}()
	s := r.run()
	g.finish(s)
	r.lib.trace().Str("state", s.String()).Int("slots", len(g.slots)).Msg("library group finished")
}

func (r *resolution) run() LoadState {
	g := r.group
	if len(g.unconditional) == 0 {
		needed := false
		for _, b := range g.buckets {
			if r.holds(b.Condition) {
				needed = true
			}
		}
		if !needed {
			return SkippedNoConditionTrue
		}
	}
	h, ok := r.load()
	if !ok {
		return LibraryLoadAborted
	}
	g.handle, r.loaded = h, true
	if !r.symbols(h, g.unconditional) {
		return Resolved
	}
	for _, b := range g.buckets {
		if !r.holds(b.Condition) {
			r.lib.trace().Int("bucket", b.index).Str("condition", b.Condition.String()).Msg("bucket skipped")
			continue
		}
		if !r.symbols(h, b.slots) {
			return Resolved
		}
	}
	return Resolved
}

// holds evaluates each distinct condition once per resolution.
func (r *resolution) holds(c *Condition) bool {
	k := c.Key()
	if v, ok := r.memo[k]; ok {
		return v
	}
	v := c.Evaluate(r.atoms)
	r.memo[k] = v
	return v
}

func (r *resolution) load() (Handle, bool) {
	for {
		name, policy := r.lib.next()
		var err error
		if strings.TrimSpace(name) != "" {
			h, e := r.loader.Open(name, policy)
			if e == nil {
				r.lib.trace().Str("candidate", name).Msg("library loaded")
				return h, true
			}
			err = &LibraryLoadError{Library: r.lib.String(), Name: name, Policy: policy, Err: e}
			r.lib.trace().Str("candidate", name).Err(e).Msg("library load failed")
		} else {
			name = ""
		}
		if !r.lib.loadFailed(name, policy, err) {
			Logger.Warn().Str("library", r.lib.String()).Msg("library load aborted")
			return 0, false
		}
	}
}

// symbols resolves slots in order and reports false when the rest of the group must be abandoned.
func (r *resolution) symbols(h Handle, slots []*Slot) bool {
	for _, s := range slots {
		var err error
		if strings.TrimSpace(s.symbol) != "" {
			p, e := r.loader.Lookup(h, s.symbol)
			if e == nil && p != 0 {
				s.store(p)
				continue
			}
			if e == nil {
				e = ErrMissingSymbol
			}
			err = &SymbolLoadError{Library: r.lib.String(), Symbol: s.symbol, Err: e}
			r.lib.trace().Str("symbol", s.symbol).Err(e).Msg("symbol lookup failed")
		}
		if !r.lib.symbolFailed(s.symbol, err) {
			Logger.Warn().Str("library", r.lib.String()).Str("symbol", s.symbol).Msg("symbol resolution aborted")
			return false
		}
	}
	return true
}

// ResolveAll resolves every group of the plan and returns their states in order.
func (p *Plan) ResolveAll() []LoadState {
	states := make([]LoadState, len(p.Groups))
	for i, g := range p.Groups {
		states[i] = g.Resolve()
	}
	return states
}
