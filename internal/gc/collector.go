// Package gc implements the mark-and-sweep garbage collector (§4.4): it
// enumerates every stub reachable from the root set and releases the
// rest, driven entirely by the generic Link/Misc/Info header flags plus
// two flavor-specific special cases (cell-bearing arrays, and an
// action's specialty chain).
package gc

import (
	"renc/internal/cell"
	"renc/internal/flex"
	"renc/internal/stub"
)

// RootProvider is implemented by anything that can enumerate its own GC
// roots at collection time — instance.New registers the trampoline (all
// live Levels, including the cells their feeds hold), the guard stack and
// the symbol table, so this package never imports level (gc sits below it
// in §2's dependency order).
type RootProvider interface {
	GCRoots() []cell.Node
}

// TraceFunc receives collector diagnostics, following the teacher's
// internal/debugger "pluggable hook" pattern instead of a hardwired
// logger.
type TraceFunc func(event string, kv ...any)

// Collector owns one interpreter instance's GC state: the root context
// and singleton stubs, every registered RootProvider (the trampoline's
// levels, the guard stack, the symbol table), and the stub pool it sweeps.
type Collector struct {
	pool *stub.Pool

	rootContext *flex.Context
	singletons  []*stub.Stub
	providers   []RootProvider

	trace TraceFunc
}

// NewCollector creates a Collector over pool.
func NewCollector(pool *stub.Pool) *Collector {
	return &Collector{pool: pool}
}

// SetTrace installs (or clears, with nil) a diagnostics hook.
func (c *Collector) SetTrace(fn TraceFunc) { c.trace = fn }

func (c *Collector) log(event string, kv ...any) {
	if c.trace != nil {
		c.trace(event, kv...)
	}
}

// SetRootContext registers the root context as a permanent GC root.
func (c *Collector) SetRootContext(ctx *flex.Context) { c.rootContext = ctx }

// AddSingleton registers a singleton stub (empty array, common isotopes,
// …) as a permanent GC root.
func (c *Collector) AddSingleton(s *stub.Stub) {
	c.singletons = append(c.singletons, s)
}

// RegisterRootProvider adds p's roots to every future collection.
func (c *Collector) RegisterRootProvider(p RootProvider) {
	c.providers = append(c.providers, p)
}

// hasStub is implemented by every flex/symbol wrapper type, letting the
// collector unwrap any of them back to the concrete *stub.Stub it can
// actually color and sweep.
type hasStub interface {
	UnderlyingStub() *stub.Stub
}

// refSource is implemented by wrapper types whose metadata hides Node
// references the generic Link/Misc/Info scan can't see — an action's
// specialty chain, an array's source-file symbol.
type refSource interface {
	GCRefs() []cell.Node
}

func resolveStub(n cell.Node) *stub.Stub {
	if n == nil {
		return nil
	}
	if s, ok := n.(*stub.Stub); ok {
		return s
	}
	if hs, ok := n.(hasStub); ok {
		return hs.UnderlyingStub()
	}
	return nil
}

// Stats summarizes one collection cycle.
type Stats struct {
	Marked int
	Freed  int
}

// Collect runs one full three-phase mark-and-sweep cycle (§4.4
// "Algorithm"): flip all live stubs white, mark everything reachable from
// roots black, then free any stub still white that isn't on the manuals
// list (manuals are never swept — they're released explicitly or via
// FreeManuals on panic unwind, per §3) and paint every survivor white
// again. Sweep candidates are gathered first and freed after Live returns,
// since Live holds the pool's lock.
func (c *Collector) Collect() Stats {
	c.pool.Live(func(s *stub.Stub) { stub.Paint(s, stub.White) })

	m := &marker{seen: make(map[*stub.Stub]bool)}
	if c.rootContext != nil {
		m.markNode(c.rootContext.UnderlyingStub())
	}
	for _, s := range c.singletons {
		m.markNode(s)
	}
	for _, p := range c.providers {
		for _, n := range p.GCRoots() {
			m.markNode(resolveStub(n))
		}
	}

	var dead []*stub.Stub
	c.pool.Live(func(s *stub.Stub) {
		if stub.ColorOf(s) == stub.White {
			dead = append(dead, s)
			return
		}
		stub.Paint(s, stub.White)
	})
	var freed int
	for _, s := range dead {
		if !c.pool.IsManual(s) {
			c.pool.Free(s)
			freed++
		}
	}

	c.log("gc.collect", "marked", len(m.seen), "freed", freed)
	return Stats{Marked: len(m.seen), Freed: freed}
}

// marker holds the mark-phase's visited set, so cyclic stub graphs (a
// context whose keylist also appears inside one of its own variables,
// say) terminate instead of recursing forever.
type marker struct {
	seen map[*stub.Stub]bool
}

func (m *marker) markNode(s *stub.Stub) {
	if s == nil || m.seen[s] {
		return
	}
	m.seen[s] = true
	stub.Paint(s, stub.Black)

	m.markSlot(s.Link)
	m.markSlot(s.Misc)
	m.markSlot(s.Info)

	var src refSource
	if s.Flavor.HoldsCells() {
		arr := &flex.Array{Stub: s}
		n := arr.Len()
		for i := 0; i < n; i++ {
			m.markCell(arr.At(i))
		}
		src = arr
	}
	if s.Flavor == stub.FlavorParamlist {
		src = &flex.Action{Stub: s}
	}
	if src != nil {
		for _, ref := range src.GCRefs() {
			m.markNode(resolveStub(ref))
		}
	}
}

func (m *marker) markSlot(v any) {
	if node, ok := v.(cell.Node); ok {
		m.markNode(resolveStub(node))
	}
}

func (m *marker) markCell(c cell.Cell) {
	m.markNode(resolveStub(c.Binding()))
	m.markNode(resolveStub(c.Slot0().Node()))
	m.markNode(resolveStub(c.Slot1().Node()))
}
