package gc

import (
	"sync"

	"github.com/pkg/errors"

	"renc/internal/cell"
)

// GuardStack is the manually managed vector of stubs that must survive
// any GC-triggering operation (§4.4 "Roots": "the guard stack"). It is a
// RootProvider in its own right — register one with a Collector via
// RegisterRootProvider to have it contribute roots every cycle.
//
// This is also where spec.md's §13 supplement lives: a first-class guard
// stack type, not just a bullet point in the Roots list, so callers (and
// tests) can Guard/Unguard symmetrically the way the teacher's
// internal/debugger pins breakpoints across steps.
type GuardStack struct {
	mu    sync.Mutex
	items []cell.Node
}

// NewGuardStack creates an empty guard stack.
func NewGuardStack() *GuardStack {
	return &GuardStack{}
}

// Guard pushes n onto the stack, pinning it alive until a matching
// Unguard.
func (g *GuardStack) Guard(n cell.Node) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.items = append(g.items, n)
}

// Unguard pops the most recently guarded node.
func (g *GuardStack) Unguard() (cell.Node, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.items) == 0 {
		return nil, errors.New("guard stack is empty")
	}
	n := g.items[len(g.items)-1]
	g.items = g.items[:len(g.items)-1]
	return n, nil
}

// Len reports how many nodes are currently guarded.
func (g *GuardStack) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.items)
}

// GCRoots implements RootProvider.
func (g *GuardStack) GCRoots() []cell.Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]cell.Node, len(g.items))
	copy(out, g.items)
	return out
}
