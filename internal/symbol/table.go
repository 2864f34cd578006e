package symbol

import (
	"strings"
	"sync"

	"renc/internal/cell"
	"renc/internal/stub"
)

// Table is the process-global intern table: one canon Symbol per
// case-insensitive spelling, with same-case variants linked into the
// canon's synonym ring.
type Table struct {
	mu    sync.Mutex
	pool  *stub.Pool
	canon map[string]*Symbol // lowercased spelling -> canon symbol
	exact map[string]*Symbol // exact spelling -> that spelling's symbol
}

// NewTable creates an intern table backed by pool.
func NewTable(pool *stub.Pool) *Table {
	return &Table{
		pool:  pool,
		canon: make(map[string]*Symbol),
		exact: make(map[string]*Symbol),
	}
}

// Intern returns the Symbol for text, creating it (and, if needed, its
// canon) on first use. Repeated interning of the same exact spelling
// returns the identical *Symbol (symbols are immutable once interned).
func (t *Table) Intern(text string) *Symbol {
	t.mu.Lock()
	defer t.mu.Unlock()

	if sym, ok := t.exact[text]; ok {
		return sym
	}

	key := strings.ToLower(text)
	canon, ok := t.canon[key]
	if !ok {
		canon = newRaw(t.pool, text)
		t.canon[key] = canon
		t.exact[text] = canon
		return canon
	}

	// New case variant: link it into canon's ring.
	variant := newRaw(t.pool, text)
	variant.Link = canon.next()
	canon.Link = variant
	t.exact[text] = variant
	return variant
}

// Canon returns the canon symbol for the case-insensitive spelling of
// text, or nil if nothing with that spelling has ever been interned.
func (t *Table) Canon(text string) *Symbol {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.canon[strings.ToLower(text)]
}

// GCRoots implements gc.RootProvider: every interned spelling (canon and
// case variants alike) is kept alive, so a collection can never free a
// stub a live *Symbol still points at and hand back a stale pointer on
// the next Intern of that spelling (§4.3 "Symbol", §4.4 "Roots").
func (t *Table) GCRoots() []cell.Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]cell.Node, 0, len(t.exact))
	for _, sym := range t.exact {
		out = append(out, sym)
	}
	return out
}

// RotateCanon replaces old (the current canon for its spelling) with a
// surviving ring member as the new canon, per §4.3 "the canon form able
// to rotate on GC of a canon". Returns false if old was the ring's only
// member (nothing to rotate to — the whole spelling is gone).
func (t *Table) RotateCanon(old *Symbol) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := strings.ToLower(old.Text())
	if t.canon[key] != old {
		return false
	}
	next := old.next()
	if next == nil || next == old {
		delete(t.canon, key)
		return false
	}
	// Splice old out of the ring.
	cur := next
	for cur.next() != old {
		cur = cur.next()
	}
	cur.Link = old.next()
	old.Link = old // old becomes a singleton ring if it survives elsewhere

	t.canon[key] = next
	return true
}
