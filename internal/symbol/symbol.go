// Package symbol implements interned, immutable UTF-8 symbols connected
// into a circular synonym ring for case variants (§4.3 "Symbol").
package symbol

import "renc/internal/stub"

// Symbol is a stub.Stub flavored as FlavorSymbol: its dynamic buffer holds
// the symbol's immutable UTF-8 text, and its Link field threads the
// circular ring of case variants (one member of which is the canon form).
type Symbol struct {
	*stub.Stub

	text string

	// binders holds the two 16-bit per-binder indices from §4.3 ("Symbols
	// participate in binding via two 16-bit per-binder indices stored in
	// the stub's misc field"). Modeled as a plain field rather than
	// packed into Misc, since Go has no reason to fight for bit layout
	// Non-goals already disclaim.
	binders [2]uint16
}

// Text returns the symbol's immutable UTF-8 text.
func (s *Symbol) Text() string { return s.text }

// Binder returns one of the two per-binder indices (slot 0 or 1).
func (s *Symbol) Binder(slot int) uint16 { return s.binders[slot] }

// UnderlyingStub exposes the backing Stub.
func (s *Symbol) UnderlyingStub() *stub.Stub { return s.Stub }

// SetBinder sets one of the two per-binder indices.
func (s *Symbol) SetBinder(slot int, v uint16) { s.binders[slot] = v }

// next returns the next ring member (Link points to the next synonym,
// wrapping back to the canon eventually).
func (s *Symbol) next() *Symbol {
	n, _ := s.Link.(*Symbol)
	return n
}

// Synonyms reports every case variant in s's ring, including s itself,
// starting from s and walking until the ring closes.
func (s *Symbol) Synonyms() []*Symbol {
	out := []*Symbol{s}
	for n := s.next(); n != nil && n != s; n = n.next() {
		out = append(out, n)
	}
	return out
}

// newRaw allocates a bare, single-member-ring symbol stub for text,
// without interning — callers go through Table.Intern.
func newRaw(p *stub.Pool, text string) *Symbol {
	st := p.Alloc()
	st.Flavor = stub.FlavorSymbol
	sym := &Symbol{Stub: st, text: text}
	st.Link = sym // ring of one: points to itself
	if err := stub.DidFlexDataAlloc(st, len(text), false); err == nil {
		st.Dyn.Bytes = append(st.Dyn.Bytes[:0], text...)
	}
	_ = p.Manage(st)
	return sym
}
