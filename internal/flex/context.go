package flex

import (
	"renc/internal/cell"
	"renc/internal/stub"
	"renc/internal/symbol"
)

// Context is a Stub flavored FlavorVarlist: cell 0 is the context
// archetype, cells 1..N are variables, and Link references a keylist
// giving the parameter/field symbols (§3 "Context / Varlist"). Frames are
// contexts whose keysource is either an action's paramlist (a heap frame)
// or a running Level (a stack frame) — this package only stores the
// keysource as a cell.Node; disambiguating "is this a Level" is left to
// the level/action packages one layer up, which is exactly the
// "disambiguated by the cell bit in the pointed-to node's header" special
// case §4.4 calls out.
type Context struct {
	*stub.Stub
}

// NewContext allocates an empty varlist with room for n variables plus
// the archetype slot, linked to keysource (a *Keylist or a Level,
// depending on caller).
func NewContext(pool *stub.Pool, n int, keysource cell.Node) *Context {
	st := pool.Alloc()
	st.Flavor = stub.FlavorVarlist
	st.Link = keysource
	ctx := &Context{Stub: st}
	arr := Array{Stub: st}
	var archetype cell.Cell
	archetype = cell.NewNode(cell.KindFrame, st)
	_ = arr.Append(archetype)
	for i := 0; i < n; i++ {
		var fresh cell.Cell
		cell.Fresh(&fresh)
		_ = arr.Append(fresh)
	}
	_ = pool.Manage(st)
	return ctx
}

// Keysource returns the context's keylist or running Level reference.
func (c *Context) Keysource() cell.Node { return c.Link.(cell.Node) }

// Archetype returns the self-referencing cell stored in slot 0.
func (c *Context) Archetype() cell.Cell {
	return (&Array{Stub: c.Stub}).At(0)
}

// NumVars reports how many variable slots the context has, excluding the
// archetype.
func (c *Context) NumVars() int {
	n := (&Array{Stub: c.Stub}).Len()
	if n == 0 {
		return 0
	}
	return n - 1
}

// Var returns a pointer to variable i (0-based, not counting the
// archetype), for reading or in-place assignment.
func (c *Context) Var(i int) *cell.Cell {
	return (&Array{Stub: c.Stub}).AtPtr(i + 1)
}

// Keylist is a FlavorKeylist array: a sequence of cells each carrying a
// *symbol.Symbol node, one per variable of the context(s) it describes.
type Keylist struct {
	*stub.Stub
}

// NewKeylist allocates a keylist array containing syms in order.
func NewKeylist(pool *stub.Pool, syms []*symbol.Symbol) *Keylist {
	st := pool.Alloc()
	st.Flavor = stub.FlavorKeylist
	kl := &Keylist{Stub: st}
	arr := Array{Stub: st}
	for _, s := range syms {
		_ = arr.Append(cell.NewNode(cell.KindWord, s))
	}
	_ = pool.Manage(st)
	return kl
}

// Len reports how many keys the keylist holds.
func (k *Keylist) Len() int { return (&Array{Stub: k.Stub}).Len() }

// Symbol returns the symbol stored at key index i.
func (k *Keylist) Symbol(i int) *symbol.Symbol {
	c := (&Array{Stub: k.Stub}).At(i)
	return c.Slot0().Node().(*symbol.Symbol)
}

// IndexOf returns the 0-based index of sym in the keylist, or -1.
func (k *Keylist) IndexOf(sym *symbol.Symbol) int {
	for i := 0; i < k.Len(); i++ {
		if k.Symbol(i) == sym {
			return i
		}
	}
	return -1
}

// Lookup finds sym's variable in ctx via its keylist. ok is false if ctx's
// keysource is not a *Keylist (e.g. it's a running Level) or sym isn't
// found.
func Lookup(ctx *Context, sym *symbol.Symbol) (*cell.Cell, bool) {
	kl, ok := ctx.Keysource().(*Keylist)
	if !ok {
		return nil, false
	}
	idx := kl.IndexOf(sym)
	if idx < 0 {
		return nil, false
	}
	return ctx.Var(idx), true
}

// UnderlyingStub exposes the backing Stub.
func (c *Context) UnderlyingStub() *stub.Stub { return c.Stub }

// UnderlyingStub exposes the backing Stub.
func (k *Keylist) UnderlyingStub() *stub.Stub { return k.Stub }
