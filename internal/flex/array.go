// Package flex implements the typed array and string views over a Stub
// (§4.3) — Ren-C's own name for this layer is "Flex", which this package
// borrows directly since it is the real term the spec's own Design Notes
// and glossary use for a stub-backed growable sequence.
package flex

import (
	"renc/internal/cell"
	"renc/internal/stub"
	"renc/internal/symbol"
)

// Array is a Stub flavored FlavorArray: a sequence of Cells plus an
// implicit end marker one index past the last live element (§4.3
// "Array"). The end marker is never physically stored — At(Len()) simply
// returns a fresh, KindNone cell, which is exactly as readable as a real
// stored cell and distinguishable from any storable value.
type Array struct {
	*stub.Stub
}

// Meta carries the array's tail-newline bit and, for source arrays, the
// file/line debug metadata (§4.3: "carries a tail-newline bit and, for
// source arrays, a file-name stub + line number in link/misc").
type Meta struct {
	NewlineAtTail bool
	File          *symbol.Symbol
	Line          int
	Same          bool // marks this array as excluded from deep-copy recursion
}

// NewArray allocates a fresh, GC-managed, empty array from pool.
func NewArray(pool *stub.Pool) *Array {
	st := pool.Alloc()
	st.Flavor = stub.FlavorArray
	a := &Array{Stub: st}
	_ = pool.Manage(st)
	return a
}

func (a *Array) meta() *Meta {
	m, _ := a.Misc.(*Meta)
	if m == nil {
		m = &Meta{}
		a.Misc = m
	}
	return m
}

// NewlineAtTail reports the array's tail-newline bit.
func (a *Array) NewlineAtTail() bool { return a.meta().NewlineAtTail }

// SetNewlineAtTail sets the array's tail-newline bit.
func (a *Array) SetNewlineAtTail(v bool) { a.meta().NewlineAtTail = v }

// SourceLocation returns the file symbol and line number attached to a
// source array, or (nil, 0) if none was set.
func (a *Array) SourceLocation() (*symbol.Symbol, int) {
	m := a.meta()
	return m.File, m.Line
}

// SetSourceLocation attaches file/line debug metadata.
func (a *Array) SetSourceLocation(file *symbol.Symbol, line int) {
	m := a.meta()
	m.File, m.Line = file, line
}

// Len reports the array's logical length (cells, excluding the implicit
// end marker).
func (a *Array) Len() int { return a.Stub.Len() }

// At returns the cell at index i. i == Len() is legal and returns the
// implicit end marker (a fresh, KindNone cell); i > Len() panics, the way
// reading off the end of a real buffer would.
func (a *Array) At(i int) cell.Cell {
	n := a.Len()
	if i < 0 || i > n {
		panic("flex: array index out of range")
	}
	if i == n {
		return cell.Cell{}
	}
	if a.Header.Has(stub.FlagDynamic) {
		return a.Dyn.Cells[a.Dyn.Bias+i]
	}
	return a.Inline
}

// AtPtr returns a pointer to the live cell at index i (0 <= i < Len()),
// for in-place mutation.
func (a *Array) AtPtr(i int) *cell.Cell {
	n := a.Len()
	if i < 0 || i >= n {
		panic("flex: array index out of range")
	}
	if a.Header.Has(stub.FlagDynamic) {
		return &a.Dyn.Cells[a.Dyn.Bias+i]
	}
	return &a.Inline
}

// Head returns a copy of every live cell (not including the end marker);
// mutating the returned slice does not change the array.
func (a *Array) Head() []cell.Cell {
	n := a.Len()
	out := make([]cell.Cell, n)
	for i := 0; i < n; i++ {
		out[i] = a.At(i)
	}
	return out
}

func (a *Array) ensureCapacity(want int) error {
	if a.Header.Has(stub.FlagDynamic) {
		if cap(a.Dyn.Cells)-a.Dyn.Bias >= want {
			return nil
		}
		grown := cap(a.Dyn.Cells)*2 + 1
		if grown < want {
			grown = want
		}
		return stub.DidFlexDataAlloc(a.Stub, grown, true)
	}
	if want <= 1 {
		return nil
	}
	return stub.DidFlexDataAlloc(a.Stub, want, true)
}

// Append writes c into the next cell and advances the length, growing
// (and re-homing inline content to out-of-line storage) as needed.
func (a *Array) Append(c cell.Cell) error {
	if err := a.Writable(); err != nil {
		return err
	}
	n := a.Len()
	if n == 0 && !a.Header.Has(stub.FlagDynamic) {
		a.Inline = c
		return nil
	}
	if err := a.ensureCapacity(n + 1); err != nil {
		return err
	}
	a.Dyn.Cells = append(a.Dyn.Cells, c)
	return nil
}

// TermArrayLen sets the array's length to n, ensuring the cell at n reads
// as an end marker without physically overwriting anything (§4.3
// "Termination"). Growing pads with freshened cells; shrinking truncates.
func (a *Array) TermArrayLen(n int) error {
	if err := a.Writable(); err != nil {
		return err
	}
	if n < 0 {
		panic("flex: negative length")
	}
	cur := a.Len()
	switch {
	case n == cur:
		return nil
	case n < cur:
		if a.Header.Has(stub.FlagDynamic) {
			a.Dyn.Cells = a.Dyn.Cells[:a.Dyn.Bias+n]
			return nil
		}
		a.Inline = cell.Cell{} // n must be 0 here (singular array)
		return nil
	default:
		// An empty singular array would take a KindNone cell inline and
		// still report Len 0, so grow out-of-line first.
		if cur == 0 && !a.Header.Has(stub.FlagDynamic) {
			if err := stub.DidFlexDataAlloc(a.Stub, n, true); err != nil {
				return err
			}
		}
		for i := cur; i < n; i++ {
			var fresh cell.Cell
			cell.Fresh(&fresh)
			if err := a.Append(fresh); err != nil {
				return err
			}
		}
		return nil
	}
}

// CopyMode selects shallow vs deep copying, per §4.3 "Copy modes".
type CopyMode int

const (
	Shallow CopyMode = iota
	Deep
)

// CopyArray duplicates a per mode, reserving extra additional capacity,
// and by default inherits file/line and newline-at-tail metadata from the
// source (§4.3: "optionally inheriting file/line or newline-at-tail flags
// from the source"). Deep copying skips recursing into nested arrays
// whose Meta.Same flag is set ("with/without including same nested
// arrays").
func CopyArray(pool *stub.Pool, a *Array, mode CopyMode, extra int, inheritMeta bool) *Array {
	out := NewArray(pool)
	n := a.Len()
	for i := 0; i < n; i++ {
		c := a.At(i)
		if mode == Deep {
			if nested, ok := asNestedArray(c); ok && !nested.meta().Same {
				copied := CopyArray(pool, nested, Deep, 0, inheritMeta)
				c = NewArrayCell(copied)
			}
		}
		_ = out.Append(c)
	}
	if extra > 0 {
		_ = out.ensureCapacity(n + extra)
	}
	if inheritMeta {
		m := a.meta()
		out.meta().NewlineAtTail = m.NewlineAtTail
		out.meta().File = m.File
		out.meta().Line = m.Line
	}
	return out
}

// asNestedArray reports whether c's payload node is itself an Array.
func asNestedArray(c cell.Cell) (*Array, bool) {
	n := c.Slot0().Node()
	if st, ok := n.(*stub.Stub); ok && st.Flavor == stub.FlavorArray {
		return &Array{Stub: st}, true
	}
	return nil, false
}

// NewArrayCell wraps an Array as a BLOCK! cell payload.
func NewArrayCell(a *Array) cell.Cell {
	return cell.NewNode(cell.KindBlock, a.Stub)
}

// UnderlyingStub exposes the backing Stub, letting generic code (the gc
// package, mainly) unwrap any flex wrapper type back to the thing it can
// actually mark/color/pool-manage.
func (a *Array) UnderlyingStub() *stub.Stub { return a.Stub }

// GCRefs reports additional Nodes reachable from this array that aren't
// visible through the generic Link/Misc/Info slots — a source array's
// file-name symbol, stashed inside the opaque Meta rather than a generic
// slot. The gc package calls this via an exported-method interface check,
// the same pattern used for an action's specialty chain.
func (a *Array) GCRefs() []cell.Node {
	if f := a.meta().File; f != nil {
		return []cell.Node{f.Stub}
	}
	return nil
}
