package cell

// Node is implemented by any heap object a Cell's binding or payload slots
// may reference (a Stub, in the layer above this package). Keeping the
// dependency as an interface here — rather than importing the stub package
// — is what lets Cell stay a leaf package per §2's dependency order
// (Cell → Stub → Array/String → GC → Feed → Level → Evaluator): Stub
// implements cell.Node, Cell never imports Stub.
type Node interface {
	// NodeMarker is a marker method; its only job is to make the interface
	// impossible to satisfy by accident with an unrelated type.
	NodeMarker()
}

// Flags are the per-cell header bits from §3, besides kind/lift_byte.
type Flags uint8

const (
	FlagProtected Flags = 1 << iota // rejects mutation for this cell's lifetime
	FlagConst                       // inherited-const marking (§4.7 "Const inheritance")
	FlagUnevaluated                 // value arrived without evaluation (hard/soft quote)
	FlagFirstIsNode                 // slot0 holds a Node pointer, not an inline immediate
	FlagSecondIsNode                // slot1 holds a Node pointer, not an inline immediate
)

func (f Flags) has(bit Flags) bool  { return f&bit != 0 }
func (f Flags) with(bit Flags) Flags { return f | bit }

// Slot is one of a Cell's two payload slots: either an inline 64-bit
// immediate or a pointer to a Node (a Stub one layer up).
type Slot struct {
	node Node
	bits uint64
}

// Node returns the slot's Node pointer, or nil if the slot holds an inline
// immediate.
func (s Slot) Node() Node { return s.node }

// Bits returns the slot's inline 64-bit payload.
func (s Slot) Bits() uint64 { return s.bits }

// Cell is a fixed-shape value record: the "node" bit is implicit in Go
// (ends are not stored at all; flex.Array.At returns the all-zero,
// KindNone Cell at index Len()) but every other invariant from §3 is
// enforced by this type's constructors and mutators.
type Cell struct {
	kind    Kind
	lift    LiftByte
	flags   Flags
	binding Node
	slot0   Slot
	slot1   Slot
}

// Kind reports the cell's underlying datatype.
func (c Cell) Kind() Kind { return c.kind }

// Lift reports the cell's surface form.
func (c Cell) Lift() LiftByte { return c.lift }

// Binding reports the cell's binding context, or nil if unbound.
func (c Cell) Binding() Node { return c.binding }

// Flags reports the raw header flag bits.
func (c Cell) Flags() Flags { return c.flags }

func (c Cell) Protected() bool   { return c.flags.has(FlagProtected) }
func (c Cell) Const() bool       { return c.flags.has(FlagConst) }
func (c Cell) Unevaluated() bool { return c.flags.has(FlagUnevaluated) }

// Slot0 and Slot1 expose the raw payload, mostly for flavor-specific
// accessors built in the flex/action packages above this one.
func (c Cell) Slot0() Slot { return c.slot0 }
func (c Cell) Slot1() Slot { return c.slot1 }

// Fresh erases c to a writable zero state (§4.1 "freshen"): KindNone,
// Plain lift, no flags, no binding, zero payload. A freshened cell is
// distinguishable from any storable value (kind() == KindNone is never
// Valid()).
func Fresh(c *Cell) {
	*c = Cell{kind: KindNone, lift: Plain()}
}

// New constructs a plain, unbound cell of the given kind carrying two
// inline immediates.
func New(k Kind, a, b uint64) Cell {
	return Cell{kind: k, lift: Plain(), slot0: Slot{bits: a}, slot1: Slot{bits: b}}
}

// NewNode constructs a plain, unbound cell whose first payload slot is a
// Node pointer.
func NewNode(k Kind, n Node) Cell {
	return Cell{kind: k, lift: Plain(), flags: FlagFirstIsNode, slot0: Slot{node: n}}
}

// NewBound is NewNode with an explicit binding context.
func NewBound(k Kind, n Node, binding Node) Cell {
	c := NewNode(k, n)
	c.binding = binding
	return c
}

// WithConst returns a copy of c with the const flag set.
func (c Cell) WithConst() Cell {
	c.flags = c.flags.with(FlagConst)
	return c
}

// WithUnevaluated returns a copy of c with the unevaluated flag set.
func (c Cell) WithUnevaluated() Cell {
	c.flags = c.flags.with(FlagUnevaluated)
	return c
}

// Copy duplicates c. By default the const flag and binding are preserved
// (the round-trip law in §8: "copying a cell preserves kind, lift byte,
// binding, and (by default) const flag"); passing dropConst strips it, the
// way a deep-copy-without-inheritance operation would.
func Copy(c Cell, dropConst bool) Cell {
	out := c
	if dropConst {
		out.flags &^= FlagConst
	}
	return out
}

// Unbind strips any binding from a bindable cell in place. Used by the
// antiform coercion rules (§4.1 rule d) and by isolated-value copying.
func Unbind(c *Cell) {
	c.binding = nil
}

// SetLift rewrites c's lift byte without touching kind, binding, or
// payload.
func SetLift(c *Cell, lb LiftByte) {
	c.lift = lb
}
