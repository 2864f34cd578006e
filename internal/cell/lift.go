package cell

import "github.com/pkg/errors"

// Form is the base surface-form family a LiftByte belongs to. Quote depth
// is tracked orthogonally (see LiftByte), resolving spec.md's Open Question
// 1 in favor of the newer lift_byte/flavor scheme it recommends: no
// QUOTE_BYTE/ISOTOPE_0 legacy encoding is implemented anywhere in this
// module.
type Form uint8

const (
	FormAntiform Form = iota
	FormQuasi
	FormPlain
)

func (f Form) String() string {
	switch f {
	case FormAntiform:
		return "antiform"
	case FormQuasi:
		return "quasi"
	case FormPlain:
		return "plain"
	default:
		return "invalid-form"
	}
}

// LiftByte packs a cell's surface form: antiform, quasi, plain, or
// quoted-N. Antiform and quasi are always quote-depth 0 — quoting an
// antiform is exactly what Lift does (turning it into a quasiform), so a
// distinct "quoted antiform" state does not exist. Plain values carry a
// quote depth of zero or more; depth > 0 is the "quoted-N" form from §3.
type LiftByte struct {
	form  Form
	depth uint8
}

// Plain is the ordinary, unquoted, unlifted surface form.
func Plain() LiftByte { return LiftByte{form: FormPlain, depth: 0} }

// Antiform is the unbound, unstorable antiform surface form.
func Antiform() LiftByte { return LiftByte{form: FormAntiform, depth: 0} }

// Quasi is the inert, storable quasi surface form (`~foo~`).
func Quasi() LiftByte { return LiftByte{form: FormQuasi, depth: 0} }

// Quoted returns the quoted-N surface form for depth >= 1. Quoted(0) is
// equivalent to Plain.
func Quoted(depth uint8) LiftByte {
	if depth == 0 {
		return Plain()
	}
	return LiftByte{form: FormPlain, depth: depth}
}

// Form reports the base surface-form family.
func (lb LiftByte) Form() Form { return lb.form }

// Depth reports the quote depth (always 0 for antiform/quasi).
func (lb LiftByte) Depth() uint8 { return lb.depth }

// IsAntiform reports whether lb is the (unquoted) antiform form.
func (lb LiftByte) IsAntiform() bool { return lb.form == FormAntiform }

// IsQuasi reports whether lb is the (unquoted) quasi form.
func (lb LiftByte) IsQuasi() bool { return lb.form == FormQuasi }

// IsPlain reports whether lb is plain at quote depth exactly 0.
func (lb LiftByte) IsPlain() bool { return lb.form == FormPlain && lb.depth == 0 }

// IsQuoted reports whether lb carries one or more quote levels.
func (lb LiftByte) IsQuoted() bool { return lb.form == FormPlain && lb.depth > 0 }

func (lb LiftByte) String() string {
	if lb.IsQuoted() {
		return "quoted"
	}
	return lb.form.String()
}

// Quote adds one level of quoting on top of lb's current depth. Quoting an
// antiform or quasi value is not performed via Quote — use Lift, which is
// how a value becomes stably representable.
func Quote(lb LiftByte) (LiftByte, error) {
	if lb.form != FormPlain {
		return LiftByte{}, errors.Errorf("cannot quote a %s value directly; use Lift", lb.form)
	}
	return LiftByte{form: FormPlain, depth: lb.depth + 1}, nil
}

// Unquote removes one level of quoting. It fails if lb is not quoted.
func Unquote(lb LiftByte) (LiftByte, error) {
	if !lb.IsQuoted() {
		return LiftByte{}, errors.Errorf("cannot unquote a %s value at depth %d", lb.form, lb.depth)
	}
	return LiftByte{form: FormPlain, depth: lb.depth - 1}, nil
}

// Lift raises a value's state by one step per §4.1: antiform <-> quasi
// toggle, and plain <-> single-quoted (quote depth 1). A value already at
// quote depth >= 1 lifts to one quote level deeper, which keeps Lift total
// and Unlift its exact inverse (the round-trip law in §8 holds for every
// LiftByte, not only the two pairs spec.md calls out by name).
func Lift(lb LiftByte) LiftByte {
	switch lb.form {
	case FormAntiform:
		return Quasi()
	case FormQuasi:
		return Antiform()
	default: // FormPlain, any depth
		return LiftByte{form: FormPlain, depth: lb.depth + 1}
	}
}

// Unlift is Lift's inverse. It fails only on Plain-at-depth-0, which has no
// "lower" state to unlift into.
func Unlift(lb LiftByte) (LiftByte, error) {
	switch {
	case lb.IsAntiform():
		return Quasi(), nil
	case lb.IsQuasi():
		return Antiform(), nil
	case lb.IsQuoted():
		return LiftByte{form: FormPlain, depth: lb.depth - 1}, nil
	default: // plain, depth 0
		return LiftByte{}, errors.New("cannot unlift a plain, unquoted value")
	}
}
