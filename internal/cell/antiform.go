package cell

import "github.com/pkg/errors"

// Sigil marks WORD-like cells that carry a leading decoration (':', '@',
// '$', ...). Isotope coercion rejects any such cell (§4.1 rule b).
type Sigil uint8

const (
	SigilNone Sigil = iota
	SigilColon
	SigilAt
	SigilDollar
)

// sigiled is implemented by cell payload helpers (in the flex/symbol
// layer) that know how to report a non-default sigil. Kinds that never
// carry a sigil (integers, logics, ...) are simply not asked.
type sigiled interface {
	Sigil() Sigil
}

// Antiformize raises a plain (or quasi) cell into antiform form, applying
// every rule from §4.1:
//
//	(a) reject kinds not on the isotopic allowlist
//	(b) reject values carrying sigils
//	(c) for WORD antiforms, reject any symbol not in {null, okay, nan}
//	(d) strip any binding from bindable kinds
//	(e) for FRAME antiforms, clear any lens (left to the caller — the
//	    frame's lens lives in the flex layer, so this function calls back
//	    through lensClearer when the payload implements it)
//
// Failure is always a typed error; Antiformize never produces an
// ill-formed cell.
func Antiformize(c Cell, wordSymbol func(Cell) (string, bool)) (Cell, error) {
	if !IsIsotopic(c.kind) {
		return Cell{}, errors.Errorf("%s cannot be raised to an antiform", c.kind)
	}
	if s, ok := c.slot0.node.(sigiled); ok && s.Sigil() != SigilNone {
		return Cell{}, errors.New("cannot raise a sigiled value to an antiform")
	}
	if c.kind == KindWord {
		if wordSymbol == nil {
			return Cell{}, errors.New("word antiform requires a symbol resolver")
		}
		sym, ok := wordSymbol(c)
		if !ok || !IsAntiformKeyword(sym) {
			return Cell{}, errors.Errorf("%q is not an allowed antiform keyword (null, okay, nan)", sym)
		}
	}
	out := c
	out.lift = Antiform()
	Unbind(&out)
	if lc, ok := out.slot0.node.(lensClearer); ok {
		lc.ClearLens()
	}
	return out, nil
}

// lensClearer is implemented by FRAME payloads (in the flex layer) so that
// §4.1 rule (e) can be applied without this package knowing about frames'
// internal shape.
type lensClearer interface {
	ClearLens()
}

// ElementLister is implemented by a PACK antiform's element-list payload
// (a Node able to report its own cell sequence — an Array, in the flex
// layer). Decay uses it without importing the flex package.
type ElementLister interface {
	Node
	Elements() []Cell
}

// DecayResult distinguishes a successful decay from an abort that must
// propagate as a raised error rather than a value.
type DecayResult struct {
	Value    Cell
	Aborted  bool
	AbortErr error
}

// Decay converts an unstable antiform result into a stable value, per
// §4.1's "Decay" rules and the §8 concrete scenarios:
//
//   - a PACK antiform decays to its first element, itself unlifted;
//     a PACK nested in the first slot is NOT auto-decayed (an error is
//     raised instead of silently recursing);
//   - an ERROR antiform aborts, carrying the error;
//   - a GHOST antiform raises "no value";
//   - a PACK whose non-first slot contains an ERROR also aborts — errors
//     are never silently swept under the rug.
func Decay(c Cell) DecayResult {
	if !c.lift.IsAntiform() {
		return DecayResult{Value: c}
	}
	switch c.kind {
	case KindError:
		return DecayResult{Aborted: true, AbortErr: errors.Errorf("unhandled error antiform")}
	case KindGhost:
		return DecayResult{Aborted: true, AbortErr: errors.New("no value (ghost antiform)")}
	case KindPack:
		lister, ok := c.slot0.node.(ElementLister)
		if !ok {
			return DecayResult{Aborted: true, AbortErr: errors.New("pack antiform missing element list")}
		}
		elems := lister.Elements()
		// Any non-first ERROR aborts, even though only the first slot
		// is what decay would otherwise return.
		for i := 1; i < len(elems); i++ {
			if elems[i].kind == KindError && elems[i].lift.IsAntiform() {
				return DecayResult{Aborted: true, AbortErr: errors.New("pack carries an error in a non-first slot")}
			}
		}
		if len(elems) == 0 {
			return DecayResult{Aborted: true, AbortErr: errors.New("empty pack has nothing to decay to")}
		}
		first := elems[0]
		if first.kind == KindPack && first.lift.IsAntiform() {
			return DecayResult{Aborted: true, AbortErr: errors.New("pack's first slot is itself a pack; not auto-decayed")}
		}
		unlifted, err := Unlift(first.lift)
		if err != nil {
			// Already a plain/stable value in the first slot: it decays
			// to itself unchanged.
			return DecayResult{Value: first}
		}
		first.lift = unlifted
		return DecayResult{Value: first}
	default:
		return DecayResult{Value: c}
	}
}

// Ghost constructs the unified ghost/no-value antiform, resolving spec.md
// Open Question 2 in favor of treating "ghost" and "nihil" as one state.
func Ghost() Cell {
	return Cell{kind: KindGhost, lift: Antiform()}
}
