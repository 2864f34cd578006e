package feed

import (
	"renc/internal/cell"
	"renc/internal/flex"
	"renc/internal/symbol"
)

// ReleaseFunc frees an API-owned pointer once the feed has advanced past
// it (§4.5 "API value release").
type ReleaseFunc func(ptr any)

// ScanFunc hands a UTF-8 string to the scanner, producing the array it
// tokenizes to (§4.5 "UTF-8 string -> handed to the scanner to produce an
// array"). It lives one layer above this package in practice (the host's
// scanner), so VariadicSource only holds a function value, never a
// concrete scanner type.
type ScanFunc func(text string) (*flex.Array, error)

// released wraps a variadic pointer to mark it "release after
// consumption" (§4.5 "API value release"): the source calls ReleaseFunc
// on the wrapped value, not on the wrapper, the instant it's consumed.
type released struct {
	Value any
}

// Released wraps ptr so the variadic source releases it via ReleaseFunc
// once its turn comes up, instead of treating the release as a separate
// out-of-band step the caller must remember to take.
func Released(ptr any) any { return released{Value: ptr} }

// VariadicSource detects, pointer by pointer, what each incoming item is
// (§4.5 "Variadic feed"): nil substitutes for C null, EndSentinel ends the
// stream, a cell.Cell is used directly, an InstructionStub is processed in
// place, and a string is handed to Scan and iterated as a nested array
// before the variadic stream resumes.
type VariadicSource struct {
	pointers []any
	index    int

	release ReleaseFunc
	scan    ScanFunc

	nullSym *symbol.Symbol // interned "null", for the C-null substitute cell
	scanned *ArraySource   // active post-scan array, nil when not mid-scan

	// spliceNext is set when an InstructionStub{Splice} has been consumed;
	// the owning Feed polls it via TakeSplice once this source reports
	// exhaustion.
	spliceNext *Feed
}

// NewVariadicSource builds a source over pointers (§4.5's packed pointer
// array stand-in for a C va_list). nullSym must be the interned "null"
// symbol, used to build the null-substitute cell in place of a C nil.
func NewVariadicSource(pointers []any, nullSym *symbol.Symbol, scan ScanFunc, release ReleaseFunc) *VariadicSource {
	return &VariadicSource{pointers: pointers, nullSym: nullSym, scan: scan, release: release}
}

// TakeSplice returns (and clears) a pending splice target, if the last
// Next() call consumed a Splice instruction.
func (v *VariadicSource) TakeSplice() *Feed {
	f := v.spliceNext
	v.spliceNext = nil
	return f
}

// nullSubstitute builds the WORD antiform cell standing in for a C null
// pointer (§4.5 "C null -> substituted with the internal
// null-substitute singleton cell").
func (v *VariadicSource) nullSubstitute() cell.Cell {
	c := cell.NewNode(cell.KindWord, v.nullSym)
	cell.SetLift(&c, cell.Antiform())
	return c
}

// quasiWrapUnstable applies §4.5's "unstable antiforms must be
// quasi-wrapped with a meta note flag so evaluation can recognise them":
// Lift() of an antiform is exactly the quasi form, which is what
// recovers the original antiform with one Unlift once the evaluator is
// ready to process it.
func quasiWrapUnstable(c cell.Cell) cell.Cell {
	if c.Lift().IsAntiform() && cell.IsUnstable(c.Kind()) {
		cell.SetLift(&c, cell.Lift(c.Lift()))
	}
	return c
}

// Next implements Source.
func (v *VariadicSource) Next() (cell.Cell, bool) {
	for {
		if v.scanned != nil {
			if c, ok := v.scanned.Next(); ok {
				return c, true
			}
			v.scanned = nil
		}
		if v.index >= len(v.pointers) {
			return cell.Cell{}, false
		}
		raw := v.pointers[v.index]
		v.index++

		var releaseAfter bool
		if r, ok := raw.(released); ok {
			raw, releaseAfter = r.Value, true
		}

		switch p := raw.(type) {
		case nil:
			return v.nullSubstitute(), true

		case EndSentinel:
			return cell.Cell{}, false

		case cell.Cell:
			if releaseAfter && v.release != nil {
				v.release(p)
			}
			// A cell arriving directly off the variadic stream is passed
			// through the way a hard-quoted value would be, unless an
			// EvalMe instruction preceded it.
			return quasiWrapUnstable(p.WithUnevaluated()), true

		case InstructionStub:
			switch p.Instruction {
			case ReleaseMe:
				if v.release != nil {
					v.release(p.Payload)
				}
			case EvalMe:
				if c, ok := p.Payload.(cell.Cell); ok {
					return quasiWrapUnstable(c), true
				}
			case Splice:
				if next, ok := p.Payload.(*Feed); ok {
					v.spliceNext = next
				}
			}
			continue

		case string:
			if v.scan == nil {
				continue
			}
			arr, err := v.scan(p)
			if err != nil {
				continue
			}
			v.scanned = NewArraySource(arr)
			continue

		default:
			continue
		}
	}
}
