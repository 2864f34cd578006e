package stub

import "github.com/pkg/errors"

// Color is the generic black/white flag (§4.2 "Coloring"). gc.Collect
// also marks with it: it paints reachable stubs black and returns every
// survivor to white before the cycle ends.
type Color uint8

const (
	White Color = iota
	Black
)

// ColorOf reports s's current coloring-flag state.
func ColorOf(s *Stub) Color {
	if s.Header.Has(FlagBlack) {
		return Black
	}
	return White
}

// Paint sets s's coloring flag.
func Paint(s *Stub, c Color) {
	if c == Black {
		s.Header = s.Header.Set(FlagBlack)
	} else {
		s.Header = s.Header.Clear(FlagBlack)
	}
}

// AssertWhiteBalance walks every live stub in the pool and fails if any
// is still Black — the top-level-balance checked build invariant from
// §4.2 and the §8 property "at top-level balance... the black-stub count
// is 0".
func (p *Pool) AssertWhiteBalance() error {
	var blackCount int
	p.Live(func(s *Stub) {
		if ColorOf(s) == Black {
			blackCount++
		}
	})
	if blackCount != 0 {
		return errors.Errorf("%d stub(s) left black at balance point", blackCount)
	}
	return nil
}
