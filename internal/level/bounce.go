// Package level implements the stackless cooperative executor model
// (§4.6): a Level carries an executor function re-entered by the
// Trampoline's main loop, which dispatches on the Bounce each call
// returns instead of relying on the host's own call stack for
// user-level recursion.
package level

import "renc/internal/cell"

// BounceKind is the closed set of outcomes an executor can report back to
// the trampoline on any one re-entry (§4.6 "Contract").
type BounceKind uint8

const (
	BounceCompleted BounceKind = iota
	BounceContinue
	BounceDelegate
	BounceThrown
	BounceRaised
)

func (k BounceKind) String() string {
	switch k {
	case BounceCompleted:
		return "completed"
	case BounceContinue:
		return "continue"
	case BounceDelegate:
		return "delegate"
	case BounceThrown:
		return "thrown"
	case BounceRaised:
		return "raised"
	default:
		return "invalid-bounce"
	}
}

// ThrowValue is a non-local return in flight: RETURN, BREAK, CONTINUE, and
// THROW all carry a label identifying what construct should catch them,
// plus the value being carried out (§4.6 "thrown", §7 "Throw").
type ThrowValue struct {
	Label string
	Value cell.Cell
}

// Bounce is what an executor returns on every call (§4.6 "Contract").
// Only the fields relevant to Kind are meaningful: Output for Completed,
// Thrown for Thrown, Err for Raised.
type Bounce struct {
	Kind   BounceKind
	Output cell.Cell
	Thrown ThrowValue
	Err    error
}

// Completed reports that this level finished normally with out as its
// result.
func Completed(out cell.Cell) Bounce { return Bounce{Kind: BounceCompleted, Output: out} }

// Continue reports that the executor pushed a child level and the
// trampoline should resume looping with the new top.
func Continue() Bounce { return Bounce{Kind: BounceContinue} }

// Delegate is like Continue, except the parent pops itself immediately:
// the pushed child delivers its result straight to the grandparent.
func Delegate() Bounce { return Bounce{Kind: BounceDelegate} }

// Thrown reports a non-local return in flight.
func Thrown(t ThrowValue) Bounce { return Bounce{Kind: BounceThrown, Thrown: t} }

// Raised reports a recoverable error, to be converted into an ERROR
// antiform in the output cell (§4.6 "raised error").
func Raised(err error) Bounce { return Bounce{Kind: BounceRaised, Err: err} }
