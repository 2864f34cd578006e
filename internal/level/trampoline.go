package level

import (
	"github.com/pkg/errors"

	"renc/internal/cell"
)

// CancelFunc is polled once per trampoline iteration; when it reports
// true, the trampoline injects a cancellation throw at the current top
// level instead of re-entering its executor normally (§4.6
// "Cancellation").
type CancelFunc func() bool

// BreakHook is called when the tick counter reaches a registered
// breakpoint, before the top level's executor runs for that tick.
type BreakHook func(tr *Trampoline, lvl *Level)

// DataRoots is implemented by an executor's per-level state payload
// (Level.Data) when it holds onto cell values the executor still needs
// across re-entries — letting Trampoline.GCRoots see into executor-
// specific state without this package importing whatever package defines
// it.
type DataRoots interface {
	GCRoots() []cell.Node
}

// TraceHook receives one diagnostic event per trampoline iteration,
// following the same pluggable-hook shape used across this module's
// other components rather than a hardwired logger.
type TraceHook func(event string, tick uint64, lvl *Level, b Bounce)

// Trampoline drives a stack of Levels to completion or an uncaught throw
// (§4.6 "Contract"). One Trampoline is exactly one single-threaded
// cooperative evaluator; running several concurrently (each with its own
// pools and GC state) is a host's job, never this package's.
type Trampoline struct {
	stack []*Level
	tick  uint64

	cancel      CancelFunc
	breakAtTick uint64
	hasBreak    bool
	onBreak     BreakHook
	trace       TraceHook
}

// NewTrampoline creates an empty Trampoline.
func NewTrampoline() *Trampoline {
	return &Trampoline{}
}

// SetCancel installs the cooperative cancel-flag poll (§5 "Cancellation
// semantics").
func (tr *Trampoline) SetCancel(fn CancelFunc) { tr.cancel = fn }

// BreakAtTick arms a one-shot debug break at the given tick count (§4.6,
// §8 "tick-accurate... reproducible breakpoint currency").
func (tr *Trampoline) BreakAtTick(t uint64) { tr.breakAtTick, tr.hasBreak = t, true }

// OnBreak installs the callback invoked when an armed tick is reached.
func (tr *Trampoline) OnBreak(fn BreakHook) { tr.onBreak = fn }

// SetTrace installs (or clears, with nil) a per-iteration diagnostics hook.
func (tr *Trampoline) SetTrace(fn TraceHook) { tr.trace = fn }

// Tick reports the current tick count.
func (tr *Trampoline) Tick() uint64 { return tr.tick }

// Depth reports how many levels are currently on the stack.
func (tr *Trampoline) Depth() int { return len(tr.stack) }

// GCRoots implements gc.RootProvider: every value any currently pushed
// Level might still need — its feed's current/lookback/binding, a child
// result awaiting pickup, and whatever its own executor-specific payload
// reports — survives a collection triggered mid-evaluation (§4.4 Roots
// (b) "All live Levels").
func (tr *Trampoline) GCRoots() []cell.Node {
	var out []cell.Node
	for _, lvl := range tr.stack {
		if lvl.Feed != nil {
			out = appendNode(out, lvl.Feed.Binding())
			out = appendCellNodes(out, lvl.Feed.Current())
			out = appendCellNodes(out, lvl.Feed.Lookback())
		}
		if v, ok := lvl.ChildResult(); ok {
			out = appendCellNodes(out, v)
		}
		if dr, ok := lvl.Data.(DataRoots); ok {
			out = append(out, dr.GCRoots()...)
		}
	}
	return out
}

func appendNode(out []cell.Node, n cell.Node) []cell.Node {
	if n == nil {
		return out
	}
	return append(out, n)
}

// appendCellNodes decomposes c into the Nodes its binding and payload
// slots reference, the same three spots gc's own marker walks for a
// cell stored in an array.
func appendCellNodes(out []cell.Node, c cell.Cell) []cell.Node {
	out = appendNode(out, c.Binding())
	out = appendNode(out, c.Slot0().Node())
	out = appendNode(out, c.Slot1().Node())
	return out
}

// Push makes lvl the new top-of-stack level, with no parent (only valid
// before Run, or to seed a fresh top-level evaluation; child levels are
// pushed via Level.Push instead).
func (tr *Trampoline) Push(lvl *Level) {
	tr.push(lvl)
}

func (tr *Trampoline) push(lvl *Level) {
	lvl.tr = tr
	tr.stack = append(tr.stack, lvl)
}

func (tr *Trampoline) top() *Level {
	if len(tr.stack) == 0 {
		return nil
	}
	return tr.stack[len(tr.stack)-1]
}

func (tr *Trampoline) pop() *Level {
	n := len(tr.stack)
	if n == 0 {
		return nil
	}
	lvl := tr.stack[n-1]
	tr.stack = tr.stack[:n-1]
	return lvl
}

// Run executes levels until the stack empties with a result or an
// uncaught throw escapes (§4.6 "Trampoline main loop").
func (tr *Trampoline) Run() (cell.Cell, error) {
	for {
		top := tr.top()
		if top == nil {
			return cell.Cell{}, errors.New("trampoline: nothing pushed to run")
		}

		tr.tick++
		if tr.hasBreak && tr.tick == tr.breakAtTick {
			tr.hasBreak = false
			if tr.onBreak != nil {
				tr.onBreak(tr, top)
			}
		}

		if tr.cancel != nil && tr.cancel() {
			out, handled, err := tr.unwindThrow(ThrowValue{Label: "cancel"})
			if err != nil {
				return cell.Cell{}, err
			}
			if handled && tr.top() == nil {
				return out, nil
			}
			continue
		}

		b := top.Executor(top)
		tr.log(b, top)

		switch b.Kind {
		case BounceCompleted:
			tr.pop()
			parent := tr.top()
			if parent == nil {
				return b.Output, nil
			}
			parent.childResult = b.Output
			parent.haveChild = true

		case BounceContinue:
			// Child already pushed by the executor; loop with the new top.

		case BounceDelegate:
			// The pushed child is already above top; popping top here
			// leaves the child as the new top, delivering its result to
			// top's own parent once it completes.
			for i := len(tr.stack) - 1; i >= 0; i-- {
				if tr.stack[i] == top {
					tr.stack = append(tr.stack[:i], tr.stack[i+1:]...)
					break
				}
			}

		case BounceThrown:
			tr.pop()
			out, handled, err := tr.unwindThrow(b.Thrown)
			if err != nil {
				return cell.Cell{}, err
			}
			if handled && tr.top() == nil {
				return out, nil
			}

		case BounceRaised:
			tr.pop()
			errCell := raisedErrorCell(b.Err)
			parent := tr.top()
			if parent == nil {
				return errCell, nil
			}
			parent.childResult = errCell
			parent.haveChild = true

		default:
			return cell.Cell{}, errors.Errorf("unknown bounce kind %d", b.Kind)
		}
	}
}

func (tr *Trampoline) log(b Bounce, lvl *Level) {
	if tr.trace != nil {
		tr.trace(b.Kind.String(), tr.tick, lvl, b)
	}
}

// unwindThrow pops and re-enters levels with the throwing flag set,
// giving each a chance to release holds, until one of them catches the
// throw by returning something other than Thrown, or the stack empties
// (§4.6 "thrown -> propagate"). handled is true once a catcher has been
// reached; the caller still must check whether any level remains. If the
// stack empties first, handled is false and an uncaught-throw error is
// returned.
func (tr *Trampoline) unwindThrow(t ThrowValue) (cell.Cell, bool, error) {
	for {
		lvl := tr.top()
		if lvl == nil {
			return cell.Cell{}, false, errors.Errorf("uncaught throw: %s", t.Label)
		}

		lvl.throwing = true
		lvl.throwValue = t
		b := lvl.Executor(lvl)
		lvl.throwing = false
		tr.log(b, lvl)

		switch b.Kind {
		case BounceThrown:
			tr.pop()
			t = b.Thrown
			continue
		case BounceCompleted:
			tr.pop()
			parent := tr.top()
			if parent == nil {
				return b.Output, true, nil
			}
			parent.childResult = b.Output
			parent.haveChild = true
			return cell.Cell{}, true, nil
		default:
			// Mid-unwind, a level with nothing more to say about the
			// throw (raised its own error, or pushed cleanup work) is
			// still unwinding, not catching.
			tr.pop()
			continue
		}
	}
}

// raisedErrorCell wraps err as the ERROR antiform in an output cell (§4.6
// "raised error -> converted to an ERROR antiform in the output"). The Go
// error itself is the payload, carried in an errNode; no context-backed
// error value is built.
func raisedErrorCell(err error) cell.Cell {
	c := cell.NewNode(cell.KindError, errNode{err})
	cell.SetLift(&c, cell.Antiform())
	return c
}

// errNode adapts a plain error into a cell.Node so a raised error can be
// carried in a cell without this package depending on the flex layer's
// richer error-context representation.
type errNode struct{ err error }

func (errNode) NodeMarker() {}

// Err unwraps the underlying error from an ERROR antiform cell built by
// raisedErrorCell.
func Err(c cell.Cell) (error, bool) {
	n, ok := c.Slot0().Node().(errNode)
	if !ok {
		return nil, false
	}
	return n.err, true
}
