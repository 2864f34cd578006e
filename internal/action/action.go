package action

import (
	"fmt"

	"renc/internal/cell"
	"renc/internal/feed"
	"renc/internal/flex"
	"renc/internal/level"
	"renc/internal/rcerr"
	"renc/internal/stub"
	"renc/internal/symbol"
)

// Dispatcher is a native function body (§6 "Dispatcher contract"): given
// the active level (whose frame already holds fulfilled, typechecked
// arguments), it runs the action's implementation and returns a Bounce.
// A Dispatcher has exactly the shape of a level.Executor, so dispatch is
// just an executor swap rather than a nested call.
type Dispatcher func(lvl *level.Level) level.Bounce

const (
	actBegin uint8 = iota
	actFulfill
	actAwaitArg
)

type actionState struct {
	pool    *stub.Pool
	act     *flex.Action
	binding *flex.Context
	stack   *DataStack
	kw      Keywords

	frame     *flex.Context
	paramIdx  int
	haveLeft  bool
	leftValue cell.Cell

	returnLabel string
}

// GCRoots implements level.DataRoots: the action being dispatched, the
// binding and in-progress argument frame it's fulfilling into, and an
// enfix call's already-produced left argument, none of which are
// reachable through the caller's feed once fulfillment starts.
func (st *actionState) GCRoots() []cell.Node {
	var out []cell.Node
	if st.act != nil {
		out = append(out, st.act)
	}
	if st.binding != nil {
		out = append(out, st.binding)
	}
	if st.frame != nil {
		out = append(out, st.frame)
	}
	if st.haveLeft {
		out = append(out, cellNodes(st.leftValue)...)
	}
	return out
}

// cellNodes decomposes c into the Nodes its binding and payload slots
// reference — the same three spots gc's own marker walks for a cell
// stored in an array, reused here so per-level state can report the
// loose cells it holds between re-entries.
func cellNodes(c cell.Cell) []cell.Node {
	var out []cell.Node
	if b := c.Binding(); b != nil {
		out = append(out, b)
	}
	if n := c.Slot0().Node(); n != nil {
		out = append(out, n)
	}
	if n := c.Slot1().Node(); n != nil {
		out = append(out, n)
	}
	return out
}

// Frame returns the argument-holding context for the action currently
// dispatching on lvl, letting a Dispatcher read its own arguments via
// flex.Lookup or positional Var access.
func Frame(lvl *level.Level) *flex.Context {
	return lvl.Data.(*actionState).frame
}

// NewActionLevel builds a level that fulfills act's parameters from
// callerFeed (and, for enfix calls, enfixLeft), typechecks them, then
// dispatches (§4.7 "Lifecycle of one call").
func NewActionLevel(pool *stub.Pool, act *flex.Action, callerFeed *feed.Feed, binding *flex.Context, stack *DataStack, kw Keywords, enfixLeft cell.Cell, haveEnfixLeft bool) *level.Level {
	lvl := level.NewLevel(actionStep, callerFeed)
	st := &actionState{
		pool: pool, act: act, binding: binding, stack: stack, kw: kw,
		leftValue: enfixLeft, haveLeft: haveEnfixLeft,
		returnLabel: fmt.Sprintf("return-%p", act),
	}
	lvl.Data = st
	return lvl
}

func actionStep(lvl *level.Level) level.Bounce {
	st := lvl.Data.(*actionState)

	if _, throwing := lvl.Throwing(); throwing {
		t, _ := lvl.Throwing()
		return level.Thrown(t)
	}

	switch lvl.State {
	case actBegin:
		return actBeginStep(lvl, st)
	case actFulfill:
		return actFulfillStep(lvl, st)
	case actAwaitArg:
		return actAwaitArgStep(lvl, st)
	default:
		return level.Raised(rcerr.New("action: invalid state"))
	}
}

func actBeginStep(lvl *level.Level, st *actionState) level.Bounce {
	n := st.act.NumParams()
	syms := make([]*symbol.Symbol, n)
	for i := 0; i < n; i++ {
		syms[i] = st.act.Param(i).Symbol
	}
	kl := flex.NewKeylist(st.pool, syms)
	st.frame = flex.NewContext(st.pool, n, kl)

	st.paramIdx = 0
	if st.haveLeft && n > 0 {
		*st.frame.Var(0) = st.leftValue
		st.paramIdx = 1
	}
	lvl.State = actFulfill
	return level.Continue()
}

// actFulfillStep advances through parameters synchronously wherever
// possible, pushing a child evaluator level only when a parameter's
// class demands recursive evaluation (§4.7 "Argument fulfillment").
func actFulfillStep(lvl *level.Level, st *actionState) level.Bounce {
	n := st.act.NumParams()
	f := lvl.Feed

	for st.paramIdx < n {
		i := st.paramIdx
		p := st.act.Param(i)
		slot := st.frame.Var(i)

		switch p.Class {
		case flex.ParamLocal, flex.ParamReturn:
			if p.Class == flex.ParamReturn {
				*slot = flex.NewActionCell(makeReturnAction(st.pool, st.returnLabel))
			} else {
				*slot = st.kw.nullCell()
			}
			st.paramIdx++

		case flex.ParamRefinement:
			if st.stack != nil && st.stack.TakeRefinement(p.Symbol) {
				*slot = st.kw.okayCell()
			} else {
				*slot = st.kw.nullCell()
			}
			st.paramIdx++

		case flex.ParamHardQuote:
			if f.AtEnd() {
				return level.Raised(rcerr.New("hard-quote parameter requires a value"))
			}
			*slot = f.Current().WithUnevaluated()
			if err := f.Advance(); err != nil {
				return level.Raised(rcerr.Wrap(err, "advance past hard-quote arg"))
			}
			st.paramIdx++

		case flex.ParamSkippable:
			if f.AtEnd() || !p.Types.Allows(f.Current().Kind()) {
				*slot = st.kw.nullCell()
				st.paramIdx++
				continue
			}
			*slot = f.Current().WithUnevaluated()
			if err := f.Advance(); err != nil {
				return level.Raised(rcerr.Wrap(err, "advance past skippable arg"))
			}
			st.paramIdx++

		case flex.ParamVariadic:
			*slot = cell.NewNode(cell.KindVarargs, f)
			st.paramIdx++

		case flex.ParamEndable:
			if f.AtEnd() {
				*slot = st.kw.nullCell()
				st.paramIdx++
				continue
			}
			return pushArgEval(lvl, st, i)

		case flex.ParamSoftQuote:
			if f.AtEnd() {
				return level.Raised(rcerr.New("soft-quote parameter requires a value"))
			}
			switch f.Current().Kind() {
			case cell.KindGroup, cell.KindGetWord:
				return pushArgEval(lvl, st, i)
			default:
				*slot = f.Current().WithUnevaluated()
				if err := f.Advance(); err != nil {
					return level.Raised(rcerr.Wrap(err, "advance past soft-quote arg"))
				}
				st.paramIdx++
			}

		case flex.ParamNormal:
			if f.AtEnd() {
				return level.Raised(rcerr.New("normal parameter requires a value"))
			}
			return pushArgEval(lvl, st, i)

		default:
			return level.Raised(rcerr.New("unknown parameter class"))
		}
	}

	return actTypecheck(lvl, st)
}

// pushArgEval pushes a child evaluator level to fill parameter index i,
// resuming fulfillment at i+1 once it completes. An enfixed action's own
// argument is restricted to a single production step with no lookahead
// of its own, so that e.g. `1 + 2 * 3` reduces strictly left to right
// (9) rather than binding as if by ordinary operator precedence (7); an
// ordinary prefix action's normal argument legitimately absorbs a whole
// expression and is left unrestricted.
func pushArgEval(lvl *level.Level, st *actionState, i int) level.Bounce {
	st.paramIdx = i + 1
	child := NewEvaluatorLevel(st.pool, st.kw, st.stack, lvl.Feed)
	if st.act.Enfix() {
		child.Data.(*EvalData).skipLookahead = true
	}
	lvl.Push(child)
	lvl.State = actAwaitArg
	return level.Continue()
}

func actAwaitArgStep(lvl *level.Level, st *actionState) level.Bounce {
	out, _ := lvl.ChildResult()
	lvl.ClearChildResult()
	*st.frame.Var(st.paramIdx - 1) = out
	lvl.State = actFulfill
	return level.Continue()
}

// actTypecheck implements §4.7's "Typecheck": every argument is checked
// against its parameter's type bitset once fulfillment completes.
func actTypecheck(lvl *level.Level, st *actionState) level.Bounce {
	n := st.act.NumParams()
	for i := 0; i < n; i++ {
		p := st.act.Param(i)
		switch p.Class {
		case flex.ParamLocal, flex.ParamReturn, flex.ParamRefinement, flex.ParamVariadic:
			continue
		}
		if p.Types == 0 {
			continue
		}
		if !p.Types.Allows(st.frame.Var(i).Kind()) {
			return level.Raised(rcerr.Typecheck(p.Symbol.Text()))
		}
	}

	dispatcher, ok := st.act.Dispatcher().(Dispatcher)
	if !ok {
		return level.Raised(rcerr.New("action has no runnable dispatcher"))
	}
	lvl.Executor = wrapDispatcher(dispatcher, st.returnLabel)
	return level.Continue()
}

// wrapDispatcher intercepts a throw labeled for this exact call's
// definitional return, converting it into an ordinary completion (§4.7
// "Return: pre-filled with a definitional return action bound to this
// level").
func wrapDispatcher(base Dispatcher, returnLabel string) level.Executor {
	return func(lvl *level.Level) level.Bounce {
		b := base(lvl)
		if b.Kind == level.BounceThrown && b.Thrown.Label == returnLabel {
			return level.Completed(b.Thrown.Value)
		}
		return b
	}
}

// makeReturnAction builds the one-shot definitional RETURN action
// pre-filled into a ParamReturn slot: invoking it throws its single
// argument labeled for the frame that created it.
func makeReturnAction(pool *stub.Pool, label string) *flex.Action {
	sentinelSym := (*symbol.Symbol)(nil) // RETURN's own single argument is unnamed in source text
	params := []flex.Param{{Symbol: sentinelSym, Class: flex.ParamNormal}}
	dispatcher := Dispatcher(func(lvl *level.Level) level.Bounce {
		arg := *Frame(lvl).Var(0)
		return level.Thrown(level.ThrowValue{Label: label, Value: arg})
	})
	return flex.NewAction(pool, params, dispatcher, nil)
}
