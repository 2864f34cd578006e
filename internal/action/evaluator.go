// Package action implements the Action executor and the Evaluator
// executor it cooperates with (§4.7): argument fulfillment per
// ParamClass, enfix lookahead, and the evaluator's inert-optimization
// step algorithm, all expressed as re-entrant Level executors driven by
// the trampoline one tick at a time.
package action

import (
	"renc/internal/cell"
	"renc/internal/feed"
	"renc/internal/flex"
	"renc/internal/level"
	"renc/internal/rcerr"
	"renc/internal/stub"
	"renc/internal/symbol"
)

// Keywords bundles the interned "null"/"okay" WORD antiform symbols the
// action layer needs to construct refinement and local-parameter values
// (§3 invariant c restricts antiform WORDs to exactly these three
// keywords, of which this layer uses two).
type Keywords struct {
	Null *symbol.Symbol
	Okay *symbol.Symbol
}

func (kw Keywords) nullCell() cell.Cell {
	c := cell.NewNode(cell.KindWord, kw.Null)
	cell.SetLift(&c, cell.Antiform())
	return c
}

func (kw Keywords) okayCell() cell.Cell {
	c := cell.NewNode(cell.KindWord, kw.Okay)
	cell.SetLift(&c, cell.Antiform())
	return c
}

const (
	evalStart uint8 = iota
	evalLookahead
	evalAwaitGroup
	evalAwaitSetWord
	evalAwaitAction
)

// EvalData is the per-level state an evaluator executor carries across
// re-entries (§4.7 "State machine... re-entry dispatches on the state
// byte").
type EvalData struct {
	pool *stub.Pool
	kw   Keywords
	ds   *DataStack

	produced  cell.Cell
	setTarget *cell.Cell

	// ownsFeed is true when this level constructed its own sub-feed (a
	// GROUP's body), making it the one responsible for releasing that
	// feed's hold on an interrupted unwind rather than leaving it to
	// whichever level originally owned the shared parent feed.
	ownsFeed bool

	// skipLookahead restricts this level to producing exactly one value
	// with no trailing enfix lookahead of its own. An enfix action's
	// non-left argument is fulfilled this way: without it, gathering that
	// argument would itself greedily chain into any further enfix word
	// (binding as if by ordinary operator precedence), contradicting the
	// left-to-right, no-precedence evaluation §8 scenario 1 requires
	// (`1 + 2 * 3` = 9, not 7). An ordinary prefix call's normal argument
	// is not restricted — it legitimately absorbs a whole expression.
	skipLookahead bool
}

// GCRoots implements level.DataRoots: produced and setTarget are the only
// cell values this state holds onto between re-entries that aren't
// already reachable through the feed's own array.
func (ed *EvalData) GCRoots() []cell.Node {
	out := cellNodes(ed.produced)
	if ed.setTarget != nil {
		out = append(out, cellNodes(*ed.setTarget)...)
	}
	return out
}

// NewEvaluatorLevel builds a level that evaluates one expression read
// from f, bound to f's own binding context.
func NewEvaluatorLevel(pool *stub.Pool, kw Keywords, ds *DataStack, f *feed.Feed) *level.Level {
	lvl := level.NewLevel(evalStep, f)
	lvl.Data = &EvalData{pool: pool, kw: kw, ds: ds}
	return lvl
}

func evalStep(lvl *level.Level) level.Bounce {
	ed := lvl.Data.(*EvalData)

	if _, throwing := lvl.Throwing(); throwing {
		if ed.ownsFeed {
			lvl.Feed.Release()
		}
		t, _ := lvl.Throwing()
		return level.Thrown(t)
	}

	switch lvl.State {
	case evalStart:
		return evalProduce(lvl, ed)
	case evalLookahead:
		return evalLookaheadStep(lvl, ed)
	case evalAwaitGroup:
		return evalAfterGroup(lvl, ed)
	case evalAwaitSetWord:
		return evalAfterSetWord(lvl, ed)
	case evalAwaitAction:
		return evalAfterAction(lvl, ed)
	default:
		return level.Raised(rcerr.New("evaluator: invalid state"))
	}
}

// evalProduce implements step 1-6 of §4.7's step algorithm: decide what
// the current feed value means and either produce a value directly or
// push a child level to get one.
func evalProduce(lvl *level.Level, ed *EvalData) level.Bounce {
	f := lvl.Feed
	if f.AtEnd() {
		return level.Completed(cell.Ghost())
	}
	cur := f.Current()

	if cur.Lift().IsQuoted() {
		unq, err := cell.Unquote(cur.Lift())
		if err != nil {
			return level.Raised(rcerr.Wrap(err, "unquote"))
		}
		out := cur
		cell.SetLift(&out, unq)
		ed.produced = out
		_ = f.Advance()
		return evalFinishProduce(lvl, ed)
	}

	switch cur.Kind() {
	case cell.KindSetWord:
		target, ok := lookupContext(f, cur)
		if !ok {
			return level.Raised(rcerr.New("cannot assign: word is not bound to a writable context"))
		}
		if err := f.Advance(); err != nil {
			return level.Raised(rcerr.Wrap(err, "advance past set-word"))
		}
		ed.setTarget = target
		child := NewEvaluatorLevel(ed.pool, ed.kw, ed.ds, f)
		lvl.Push(child)
		lvl.State = evalAwaitSetWord
		return level.Continue()

	case cell.KindGetWord:
		val, ok := lookupContext(f, cur)
		if !ok {
			return level.Raised(rcerr.New("unbound word"))
		}
		ed.produced = *val
		_ = f.Advance()
		return evalFinishProduce(lvl, ed)

	case cell.KindWord:
		val, ok := lookupContext(f, cur)
		if !ok {
			return level.Raised(rcerr.New("unbound word"))
		}
		if val.Kind() == cell.KindAction {
			act := actionFromCell(*val)
			if err := f.Advance(); err != nil {
				return level.Raised(rcerr.Wrap(err, "advance past action word"))
			}
			binding, _ := f.Binding().(*flex.Context)
			child := NewActionLevel(ed.pool, act, f, binding, ed.ds, ed.kw, cell.Cell{}, false)
			lvl.Push(child)
			lvl.State = evalAwaitAction
			return level.Continue()
		}
		decayed := cell.Decay(*val)
		if decayed.Aborted {
			return level.Raised(rcerr.Wrap(decayed.AbortErr, "decaying variable"))
		}
		ed.produced = decayed.Value
		_ = f.Advance()
		return evalFinishProduce(lvl, ed)

	case cell.KindGroup:
		arr := groupBody(cur)
		binding, _ := f.Binding().(*flex.Context)
		inner := feed.NewArrayFeed(nil, arr, 0, binding)
		if err := f.Advance(); err != nil {
			return level.Raised(rcerr.Wrap(err, "advance past group"))
		}
		child := NewEvaluatorLevel(ed.pool, ed.kw, ed.ds, inner)
		child.Data.(*EvalData).ownsFeed = true
		lvl.Push(child)
		lvl.State = evalAwaitGroup
		return level.Continue()

	default:
		// Every remaining kind (integers, text, blocks-as-literal, ...) is
		// inert: copy straight to output.
		ed.produced = cur
		_ = f.Advance()
		return evalFinishProduce(lvl, ed)
	}
}

// evalFinishProduce transitions from producing a value to either the
// ordinary enfix lookahead step, or, when this level was restricted to a
// single production step (an enfixed action's own argument), straight to
// completion (§4.7 "Enfix"; see EvalData.skipLookahead).
func evalFinishProduce(lvl *level.Level, ed *EvalData) level.Bounce {
	if ed.skipLookahead {
		return level.Completed(ed.produced)
	}
	lvl.State = evalLookahead
	return level.Continue()
}

// evalLookaheadStep implements §4.7's one-element enfix lookahead: a
// produced value followed by a WORD resolving to an enfixed action
// steals that value as its left argument instead of finishing here.
func evalLookaheadStep(lvl *level.Level, ed *EvalData) level.Bounce {
	f := lvl.Feed
	if f.AtEnd() {
		return level.Completed(ed.produced)
	}
	cur := f.Current()
	if cur.Kind() != cell.KindWord {
		return level.Completed(ed.produced)
	}
	val, ok := lookupContext(f, cur)
	if !ok || val.Kind() != cell.KindAction {
		return level.Completed(ed.produced)
	}
	act := actionFromCell(*val)
	if !act.Enfix() {
		return level.Completed(ed.produced)
	}
	if err := f.Advance(); err != nil {
		return level.Raised(rcerr.Wrap(err, "advance past enfix word"))
	}
	binding, _ := f.Binding().(*flex.Context)
	child := NewActionLevel(ed.pool, act, f, binding, ed.ds, ed.kw, ed.produced, true)
	lvl.Push(child)
	lvl.State = evalAwaitAction
	return level.Continue()
}

func evalAfterGroup(lvl *level.Level, ed *EvalData) level.Bounce {
	out, _ := lvl.ChildResult()
	lvl.ClearChildResult()
	ed.produced = out
	return evalFinishProduce(lvl, ed)
}

func evalAfterSetWord(lvl *level.Level, ed *EvalData) level.Bounce {
	out, _ := lvl.ChildResult()
	lvl.ClearChildResult()
	*ed.setTarget = out
	ed.produced = out
	return evalFinishProduce(lvl, ed)
}

func evalAfterAction(lvl *level.Level, ed *EvalData) level.Bounce {
	out, _ := lvl.ChildResult()
	lvl.ClearChildResult()
	ed.produced = out
	return evalFinishProduce(lvl, ed)
}

// lookupContext resolves cur's WORD/SET-WORD/GET-WORD symbol. A cell's
// own Binding (attached when the array it lives in was bound) takes
// precedence; an as-yet-unbound cell (as a scanner might hand back)
// falls through to the feed's ambient binding instead.
func lookupContext(f *feed.Feed, cur cell.Cell) (*cell.Cell, bool) {
	sym, ok := cur.Slot0().Node().(*symbol.Symbol)
	if !ok {
		return nil, false
	}
	node := cur.Binding()
	if node == nil {
		node = f.Binding()
	}
	ctx, ok := node.(*flex.Context)
	if !ok {
		return nil, false
	}
	return flex.Lookup(ctx, sym)
}

func actionFromCell(c cell.Cell) *flex.Action {
	st := c.Slot0().Node().(*stub.Stub)
	return &flex.Action{Stub: st}
}

func groupBody(c cell.Cell) *flex.Array {
	st := c.Slot0().Node().(*stub.Stub)
	return &flex.Array{Stub: st}
}
