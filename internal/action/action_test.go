package action

import (
	"testing"

	"renc/internal/cell"
	"renc/internal/feed"
	"renc/internal/flex"
	"renc/internal/level"
	"renc/internal/stub"
	"renc/internal/symbol"
)

func intCell(n int64) cell.Cell { return cell.New(cell.KindInteger, uint64(n), 0) }

func intValue(c cell.Cell) int64 { return int64(c.Slot0().Bits()) }

// harness bundles the plumbing every test in this file needs: a pool, a
// symbol table, the two antiform keywords, and a global context words can
// bind into.
type harness struct {
	pool *stub.Pool
	syms *symbol.Table
	kw   Keywords
	ctx  *flex.Context
	kl   *flex.Keylist
}

func newHarness(names ...string) *harness {
	pool := stub.NewPool(64)
	syms := symbol.NewTable(pool)
	kw := Keywords{Null: syms.Intern("null"), Okay: syms.Intern("okay")}

	symList := make([]*symbol.Symbol, len(names))
	for i, n := range names {
		symList[i] = syms.Intern(n)
	}
	kl := flex.NewKeylist(pool, symList)
	ctx := flex.NewContext(pool, len(names), kl)
	return &harness{pool: pool, syms: syms, kw: kw, ctx: ctx, kl: kl}
}

func (h *harness) set(name string, v cell.Cell) {
	idx := h.kl.IndexOf(h.syms.Canon(name))
	*h.ctx.Var(idx) = v
}

func (h *harness) word(name string) cell.Cell {
	return flex.NewWordCell(h.syms.Intern(name), h.ctx)
}

func (h *harness) setWord(name string) cell.Cell {
	return flex.NewSetWordCell(h.syms.Intern(name), h.ctx)
}

func twoParamAction(h *harness, aName, bName string, enfix bool, fn func(a, b int64) int64) *flex.Action {
	a := flex.NewAction(h.pool, []flex.Param{
		{Symbol: h.syms.Intern(aName), Class: flex.ParamNormal, Types: flex.TypeSetOf(cell.KindInteger)},
		{Symbol: h.syms.Intern(bName), Class: flex.ParamNormal, Types: flex.TypeSetOf(cell.KindInteger)},
	}, Dispatcher(func(lvl *level.Level) level.Bounce {
		fr := Frame(lvl)
		return level.Completed(intCell(fn(intValue(*fr.Var(0)), intValue(*fr.Var(1)))))
	}), nil)
	a.SetEnfix(enfix)
	return a
}

func runExpr(t *testing.T, h *harness, cells []cell.Cell) cell.Cell {
	t.Helper()
	arr := flex.NewArray(h.pool)
	for _, c := range cells {
		if err := arr.Append(c); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	f := feed.NewArrayFeed(nil, arr, 0, h.ctx)
	lvl := NewEvaluatorLevel(h.pool, h.kw, NewDataStack(), f)

	tr := level.NewTrampoline()
	tr.Push(lvl)
	out, err := tr.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return out
}

func TestInertIntegerEvaluatesToItself(t *testing.T) {
	h := newHarness()
	out := runExpr(t, h, []cell.Cell{intCell(42)})
	if out.Kind() != cell.KindInteger || intValue(out) != 42 {
		t.Fatalf("got %#v", out)
	}
}

func TestWordLookupDecaysToStoredValue(t *testing.T) {
	h := newHarness("x")
	h.set("x", intCell(7))
	out := runExpr(t, h, []cell.Cell{h.word("x")})
	if out.Kind() != cell.KindInteger || intValue(out) != 7 {
		t.Fatalf("got %#v", out)
	}
}

func TestSetWordAssignsAndProducesSameValue(t *testing.T) {
	h := newHarness("x")
	out := runExpr(t, h, []cell.Cell{h.setWord("x"), intCell(9)})
	if intValue(out) != 9 {
		t.Fatalf("got %#v", out)
	}
	if intValue(*h.ctx.Var(h.kl.IndexOf(h.syms.Canon("x")))) != 9 {
		t.Fatalf("x was not assigned")
	}
}

func TestGroupRecursesIntoInnerArray(t *testing.T) {
	h := newHarness()
	inner := flex.NewArray(h.pool)
	_ = inner.Append(intCell(5))
	out := runExpr(t, h, []cell.Cell{flex.NewGroupCell(inner)})
	if intValue(out) != 5 {
		t.Fatalf("got %#v", out)
	}
}

func TestPrefixActionCallAbsorbsWholeExpression(t *testing.T) {
	h := newHarness("add")
	add := twoParamAction(h, "a", "b", false, func(a, b int64) int64 { return a + b })
	h.set("add", flex.NewActionCell(add))

	out := runExpr(t, h, []cell.Cell{h.word("add"), intCell(3), intCell(4)})
	if intValue(out) != 7 {
		t.Fatalf("got %#v", out)
	}
}

// TestEnfixArithmeticIsLeftToRightWithoutPrecedence verifies that
// `1 + 2 * 3` reduces as (1 + 2) * 3 = 9, not 1 + (2 * 3) = 7: neither
// enfix action's own right-hand argument may itself chain into a further
// enfix word.
func TestEnfixArithmeticIsLeftToRightWithoutPrecedence(t *testing.T) {
	h := newHarness("+", "*")
	plus := twoParamAction(h, "a", "b", true, func(a, b int64) int64 { return a + b })
	star := twoParamAction(h, "a", "b", true, func(a, b int64) int64 { return a * b })
	h.set("+", flex.NewActionCell(plus))
	h.set("*", flex.NewActionCell(star))

	out := runExpr(t, h, []cell.Cell{intCell(1), h.word("+"), intCell(2), h.word("*"), intCell(3)})
	if out.Kind() != cell.KindInteger {
		t.Fatalf("expected integer, got %#v", out)
	}
	if got := intValue(out); got != 9 {
		t.Fatalf("expected 9 (left-to-right, no precedence), got %d", got)
	}
}

func TestTypecheckFailureRaisesAsErrorAntiform(t *testing.T) {
	h := newHarness("add")
	add := twoParamAction(h, "a", "b", false, func(a, b int64) int64 { return a + b })
	h.set("add", flex.NewActionCell(add))

	arr := flex.NewArray(h.pool)
	_ = arr.Append(h.word("add"))
	_ = arr.Append(intCell(3))
	textCell := cell.New(cell.KindText, 0, 0)
	_ = arr.Append(textCell)
	f := feed.NewArrayFeed(nil, arr, 0, h.ctx)
	lvl := NewEvaluatorLevel(h.pool, h.kw, NewDataStack(), f)

	tr := level.NewTrampoline()
	tr.Push(lvl)
	out, err := tr.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if _, ok := level.Err(out); !ok {
		t.Fatalf("expected an error antiform output, got %#v", out)
	}
}

func TestRefinementParameterSuppliedViaDataStack(t *testing.T) {
	h := newHarness("f")
	onlySym := h.syms.Intern("only")
	f := flex.NewAction(h.pool, []flex.Param{
		{Symbol: onlySym, Class: flex.ParamRefinement},
	}, Dispatcher(func(lvl *level.Level) level.Bounce {
		fr := Frame(lvl)
		v := *fr.Var(0)
		lift := v.Lift()
		if lift.IsAntiform() && v.Slot0().Node() == cell.Node(h.kw.Okay) {
			return level.Completed(intCell(1))
		}
		return level.Completed(intCell(0))
	}), nil)
	h.set("f", flex.NewActionCell(f))

	ds := NewDataStack()
	ds.PushRefinement(onlySym)
	arr := flex.NewArray(h.pool)
	_ = arr.Append(h.word("f"))
	feedObj := feed.NewArrayFeed(nil, arr, 0, h.ctx)
	lvl := NewEvaluatorLevel(h.pool, h.kw, ds, feedObj)

	tr := level.NewTrampoline()
	tr.Push(lvl)
	out, err := tr.Run()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if intValue(out) != 1 {
		t.Fatalf("expected refinement to be taken, got %#v", out)
	}
}

func TestHardQuoteParameterTakesLiteralUnevaluated(t *testing.T) {
	h := newHarness("q")
	q := flex.NewAction(h.pool, []flex.Param{
		{Symbol: h.syms.Intern("v"), Class: flex.ParamHardQuote},
	}, Dispatcher(func(lvl *level.Level) level.Bounce {
		return level.Completed(*Frame(lvl).Var(0))
	}), nil)
	h.set("q", flex.NewActionCell(q))

	out := runExpr(t, h, []cell.Cell{h.word("q"), h.word("x")})
	if out.Kind() != cell.KindWord {
		t.Fatalf("expected literal word passed through unevaluated, got %#v", out)
	}
}

func TestWrapDispatcherInterceptsMatchingReturnThrow(t *testing.T) {
	const label = "return-test"
	base := Dispatcher(func(lvl *level.Level) level.Bounce {
		return level.Thrown(level.ThrowValue{Label: label, Value: intCell(11)})
	})
	wrapped := wrapDispatcher(base, label)

	lvl := level.NewLevel(wrapped, nil)
	b := wrapped(lvl)
	if b.Kind != level.BounceCompleted {
		t.Fatalf("expected completed, got %v", b.Kind)
	}
	if intValue(b.Output) != 11 {
		t.Fatalf("got %#v", b.Output)
	}
}

func TestWrapDispatcherPassesThroughUnmatchedThrow(t *testing.T) {
	base := Dispatcher(func(lvl *level.Level) level.Bounce {
		return level.Thrown(level.ThrowValue{Label: "other", Value: intCell(1)})
	})
	wrapped := wrapDispatcher(base, "return-test")

	lvl := level.NewLevel(wrapped, nil)
	b := wrapped(lvl)
	if b.Kind != level.BounceThrown {
		t.Fatalf("expected thrown to pass through, got %v", b.Kind)
	}
	if b.Thrown.Label != "other" {
		t.Fatalf("got %#v", b.Thrown)
	}
}

// TestDefinitionalReturnUnwindsToOwnCall exercises the RETURN slot
// NewActionLevel pre-fills into every ParamReturn parameter: invoking it
// throws a value labeled for this exact call, and wrapDispatcher converts
// that throw straight into the call's own completion.
func TestDefinitionalReturnUnwindsToOwnCall(t *testing.T) {
	h := newHarness("early")
	early := flex.NewAction(h.pool, []flex.Param{
		{Class: flex.ParamReturn},
	}, Dispatcher(func(lvl *level.Level) level.Bounce {
		retAction := actionFromCell(*Frame(lvl).Var(0))
		retFrame := flex.NewContext(h.pool, 1, h.kl)
		*retFrame.Var(0) = intCell(99)
		retDispatcher := retAction.Dispatcher().(Dispatcher)
		return retDispatcher(&level.Level{Data: &actionState{frame: retFrame}})
	}), nil)
	h.set("early", flex.NewActionCell(early))

	out := runExpr(t, h, []cell.Cell{h.word("early")})
	if intValue(out) != 99 {
		t.Fatalf("expected definitional return value 99, got %#v", out)
	}
}
