package instance

import (
	"testing"

	"renc/internal/cell"
	"renc/internal/flex"
	"renc/internal/level"
	"renc/internal/stub"
)

func intCell(n int64) cell.Cell { return cell.New(cell.KindInteger, uint64(n), 0) }

func TestNewBuildsReadyInstance(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer in.Close()

	if in.ID.String() == "" {
		t.Fatalf("expected a non-empty instance id")
	}
	if in.Root() == nil {
		t.Fatalf("expected a root context")
	}
}

func TestDefineGrowsRootAndLookupFindsIt(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer in.Close()

	if err := in.Define("answer", intCell(42)); err != nil {
		t.Fatalf("Define: %v", err)
	}
	v, ok := in.Lookup("answer")
	if !ok {
		t.Fatalf("expected answer to be defined")
	}
	if int64(v.Slot0().Bits()) != 42 {
		t.Fatalf("got %#v", v)
	}

	// Redefining the same name overwrites in place rather than growing
	// the context a second time.
	if err := in.Define("answer", intCell(43)); err != nil {
		t.Fatalf("Define (overwrite): %v", err)
	}
	v, _ = in.Lookup("answer")
	if int64(v.Slot0().Bits()) != 43 {
		t.Fatalf("expected overwrite to take effect, got %#v", v)
	}
}

func TestLookupMissingNameReportsNotFound(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer in.Close()

	if _, ok := in.Lookup("nonexistent"); ok {
		t.Fatalf("expected lookup of an undefined name to fail")
	}
}

func TestEvalRunsExpressionAgainstRootBinding(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer in.Close()

	if err := in.Define("x", intCell(5)); err != nil {
		t.Fatalf("Define: %v", err)
	}

	arr := flex.NewArray(in.Pool)
	_ = arr.Append(flex.NewWordCell(in.Syms.Intern("x"), in.Root()))

	out, err := in.Eval(arr)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if int64(out.Slot0().Bits()) != 5 {
		t.Fatalf("got %#v", out)
	}
}

func TestTrampolineTickPersistsAcrossEvalCalls(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer in.Close()

	arr1 := flex.NewArray(in.Pool)
	_ = arr1.Append(intCell(1))
	if _, err := in.Eval(arr1); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	firstTick := in.Debugger().Tick()
	if firstTick == 0 {
		t.Fatalf("expected tick to have advanced")
	}

	arr2 := flex.NewArray(in.Pool)
	_ = arr2.Append(intCell(2))
	if _, err := in.Eval(arr2); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if in.Debugger().Tick() <= firstTick {
		t.Fatalf("expected tick to keep advancing across calls, got %d then %d", firstTick, in.Debugger().Tick())
	}
}

func TestDebuggerBreakAtTickFiresOnBreak(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer in.Close()

	var brokeAtTick uint64
	in.Debugger().OnBreak(func(tr *level.Trampoline, lvl *level.Level) {
		brokeAtTick = tr.Tick()
	})
	in.Debugger().BreakAtTick(1)

	arr := flex.NewArray(in.Pool)
	_ = arr.Append(intCell(7))
	if _, err := in.Eval(arr); err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if brokeAtTick != 1 {
		t.Fatalf("expected break hook to fire at tick 1, got %d", brokeAtTick)
	}
}

// TestGuardedStubSurvivesCollect exercises §4.4 Roots (c): a stub nothing
// in the root context, keylist, or any live level points at must still
// survive a collection once it's on the guard stack.
func TestGuardedStubSurvivesCollect(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer in.Close()

	orphan := flex.NewArray(in.Pool)
	in.Guards.Guard(orphan.UnderlyingStub())

	in.Collect()

	if orphan.UnderlyingStub().Flavor != stub.FlavorArray {
		t.Fatalf("expected a guarded stub to survive Collect, got flavor %v", orphan.UnderlyingStub().Flavor)
	}

	if _, err := in.Guards.Unguard(); err != nil {
		t.Fatalf("Unguard: %v", err)
	}
	in.Collect()
	if orphan.UnderlyingStub().Flavor == stub.FlavorArray {
		t.Fatalf("expected an unguarded, otherwise unreachable stub to be freed once swept")
	}
}

// TestCollectPreservesInternedKeywordsAcrossCollection exercises the
// scenario a missing symbol-table root breaks: the "null"/"okay" keyword
// symbols interned at construction time aren't reachable from the (still
// mostly empty) root context, so without the symbol table itself rooted,
// a collection would sweep their stubs out from under the interner.
func TestCollectPreservesInternedKeywordsAcrossCollection(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer in.Close()

	nullSym := in.Syms.Intern("null")

	in.Collect()

	// Pool.Free erases a swept stub's header in place, so an unrooted
	// symbol's backing stub would no longer read as FlavorSymbol the
	// instant Collect returns, without needing its slot reallocated first.
	if nullSym.Flavor != stub.FlavorSymbol {
		t.Fatalf("expected the interned \"null\" symbol's stub to survive a collection, got flavor %v", nullSym.Flavor)
	}
	if nullSym.Text() != "null" {
		t.Fatalf("expected the surviving symbol's text to still read \"null\", got %q", nullSym.Text())
	}
	if after := in.Syms.Intern("null"); after != nullSym {
		t.Fatalf("expected Intern to keep returning the same *Symbol across a collection")
	}
}

// TestDefineSurvivesCollect defines a fresh binding (growing the root
// context/keylist past their construction-time size) and checks it — and
// the symbol naming it — both survive a collection.
func TestDefineSurvivesCollect(t *testing.T) {
	in, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer in.Close()

	if err := in.Define("answer", intCell(42)); err != nil {
		t.Fatalf("Define: %v", err)
	}

	in.Collect()

	v, ok := in.Lookup("answer")
	if !ok {
		t.Fatalf("expected answer to survive a collection")
	}
	if int64(v.Slot0().Bits()) != 42 {
		t.Fatalf("got %#v", v)
	}
}
