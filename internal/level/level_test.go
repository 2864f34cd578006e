package level

import (
	"testing"

	"renc/internal/cell"
)

func TestTrampolineRunsSingleCompletedLevel(t *testing.T) {
	tr := NewTrampoline()
	lvl := NewLevel(func(lvl *Level) Bounce {
		return Completed(cell.New(cell.KindInteger, 7, 0))
	}, nil)
	tr.Push(lvl)

	out, err := tr.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Slot0().Bits() != 7 {
		t.Fatalf("output = %d, want 7", out.Slot0().Bits())
	}
	if tr.Tick() == 0 {
		t.Fatal("expected at least one tick to have elapsed")
	}
}

func TestTrampolineDeliversChildResultToParent(t *testing.T) {
	tr := NewTrampoline()

	parent := NewLevel(nil, nil)
	parent.Executor = func(lvl *Level) Bounce {
		if out, ok := lvl.ChildResult(); ok {
			lvl.ClearChildResult()
			return Completed(cell.New(cell.KindInteger, out.Slot0().Bits()+1, 0))
		}
		child := NewLevel(func(lvl *Level) Bounce {
			return Completed(cell.New(cell.KindInteger, 41, 0))
		}, nil)
		lvl.Push(child)
		return Continue()
	}
	tr.Push(parent)

	out, err := tr.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Slot0().Bits() != 42 {
		t.Fatalf("output = %d, want 42", out.Slot0().Bits())
	}
}

func TestTrampolineDelegatePassesResultToGrandparent(t *testing.T) {
	tr := NewTrampoline()

	grandparent := NewLevel(nil, nil)
	grandparent.Executor = func(lvl *Level) Bounce {
		if out, ok := lvl.ChildResult(); ok {
			lvl.ClearChildResult()
			return Completed(out)
		}
		middle := NewLevel(func(mid *Level) Bounce {
			leaf := NewLevel(func(lf *Level) Bounce {
				return Completed(cell.New(cell.KindInteger, 99, 0))
			}, nil)
			mid.Push(leaf)
			return Delegate()
		}, nil)
		lvl.Push(middle)
		return Continue()
	}
	tr.Push(grandparent)

	out, err := tr.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Slot0().Bits() != 99 {
		t.Fatalf("output = %d, want 99 (delegated straight to grandparent)", out.Slot0().Bits())
	}
}

func TestTrampolineUncaughtThrowIsAnError(t *testing.T) {
	tr := NewTrampoline()
	lvl := NewLevel(func(lvl *Level) Bounce {
		if _, throwing := lvl.Throwing(); throwing {
			return Thrown(ThrowValue{Label: "break"})
		}
		return Thrown(ThrowValue{Label: "break"})
	}, nil)
	tr.Push(lvl)

	if _, err := tr.Run(); err == nil {
		t.Fatal("expected an uncaught throw to surface as an error")
	}
}

func TestTrampolineThrowCaughtByAncestor(t *testing.T) {
	tr := NewTrampoline()

	catcher := NewLevel(nil, nil)
	catcher.Executor = func(lvl *Level) Bounce {
		if t, throwing := lvl.Throwing(); throwing {
			if t.Label == "return" {
				return Completed(cell.New(cell.KindInteger, 5, 0))
			}
			return Thrown(t)
		}
		thrower := NewLevel(func(lf *Level) Bounce {
			return Thrown(ThrowValue{Label: "return"})
		}, nil)
		lvl.Push(thrower)
		return Continue()
	}
	tr.Push(catcher)

	out, err := tr.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Slot0().Bits() != 5 {
		t.Fatalf("output = %d, want 5 (caught by ancestor)", out.Slot0().Bits())
	}
}

func TestTrampolineRaisedBecomesErrorAntiformOutput(t *testing.T) {
	tr := NewTrampoline()
	lvl := NewLevel(func(lvl *Level) Bounce {
		return Raised(errBoom)
	}, nil)
	tr.Push(lvl)

	out, err := tr.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Kind() != cell.KindError {
		t.Fatalf("output kind = %v, want error!", out.Kind())
	}
	if !out.Lift().IsAntiform() {
		t.Fatal("expected the raised error to surface as an antiform")
	}
	got, ok := Err(out)
	if !ok || got != errBoom {
		t.Fatalf("Err(out) = %v, %v, want %v, true", got, ok, errBoom)
	}
}

func TestTrampolineBreakHookFiresAtTick(t *testing.T) {
	tr := NewTrampoline()
	var broke uint64
	tr.OnBreak(func(tr *Trampoline, lvl *Level) { broke = tr.Tick() })
	tr.BreakAtTick(2)

	calls := 0
	lvl := NewLevel(func(lvl *Level) Bounce {
		calls++
		if calls < 3 {
			return Continue()
		}
		return Completed(cell.New(cell.KindInteger, 0, 0))
	}, nil)
	tr.Push(lvl)

	if _, err := tr.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if broke != 2 {
		t.Fatalf("break fired at tick %d, want 2", broke)
	}
}

func TestTrampolineCancelInjectsThrow(t *testing.T) {
	tr := NewTrampoline()
	cancelled := false
	tr.SetCancel(func() bool { return true })

	lvl := NewLevel(nil, nil)
	lvl.Executor = func(lvl *Level) Bounce {
		if t, throwing := lvl.Throwing(); throwing {
			cancelled = true
			if t.Label == "cancel" {
				return Completed(cell.New(cell.KindInteger, 0, 0))
			}
		}
		return Continue()
	}
	tr.Push(lvl)

	if _, err := tr.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !cancelled {
		t.Fatal("expected cancellation to reach the level as a throw")
	}
}

var errBoom = boomError{}

type boomError struct{}

func (boomError) Error() string { return "boom" }
