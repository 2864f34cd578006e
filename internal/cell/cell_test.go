package cell

import "testing"

func TestLiftRoundTrip(t *testing.T) {
	cases := []LiftByte{Antiform(), Quasi(), Plain(), Quoted(1), Quoted(3)}
	for _, lb := range cases {
		lifted := Lift(lb)
		back, err := Unlift(lifted)
		if err != nil {
			t.Fatalf("Unlift(Lift(%v)) errored: %v", lb, err)
		}
		if back != lb {
			t.Errorf("Unlift(Lift(%v)) = %v, want %v", lb, back, lb)
		}
	}
}

func TestUnliftPlainFails(t *testing.T) {
	if _, err := Unlift(Plain()); err == nil {
		t.Fatal("expected error unlifting a plain unquoted value")
	}
}

func TestQuoteUnquoteRoundTrip(t *testing.T) {
	lb := Plain()
	for i := 0; i < 3; i++ {
		var err error
		lb, err = Quote(lb)
		if err != nil {
			t.Fatalf("Quote: %v", err)
		}
	}
	if lb.Depth() != 3 {
		t.Fatalf("depth = %d, want 3", lb.Depth())
	}
	for i := 0; i < 3; i++ {
		var err error
		lb, err = Unquote(lb)
		if err != nil {
			t.Fatalf("Unquote: %v", err)
		}
	}
	if lb != Plain() {
		t.Fatalf("round trip = %v, want Plain", lb)
	}
}

func TestAntiformizeRejectsNonIsotopic(t *testing.T) {
	c := New(KindInteger, 42, 0)
	if _, err := Antiformize(c, nil); err == nil {
		t.Fatal("expected error raising an integer to antiform")
	}
}

func TestAntiformizeWordRequiresKeyword(t *testing.T) {
	c := New(KindWord, 0, 0)
	_, err := Antiformize(c, func(Cell) (string, bool) { return "frobnicate", true })
	if err == nil {
		t.Fatal("expected error for non-keyword word antiform")
	}

	c2 := New(KindWord, 0, 0)
	out, err := Antiformize(c2, func(Cell) (string, bool) { return string(KeywordNull), true })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !out.Lift().IsAntiform() {
		t.Fatal("expected antiform lift state")
	}
	if out.Binding() != nil {
		t.Fatal("expected binding stripped")
	}
}

func TestAntiformizeStripsBinding(t *testing.T) {
	c := New(KindLogic, 1, 0)
	c.binding = fakeNode{}
	out, err := Antiformize(c, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Binding() != nil {
		t.Fatal("expected binding to be stripped on antiformize")
	}
}

type fakeNode struct{}

func (fakeNode) NodeMarker() {}

type fakePackList struct {
	fakeNode
	elems []Cell
}

func (f fakePackList) Elements() []Cell { return f.elems }

func TestDecayPackFirstSlot(t *testing.T) {
	inner := New(KindInteger, 10, 0)
	list := fakePackList{elems: []Cell{inner, New(KindInteger, 20, 0)}}
	pack := NewNode(KindPack, list)
	pack.lift = Antiform()

	res := Decay(pack)
	if res.Aborted {
		t.Fatalf("unexpected abort: %v", res.AbortErr)
	}
	if res.Value.Kind() != KindInteger || res.Value.Slot0().Bits() != 10 {
		t.Fatalf("decay result = %+v, want integer 10", res.Value)
	}
}

func TestDecayPackNonFirstErrorAborts(t *testing.T) {
	errCell := New(KindError, 0, 0)
	errCell.lift = Antiform()
	list := fakePackList{elems: []Cell{New(KindInteger, 10, 0), errCell}}
	pack := NewNode(KindPack, list)
	pack.lift = Antiform()

	res := Decay(pack)
	if !res.Aborted {
		t.Fatal("expected abort for error in non-first pack slot")
	}
}

func TestDecayNestedPackNotAutoDecayed(t *testing.T) {
	innerList := fakePackList{elems: []Cell{New(KindInteger, 1, 0)}}
	innerPack := NewNode(KindPack, innerList)
	innerPack.lift = Antiform()

	outerList := fakePackList{elems: []Cell{innerPack}}
	outerPack := NewNode(KindPack, outerList)
	outerPack.lift = Antiform()

	res := Decay(outerPack)
	if !res.Aborted {
		t.Fatal("expected decay of a pack-in-first-slot to abort, not recurse")
	}
}

func TestDecayErrorAborts(t *testing.T) {
	c := New(KindError, 0, 0)
	c.lift = Antiform()
	res := Decay(c)
	if !res.Aborted {
		t.Fatal("expected error antiform to abort decay")
	}
}

func TestDecayGhostAborts(t *testing.T) {
	res := Decay(Ghost())
	if !res.Aborted {
		t.Fatal("expected ghost antiform to abort decay")
	}
}

func TestFreshCell(t *testing.T) {
	c := New(KindInteger, 5, 0)
	Fresh(&c)
	if c.Kind() != KindNone || c.Kind().Valid() {
		t.Fatal("expected freshened cell to be KindNone and invalid")
	}
}

func TestCopyPreservesConstByDefault(t *testing.T) {
	c := New(KindInteger, 1, 0).WithConst()
	out := Copy(c, false)
	if !out.Const() {
		t.Fatal("expected const flag preserved")
	}
	dropped := Copy(c, true)
	if dropped.Const() {
		t.Fatal("expected const flag dropped")
	}
}
