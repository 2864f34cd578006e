package symbol

import (
	"testing"

	"renc/internal/stub"
)

func TestInternReturnsIdenticalForExactSpelling(t *testing.T) {
	tbl := NewTable(stub.NewPool(8))
	a := tbl.Intern("Append")
	b := tbl.Intern("Append")
	if a != b {
		t.Fatal("expected identical symbol for repeated exact interning")
	}
}

func TestInternLinksCaseVariantsIntoRing(t *testing.T) {
	tbl := NewTable(stub.NewPool(8))
	canon := tbl.Intern("append")
	variant := tbl.Intern("APPEND")

	if canon == variant {
		t.Fatal("expected distinct symbols for distinct spellings")
	}
	syns := canon.Synonyms()
	if len(syns) != 2 {
		t.Fatalf("expected ring of 2, got %d", len(syns))
	}
	if tbl.Canon("Append") != canon {
		t.Fatal("expected canon lookup to find the first-interned spelling")
	}
}

func TestRotateCanonOnRemoval(t *testing.T) {
	tbl := NewTable(stub.NewPool(8))
	canon := tbl.Intern("foo")
	tbl.Intern("FOO")

	ok := tbl.RotateCanon(canon)
	if !ok {
		t.Fatal("expected rotation to succeed with a surviving synonym")
	}
	newCanon := tbl.Canon("foo")
	if newCanon == canon {
		t.Fatal("expected canon to have rotated away from the removed symbol")
	}
}

func TestRotateCanonSingleton(t *testing.T) {
	tbl := NewTable(stub.NewPool(8))
	canon := tbl.Intern("solo")
	if tbl.RotateCanon(canon) {
		t.Fatal("expected rotation to fail for a singleton ring")
	}
	if tbl.Canon("solo") != nil {
		t.Fatal("expected canon entry removed once its only member is gone")
	}
}

func TestBinderIndices(t *testing.T) {
	tbl := NewTable(stub.NewPool(8))
	s := tbl.Intern("x")
	s.SetBinder(0, 42)
	s.SetBinder(1, 7)
	if s.Binder(0) != 42 || s.Binder(1) != 7 {
		t.Fatal("binder indices not preserved")
	}
}
