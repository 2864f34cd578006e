package stub

import (
	"testing"

	"renc/internal/cell"
)

func TestAllocErasedUnmanaged(t *testing.T) {
	p := NewPool(4)
	s := p.Alloc()
	if !s.Header.Erased() {
		t.Fatal("expected erased header")
	}
	if s.Flavor != FlavorNone {
		t.Fatal("expected FlavorNone")
	}
	if p.ManualsCount() != 1 {
		t.Fatalf("manuals count = %d, want 1", p.ManualsCount())
	}
}

func TestManageRemovesFromManuals(t *testing.T) {
	p := NewPool(4)
	s := p.Alloc()
	s.Flavor = FlavorArray
	if err := p.Manage(s); err != nil {
		t.Fatalf("Manage: %v", err)
	}
	if p.ManualsCount() != 0 {
		t.Fatalf("manuals count = %d, want 0", p.ManualsCount())
	}
	if err := p.Manage(s); err == nil {
		t.Fatal("expected error managing an already-managed stub")
	}
}

func TestFreeManualsOnPanic(t *testing.T) {
	p := NewPool(8)
	for i := 0; i < 100; i++ {
		s := p.Alloc()
		s.Flavor = FlavorArray
	}
	if got := p.ManualsCount(); got != 100 {
		t.Fatalf("manuals = %d, want 100", got)
	}
	freed := p.FreeManuals()
	if freed != 100 {
		t.Fatalf("freed = %d, want 100", freed)
	}
	if p.ManualsCount() != 0 {
		t.Fatal("expected manuals list empty after FreeManuals")
	}
}

func TestGrowSegmentAcrossMultipleSegments(t *testing.T) {
	p := NewPool(2)
	seen := map[*Stub]bool{}
	for i := 0; i < 10; i++ {
		s := p.Alloc()
		if seen[s] {
			t.Fatalf("duplicate stub pointer returned by Alloc")
		}
		seen[s] = true
	}
	if len(p.segments) < 5 {
		t.Fatalf("expected at least 5 segments of size 2 for 10 allocations, got %d", len(p.segments))
	}
}

func TestWritableRejectsFrozenProtectedHeld(t *testing.T) {
	p := NewPool(1)
	s := p.Alloc()
	if err := s.Writable(); err != nil {
		t.Fatalf("fresh stub should be writable: %v", err)
	}
	s.Freeze()
	if err := s.Writable(); err == nil {
		t.Fatal("expected frozen stub to reject mutation")
	}

	s2 := p.Alloc()
	s2.Header = s2.Header.Set(FlagProtected)
	if err := s2.Writable(); err == nil {
		t.Fatal("expected protected stub to reject mutation")
	}

	s3 := p.Alloc()
	s3.SetHold(true)
	if err := s3.Writable(); err == nil {
		t.Fatal("expected held stub to reject mutation")
	}
	s3.SetHold(false)
	if err := s3.Writable(); err != nil {
		t.Fatalf("expected hold release to restore writability: %v", err)
	}
}

func TestColorBalance(t *testing.T) {
	p := NewPool(4)
	s := p.Alloc()
	s.Flavor = FlavorArray
	if err := p.AssertWhiteBalance(); err != nil {
		t.Fatalf("expected balance with no black stubs: %v", err)
	}
	Paint(s, Black)
	if err := p.AssertWhiteBalance(); err == nil {
		t.Fatal("expected imbalance after painting a stub black")
	}
	Paint(s, White)
	if err := p.AssertWhiteBalance(); err != nil {
		t.Fatalf("expected balance restored: %v", err)
	}
}

func TestDidFlexDataAllocRehomesInline(t *testing.T) {
	p := NewPool(1)
	s := p.Alloc()
	s.Flavor = FlavorArray
	s.Inline = cell.NewNode(cell.KindWord, nil)

	if err := DidFlexDataAlloc(s, 4, true); err != nil {
		t.Fatalf("DidFlexDataAlloc: %v", err)
	}
	if !s.Header.Has(FlagDynamic) {
		t.Fatal("expected FlagDynamic set")
	}
	if s.Dyn.Rest != 4 {
		t.Fatalf("rest = %d, want 4 (already a power of two)", s.Dyn.Rest)
	}
	if len(s.Dyn.Cells) != 1 || s.Dyn.Cells[0].Kind() != cell.KindWord {
		t.Fatalf("inline cell not re-homed: %d cells", len(s.Dyn.Cells))
	}
}

func TestNextPow2(t *testing.T) {
	cases := map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 16: 16, 17: 32}
	for in, want := range cases {
		if got := nextPow2(in); got != want {
			t.Errorf("nextPow2(%d) = %d, want %d", in, got, want)
		}
	}
}
