package rcerr

import "testing"

func TestTypecheckErrorCarriesLabel(t *testing.T) {
	err := Typecheck("value")
	if err.Kind != KindTypecheckFailure {
		t.Fatalf("Kind = %v, want typecheck-failure", err.Kind)
	}
	if err.Label != "value" {
		t.Fatalf("Label = %q, want %q", err.Label, "value")
	}
}

func TestRescueRecoversPanic(t *testing.T) {
	err := Rescue(func() {
		Panic(OutOfMemory(4096))
	})
	if err == nil {
		t.Fatal("expected Rescue to recover the panic as an error")
	}
	if err.Kind != KindOutOfMemory {
		t.Fatalf("Kind = %v, want out-of-memory", err.Kind)
	}
}

func TestRescueReturnsNilWithoutPanic(t *testing.T) {
	err := Rescue(func() {})
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := New("inner")
	wrapped := Wrap(cause, "outer")
	if wrapped.Unwrap() == nil {
		t.Fatal("expected Wrap to preserve an unwrappable cause")
	}
}
