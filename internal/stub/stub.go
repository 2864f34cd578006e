package stub

import (
	"github.com/pkg/errors"

	"renc/internal/cell"
)

// Buffer is a dynamically allocated out-of-line payload (§4.2 "Dynamic
// allocation"): it carries a bias (unused front padding allowing cheap
// head-side removal) and a rest (total capacity). Exactly one of Cells or
// Bytes is in use, chosen by the owning stub's flavor.
type Buffer struct {
	Cells []cell.Cell
	Bytes []byte

	Bias int // unused leading elements/bytes
	Rest int // total capacity, elements or bytes depending on flavor
}

// Stub is the fixed-shape heap descriptor every array/string/context/
// action/map is built from. Link, Misc, and Info are the three generic
// slots from §3: each may hold a Node or a raw counter. No end-marker
// sentinel is stored for singular arrays (flex.Array.At reports the end at
// index Len() instead), since Go has no reason to fight for the last byte
// of a struct the host never lays out at a fixed C offset (Non-goals
// explicitly drop exact struct layout).
type Stub struct {
	Header Header
	Flavor Flavor

	Link any // *Stub (keylist/misc-kind dependent) or nil
	Misc any
	Info any

	// Inline is the "singular" payload: one Cell embedded directly in the
	// stub, used when Header.Has(FlagDynamic) is false.
	Inline cell.Cell

	// Dyn is the out-of-line payload, present only when FlagDynamic is set.
	Dyn *Buffer

	id uint64 // pool bookkeeping / debug identity, not part of the spec's model
}

// NodeMarker makes *Stub satisfy cell.Node.
func (s *Stub) NodeMarker() {}

// ID returns the stub's pool-assigned identity, used only for diagnostics.
func (s *Stub) ID() uint64 { return s.id }

// Len reports the logical element count: array length in cells, or string
// length in bytes, depending on the stub's flavor. An inline payload
// counts as one cell, or none when it is KindNone.
func (s *Stub) Len() int {
	if !s.Header.Has(FlagDynamic) {
		if s.Inline.Kind() == cell.KindNone {
			return 0
		}
		return 1
	}
	if s.Dyn == nil {
		return 0
	}
	if s.Flavor == FlavorString {
		return len(s.Dyn.Bytes) - s.Dyn.Bias
	}
	return len(s.Dyn.Cells) - s.Dyn.Bias
}

// Writable returns an error if s currently rejects mutation: frozen stubs
// reject it for their entire lifetime, protected and held stubs reject it
// transiently (§3 "Lifecycle", §5 "Shared-resource policy").
func (s *Stub) Writable() error {
	if s.Header.Has(FlagFrozenDeep) {
		return errors.New("stub is frozen and permanently immutable")
	}
	if s.Header.Has(FlagProtected) {
		return errors.New("stub is protected against mutation")
	}
	if s.Header.Has(FlagHold) {
		return errors.New("stub is held (array is being iterated) and cannot be modified")
	}
	return nil
}

// Manage performs the one-way transition from unmanaged (manuals-tracked)
// to GC-managed. Managing an already-managed stub is an error — the
// transition is documented as one-way in §3.
func (s *Stub) Manage() error {
	if s.Header.Has(FlagManaged) {
		return errors.New("stub is already managed")
	}
	s.Header = s.Header.Set(FlagManaged)
	return nil
}

// Freeze marks s (and, by the caller's own recursion over reachable
// stubs, everything nested in it) frozen-deep. Freezing is permanent: no
// Unfreeze exists, matching §3's "Frozen/locked stubs reject mutation for
// their entire lifetime".
func (s *Stub) Freeze() {
	s.Header = s.Header.Set(FlagFrozenDeep)
}

// Frozen reports whether s is frozen-deep.
func (s *Stub) Frozen() bool { return s.Header.Has(FlagFrozenDeep) }

// SetHold sets or clears the transient iteration hold (§4.4 "Holds").
func (s *Stub) SetHold(on bool) {
	if on {
		s.Header = s.Header.Set(FlagHold)
	} else {
		s.Header = s.Header.Clear(FlagHold)
	}
}

// Held reports whether s currently carries a hold.
func (s *Stub) Held() bool { return s.Header.Has(FlagHold) }
