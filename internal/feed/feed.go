package feed

import (
	"github.com/pkg/errors"

	"renc/internal/cell"
	"renc/internal/flex"
	"renc/internal/gc"
	"renc/internal/stub"
)

// Feed presents a uniform value stream over either an ArraySource or a
// VariadicSource: look at the current value, advance to the next one
// (§4.5 "Contract"). The current value stays valid across exactly one
// Advance so a one-step lookback is possible; nothing earlier than that
// is retained.
type Feed struct {
	source  Source
	binding cell.Node

	current  cell.Cell
	lookback cell.Cell
	atEnd    bool

	holds   *gc.HoldTable
	heldArr *stub.Stub // non-nil while this feed holds an array source

	// splice is the follow-on feed taking over once source is exhausted
	// (§4.5 "Splices"): its own hold, if any, is acquired only at the
	// moment of transition, not up front.
	splice *Feed
}

// NodeMarker lets a Feed be carried directly inside a VARARGS! cell's
// payload slot (§4.7 "Variadic: filled with a VARARGS! cell referring to
// this level's feed"), without the action layer needing its own wrapper
// type. The GC never chases into it — a feed's own array-backed source
// is independently rooted through the level stack that owns it.
func (f *Feed) NodeMarker() {}

// NewArrayFeed starts a Feed over arr beginning at the given index, bound
// to binding, with holds tracking the array's iteration hold so nested
// iteration over the same array composes correctly (§4.4 "Holds").
func NewArrayFeed(holds *gc.HoldTable, arr *flex.Array, index int, binding cell.Node) *Feed {
	src := &ArraySource{Array: arr, Index: index}
	f := &Feed{source: src, binding: binding, holds: holds}
	f.acquireArrayHold(arr.UnderlyingStub())
	f.primeFirst()
	return f
}

// NewVariadicFeed starts a Feed over a variadic pointer source. Variadic
// sources don't hold an array directly, so no hold is acquired until (and
// unless) the source reifies into one.
func NewVariadicFeed(src *VariadicSource, binding cell.Node) *Feed {
	f := &Feed{source: src, binding: binding}
	f.primeFirst()
	return f
}

func (f *Feed) acquireArrayHold(s *stub.Stub) {
	if f.holds == nil || s == nil {
		return
	}
	f.holds.Acquire(s)
	f.heldArr = s
}

func (f *Feed) releaseArrayHold() {
	if f.holds == nil || f.heldArr == nil {
		return
	}
	_ = f.holds.Release(f.heldArr)
	f.heldArr = nil
}

// primeFirst pulls the first value so Current is valid immediately after
// construction, matching the teacher convention of a feed that's already
// "on" a value rather than needing an initial Advance to prime it.
func (f *Feed) primeFirst() {
	c, ok := f.source.Next()
	if !ok {
		f.atEnd = true
		return
	}
	f.current = c
}

// Current returns the value the feed is presently positioned on. Reading
// Current past end-of-stream returns a fresh KindNone cell, mirroring a
// flex.Array's own end-marker convention.
func (f *Feed) Current() cell.Cell {
	if f.atEnd {
		return cell.Cell{}
	}
	return f.current
}

// Lookback returns the value the feed was on immediately before the most
// recent Advance. Calling it before any Advance returns a fresh cell.
func (f *Feed) Lookback() cell.Cell { return f.lookback }

// AtEnd reports whether the feed (including any spliced continuation) is
// exhausted.
func (f *Feed) AtEnd() bool { return f.atEnd }

// Binding returns the context new words encountered on this feed should
// bind into.
func (f *Feed) Binding() cell.Node { return f.binding }

// Advance moves the feed to its next value (§4.5 "(ii) advance to next
// value"). It transparently hands off to a splice once the primary source
// is exhausted, dropping the outgoing source's hold at that exact
// transition rather than waiting for an outer release.
func (f *Feed) Advance() error {
	if f.atEnd {
		return errors.New("cannot advance a feed already at end")
	}
	f.lookback = f.current

	if vs, ok := f.source.(*VariadicSource); ok {
		if next, ok := vs.Next(); ok {
			f.current = next
			if sp := vs.TakeSplice(); sp != nil {
				f.spliceInto(sp)
			}
			return nil
		}
		if sp := vs.TakeSplice(); sp != nil {
			f.splice = sp
		}
		if f.splice != nil {
			f.adoptSplice()
			return nil
		}
		f.atEnd = true
		return nil
	}

	next, ok := f.source.Next()
	if ok {
		f.current = next
		return nil
	}

	if f.splice != nil {
		f.adoptSplice()
		return nil
	}

	f.releaseArrayHold()
	f.atEnd = true
	return nil
}

// spliceInto records next as the feed to take over once the current
// source truly runs dry (used when a Splice instruction is consumed
// mid-stream, ahead of actual exhaustion).
func (f *Feed) spliceInto(next *Feed) {
	f.splice = next
}

// SetSplice attaches next as the follow-on feed any Source (array or
// variadic) takes over once this one is exhausted (§4.5 "Splices"). It's
// exported since, unlike an InstructionStub{Splice}, the caller may be
// driving a plain array feed and wants to chain a continuation directly.
func (f *Feed) SetSplice(next *Feed) { f.spliceInto(next) }

// adoptSplice drops this feed's own hold and source, adopting the
// splice's in their place, including the value the splice had already
// primed onto Current — the splice's own construction already pulled its
// first element, so Advance must not pull a second time here and skip it
// (§4.5 "its hold is dropped at splice transition, not at outer
// release").
func (f *Feed) adoptSplice() {
	f.releaseArrayHold()
	next := f.splice
	f.splice = nil
	f.source = next.source
	f.holds = next.holds
	f.heldArr = next.heldArr
	f.binding = next.binding
	f.current = next.current
	f.atEnd = next.atEnd
	// The spliced feed's own state now lives on f; detach it from next so
	// releasing f doesn't double-release, and next can't be advanced
	// again independently.
	next.heldArr = nil
	next.holds = nil
	next.atEnd = true
}

// Release drops this feed's array hold immediately, without requiring it
// to reach end-of-stream first (§5 "Cancellation... must release holds,
// pop their level"). Safe to call on a feed with no hold outstanding, or
// more than once.
func (f *Feed) Release() {
	f.releaseArrayHold()
}

// Spool reifies a variadic feed into a fresh array feed (§4.5
// "Reification"): every unconsumed value, starting from the current one,
// is collected into arr in order, and the feed continues from that array
// instead of the original variadic source. GC safety falls out of this
// for free — the array is a normal managed array from that point on.
func (f *Feed) Spool(pool *stub.Pool) (*flex.Array, error) {
	if _, ok := f.source.(*VariadicSource); !ok {
		return nil, errors.New("Spool is only meaningful for a variadic feed")
	}
	arr := flex.NewArray(pool)
	if !f.atEnd {
		if err := arr.Append(f.current); err != nil {
			return nil, err
		}
		for {
			next, ok := f.source.Next()
			if !ok {
				break
			}
			if err := arr.Append(next); err != nil {
				return nil, err
			}
		}
	}
	src := NewArraySource(arr)
	f.source = src
	if first, ok := src.Next(); ok {
		f.current = first
		f.atEnd = false
	} else {
		f.atEnd = true
	}
	f.acquireArrayHold(arr.UnderlyingStub())
	return arr, nil
}
