// Package feed implements the uniform value stream a Level pulls from
// (§4.5): an array source backed by a flex.Array, and a variadic source
// that detects the kind of each incoming pointer on the fly. Both satisfy
// the same Source interface, so the level/evaluator layer above never has
// to know which one it's driving.
package feed

import (
	"renc/internal/cell"
	"renc/internal/flex"
)

// Source produces one value at a time. ok is false once the source is
// exhausted; after that, further calls to Next must keep returning false
// rather than panicking, since a Feed may probe past end-of-stream while
// deciding whether to hand off to a splice.
type Source interface {
	Next() (cell.Cell, bool)
}

// ArraySource walks a flex.Array from a starting index (§4.5 "Array
// feed: holds an array + index + binding"). The binding itself is kept on
// the owning Feed, not here, since it's a property of the stream as a
// whole rather than of any one source.
type ArraySource struct {
	Array *flex.Array
	Index int
}

// NewArraySource starts a Source at index 0 of arr.
func NewArraySource(arr *flex.Array) *ArraySource {
	return &ArraySource{Array: arr}
}

// Next implements Source.
func (a *ArraySource) Next() (cell.Cell, bool) {
	if a.Array == nil || a.Index >= a.Array.Len() {
		return cell.Cell{}, false
	}
	c := a.Array.At(a.Index)
	a.Index++
	return c, true
}
