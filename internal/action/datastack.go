package action

import "renc/internal/symbol"

// refinementMark is one pushed marker: a refinement word the caller
// supplied out of feed order, awaiting pickup during argument fulfillment
// (§4.7 "Refinement: pulled out-of-order from the data stack where
// callers have pushed refinement markers").
type refinementMark struct {
	Symbol *symbol.Symbol
}

// DataStack holds pushed refinement markers for one evaluation session.
// Unlike the feed's array-backed cursor, this stack is not itself a GC
// root carrier — markers are plain symbol references, never values that
// need to survive a collection on their own (the symbols are already
// rooted by the canon table).
type DataStack struct {
	marks []refinementMark
}

// NewDataStack returns an empty stack.
func NewDataStack() *DataStack {
	return &DataStack{}
}

// PushRefinement records that sym was supplied as a refinement, for an
// action level to pick up during fulfillment.
func (ds *DataStack) PushRefinement(sym *symbol.Symbol) {
	ds.marks = append(ds.marks, refinementMark{Symbol: sym})
}

// TakeRefinement removes and reports whether sym was pushed as a
// refinement (order among distinct refinements doesn't matter — each
// parameter looks itself up by symbol).
func (ds *DataStack) TakeRefinement(sym *symbol.Symbol) bool {
	for i, m := range ds.marks {
		if m.Symbol == sym {
			ds.marks = append(ds.marks[:i], ds.marks[i+1:]...)
			return true
		}
	}
	return false
}

// Len reports how many refinement markers remain pushed.
func (ds *DataStack) Len() int { return len(ds.marks) }
