package flex

import (
	"renc/internal/cell"
	"renc/internal/symbol"
)

// NewWordCell wraps sym as a WORD! cell bound to binding (nil for
// unbound).
func NewWordCell(sym *symbol.Symbol, binding cell.Node) cell.Cell {
	return cell.NewBound(cell.KindWord, sym, binding)
}

// NewSetWordCell wraps sym as a SET-WORD! cell bound to binding.
func NewSetWordCell(sym *symbol.Symbol, binding cell.Node) cell.Cell {
	return cell.NewBound(cell.KindSetWord, sym, binding)
}

// NewGetWordCell wraps sym as a GET-WORD! cell bound to binding.
func NewGetWordCell(sym *symbol.Symbol, binding cell.Node) cell.Cell {
	return cell.NewBound(cell.KindGetWord, sym, binding)
}

// NewGroupCell wraps a as a GROUP! cell: an array evaluated in place
// rather than taken literally, the only distinction between GROUP! and
// BLOCK! at the cell level (§4.7 "If the value is a GROUP, recursively
// evaluate its contents").
func NewGroupCell(a *Array) cell.Cell {
	return cell.NewNode(cell.KindGroup, a.Stub)
}

// NewActionCell wraps act as a plain ACTION! value suitable for storing
// in a context variable; reading the variable via a bound WORD is what
// triggers invocation (§4.7 "If it resolves to an action, switch to
// action-executor").
func NewActionCell(act *Action) cell.Cell {
	return cell.NewNode(cell.KindAction, act.Stub)
}

// NewTextCell wraps s as a plain TEXT! value.
func NewTextCell(s *String) cell.Cell {
	return cell.NewNode(cell.KindText, s.Stub)
}
