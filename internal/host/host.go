// Package host defines the three external-collaborator contracts §6
// names — dispatcher, extension collator, and scanner — plus a minimal
// in-tree demo implementation of each so an instance.Instance is
// exercisable end-to-end without a real embedding host. None of these
// demo pieces are the built-in action library or the molder (§1, §14
// Non-goals); they exist only to give the contracts somewhere to land.
package host

import (
	"renc/internal/cell"
	"renc/internal/stub"
	"renc/internal/symbol"
)

// Dispatcher is the Go rendering of §6's "Dispatcher contract": a
// C-compatible native function body, `Bounce fn(Level*)`. It is defined
// once, in internal/action, since the evaluator needs the exact same
// function shape to swap an action call's executor onto it (§4.7); this
// package only re-describes the contract at the point a collator
// installs a native against it, rather than redefining the type.
//
// See action.Dispatcher.

// API is the Go analogue of §6's ApiTable*: the narrow surface a
// Collator is handed when an extension loads, enough to install natives
// without exposing an instance's internals directly.
type API struct {
	Pool   *stub.Pool
	Syms   *symbol.Table
	Define func(name string, v cell.Cell) error
}

// Collator is the Go rendering of §6's "Extension collator contract":
// `Value* collator(ApiTable*)`, called once when an extension is loaded
// to populate the instance with whatever words it provides.
type Collator func(api *API) error
