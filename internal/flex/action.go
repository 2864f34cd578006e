package flex

import (
	"renc/internal/cell"
	"renc/internal/stub"
	"renc/internal/symbol"
)

// ParamClass is the parameter-binding discipline for one slot of a
// paramlist (§4.7 "Argument fulfillment").
type ParamClass uint8

const (
	ParamNormal ParamClass = iota
	ParamLocal
	ParamHardQuote
	ParamSoftQuote
	ParamRefinement
	ParamReturn
	ParamVariadic
	ParamSkippable
	ParamEndable
	ParamMeta // accepts ^meta forms, including quasi-errors, on failure
)

func (pc ParamClass) String() string {
	switch pc {
	case ParamNormal:
		return "normal"
	case ParamLocal:
		return "local"
	case ParamHardQuote:
		return "hard-quote"
	case ParamSoftQuote:
		return "soft-quote"
	case ParamRefinement:
		return "refinement"
	case ParamReturn:
		return "return"
	case ParamVariadic:
		return "variadic"
	case ParamSkippable:
		return "skippable"
	case ParamEndable:
		return "endable"
	case ParamMeta:
		return "meta"
	default:
		return "invalid-param-class"
	}
}

// TypeSet is a bitset over cell.Kind used for a parameter's typecheck.
type TypeSet uint64

// Allows reports whether k is a member of ts.
func (ts TypeSet) Allows(k cell.Kind) bool { return ts&(1<<uint(k)) != 0 }

// TypeSetOf builds a TypeSet from the given kinds.
func TypeSetOf(kinds ...cell.Kind) TypeSet {
	var ts TypeSet
	for _, k := range kinds {
		ts |= 1 << uint(k)
	}
	return ts
}

// Param is one paramlist slot's binding metadata: symbol, allowed types,
// and parameter class.
type Param struct {
	Symbol *symbol.Symbol
	Types  TypeSet
	Class  ParamClass
	Enfix  bool // true only on slot 0's conceptual "is this action enfixed"
}

// paramlistMeta holds the non-cell parts of a paramlist stub: the
// dispatcher, its details payload, and HELP metadata. Info/Misc/Link map
// onto §3's description (link -> specialty/exemplar, misc -> HELP, info
// -> dispatcher+details) but are bundled into one struct here since Go
// has no reason to force them into three separately-typed fields only to
// immediately re-pack them at every call site.
type paramlistMeta struct {
	params     []Param // index 0 is the archetype slot (carries only Enfix), mirrors cell layout
	specialty  *Action
	help       string
	dispatcher any // action package's Dispatcher, stored opaquely here
	details    any // dispatcher-specific body data
}

// Action is a Stub flavored FlavorParamlist: slot 0 is the action
// archetype, slots 1..N are parameter cells (§3 "Action (Phase) +
// Paramlist").
type Action struct {
	*stub.Stub
}

// NewAction allocates a paramlist with the given parameters and binds
// dispatcher/details (opaque to this package; the action package knows
// their real types).
func NewAction(pool *stub.Pool, params []Param, dispatcher, details any) *Action {
	st := pool.Alloc()
	st.Flavor = stub.FlavorParamlist
	a := &Action{Stub: st}
	arr := Array{Stub: st}
	_ = arr.Append(cell.NewNode(cell.KindAction, st)) // slot 0: archetype
	for range params {
		var fresh cell.Cell
		cell.Fresh(&fresh)
		_ = arr.Append(fresh)
	}
	st.Misc = &paramlistMeta{params: append([]Param{{}}, params...), dispatcher: dispatcher, details: details}
	_ = pool.Manage(st)
	return a
}

func (a *Action) meta() *paramlistMeta { return a.Misc.(*paramlistMeta) }

// NumParams reports the number of parameters, excluding the archetype.
func (a *Action) NumParams() int { return len(a.meta().params) - 1 }

// Param returns the 1-based-excluded (0-based over real parameters)
// parameter metadata for index i.
func (a *Action) Param(i int) Param { return a.meta().params[i+1] }

// Dispatcher returns the opaque dispatcher value set at construction; the
// action package type-asserts it back to its own Dispatcher func type.
func (a *Action) Dispatcher() any { return a.meta().dispatcher }

// Details returns the opaque dispatcher body data.
func (a *Action) Details() any { return a.meta().details }

// Help returns the action's HELP text.
func (a *Action) Help() string { return a.meta().help }

// SetHelp sets the action's HELP text.
func (a *Action) SetHelp(text string) { a.meta().help = text }

// Specialty returns the action this one specializes/exemplifies, or nil.
func (a *Action) Specialty() *Action { return a.meta().specialty }

// SetSpecialty records the specialization/exemplar relationship.
func (a *Action) SetSpecialty(s *Action) { a.meta().specialty = s }

// Enfix reports whether a is invoked with its left argument already
// produced by the evaluator rather than drawn from the feed (§4.7
// "Enfix"). The flag conceptually lives on the archetype slot, which is
// why it isn't reachable through the public, archetype-excluded Param.
func (a *Action) Enfix() bool { return a.meta().params[0].Enfix }

// SetEnfix marks or clears a's enfix status.
func (a *Action) SetEnfix(v bool) { a.meta().params[0].Enfix = v }

// IndexOfParam returns the 0-based parameter index for sym, or -1.
func (a *Action) IndexOfParam(sym *symbol.Symbol) int {
	for i := 0; i < a.NumParams(); i++ {
		if a.Param(i).Symbol == sym {
			return i
		}
	}
	return -1
}

// UnderlyingStub exposes the backing Stub.
func (a *Action) UnderlyingStub() *stub.Stub { return a.Stub }

// GCRefs reports additional Nodes reachable from this action that aren't
// visible through the generic Link/Misc/Info slots (its specialty chain
// lives inside the opaque paramlistMeta). The gc package calls this via
// an exported-method interface check.
func (a *Action) GCRefs() []cell.Node {
	m := a.meta()
	if m.specialty == nil {
		return nil
	}
	return []cell.Node{m.specialty.Stub}
}
