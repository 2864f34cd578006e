// Package stub implements the fixed-shape GC-managed heap descriptor
// ("Stub") that every array, string, context, action, and map is built
// from (§4.2), plus the segmented pool allocator and manuals list that
// back it.
package stub

// Flavor is the per-stub-subclass tag from §4.2's header. It is what lets
// the garbage collector stay flavor-agnostic for generic link/misc/info
// slots and only branch on flavor for cell-bearing stubs and the
// keysource special case (§4.4 "Marking discipline").
type Flavor uint8

const (
	FlavorNone Flavor = iota // erased stub; never a valid live flavor
	FlavorArray
	FlavorString
	FlavorSymbol
	FlavorVarlist
	FlavorKeylist
	FlavorParamlist
	FlavorDetails // action dispatcher body data
	FlavorMap
	FlavorFeed
	flavorSentinel
)

func (f Flavor) String() string {
	switch f {
	case FlavorNone:
		return "none"
	case FlavorArray:
		return "array"
	case FlavorString:
		return "string"
	case FlavorSymbol:
		return "symbol"
	case FlavorVarlist:
		return "varlist"
	case FlavorKeylist:
		return "keylist"
	case FlavorParamlist:
		return "paramlist"
	case FlavorDetails:
		return "details"
	case FlavorMap:
		return "map"
	case FlavorFeed:
		return "feed"
	default:
		return "invalid-flavor"
	}
}

// Valid reports whether f is a real, assignable flavor.
func (f Flavor) Valid() bool { return f > FlavorNone && f < flavorSentinel }

// HoldsCells reports whether stubs of this flavor carry Cell payloads (and
// therefore need the GC to walk their cell contents, not just their
// generic link/misc/info slots).
func (f Flavor) HoldsCells() bool {
	switch f {
	case FlavorArray, FlavorVarlist, FlavorKeylist, FlavorParamlist:
		return true
	default:
		return false
	}
}
