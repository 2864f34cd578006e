package stub

// Header is the per-stub flag bitset from §4.2/§4.4. An "erased" stub (just
// allocated, not yet filled in) has Header == 0 and Flavor == FlavorNone.
type Header uint32

const (
	FlagManaged Header = 1 << iota // GC-owned; not on the manuals list
	FlagMarked                     // not set by gc.Collect, which marks with FlagBlack
	FlagFixedSize                  // contents may change, never reallocated
	FlagBlack                      // generic coloring flag (also gc.Collect's mark)
	FlagDynamic                    // payload is out-of-line (buffer), not inline
	FlagFrozenDeep                 // permanent, transitive immutability
	FlagProtected                  // user-invoked PROTECT; rejects mutation
	FlagHold                       // transient lock during feed iteration

	// Marking discipline: which generic slots the GC must treat as node
	// pointers to follow (§4.4's "header-flag-driven GC marking").
	FlagLinkNeedsMark
	FlagMiscNeedsMark
	FlagInfoNeedsMark
)

func (h Header) Has(bit Header) bool   { return h&bit != 0 }
func (h Header) Set(bit Header) Header { return h | bit }
func (h Header) Clear(bit Header) Header { return h &^ bit }

// Erased reports whether h is the all-zero state every freshly allocated
// stub starts in.
func (h Header) Erased() bool { return h == 0 }
