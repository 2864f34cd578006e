// Package cell implements the fixed-shape tagged value representation
// described by the Cell Model component: a Kind, a lift/quote state, an
// optional Binding, and a two-slot payload.
package cell

// Kind is the "heart" of a cell: the underlying datatype, independent of
// its lift state (antiform/plain/quasi/quoted).
type Kind uint8

const (
	KindNone Kind = iota // erased/zero state, never a valid storable kind
	KindInteger
	KindDecimal
	KindLogic
	KindWord
	KindSetWord
	KindGetWord
	KindBlock
	KindGroup
	KindText
	KindTag
	KindMap
	KindAction
	KindFrame
	KindError
	KindPack
	KindGhost
	KindVarargs
	kindSentinel // count marker, not a valid kind
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInteger:
		return "integer!"
	case KindDecimal:
		return "decimal!"
	case KindLogic:
		return "logic!"
	case KindWord:
		return "word!"
	case KindSetWord:
		return "set-word!"
	case KindGetWord:
		return "get-word!"
	case KindBlock:
		return "block!"
	case KindGroup:
		return "group!"
	case KindText:
		return "text!"
	case KindTag:
		return "tag!"
	case KindMap:
		return "map!"
	case KindAction:
		return "action!"
	case KindFrame:
		return "frame!"
	case KindError:
		return "error!"
	case KindPack:
		return "pack!"
	case KindGhost:
		return "ghost!"
	case KindVarargs:
		return "varargs!"
	default:
		return "unknown!"
	}
}

// Valid reports whether k is a real, storable kind.
func (k Kind) Valid() bool {
	return k > KindNone && k < kindSentinel
}

// isotopicAllowlist is the set of kinds permitted to appear as antiforms
// (§4.1's "isotopic-type allowlist"). Everything else can never be raised.
var isotopicAllowlist = map[Kind]bool{
	KindWord:   true, // null, okay, nan keywords only — checked separately
	KindLogic:  true,
	KindAction: true,
	KindFrame:  true,
	KindError:  true,
	KindPack:   true,
	KindBlock:  true, // used internally to represent a pack's element list
	KindGhost:  true,
}

// IsIsotopic reports whether k is on the antiform allowlist.
func IsIsotopic(k Kind) bool {
	return isotopicAllowlist[k]
}

// unstableKinds are antiform kinds that may not appear in arrays nor cross
// the external API boundary as raw values (§3 invariant d).
var unstableKinds = map[Kind]bool{
	KindPack:  true,
	KindGhost: true,
	KindError: true,
}

// IsUnstable reports whether an antiform of kind k is unstable.
func IsUnstable(k Kind) bool {
	return unstableKinds[k]
}

// AntiformKeyword is the closed allowlist of WORD antiform symbols (§3
// invariant c): only these three words may exist in antiform form.
type AntiformKeyword string

const (
	KeywordNull AntiformKeyword = "null"
	KeywordOkay AntiformKeyword = "okay"
	KeywordNaN  AntiformKeyword = "nan"
)

// IsAntiformKeyword reports whether sym is one of the allowed WORD antiform
// keywords.
func IsAntiformKeyword(sym string) bool {
	switch AntiformKeyword(sym) {
	case KeywordNull, KeywordOkay, KeywordNaN:
		return true
	default:
		return false
	}
}
