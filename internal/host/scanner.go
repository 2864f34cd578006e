package host

import (
	"strconv"
	"unicode"

	"renc/internal/cell"
	"renc/internal/flex"
	"renc/internal/rcerr"
	"renc/internal/stub"
	"renc/internal/symbol"
)

// Scanner is the Go rendering of §6's "Scanner contract (external
// collaborator)": given a UTF-8 buffer and a binding, produce a
// newly-allocated source array (or signal empty). The real scanner/
// molder stays out of scope (§1); this interface is the seam a full one
// would plug into.
type Scanner interface {
	Scan(pool *stub.Pool, syms *symbol.Table, binding cell.Node, line string) (*flex.Array, error)
}

// LineScanner is the minimal line-oriented demo scanner §14's Non-goals
// calls for: just enough to turn one REPL line into WORD/SET-WORD/
// INTEGER/GROUP cells, with no string literals, decimals, or block
// syntax — everything this spec's own testable properties actually need
// to drive the evaluator end to end.
type LineScanner struct{}

// NewLineScanner constructs a LineScanner.
func NewLineScanner() *LineScanner { return &LineScanner{} }

// Scan implements Scanner.
func (LineScanner) Scan(pool *stub.Pool, syms *symbol.Table, binding cell.Node, line string) (*flex.Array, error) {
	s := &scanState{src: []rune(line), pool: pool, syms: syms, binding: binding}
	arr, err := s.scanArray(false)
	if err != nil {
		return nil, err
	}
	return arr, nil
}

type scanState struct {
	src     []rune
	pos     int
	pool    *stub.Pool
	syms    *symbol.Table
	binding cell.Node
}

func (s *scanState) atEnd() bool { return s.pos >= len(s.src) }

func (s *scanState) peek() rune {
	if s.atEnd() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanState) advance() rune {
	r := s.src[s.pos]
	s.pos++
	return r
}

func (s *scanState) skipSpace() {
	for !s.atEnd() && unicode.IsSpace(s.peek()) {
		s.pos++
	}
}

// scanArray reads cells until end-of-input (top level) or a closing ')'
// (inGroup), which it consumes.
func (s *scanState) scanArray(inGroup bool) (*flex.Array, error) {
	arr := flex.NewArray(s.pool)
	for {
		s.skipSpace()
		if s.atEnd() {
			if inGroup {
				return nil, rcerr.New("scanner: unterminated group")
			}
			return arr, nil
		}
		if s.peek() == ')' {
			if !inGroup {
				return nil, rcerr.New("scanner: unexpected ')'")
			}
			s.advance()
			return arr, nil
		}
		c, err := s.scanOne()
		if err != nil {
			return nil, err
		}
		if err := arr.Append(c); err != nil {
			return nil, rcerr.Wrap(err, "scanner: append")
		}
	}
}

func (s *scanState) scanOne() (cell.Cell, error) {
	if s.peek() == '(' {
		s.advance()
		inner, err := s.scanArray(true)
		if err != nil {
			return cell.Cell{}, err
		}
		return flex.NewGroupCell(inner), nil
	}

	start := s.pos
	for !s.atEnd() && !unicode.IsSpace(s.peek()) && s.peek() != '(' && s.peek() != ')' {
		s.advance()
	}
	text := string(s.src[start:s.pos])

	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return cell.New(cell.KindInteger, uint64(n), 0), nil
	}

	if len(text) > 1 && text[len(text)-1] == ':' {
		sym := s.syms.Intern(text[:len(text)-1])
		return flex.NewSetWordCell(sym, s.binding), nil
	}
	if len(text) > 1 && text[0] == ':' {
		sym := s.syms.Intern(text[1:])
		return flex.NewGetWordCell(sym, s.binding), nil
	}
	sym := s.syms.Intern(text)
	return flex.NewWordCell(sym, s.binding), nil
}
