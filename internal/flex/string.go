package flex

import (
	"unicode/utf8"

	"github.com/pkg/errors"

	"renc/internal/stub"
)

// Bookmark caches a codepoint-index -> byte-offset pair so codepoint
// lookups don't need a full linear scan from the start of the buffer
// every time (§4.3 "String").
type Bookmark struct {
	CodepointIndex int
	ByteOffset     int
}

// stringMeta is the payload attached to a FlavorString stub's Misc slot:
// the bookmark cache. Bookmarks may be dropped under memory pressure —
// DropBookmarks does exactly that, and every lookup tolerates their
// absence by falling back to a linear scan.
type stringMeta struct {
	bookmarks []Bookmark
}

// String is a Stub flavored FlavorString: a UTF-8 byte buffer with two
// logical lengths (byte size and codepoint length) and a bookmark cache.
type String struct {
	*stub.Stub
}

// NewString allocates a fresh string stub containing text.
func NewString(pool *stub.Pool, text string) *String {
	st := pool.Alloc()
	st.Flavor = stub.FlavorString
	if err := stub.DidFlexDataAlloc(st, len(text), false); err == nil {
		st.Dyn.Bytes = append(st.Dyn.Bytes[:0], text...)
	}
	s := &String{Stub: st}
	_ = pool.Manage(st)
	return s
}

func (s *String) bytes() []byte {
	if !s.Header.Has(stub.FlagDynamic) || s.Dyn == nil {
		return nil
	}
	return s.Dyn.Bytes[s.Dyn.Bias:]
}

// Size reports the buffer's byte length.
func (s *String) Size() int { return len(s.bytes()) }

// Len reports the buffer's codepoint length.
func (s *String) Len() int { return utf8.RuneCountInString(string(s.bytes())) }

// Value returns the string's contents as a Go string.
func (s *String) Value() string { return string(s.bytes()) }

func (s *String) meta() *stringMeta {
	m, _ := s.Misc.(*stringMeta)
	if m == nil {
		m = &stringMeta{}
		s.Misc = m
	}
	return m
}

// DropBookmarks discards the cached codepoint/byte-offset pairs. Callers
// must keep working afterward via the linear-scan fallback.
func (s *String) DropBookmarks() { s.meta().bookmarks = nil }

// nearestBookmark returns the closest cached bookmark at or before
// codepointIndex, or the zero bookmark if none qualifies.
func (s *String) nearestBookmark(codepointIndex int) Bookmark {
	best := Bookmark{}
	for _, b := range s.meta().bookmarks {
		if b.CodepointIndex <= codepointIndex && b.CodepointIndex >= best.CodepointIndex {
			best = b
		}
	}
	return best
}

// ByteOffset converts a codepoint index to a byte offset, using the
// nearest bookmark (if any) as a starting point and caching the result.
func (s *String) ByteOffset(codepointIndex int) (int, error) {
	buf := s.bytes()
	start := s.nearestBookmark(codepointIndex)
	offset := start.ByteOffset
	cp := start.CodepointIndex
	for cp < codepointIndex {
		if offset >= len(buf) {
			return 0, errors.Errorf("codepoint index %d out of range", codepointIndex)
		}
		_, size := utf8.DecodeRune(buf[offset:])
		offset += size
		cp++
	}
	m := s.meta()
	m.bookmarks = append(m.bookmarks, Bookmark{CodepointIndex: codepointIndex, ByteOffset: offset})
	return offset, nil
}

// AppendText appends text to the string buffer, invalidating no existing
// bookmark (they remain valid prefixes since appends never shift earlier
// bytes).
func (s *String) AppendText(text string) error {
	if err := s.Writable(); err != nil {
		return err
	}
	if err := stub.DidFlexDataAlloc(s.Stub, len(s.bytes())+len(text), true); err != nil {
		return err
	}
	s.Dyn.Bytes = append(s.Dyn.Bytes, text...)
	return nil
}

// UnderlyingStub exposes the backing Stub.
func (s *String) UnderlyingStub() *stub.Stub { return s.Stub }
