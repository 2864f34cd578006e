package gc

import (
	"sync"

	"github.com/pkg/errors"

	"renc/internal/stub"
)

// HoldTable layers reference counts on top of stub.Stub's single FlagHold
// bit, so nested feed iteration over the same array (a function calling
// itself recursively over one block, say) can acquire and release a hold
// independently at each nesting level without the inner release lifting
// the outer caller's protection (§4.4 "Holds").
type HoldTable struct {
	mu     sync.Mutex
	counts map[*stub.Stub]int
}

// NewHoldTable creates an empty hold table.
func NewHoldTable() *HoldTable {
	return &HoldTable{counts: make(map[*stub.Stub]int)}
}

// Acquire takes one nested hold on s, setting FlagHold on the stub itself
// only when this is the outermost acquisition.
func (h *HoldTable) Acquire(s *stub.Stub) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.counts[s]++
	if h.counts[s] == 1 {
		s.SetHold(true)
	}
}

// Release drops one nested hold on s, clearing FlagHold only once every
// acquisition has been matched by a release.
func (h *HoldTable) Release(s *stub.Stub) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	n, ok := h.counts[s]
	if !ok || n == 0 {
		return errors.New("release of a stub with no outstanding hold")
	}
	n--
	if n == 0 {
		delete(h.counts, s)
		s.SetHold(false)
	} else {
		h.counts[s] = n
	}
	return nil
}

// Count reports the current nesting depth of holds on s.
func (h *HoldTable) Count(s *stub.Stub) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.counts[s]
}

// ReleaseAll drops every outstanding hold on s regardless of nesting depth
// — the abrupt-unwind counterpart to Release, used when a panic throws
// past several levels of nested iteration at once (§8 scenario 4).
func (h *HoldTable) ReleaseAll(s *stub.Stub) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.counts[s]; ok {
		delete(h.counts, s)
		s.SetHold(false)
	}
}
