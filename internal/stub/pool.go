package stub

import (
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"renc/internal/cell"
)

// Pool provides O(1) allocation and release of Stub records, drawn from
// segmented slices of identical-size nodes (§4.2 "Pool layout"). It also
// keeps the manuals list: unmanaged stubs the GC does not own, freed
// either explicitly or in bulk when a scope panics (§3 "Lifecycle",
// §4.2 "Manuals list").
type Pool struct {
	mu sync.Mutex

	segmentSize int
	segments    [][]*Stub
	free        []*Stub

	manuals map[*Stub]bool

	nextID    uint64
	allocated int
	freed     int
}

// NewPool creates a Pool whose segments are segmentSize nodes each. A
// segment is a single Go allocation backing many Stubs, which is the
// idiomatic-Go analogue of "segmented pools of identical-size nodes"
// from §4.2 — the pool owns the backing array, not the GC.
func NewPool(segmentSize int) *Pool {
	if segmentSize <= 0 {
		segmentSize = 256
	}
	return &Pool{
		segmentSize: segmentSize,
		manuals:     make(map[*Stub]bool),
	}
}

// growSegment allocates one more segment of fresh, erased stubs and
// threads them onto the free list. Must be called with mu held.
func (p *Pool) growSegment() {
	seg := make([]Stub, p.segmentSize)
	ptrs := make([]*Stub, p.segmentSize)
	for i := range seg {
		ptrs[i] = &seg[i]
	}
	p.segments = append(p.segments, ptrs)
	p.free = append(p.free, ptrs...)
}

// Alloc returns a freshly erased, unmanaged Stub and appends it to the
// manuals list. The caller fills in Flavor and Header flags (§4.2 "Pool
// layout": "Allocation returns a stub with ... all other header bits
// zero").
func (p *Pool) Alloc() *Stub {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.free) == 0 {
		p.growSegment()
	}
	n := len(p.free) - 1
	s := p.free[n]
	p.free = p.free[:n]

	*s = Stub{}
	p.nextID++
	s.id = p.nextID
	p.manuals[s] = true
	p.allocated++
	return s
}

// Manage removes s from the manuals list once the caller has made it
// reachable from GC roots, and marks it managed.
func (p *Pool) Manage(s *Stub) error {
	if err := s.Manage(); err != nil {
		return err
	}
	p.mu.Lock()
	delete(p.manuals, s)
	p.mu.Unlock()
	return nil
}

// Free releases s back to the free list, erasing its header so it can
// never be mistaken for a live stub before reallocation.
func (p *Pool) Free(s *Stub) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.manuals, s)
	*s = Stub{}
	p.free = append(p.free, s)
	p.freed++
}

// FreeManuals frees every stub still on the manuals list — the abrupt
// panic-during-scope cleanup from §3 and §8 scenario 6 ("GC of manuals on
// panic"). It returns the number of stubs freed.
func (p *Pool) FreeManuals() int {
	p.mu.Lock()
	pending := make([]*Stub, 0, len(p.manuals))
	for s := range p.manuals {
		pending = append(pending, s)
	}
	p.mu.Unlock()

	for _, s := range pending {
		p.Free(s)
	}
	return len(pending)
}

// IsManual reports whether s is currently unmanaged (tracked on the
// manuals list rather than owned by the GC).
func (p *Pool) IsManual(s *Stub) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.manuals[s]
}

// ManualsCount reports how many stubs are currently unmanaged.
func (p *Pool) ManualsCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.manuals)
}

// Live calls fn once for every currently-allocated stub (free-listed
// stubs excluded), across every segment — the enumeration the garbage
// collector needs for its sweep phase.
func (p *Pool) Live(fn func(*Stub)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	freeSet := make(map[*Stub]bool, len(p.free))
	for _, s := range p.free {
		freeSet[s] = true
	}
	for _, seg := range p.segments {
		for _, s := range seg {
			if freeSet[s] {
				continue
			}
			if s.Header.Erased() && s.Flavor == FlavorNone {
				continue
			}
			fn(s)
		}
	}
}

// Stats is a human-readable snapshot of pool occupancy, grounded on the
// teacher's internal/memory/forensics.go report style.
type Stats struct {
	Segments  int
	Allocated int
	Freed     int
	Live      int
	Manuals   int
}

func (s Stats) String() string {
	return "stub pool: " + humanize.Comma(int64(s.Live)) + " live, " +
		humanize.Comma(int64(s.Manuals)) + " unmanaged, " +
		humanize.Comma(int64(s.Allocated)) + " total allocated, " +
		humanize.Comma(int64(s.Freed)) + " freed across " +
		humanize.Comma(int64(s.Segments)) + " segments"
}

// Stats reports current pool occupancy.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Segments:  len(p.segments),
		Allocated: p.allocated,
		Freed:     p.freed,
		Live:      p.allocated - p.freed,
		Manuals:   len(p.manuals),
	}
}

// DidFlexDataAlloc allocates s's out-of-line buffer with room for at
// least capacity elements, re-homing any existing inline content (§4.2
// "Did_Flex_Data_Alloc", §4.3 "Termination"). roundPow2 opts into
// power-of-two rounding so the freed size can later be recovered from the
// stub alone, per §4.2.
func DidFlexDataAlloc(s *Stub, capacity int, roundPow2 bool) error {
	if capacity < 0 {
		return errors.New("negative capacity")
	}
	rest := capacity
	if roundPow2 {
		rest = nextPow2(capacity)
	}

	buf := &Buffer{Rest: rest}
	if s.Flavor == FlavorString {
		buf.Bytes = make([]byte, 0, rest)
		if s.Header.Has(FlagDynamic) {
			buf.Bytes = append(buf.Bytes, s.Dyn.Bytes...)
		}
	} else {
		buf.Cells = make([]cell.Cell, 0, rest)
		if s.Header.Has(FlagDynamic) {
			buf.Cells = append(buf.Cells, s.Dyn.Cells...)
		} else if s.Inline.Kind() != 0 {
			buf.Cells = append(buf.Cells, s.Inline)
		}
	}
	s.Dyn = buf
	s.Header = s.Header.Set(FlagDynamic)
	return nil
}

func nextPow2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
