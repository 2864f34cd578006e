package instance

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"renc/internal/action"
	"renc/internal/cell"
	"renc/internal/feed"
	"renc/internal/flex"
	"renc/internal/gc"
	"renc/internal/level"
	"renc/internal/rcerr"
	"renc/internal/stub"
	"renc/internal/symbol"
)

// MaxConcurrent bounds how many Instances may be alive in this process
// at once (§5: "a host may run multiple trampolines... provided each has
// its own pools" — the cap is on headcount, not on any shared state,
// since every Instance already owns its pool, GC, and trampoline
// outright).
const MaxConcurrent = 64

var instanceLimit = semaphore.NewWeighted(MaxConcurrent)

// Instance is one interpreter: its own stub pool, symbol table, GC
// collector, root context, and the single long-lived trampoline that
// every expression evaluated against it runs on (so tick counts and
// armed breakpoints persist naturally across a REPL session).
type Instance struct {
	ID uuid.UUID

	Pool *stub.Pool
	Syms *symbol.Table
	GC   *gc.Collector

	Holds  *gc.HoldTable
	Guards *gc.GuardStack

	kw   action.Keywords
	root *flex.Context

	tr  *level.Trampoline
	dbg *Debugger

	mu sync.Mutex
}

// New acquires a slot against MaxConcurrent and builds a ready-to-use
// Instance. Close must be called to release that slot.
func New(opts ...Option) (*Instance, error) {
	if err := instanceLimit.Acquire(context.Background(), 1); err != nil {
		return nil, rcerr.Wrap(err, "acquire instance slot")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	pool := stub.NewPool(cfg.poolSegmentSize)
	syms := symbol.NewTable(pool)
	collector := gc.NewCollector(pool)
	collector.SetTrace(cfg.gcTrace)
	holds := gc.NewHoldTable()
	guards := gc.NewGuardStack()

	kw := action.Keywords{Null: syms.Intern("null"), Okay: syms.Intern("okay")}
	kl := flex.NewKeylist(pool, nil)
	root := flex.NewContext(pool, 0, kl)
	collector.SetRootContext(root)
	collector.RegisterRootProvider(guards)
	collector.RegisterRootProvider(syms)

	tr := level.NewTrampoline()
	if cfg.cancel != nil {
		tr.SetCancel(cfg.cancel)
	}
	if cfg.levelTrace != nil {
		tr.SetTrace(cfg.levelTrace)
	}
	collector.RegisterRootProvider(tr)

	in := &Instance{
		ID:     uuid.New(),
		Pool:   pool,
		Syms:   syms,
		GC:     collector,
		Holds:  holds,
		Guards: guards,
		kw:     kw,
		root:   root,
		tr:     tr,
	}
	in.dbg = &Debugger{tr: tr}
	return in, nil
}

// Close releases this Instance's slot against MaxConcurrent. An Instance
// must not be used again afterward.
func (in *Instance) Close() error {
	instanceLimit.Release(1)
	return nil
}

// Root returns the instance's global context, the binding every
// top-level expression evaluates against.
func (in *Instance) Root() *flex.Context { return in.root }

// Keywords returns the antiform "null"/"okay" symbols this instance's
// evaluator was built with.
func (in *Instance) Keywords() action.Keywords { return in.kw }

// Debugger returns the facade for arming tick-accurate breakpoints on
// this instance's trampoline (§4.6, §8 scenario 5).
func (in *Instance) Debugger() *Debugger { return in.dbg }

// Define binds name in the root context to v, growing the context (and
// its keylist) by one slot if name is not already bound there. This is
// the mechanism a Collator uses to install a native, the Go analogue of
// the collator contract populating an extension's word table.
func (in *Instance) Define(name string, v cell.Cell) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	sym := in.Syms.Intern(name)
	kl := in.root.Keysource().(*flex.Keylist)
	if idx := kl.IndexOf(sym); idx >= 0 {
		*in.root.Var(idx) = v
		return nil
	}
	keyArr := flex.Array{Stub: kl.UnderlyingStub()}
	if err := keyArr.Append(cell.NewNode(cell.KindWord, sym)); err != nil {
		return rcerr.Wrap(err, "grow root keylist")
	}
	rootArr := flex.Array{Stub: in.root.UnderlyingStub()}
	if err := rootArr.Append(v); err != nil {
		return rcerr.Wrap(err, "grow root context")
	}
	return nil
}

// Lookup resolves name in the root context.
func (in *Instance) Lookup(name string) (cell.Cell, bool) {
	sym := in.Syms.Canon(name)
	if sym == nil {
		return cell.Cell{}, false
	}
	v, ok := flex.Lookup(in.root, sym)
	if !ok {
		return cell.Cell{}, false
	}
	return *v, true
}

// Eval runs arr to completion as one top-level expression, bound to the
// root context, on this instance's trampoline.
func (in *Instance) Eval(arr *flex.Array) (cell.Cell, error) {
	f := feed.NewArrayFeed(in.Holds, arr, 0, in.root)
	lvl := action.NewEvaluatorLevel(in.Pool, in.kw, action.NewDataStack(), f)
	in.tr.Push(lvl)
	out, err := in.tr.Run()
	if err != nil {
		return cell.Cell{}, err
	}
	return out, nil
}

// Collect runs one GC cycle over this instance's pool.
func (in *Instance) Collect() gc.Stats { return in.GC.Collect() }

// Stats reports current pool occupancy.
func (in *Instance) Stats() stub.Stats { return in.Pool.Stats() }
