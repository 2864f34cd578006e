package instance

import "renc/internal/level"

// Debugger is a thin facade over an Instance's trampoline for arming
// tick-accurate breakpoints (§4.6, §8 scenario 5: "reproducible
// breakpoint currency" — the same source evaluated twice against a fresh
// Instance stops at the same tick every time, since tick count is purely
// a function of executor re-entries, not wall-clock time).
type Debugger struct {
	tr *level.Trampoline
}

// BreakAtTick arms a one-shot break at tick t.
func (d *Debugger) BreakAtTick(t uint64) { d.tr.BreakAtTick(t) }

// OnBreak installs the callback invoked when an armed tick is reached.
func (d *Debugger) OnBreak(fn level.BreakHook) { d.tr.OnBreak(fn) }

// Tick reports the trampoline's current tick count.
func (d *Debugger) Tick() uint64 { return d.tr.Tick() }

// Depth reports how many levels are currently on the trampoline's stack.
func (d *Debugger) Depth() int { return d.tr.Depth() }
