package level

import (
	"renc/internal/cell"
	"renc/internal/feed"
)

// Executor is a level's dispatch function: re-entered by the trampoline
// every tick until it returns something other than Continue/Delegate
// (§4.6 "an executor function pointer with signature (Level*) -> Bounce").
type Executor func(lvl *Level) Bounce

// Level is one frame of stackless execution. State is a plain byte the
// executor re-reads on every re-entry to resume its own state machine
// (§4.7 "State machine... re-entry dispatches on the state byte") —
// Data carries whatever larger structure a particular executor needs
// beyond that single byte (the evaluator and action executors each
// define their own).
type Level struct {
	Executor Executor
	State    uint8
	Feed     *feed.Feed
	Data     any

	parent *Level
	tr     *Trampoline

	childResult cell.Cell
	haveChild   bool

	throwing   bool
	throwValue ThrowValue
}

// NewLevel constructs a level with the given executor and feed, ready to
// be pushed onto a Trampoline.
func NewLevel(executor Executor, f *feed.Feed) *Level {
	return &Level{Executor: executor, Feed: f}
}

// Parent returns the level that pushed this one, or nil for the
// outermost level of a trampoline run.
func (lvl *Level) Parent() *Level { return lvl.parent }

// ChildResult returns the output of the most recently completed child
// level, and whether one has completed since this level was last
// entered. The executor is responsible for consuming it (the flag is not
// cleared automatically, since a re-entrant state machine may need to
// read it across more than one of its own states).
func (lvl *Level) ChildResult() (cell.Cell, bool) { return lvl.childResult, lvl.haveChild }

// ClearChildResult resets the "a child just completed" flag once the
// executor has consumed ChildResult.
func (lvl *Level) ClearChildResult() { lvl.haveChild = false }

// Throwing reports whether this entry is part of a throw unwinding
// through this level, and the value being thrown, so the executor can
// release any holds before reporting Thrown or catching it (§4.6
// "Cancellation", §7 "Throw").
func (lvl *Level) Throwing() (ThrowValue, bool) { return lvl.throwValue, lvl.throwing }

// Push makes child a new top-of-stack level beneath lvl; pair with
// returning Continue (child runs, then lvl resumes and sees its result
// via ChildResult) or Delegate (lvl is popped immediately, and child's
// result instead goes straight to lvl's own parent).
func (lvl *Level) Push(child *Level) {
	child.parent = lvl
	lvl.tr.push(child)
}
