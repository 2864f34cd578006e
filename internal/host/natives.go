package host

import (
	"strconv"

	"renc/internal/action"
	"renc/internal/cell"
	"renc/internal/flex"
	"renc/internal/level"
	"renc/internal/rcerr"
	"renc/internal/stub"
	"renc/internal/symbol"
)

// Sink is the "string-output sink" §1 names as PRINT's only external
// collaborator — deliberately narrower than a full molder, which stays
// out of scope.
type Sink interface {
	WriteLine(s string)
}

func intParam(syms *symbol.Table, name string) flex.Param {
	return flex.Param{
		Symbol: syms.Intern(name),
		Class:  flex.ParamNormal,
		Types:  flex.TypeSetOf(cell.KindInteger),
	}
}

func intArg(lvl *level.Level, i int) int64 {
	return int64(action.Frame(lvl).Var(i).Slot0().Bits())
}

func intResult(n int64) cell.Cell {
	return cell.New(cell.KindInteger, uint64(n), 0)
}

// DemoCollator is the Go rendering of the "couple of trivial demo
// natives" §14's Non-goals allows through the dispatcher contract:
// `add`, `negate`, and `print` by name, plus the enfixed `+`/`*`/`-`/`/`
// arithmetic operators the left-to-right, no-precedence evaluation
// property (§8 scenario 1: `1 + 2 * 3` = 9) has to exercise — the
// Non-goals' three named natives are illustrative, not an exhaustive
// allowlist, and scenario 1 cannot be demonstrated without a bound `+`
// and `*`. sink backs PRINT's output.
func DemoCollator(sink Sink) Collator {
	return func(api *API) error {
		natives := []struct {
			name  string
			act   *flex.Action
			enfix bool
		}{
			{"add", addAction(api.Pool, api.Syms), false},
			{"negate", negateAction(api.Pool, api.Syms), false},
			{"print", printAction(api.Pool, api.Syms, sink), false},
			{"+", arithAction(api.Pool, api.Syms, func(a, b int64) int64 { return a + b }), true},
			{"-", arithAction(api.Pool, api.Syms, func(a, b int64) int64 { return a - b }), true},
			{"*", arithAction(api.Pool, api.Syms, func(a, b int64) int64 { return a * b }), true},
			{"/", arithAction(api.Pool, api.Syms, func(a, b int64) int64 { return a / b }), true},
		}
		for _, n := range natives {
			n.act.SetEnfix(n.enfix)
			if err := api.Define(n.name, flex.NewActionCell(n.act)); err != nil {
				return rcerr.Wrap(err, "define native "+n.name)
			}
		}
		return nil
	}
}

func addAction(pool *stub.Pool, syms *symbol.Table) *flex.Action {
	params := []flex.Param{intParam(syms, "a"), intParam(syms, "b")}
	dispatcher := action.Dispatcher(func(lvl *level.Level) level.Bounce {
		return level.Completed(intResult(intArg(lvl, 0) + intArg(lvl, 1)))
	})
	return flex.NewAction(pool, params, dispatcher, nil)
}

func negateAction(pool *stub.Pool, syms *symbol.Table) *flex.Action {
	params := []flex.Param{intParam(syms, "n")}
	dispatcher := action.Dispatcher(func(lvl *level.Level) level.Bounce {
		return level.Completed(intResult(-intArg(lvl, 0)))
	})
	return flex.NewAction(pool, params, dispatcher, nil)
}

func arithAction(pool *stub.Pool, syms *symbol.Table, fn func(a, b int64) int64) *flex.Action {
	params := []flex.Param{intParam(syms, "a"), intParam(syms, "b")}
	dispatcher := action.Dispatcher(func(lvl *level.Level) level.Bounce {
		return level.Completed(intResult(fn(intArg(lvl, 0), intArg(lvl, 1))))
	})
	return flex.NewAction(pool, params, dispatcher, nil)
}

// printAction accepts anything and writes a minimal debug rendering of it
// to sink — a demo convenience, not the molder.
func printAction(pool *stub.Pool, syms *symbol.Table, sink Sink) *flex.Action {
	params := []flex.Param{{Symbol: syms.Intern("value"), Class: flex.ParamNormal}}
	dispatcher := action.Dispatcher(func(lvl *level.Level) level.Bounce {
		v := *action.Frame(lvl).Var(0)
		sink.WriteLine(DebugRender(v))
		return level.Completed(v)
	})
	return flex.NewAction(pool, params, dispatcher, nil)
}

// DebugRender is a deliberately small, non-molder rendering covering just
// the kinds the demo natives produce: integers, logic, and words.
func DebugRender(v cell.Cell) string {
	switch v.Kind() {
	case cell.KindInteger:
		return strconv.FormatInt(int64(v.Slot0().Bits()), 10)
	case cell.KindLogic:
		if v.Slot0().Bits() != 0 {
			return "true"
		}
		return "false"
	case cell.KindWord:
		if sym, ok := v.Slot0().Node().(*symbol.Symbol); ok {
			return sym.Text()
		}
		return "word!"
	default:
		return v.Kind().String()
	}
}
