package cell

import "github.com/kr/pretty"

// DebugString renders a structural dump of c for trace output and test
// failures. This is a debug aid, not the molder: §1 scopes the real
// scanner/molder out as an external collaborator, but an internal dump
// used only by this module's own diagnostics is not that.
func (c Cell) DebugString() string {
	return pretty.Sprint(struct {
		Kind    Kind
		Lift    LiftByte
		Flags   Flags
		Binding Node
	}{c.kind, c.lift, c.flags, c.binding})
}
