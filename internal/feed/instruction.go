package feed

// Instruction is the closed sum type for a variadic pointer that isn't a
// value at all, but a binding instruction to be processed in place (§4.5
// "Stub pointer -> may be an instruction... that is processed in place").
// This resolves Open Question 3 in favor of a formal enum over a raw
// tagged pointer: the variadic source's switch on an InstructionStub has
// one case per value below; any other value is skipped without effect.
type Instruction uint8

const (
	// ReleaseMe marks the instruction's Payload pointer for release via
	// the source's ReleaseFunc the moment it's processed, without ever
	// being surfaced as a value.
	ReleaseMe Instruction = iota
	// EvalMe forces the following pointer (carried in Payload) to be
	// evaluated rather than passed through literally, the variadic
	// equivalent of inserting a GROUP!.
	EvalMe
	// Splice names another Feed (carried in Payload) to take over once
	// the current source is exhausted.
	Splice
)

func (i Instruction) String() string {
	switch i {
	case ReleaseMe:
		return "release-me"
	case EvalMe:
		return "eval-me"
	case Splice:
		return "splice"
	default:
		return "invalid-instruction"
	}
}

// InstructionStub is what a variadic pointer decodes to when it names an
// instruction instead of a value (§4.5's "Stub pointer" case).
type InstructionStub struct {
	Instruction Instruction
	Payload     any
}

// EndSentinel is the variadic end-of-stream marker (§4.5 "End-sentinel
// pointer -> stream ends"), distinct from a C null so the two can't be
// confused.
type EndSentinel struct{}
