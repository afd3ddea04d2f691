package builder

import (
	"github.com/KromDaniel/regengo/internal/instr"
	"github.com/KromDaniel/regengo/internal/options"
	"github.com/KromDaniel/regengo/internal/pattern"
)

// ConsumeFn is an interned closure a consumeBy instruction invokes: it
// either advances past one unit of input and reports ok, or reports !ok.
type ConsumeFn func(input []byte, pos int) (next int, ok bool)

// MatcherFn is an interned closure a matchBy instruction invokes.
type MatcherFn func(input []byte, pos int) (consumed int, value any, ok bool)

// TransformFn is an interned post-capture transform.
type TransformFn func(value any) (any, error)

// Program is the immutable bundle produced by Assemble. Once returned
// it may be shared freely and concurrently among matching engines.
type Program struct {
	Instructions []instr.Instruction

	Elements  []any
	Sequences []any
	Strings   []string

	ConsumeFns   []ConsumeFn
	AssertionFns []func(input []byte, pos int) bool
	TransformFns []TransformFn
	MatcherFns   []MatcherFn

	NumIntRegisters     uint32
	NumBoolRegisters    uint32
	NumPosRegisters     uint32
	NumValueRegisters   uint32
	NumCaptureRegisters uint32

	Captures                 pattern.CaptureList
	ReferencedCaptureOffsets map[int]int

	InitialOptions options.Options
}
