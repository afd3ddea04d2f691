// Package regengo is the public entry point to the pattern-tree-to-
// bytecode compiler. It compiles an already-parsed pattern tree into an
// immutable Program a backtracking matching engine can execute.
package regengo

import (
	"fmt"

	"github.com/KromDaniel/regengo/internal/builder"
	"github.com/KromDaniel/regengo/internal/codegen"
	"github.com/KromDaniel/regengo/internal/options"
	"github.com/KromDaniel/regengo/internal/pattern"
)

// CompileOptions configures one compilation.
type CompileOptions struct {
	// DisableOptimizations turns off ASCII fast paths, boundary-check
	// elision, and fast-quantify specialization, emitting only the
	// general lowering for every node.
	DisableOptimizations bool

	// Verbose logs codegen decisions (fast-quantify specializations,
	// character-class bitset conversions and consumeBy fallbacks, ASCII
	// quoted-literal runs) to standard error. Fast-quantify misses and
	// option-scope transitions are not logged.
	Verbose bool

	// Initial seeds the program's matching options before compilation
	// begins; a leading changeMatchingOptions node in the tree may still
	// widen it further.
	Initial options.Options
}

// Program is the compiled artifact: an immutable instruction sequence
// plus every static table a matching engine needs to execute it.
type Program = builder.Program

// Compile lowers tree into a Program under captures and opts. It is the
// sole public entry point to the compiler: there is no file format, no
// persistence, no CLI — the program is an in-memory value.
func Compile(tree pattern.Node, captures pattern.CaptureList, opts CompileOptions) (*Program, error) {
	b := builder.Acquire(opts.Initial, captures)
	defer builder.Release(b)

	optStack := options.NewStack(opts.Initial)
	gen := codegen.New(b, optStack, codegen.Config{
		DisableOptimizations: opts.DisableOptimizations,
		Verbose:              opts.Verbose,
	})

	if err := gen.EmitRoot(tree); err != nil {
		return nil, fmt.Errorf("regengo: compile: %w", err)
	}

	prog, err := b.Assemble()
	if err != nil {
		return nil, fmt.Errorf("regengo: assemble: %w", err)
	}
	return prog, nil
}
