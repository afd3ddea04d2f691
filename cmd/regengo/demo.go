package main

import (
	"github.com/KromDaniel/regengo/internal/builder"
	"github.com/KromDaniel/regengo/pkg/regengo"

	"github.com/KromDaniel/regengo/internal/pattern"
)

// demoProgram compiles a small, fixed tree (`a*`) so the disassembler
// has something to render without needing a surface parser, which is
// explicitly out of scope for this backend.
func demoProgram(verbose bool) *builder.Program {
	tree := &pattern.Quantification{
		Amount: pattern.Amount{Low: 0, High: nil},
		Kind:   pattern.QuantEager,
		Child:  &pattern.Atom{Kind: pattern.AtomChar, Char: 'a'},
	}

	prog, err := regengo.Compile(tree, pattern.CaptureList{}, regengo.CompileOptions{Verbose: verbose})
	if err != nil {
		panic(err)
	}
	return prog
}
