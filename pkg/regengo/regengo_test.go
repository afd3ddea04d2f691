package regengo

import (
	"testing"

	"github.com/KromDaniel/regengo/internal/instr"
	"github.com/KromDaniel/regengo/internal/pattern"
)

func opSeq(prog *Program) []instr.Opcode {
	ops := make([]instr.Opcode, len(prog.Instructions))
	for i, inst := range prog.Instructions {
		ops[i] = inst.Op()
	}
	return ops
}

func countOp(prog *Program, op instr.Opcode) int {
	n := 0
	for _, inst := range prog.Instructions {
		if inst.Op() == op {
			n++
		}
	}
	return n
}

// E1: `a` in grapheme mode with default options.
func TestE1SingleChar(t *testing.T) {
	tree := &pattern.Atom{Kind: pattern.AtomChar, Char: 'a'}

	prog, err := Compile(tree, pattern.CaptureList{}, CompileOptions{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	got := opSeq(prog)
	want := []instr.Opcode{instr.OpBeginCapture, instr.OpMatchScalar, instr.OpEndCapture, instr.OpAccept}
	if !equalOps(got, want) {
		t.Fatalf("opcodes = %v, want %v", got, want)
	}

	scalar, ci, bc := prog.Instructions[1].MatchScalarArgs()
	if scalar != 'a' || ci || !bc {
		t.Fatalf("matchScalar args = (%q,%v,%v), want ('a',false,true)", scalar, ci, bc)
	}
}

// E2: `(?i)A` in grapheme mode: a leading changeMatchingOptions becomes
// the program's initialOptions, and the body is case-insensitive.
func TestE2LeadingCaseInsensitiveOption(t *testing.T) {
	tree := &pattern.Concatenation{Children: []pattern.Node{
		&pattern.Atom{Kind: pattern.AtomChangeMatchingOptions, OptionChanges: []pattern.OptionChange{
			{Name: "caseInsensitive", Value: true},
		}},
		&pattern.Atom{Kind: pattern.AtomChar, Char: 'A'},
	}}

	prog, err := Compile(tree, pattern.CaptureList{}, CompileOptions{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	if !prog.InitialOptions.CaseInsensitive {
		t.Fatalf("initialOptions.caseInsensitive = false, want true")
	}

	var found bool
	for _, inst := range prog.Instructions {
		if inst.Op() == instr.OpMatchScalar {
			scalar, ci, bc := inst.MatchScalarArgs()
			if scalar != 'A' || !ci || !bc {
				t.Fatalf("matchScalar args = (%q,%v,%v), want ('A',true,true)", scalar, ci, bc)
			}
			found = true
		}
	}
	if !found {
		t.Fatal("no matchScalar instruction emitted")
	}
}

// E3: `a|b` emits exactly one save(next), one branch(done), and two
// matchScalar instructions.
func TestE3Alternation(t *testing.T) {
	tree := &pattern.OrderedChoice{Children: []pattern.Node{
		&pattern.Atom{Kind: pattern.AtomChar, Char: 'a'},
		&pattern.Atom{Kind: pattern.AtomChar, Char: 'b'},
	}}

	prog, err := Compile(tree, pattern.CaptureList{}, CompileOptions{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	if n := countOp(prog, instr.OpSave); n != 1 {
		t.Fatalf("save count = %d, want 1", n)
	}
	if n := countOp(prog, instr.OpBranch); n != 1 {
		t.Fatalf("branch count = %d, want 1", n)
	}
	if n := countOp(prog, instr.OpMatchScalar); n != 2 {
		t.Fatalf("matchScalar count = %d, want 2", n)
	}
}

// E4: `a*` eager fast-quantifies to a single quantify instruction.
func TestE4FastQuantifyStar(t *testing.T) {
	tree := &pattern.Quantification{
		Amount: pattern.Amount{Low: 0, High: nil},
		Kind:   pattern.QuantEager,
		Child:  &pattern.Atom{Kind: pattern.AtomChar, Char: 'a'},
	}

	prog, err := Compile(tree, pattern.CaptureList{}, CompileOptions{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	if n := countOp(prog, instr.OpQuantify); n != 1 {
		t.Fatalf("quantify count = %d, want 1", n)
	}
	if n := countOp(prog, instr.OpSplitSaving); n != 0 {
		t.Fatalf("splitSaving count = %d, want 0 (no general-loop scaffolding)", n)
	}

	var found bool
	for _, inst := range prog.Instructions {
		if inst.Op() == instr.OpQuantify {
			p := inst.QuantifyPayload()
			if p.Kind != instr.QuantifyEager || p.Variant != instr.BodyAsciiChar || p.MinTrips != 0 || p.ExtraTrips != instr.InfiniteTrips {
				t.Fatalf("quantify payload = %+v, want eager/ascii-char/min=0/extra=inf", p)
			}
			found = true
		}
	}
	if !found {
		t.Fatal("no quantify instruction found")
	}
}

// E5: `(?>a|b)` wraps the alternation in an atomic commit scaffold.
func TestE5AtomicGroup(t *testing.T) {
	tree := &pattern.NonCapturingGroup{
		Kind: pattern.GroupAtomicNonCapturing,
		Child: &pattern.OrderedChoice{Children: []pattern.Node{
			&pattern.Atom{Kind: pattern.AtomChar, Char: 'a'},
			&pattern.Atom{Kind: pattern.AtomChar, Char: 'b'},
		}},
	}

	prog, err := Compile(tree, pattern.CaptureList{}, CompileOptions{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	if n := countOp(prog, instr.OpSaveAddress); n != 1 {
		t.Fatalf("saveAddress count = %d, want 1", n)
	}
	// save: one for the atomic intercept, one for the alternation's choice point.
	if n := countOp(prog, instr.OpSave); n != 2 {
		t.Fatalf("save count = %d, want 2", n)
	}
	if n := countOp(prog, instr.OpClearThrough); n != 1 {
		t.Fatalf("clearThrough count = %d, want 1", n)
	}
	if n := countOp(prog, instr.OpClear); n != 1 {
		t.Fatalf("clear count = %d, want 1", n)
	}
	if n := countOp(prog, instr.OpFail); n != 2 {
		t.Fatalf("fail count = %d, want 2", n)
	}
}

// E6: `(.*?);` — a reluctant quantifier falls through to the general
// loop and its exit policy uses save(loopBody), not splitSaving.
func TestE6ReluctantGeneralLoop(t *testing.T) {
	tree := &pattern.Concatenation{Children: []pattern.Node{
		&pattern.Quantification{
			Amount: pattern.Amount{Low: 0, High: nil},
			Kind:   pattern.QuantReluctant,
			Child:  &pattern.Atom{Kind: pattern.AtomDot},
		},
		&pattern.Atom{Kind: pattern.AtomChar, Char: ';'},
	}}

	prog, err := Compile(tree, pattern.CaptureList{}, CompileOptions{})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	if n := countOp(prog, instr.OpQuantify); n != 0 {
		t.Fatalf("quantify count = %d, want 0 (reluctant never fast-quantifies)", n)
	}
	if n := countOp(prog, instr.OpSave); n != 1 {
		t.Fatalf("save count = %d, want 1 (the reluctant exit policy's save(loopBody))", n)
	}
}

func equalOps(a, b []instr.Opcode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
