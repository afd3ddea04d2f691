package codegen

import (
	"testing"

	"github.com/KromDaniel/regengo/internal/builder"
	"github.com/KromDaniel/regengo/internal/instr"
	"github.com/KromDaniel/regengo/internal/options"
	"github.com/KromDaniel/regengo/internal/pattern"
)

func newTestGenerator() (*Generator, *builder.Builder) {
	b := builder.New(options.Default(), pattern.CaptureList{})
	g := New(b, options.NewStack(options.Default()), Config{})
	return g, b
}

func TestEmitRootWrapsAndAccepts(t *testing.T) {
	g, b := newTestGenerator()
	if err := g.EmitRoot(&pattern.Atom{Kind: pattern.AtomChar, Char: 'x'}); err != nil {
		t.Fatalf("EmitRoot: %v", err)
	}
	prog, err := b.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if prog.Instructions[0].Op() != instr.OpBeginCapture {
		t.Fatalf("first instruction = %v, want beginCapture", prog.Instructions[0].Op())
	}
	last := prog.Instructions[len(prog.Instructions)-1]
	if last.Op() != instr.OpAccept {
		t.Fatalf("last instruction = %v, want accept", last.Op())
	}
}

func TestOptionScopingDoesNotLeak(t *testing.T) {
	g, b := newTestGenerator()
	tree := &pattern.Concatenation{Children: []pattern.Node{
		&pattern.NonCapturingGroup{
			Kind: pattern.GroupChangeMatchingOptions,
			OptionChanges: []pattern.OptionChange{
				{Name: "caseInsensitive", Value: true},
			},
			Child: &pattern.Atom{Kind: pattern.AtomChar, Char: 'a'},
		},
		&pattern.Atom{Kind: pattern.AtomChar, Char: 'b'},
	}}
	if err := g.EmitRoot(tree); err != nil {
		t.Fatalf("EmitRoot: %v", err)
	}
	if g.opts.Top().CaseInsensitive {
		t.Fatal("caseInsensitive leaked past the group that introduced it")
	}
	_, err := b.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
}

func TestInitialOptionsGatedByMatchableAtom(t *testing.T) {
	g, b := newTestGenerator()
	tree := &pattern.Concatenation{Children: []pattern.Node{
		&pattern.Atom{Kind: pattern.AtomChar, Char: 'a'},
		&pattern.Atom{Kind: pattern.AtomChangeMatchingOptions, OptionChanges: []pattern.OptionChange{
			{Name: "caseInsensitive", Value: true},
		}},
	}}
	if err := g.EmitRoot(tree); err != nil {
		t.Fatalf("EmitRoot: %v", err)
	}
	if b.InitialOptions().CaseInsensitive {
		t.Fatal("a changeMatchingOptions node after a matchable atom must not affect initialOptions")
	}
}

func TestSymbolicReferenceResolution(t *testing.T) {
	g, b := newTestGenerator()
	refID := 7
	tree := &pattern.Concatenation{Children: []pattern.Node{
		&pattern.Capture{RefID: &refID, Child: &pattern.Atom{Kind: pattern.AtomChar, Char: 'a'}},
		&pattern.Atom{Kind: pattern.AtomSymbolicReference, SymRef: refID},
	}}
	if err := g.EmitRoot(tree); err != nil {
		t.Fatalf("EmitRoot: %v", err)
	}
	prog, err := b.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	idx, ok := prog.ReferencedCaptureOffsets[refID]
	if !ok {
		t.Fatal("referencedCaptureOffsets missing entry for refID")
	}

	var sawBackref bool
	for _, inst := range prog.Instructions {
		if inst.Op() == instr.OpBackreference {
			if int(inst.BackreferenceReg()) != idx {
				t.Fatalf("backreference capture index = %d, want %d", inst.BackreferenceReg(), idx)
			}
			sawBackref = true
		}
	}
	if !sawBackref {
		t.Fatal("no backreference instruction emitted")
	}
}

func TestSymbolicReferenceUnresolvedFails(t *testing.T) {
	g, b := newTestGenerator()
	if err := g.EmitRoot(&pattern.Atom{Kind: pattern.AtomSymbolicReference, SymRef: 99}); err != nil {
		t.Fatalf("EmitRoot: %v", err)
	}
	_, err := b.Assemble()
	if _, ok := err.(*builder.UncapturedReference); !ok {
		t.Fatalf("Assemble error = %v (%T), want *builder.UncapturedReference", err, err)
	}
}

func TestUnsupportedLookbehindFails(t *testing.T) {
	g, _ := newTestGenerator()
	err := g.EmitRoot(&pattern.NonCapturingGroup{
		Kind:  pattern.GroupLookbehind,
		Child: &pattern.Atom{Kind: pattern.AtomChar, Char: 'a'},
	})
	if _, ok := err.(*builder.Unsupported); !ok {
		t.Fatalf("EmitRoot error = %v (%T), want *builder.Unsupported", err, err)
	}
}

func TestQuantificationZeroZeroIsNoOp(t *testing.T) {
	g, b := newTestGenerator()
	high := 0
	if err := g.EmitRoot(&pattern.Quantification{
		Amount: pattern.Amount{Low: 0, High: &high},
		Kind:   pattern.QuantEager,
		Child:  &pattern.Atom{Kind: pattern.AtomChar, Char: 'a'},
	}); err != nil {
		t.Fatalf("EmitRoot: %v", err)
	}
	prog, err := b.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	// Only the root capture's beginCapture/endCapture plus accept: no
	// instructions for the quantifier's body at all.
	if len(prog.Instructions) != 3 {
		t.Fatalf("instruction count = %d, want 3 (beginCapture, endCapture, accept)", len(prog.Instructions))
	}
}

func TestQuantificationLowGreaterThanHighIsNoOp(t *testing.T) {
	g, b := newTestGenerator()
	high := 1
	if err := g.EmitRoot(&pattern.Quantification{
		Amount: pattern.Amount{Low: 3, High: &high},
		Kind:   pattern.QuantEager,
		Child:  &pattern.Atom{Kind: pattern.AtomChar, Char: 'a'},
	}); err != nil {
		t.Fatalf("EmitRoot: %v", err)
	}
	prog, err := b.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(prog.Instructions) != 3 {
		t.Fatalf("instruction count = %d, want 3", len(prog.Instructions))
	}
}
