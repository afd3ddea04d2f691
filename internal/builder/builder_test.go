package builder

import (
	"testing"

	"github.com/KromDaniel/regengo/internal/instr"
	"github.com/KromDaniel/regengo/internal/options"
	"github.com/KromDaniel/regengo/internal/pattern"
)

func newTestBuilder() *Builder {
	return New(options.Default(), pattern.CaptureList{Entries: []pattern.CaptureEntry{{Index: 0}}})
}

func TestForwardLabelFixup(t *testing.T) {
	b := newTestBuilder()

	done := b.MakeAddress()
	b.EmitBranch(done)
	b.EmitNop()
	b.Label(done)
	b.EmitAccept()

	prog, err := b.Assemble()
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	if got := prog.Instructions[0].BranchAddr(); got != 2 {
		t.Errorf("branch target = %d, want 2 (address of accept)", got)
	}
	if prog.Instructions[2].Op() != instr.OpAccept {
		t.Errorf("instruction 2 = %v, want accept", prog.Instructions[2].Op())
	}
}

func TestBackwardLabelFixup(t *testing.T) {
	b := newTestBuilder()

	loop := b.MakeAddress()
	b.Label(loop)
	b.EmitNop()
	b.EmitBranch(loop)

	prog, err := b.Assemble()
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if got := prog.Instructions[1].BranchAddr(); got != 0 {
		t.Errorf("backward branch target = %d, want 0", got)
	}
}

func TestSplitSavingFixup(t *testing.T) {
	b := newTestBuilder()

	loopBody := b.MakeAddress()
	exit := b.MakeAddress()

	b.Label(loopBody)
	b.EmitNop()
	b.EmitSplitSaving(loopBody, exit)
	b.Label(exit)
	b.EmitAccept()

	prog, err := b.Assemble()
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	to, saving := prog.Instructions[1].SplitSavingArgs()
	if to != 0 {
		t.Errorf("splitSaving.to = %d, want 0", to)
	}
	if saving != 2 {
		t.Errorf("splitSaving.saving = %d, want 2", saving)
	}
}

func TestAssembleFailsOnUnresolvedToken(t *testing.T) {
	b := newTestBuilder()
	dangling := b.MakeAddress()
	b.EmitBranch(dangling)

	_, err := b.Assemble()
	if err == nil {
		t.Fatal("expected Assemble to fail on an unresolved token")
	}
	if _, ok := err.(*Unreachable); !ok {
		t.Errorf("error = %T, want *Unreachable", err)
	}
}

func TestSymbolicReferenceResolution(t *testing.T) {
	b := newTestBuilder()

	capReg := b.AllocCapture()
	b.RecordCapture(7, capReg)
	b.BuildUnresolvedReference(7)

	prog, err := b.Assemble()
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if got := prog.Instructions[0].BackreferenceReg(); got != capReg {
		t.Errorf("backreference register = %d, want %d", got, capReg)
	}
	if prog.ReferencedCaptureOffsets[7] != int(capReg) {
		t.Errorf("ReferencedCaptureOffsets[7] = %d, want %d", prog.ReferencedCaptureOffsets[7], capReg)
	}
}

func TestSymbolicReferenceUnresolvedFails(t *testing.T) {
	b := newTestBuilder()
	b.BuildUnresolvedReference(42)

	_, err := b.Assemble()
	if err == nil {
		t.Fatal("expected Assemble to fail for an unresolved symbolic reference")
	}
	if _, ok := err.(*UncapturedReference); !ok {
		t.Errorf("error = %T, want *UncapturedReference", err)
	}
}

func TestPushEmptySavePointMaterializesOneSharedSink(t *testing.T) {
	b := newTestBuilder()

	b.PushEmptySavePoint()
	b.EmitNop()
	b.PushEmptySavePoint()

	prog, err := b.Assemble()
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	// Exactly one fail instruction should have been appended as the sink,
	// and both saveAddress instructions should point at it.
	sinkAddr := uint32(len(prog.Instructions) - 1)
	if prog.Instructions[sinkAddr].Op() != instr.OpFail {
		t.Fatalf("expected a trailing fail sink, got %v", prog.Instructions[sinkAddr].Op())
	}
	if got := prog.Instructions[0].SaveAddressAddr(); got != sinkAddr {
		t.Errorf("first saveAddress -> %d, want sink at %d", got, sinkAddr)
	}
	if got := prog.Instructions[2].SaveAddressAddr(); got != sinkAddr {
		t.Errorf("second saveAddress -> %d, want sink at %d", got, sinkAddr)
	}

	failCount := 0
	for _, inst := range prog.Instructions {
		if inst.Op() == instr.OpFail {
			failCount++
		}
	}
	if failCount != 1 {
		t.Errorf("expected exactly one fail sink instruction, found %d", failCount)
	}
}

func TestRegisterAllocationIsMonotonic(t *testing.T) {
	b := newTestBuilder()
	if r := b.AllocInt(); r != 0 {
		t.Fatalf("first AllocInt() = %d, want 0", r)
	}
	if r := b.AllocInt(); r != 1 {
		t.Fatalf("second AllocInt() = %d, want 1", r)
	}
	if r := b.AllocCapture(); r != 0 {
		t.Fatalf("first AllocCapture() = %d, want 0 (separate pool from int regs)", r)
	}
}

func TestInternStringDeduplicates(t *testing.T) {
	b := newTestBuilder()
	a := b.InternString("hello")
	c := b.InternString("world")
	d := b.InternString("hello")
	if a != d {
		t.Errorf("InternString did not dedupe identical strings: %d != %d", a, d)
	}
	if a == c {
		t.Errorf("InternString collapsed distinct strings")
	}
}

func TestBuilderReuseViaPool(t *testing.T) {
	b := Acquire(options.Default(), pattern.CaptureList{})
	b.EmitAccept()
	b.AllocInt()
	Release(b)

	b2 := Acquire(options.Default(), pattern.CaptureList{})
	if len(b2.instructions) != 0 {
		t.Errorf("Acquire after Release did not reset instructions")
	}
	if b2.nextIntReg != 0 {
		t.Errorf("Acquire after Release did not reset register counters")
	}
}
