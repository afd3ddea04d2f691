// Command regengo disassembles a compiled Program into annotated
// pseudo-Go, printed to stdout. It exists purely as a development aid
// outside the library boundary: the compiler itself has no file
// format, no persistence, and no CLI, since the program it produces
// is an in-memory value.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/dave/jennifer/jen"

	"github.com/KromDaniel/regengo/internal/builder"
	"github.com/KromDaniel/regengo/internal/codegen"
	"github.com/KromDaniel/regengo/internal/instr"
)

func main() {
	pattern := flag.String("pattern", "", "unused placeholder: this tool disassembles Programs built in-process, not regex source")
	verbose := flag.Bool("verbose", false, "log codegen decisions while compiling the demo program")
	flag.Parse()
	_ = pattern

	prog := demoProgram(*verbose)
	f := Disassemble(prog)
	if err := f.Render(os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "regengo-disasm:", err)
		os.Exit(1)
	}
}

// Disassemble renders prog as a jennifer file of annotated pseudo-Go:
// one commented goto-label block per instruction, using the same
// InstructionName/StepSelectName conventions internal/codegen names its
// own generated addresses with.
func Disassemble(prog *builder.Program) *jen.File {
	f := jen.NewFile("disasm")
	f.HeaderComment("Code generated by the regengo disassembler dev tool. DO NOT hand-edit.")

	body := []jen.Code{
		jen.Id(codegen.StepSelectName).Op(":"),
	}
	for i, inst := range prog.Instructions {
		body = append(body, instructionBlock(uint32(i), inst)...)
	}

	f.Func().Id("Disassembly").Params().Block(body...)
	return f
}

func instructionBlock(id uint32, inst instr.Instruction) []jen.Code {
	label := jen.Id(codegen.InstructionName(id)).Op(":")
	return []jen.Code{
		label,
		jen.Comment(describeInstruction(inst)),
	}
}

// describeInstruction decodes one instruction into a human-readable
// line, the disassembler's entire reason for existing.
func describeInstruction(inst instr.Instruction) string {
	switch inst.Op() {
	case instr.OpBranch:
		return fmt.Sprintf("branch -> %s", codegen.InstructionName(inst.BranchAddr()))
	case instr.OpCondBranchZeroElseDecrement:
		addr, reg := inst.CondBranchZeroElseDecrementArgs()
		return fmt.Sprintf("condBranchZeroElseDecrement(int#%d) -> %s", reg, codegen.InstructionName(addr))
	case instr.OpCondBranchSamePosition:
		addr, reg := inst.CondBranchSamePositionArgs()
		return fmt.Sprintf("condBranchSamePosition(pos#%d) -> %s", reg, codegen.InstructionName(addr))
	case instr.OpNop:
		return "nop"
	case instr.OpAccept:
		return "accept"
	case instr.OpFail:
		return "fail"
	case instr.OpSave:
		return fmt.Sprintf("save -> %s", codegen.InstructionName(inst.SaveAddr()))
	case instr.OpSaveAddress:
		return fmt.Sprintf("saveAddress -> %s", codegen.InstructionName(inst.SaveAddressAddr()))
	case instr.OpClear:
		return "clear"
	case instr.OpClearThrough:
		return fmt.Sprintf("clearThrough -> %s", codegen.InstructionName(inst.ClearThroughAddr()))
	case instr.OpSplitSaving:
		to, saving := inst.SplitSavingArgs()
		return fmt.Sprintf("splitSaving(to=%s, saving=%s)", codegen.InstructionName(to), codegen.InstructionName(saving))
	case instr.OpMoveCurrentPosition:
		return fmt.Sprintf("movePosition -> pos#%d", inst.MoveCurrentPositionReg())
	case instr.OpAdvance:
		return fmt.Sprintf("advance(%d)", inst.AdvanceN())
	case instr.OpMatch:
		reg, ci := inst.MatchArgs()
		return fmt.Sprintf("match(element#%d, ci=%v)", reg, ci)
	case instr.OpMatchScalar:
		scalar, ci, bc := inst.MatchScalarArgs()
		return fmt.Sprintf("matchScalar(%q, ci=%v, bc=%v)", scalar, ci, bc)
	case instr.OpMatchBitset:
		reg, isScalar := inst.MatchBitsetArgs()
		return fmt.Sprintf("matchBitset(bitset#%d, scalar=%v)", reg, isScalar)
	case instr.OpMatchBuiltin:
		class, strict, isScalar := inst.MatchBuiltinArgs()
		return fmt.Sprintf("matchBuiltin(class#%d, strictAscii=%v, scalar=%v)", class, strict, isScalar)
	case instr.OpConsumeBy:
		return fmt.Sprintf("consumeBy(fn#%d)", inst.ConsumeByReg())
	case instr.OpAssertBy:
		p := inst.AssertByPayload()
		return fmt.Sprintf("assertBy(kind=%d, anchorsNL=%v, simpleBounds=%v, asciiWord=%v, scalar=%v)",
			p.Kind, p.AnchorsMatchNewlines, p.SimpleUnicodeBoundaries, p.ASCIIWord, p.ScalarSemantics)
	case instr.OpMatchBy:
		matcherReg, valueReg := inst.MatchByArgs()
		return fmt.Sprintf("matchBy(matcher#%d) -> value#%d", matcherReg, valueReg)
	case instr.OpBeginCapture:
		return fmt.Sprintf("beginCapture(capture#%d)", inst.BeginCaptureReg())
	case instr.OpEndCapture:
		return fmt.Sprintf("endCapture(capture#%d)", inst.EndCaptureReg())
	case instr.OpCaptureValue:
		valueReg, capReg := inst.CaptureValueArgs()
		return fmt.Sprintf("captureValue(value#%d -> capture#%d)", valueReg, capReg)
	case instr.OpTransformCapture:
		capReg, transformReg := inst.TransformCaptureArgs()
		return fmt.Sprintf("transformCapture(capture#%d, transform#%d)", capReg, transformReg)
	case instr.OpBackreference:
		return fmt.Sprintf("backreference(capture#%d)", inst.BackreferenceReg())
	case instr.OpQuantify:
		p := inst.QuantifyPayload()
		return fmt.Sprintf("quantify(kind=%v, variant=%v, min=%d, extra=%d, bodyData=%d)",
			p.Kind, p.Variant, p.MinTrips, p.ExtraTrips, p.BodyData)
	default:
		return fmt.Sprintf("<unknown opcode %v>", inst.Op())
	}
}
