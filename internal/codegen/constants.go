// Package codegen implements the Code Generator: the recursive lowering
// of pattern tree nodes to bytecode instructions, plus the optimization
// decisions it applies along the way (ASCII fast paths, boundary-check
// elision, fast-quantify specialization).
package codegen

import "fmt"

// StepSelectName is the label the disassembler uses for the instruction
// dispatch entry point.
const StepSelectName = "StepSelect"

// InstructionName returns the label name for an instruction.
func InstructionName(id uint32) string {
	return fmt.Sprintf("Ins%d", id)
}
