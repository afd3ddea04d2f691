// Package builder implements the Program Builder: emit operations for
// every instr.Opcode, forward-label bookkeeping via tokens and a fixup
// table, monotonic register allocation, interned tables, and the
// Assemble step that turns all of that into an immutable Program.
//
// One Builder is owned by one code generator for the duration of one
// compilation; Builders are never shared across threads.
package builder

import (
	"fmt"

	"github.com/KromDaniel/regengo/internal/instr"
	"github.com/KromDaniel/regengo/internal/options"
	"github.com/KromDaniel/regengo/internal/pattern"
)

// Token is a builder-local forward label: an index into the Builder's
// token table, resolved to a concrete instruction address at Assemble.
// Tokens are invalid after Assemble.
type Token int

type tokenEntry struct {
	resolved bool
	addr     uint32
}

type fixupKind int

const (
	fixupSingleAddr fixupKind = iota
	fixupSplitSaving
)

type fixupEntry struct {
	instIndex int
	kind      fixupKind
	a, b      Token
}

type pendingSymbolicRef struct {
	instIndex int
	id        int
}

// Builder accumulates instructions, registers, and interned values for
// one in-progress compilation.
type Builder struct {
	instructions []instr.Instruction

	tokens []tokenEntry
	fixups []fixupEntry

	emptySavePointToken *Token

	pendingSymbolicRefs      []pendingSymbolicRef
	referencedCaptureOffsets map[int]int

	nextIntReg     uint32
	nextBoolReg    uint32
	nextPosReg     uint32
	nextValueReg   uint32
	nextCaptureReg uint32

	elements  []any
	sequences []any

	strings    []string
	stringIdx  map[string]uint32
	consumeFns []ConsumeFn
	assertFns  []func(input []byte, pos int) bool
	transforms []TransformFn
	matchers   []MatcherFn

	captures       pattern.CaptureList
	initialOptions options.Options
}

// New creates a fresh Builder. initial becomes the program's
// initialOptions seed; the code generator mutates it further as it
// walks leading changeMatchingOptions nodes.
func New(initial options.Options, captures pattern.CaptureList) *Builder {
	return &Builder{
		referencedCaptureOffsets: make(map[int]int),
		stringIdx:                make(map[string]uint32),
		captures:                 captures,
		initialOptions:           initial,
	}
}

// Reset clears a Builder back to its zero-instruction state so it can be
// reused for another compilation (see pool.go). Register counters,
// tokens, and interned tables are all cleared.
func (b *Builder) Reset(initial options.Options, captures pattern.CaptureList) {
	b.instructions = b.instructions[:0]
	b.tokens = b.tokens[:0]
	b.fixups = b.fixups[:0]
	b.emptySavePointToken = nil
	b.pendingSymbolicRefs = b.pendingSymbolicRefs[:0]
	for k := range b.referencedCaptureOffsets {
		delete(b.referencedCaptureOffsets, k)
	}
	b.nextIntReg, b.nextBoolReg, b.nextPosReg, b.nextValueReg, b.nextCaptureReg = 0, 0, 0, 0, 0
	b.elements = b.elements[:0]
	b.sequences = b.sequences[:0]
	b.strings = b.strings[:0]
	for k := range b.stringIdx {
		delete(b.stringIdx, k)
	}
	b.consumeFns = b.consumeFns[:0]
	b.assertFns = b.assertFns[:0]
	b.transforms = b.transforms[:0]
	b.matchers = b.matchers[:0]
	b.captures = captures
	b.initialOptions = initial
}

// Captures returns the capture list the builder was constructed with, so
// the code generator can resolve named backreferences.
func (b *Builder) Captures() pattern.CaptureList { return b.captures }

// InitialOptions returns the builder's current initialOptions value (the
// code generator both reads and writes this as it processes leading
// changeMatchingOptions nodes).
func (b *Builder) InitialOptions() options.Options { return b.initialOptions }

// SetInitialOptions overwrites the builder's initialOptions value.
func (b *Builder) SetInitialOptions(o options.Options) { b.initialOptions = o }

// PC returns the address the next emitted instruction will occupy.
func (b *Builder) PC() uint32 { return uint32(len(b.instructions)) }

// MakeAddress allocates a forward label.
func (b *Builder) MakeAddress() Token {
	b.tokens = append(b.tokens, tokenEntry{})
	return Token(len(b.tokens) - 1)
}

// Label binds token to the address the next instruction will occupy.
func (b *Builder) Label(t Token) {
	b.tokens[t] = tokenEntry{resolved: true, addr: b.PC()}
}

// Fixup records that the most recently emitted instruction's address
// payload must be patched with to's resolved address at Assemble.
func (b *Builder) Fixup(to Token) {
	b.fixups = append(b.fixups, fixupEntry{instIndex: len(b.instructions) - 1, kind: fixupSingleAddr, a: to})
}

// FixupPair records a two-address patch (for splitSaving): to and saving.
func (b *Builder) FixupPair(to, saving Token) {
	b.fixups = append(b.fixups, fixupEntry{instIndex: len(b.instructions) - 1, kind: fixupSplitSaving, a: to, b: saving})
}

func (b *Builder) emit(i instr.Instruction) {
	b.instructions = append(b.instructions, i)
}

// --- register allocation (monotonic, no reuse) -----------------------------

func (b *Builder) AllocInt() uint32     { r := b.nextIntReg; b.nextIntReg++; return r }
func (b *Builder) AllocBool() uint32    { r := b.nextBoolReg; b.nextBoolReg++; return r }
func (b *Builder) AllocPos() uint32     { r := b.nextPosReg; b.nextPosReg++; return r }
func (b *Builder) AllocValue() uint32   { r := b.nextValueReg; b.nextValueReg++; return r }
func (b *Builder) AllocCapture() uint32 { r := b.nextCaptureReg; b.nextCaptureReg++; return r }

// --- intern tables -----------------------------------------------------------

func (b *Builder) InternElement(v any) uint32 {
	b.elements = append(b.elements, v)
	return uint32(len(b.elements) - 1)
}

func (b *Builder) InternSequence(v any) uint32 {
	b.sequences = append(b.sequences, v)
	return uint32(len(b.sequences) - 1)
}

func (b *Builder) InternString(s string) uint32 {
	if idx, ok := b.stringIdx[s]; ok {
		return idx
	}
	b.strings = append(b.strings, s)
	idx := uint32(len(b.strings) - 1)
	b.stringIdx[s] = idx
	return idx
}

func (b *Builder) InternConsumeFn(fn ConsumeFn) uint32 {
	b.consumeFns = append(b.consumeFns, fn)
	return uint32(len(b.consumeFns) - 1)
}

func (b *Builder) InternAssertionFn(fn func(input []byte, pos int) bool) uint32 {
	b.assertFns = append(b.assertFns, fn)
	return uint32(len(b.assertFns) - 1)
}

func (b *Builder) InternTransformFn(fn TransformFn) uint32 {
	b.transforms = append(b.transforms, fn)
	return uint32(len(b.transforms) - 1)
}

func (b *Builder) InternMatcherFn(fn MatcherFn) uint32 {
	b.matchers = append(b.matchers, fn)
	return uint32(len(b.matchers) - 1)
}

// --- capture / symbolic reference bookkeeping -------------------------------

// RecordCapture registers that the capture just emitted for refID (a
// Capture node's RefID) owns captureIndex, so Assemble can resolve
// symbolicReference(refID) against it, wherever in the tree that
// reference was emitted.
func (b *Builder) RecordCapture(refID int, captureIndex uint32) {
	b.referencedCaptureOffsets[refID] = int(captureIndex)
}

// BuildUnresolvedReference emits a backreference with a placeholder
// capture index and records (id -> instruction address) for Assemble to
// patch once every Capture node has been emitted.
func (b *Builder) BuildUnresolvedReference(id int) {
	b.emit(instr.NewBackreference(0))
	b.pendingSymbolicRefs = append(b.pendingSymbolicRefs, pendingSymbolicRef{instIndex: len(b.instructions) - 1, id: id})
}

// --- pushEmptySavePoint ------------------------------------------------------

// PushEmptySavePoint emits a saveAddress pointing at a lazily-created
// terminal fail instruction, materialized once per program at Assemble;
// it gives possessive quantifiers a ratchet point to clear on every
// iteration.
func (b *Builder) PushEmptySavePoint() {
	if b.emptySavePointToken == nil {
		t := b.MakeAddress()
		b.emptySavePointToken = &t
	}
	b.EmitSaveAddress(*b.emptySavePointToken)
}

// --- emit: control -----------------------------------------------------------

func (b *Builder) EmitBranch(target Token) {
	b.emit(instr.NewBranch(0))
	b.Fixup(target)
}

func (b *Builder) EmitCondBranchZeroElseDecrement(target Token, intReg uint32) {
	b.emit(instr.NewCondBranchZeroElseDecrement(0, intReg))
	b.Fixup(target)
}

func (b *Builder) EmitCondBranchSamePosition(target Token, posReg uint32) {
	b.emit(instr.NewCondBranchSamePosition(0, posReg))
	b.Fixup(target)
}

func (b *Builder) EmitNop()    { b.emit(instr.NewNop()) }
func (b *Builder) EmitAccept() { b.emit(instr.NewAccept()) }
func (b *Builder) EmitFail()   { b.emit(instr.NewFail()) }

// --- emit: save-point --------------------------------------------------------

func (b *Builder) EmitSave(target Token) {
	b.emit(instr.NewSave(0))
	b.Fixup(target)
}

func (b *Builder) EmitSaveAddress(target Token) {
	b.emit(instr.NewSaveAddress(0))
	b.Fixup(target)
}

func (b *Builder) EmitClear() { b.emit(instr.NewClear()) }

func (b *Builder) EmitClearThrough(target Token) {
	b.emit(instr.NewClearThrough(0))
	b.Fixup(target)
}

func (b *Builder) EmitSplitSaving(to, saving Token) {
	b.emit(instr.NewSplitSaving(0, 0))
	b.FixupPair(to, saving)
}

// --- emit: position ----------------------------------------------------------

func (b *Builder) EmitMoveCurrentPosition(posReg uint32) {
	b.emit(instr.NewMoveCurrentPosition(posReg))
}

func (b *Builder) EmitAdvance(n uint32) { b.emit(instr.NewAdvance(n)) }

// --- emit: match family -------------------------------------------------------

func (b *Builder) EmitMatch(elementReg uint32, caseInsensitive bool) {
	b.emit(instr.NewMatch(elementReg, caseInsensitive))
}

func (b *Builder) EmitMatchScalar(scalar rune, caseInsensitive, boundaryCheck bool) {
	b.emit(instr.NewMatchScalar(scalar, caseInsensitive, boundaryCheck))
}

func (b *Builder) EmitMatchBitset(bitsetReg uint32, isScalar bool) {
	b.emit(instr.NewMatchBitset(bitsetReg, isScalar))
}

func (b *Builder) EmitMatchBuiltin(class uint32, strictAscii, isScalar bool) {
	b.emit(instr.NewMatchBuiltin(class, strictAscii, isScalar))
}

func (b *Builder) EmitConsumeBy(fnReg uint32) { b.emit(instr.NewConsumeBy(fnReg)) }

// --- emit: assertion, matcher -------------------------------------------------

func (b *Builder) EmitAssertBy(p instr.AssertPayload) { b.emit(instr.NewAssertBy(p)) }

func (b *Builder) EmitMatchBy(matcherReg, valueReg uint32) {
	b.emit(instr.NewMatchBy(matcherReg, valueReg))
}

// --- emit: captures ------------------------------------------------------------

func (b *Builder) EmitBeginCapture(capReg uint32) { b.emit(instr.NewBeginCapture(capReg)) }
func (b *Builder) EmitEndCapture(capReg uint32)   { b.emit(instr.NewEndCapture(capReg)) }

func (b *Builder) EmitCaptureValue(valueReg, capReg uint32) {
	b.emit(instr.NewCaptureValue(valueReg, capReg))
}

func (b *Builder) EmitTransformCapture(capReg, transformReg uint32) {
	b.emit(instr.NewTransformCapture(capReg, transformReg))
}

func (b *Builder) EmitBackreference(capReg uint32) { b.emit(instr.NewBackreference(capReg)) }

// --- emit: quantify -------------------------------------------------------------

func (b *Builder) EmitQuantify(p instr.QuantifyPayload) { b.emit(instr.NewQuantify(p)) }

// --- assemble --------------------------------------------------------------

// Assemble resolves all fixups, patches payloads, emits the deferred
// fail sink if PushEmptySavePoint was ever called, and returns the
// immutable Program.
func (b *Builder) Assemble() (*Program, error) {
	if b.emptySavePointToken != nil {
		b.Label(*b.emptySavePointToken)
		b.EmitFail()
	}

	for _, ref := range b.pendingSymbolicRefs {
		idx, ok := b.referencedCaptureOffsets[ref.id]
		if !ok {
			return nil, &UncapturedReference{IDOrName: symbolicRefName(ref.id)}
		}
		b.instructions[ref.instIndex] = instr.NewBackreference(uint32(idx))
	}

	for _, fx := range b.fixups {
		if err := b.applyFixup(fx); err != nil {
			return nil, err
		}
	}

	return &Program{
		Instructions:             append([]instr.Instruction(nil), b.instructions...),
		Elements:                 append([]any(nil), b.elements...),
		Sequences:                append([]any(nil), b.sequences...),
		Strings:                  append([]string(nil), b.strings...),
		ConsumeFns:               append([]ConsumeFn(nil), b.consumeFns...),
		AssertionFns:             append([]func(input []byte, pos int) bool(nil), b.assertFns...),
		TransformFns:             append([]TransformFn(nil), b.transforms...),
		MatcherFns:               append([]MatcherFn(nil), b.matchers...),
		NumIntRegisters:          b.nextIntReg,
		NumBoolRegisters:         b.nextBoolReg,
		NumPosRegisters:          b.nextPosReg,
		NumValueRegisters:        b.nextValueReg,
		NumCaptureRegisters:      b.nextCaptureReg,
		Captures:                 b.captures,
		ReferencedCaptureOffsets: copyIntMap(b.referencedCaptureOffsets),
		InitialOptions:           b.initialOptions,
	}, nil
}

func (b *Builder) applyFixup(fx fixupEntry) error {
	resolve := func(t Token) (uint32, error) {
		entry := b.tokens[t]
		if !entry.resolved {
			return 0, &Unreachable{Diagnostic: "unresolved address token at assemble time"}
		}
		return entry.addr, nil
	}

	switch fx.kind {
	case fixupSplitSaving:
		to, err := resolve(fx.a)
		if err != nil {
			return err
		}
		saving, err := resolve(fx.b)
		if err != nil {
			return err
		}
		b.instructions[fx.instIndex] = instr.NewSplitSaving(to, saving)
		return nil

	default:
		addr, err := resolve(fx.a)
		if err != nil {
			return err
		}
		inst := b.instructions[fx.instIndex]
		switch inst.Op() {
		case instr.OpBranch:
			b.instructions[fx.instIndex] = instr.NewBranch(addr)
		case instr.OpSave:
			b.instructions[fx.instIndex] = instr.NewSave(addr)
		case instr.OpSaveAddress:
			b.instructions[fx.instIndex] = instr.NewSaveAddress(addr)
		case instr.OpClearThrough:
			b.instructions[fx.instIndex] = instr.NewClearThrough(addr)
		case instr.OpCondBranchZeroElseDecrement:
			_, reg := inst.CondBranchZeroElseDecrementArgs()
			b.instructions[fx.instIndex] = instr.NewCondBranchZeroElseDecrement(addr, reg)
		case instr.OpCondBranchSamePosition:
			_, reg := inst.CondBranchSamePositionArgs()
			b.instructions[fx.instIndex] = instr.NewCondBranchSamePosition(addr, reg)
		default:
			return &Unreachable{Diagnostic: "fixup recorded against an opcode with no address field: " + inst.Op().String()}
		}
		return nil
	}
}

func copyIntMap(m map[int]int) map[int]int {
	out := make(map[int]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func symbolicRefName(id int) string {
	return fmt.Sprintf("symbolicReference(%d)", id)
}
