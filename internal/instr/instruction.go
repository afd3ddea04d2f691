package instr

// Instruction is a single 64-bit bytecode word: an 8-bit encoded opcode
// followed by a 56-bit opcode-specific payload.
type Instruction uint64

const payloadBits = 56
const payloadMask = (uint64(1) << payloadBits) - 1

// Encode packs an Opcode and a raw 56-bit payload into one word.
func Encode(op Opcode, payload uint64) Instruction {
	return Instruction(uint64(EncodeOpcode(op))<<payloadBits | (payload & payloadMask))
}

// Op decodes the instruction's opcode.
func (i Instruction) Op() Opcode {
	return DecodeOpcode(uint8(uint64(i) >> payloadBits))
}

// Payload returns the raw 56-bit payload.
func (i Instruction) Payload() uint64 {
	return uint64(i) & payloadMask
}

// --- payload packing helpers -----------------------------------------

func pack1x32(a uint32) uint64 {
	return uint64(a)
}

func pack32and24(addr uint32, reg uint32) uint64 {
	return uint64(addr) | uint64(reg&0xffffff)<<32
}

func unpack32and24(p uint64) (addr uint32, reg uint32) {
	return uint32(p & 0xffffffff), uint32((p >> 32) & 0xffffff)
}

func pack2x28(a, b uint32) uint64 {
	return uint64(a&0xfffffff) | uint64(b&0xfffffff)<<28
}

func unpack2x28(p uint64) (a, b uint32) {
	return uint32(p & 0xfffffff), uint32((p >> 28) & 0xfffffff)
}

// --- control -----------------------------------------------------------

func NewBranch(addr uint32) Instruction { return Encode(OpBranch, pack1x32(addr)) }

func (i Instruction) BranchAddr() uint32 { return uint32(i.Payload()) }

func NewCondBranchZeroElseDecrement(addr, intReg uint32) Instruction {
	return Encode(OpCondBranchZeroElseDecrement, pack32and24(addr, intReg))
}

func (i Instruction) CondBranchZeroElseDecrementArgs() (addr, intReg uint32) {
	return unpack32and24(i.Payload())
}

func NewCondBranchSamePosition(addr, posReg uint32) Instruction {
	return Encode(OpCondBranchSamePosition, pack32and24(addr, posReg))
}

func (i Instruction) CondBranchSamePositionArgs() (addr, posReg uint32) {
	return unpack32and24(i.Payload())
}

func NewNop() Instruction    { return Encode(OpNop, 0) }
func NewAccept() Instruction { return Encode(OpAccept, 0) }
func NewFail() Instruction   { return Encode(OpFail, 0) }

// --- save-point ----------------------------------------------------------

func NewSave(addr uint32) Instruction        { return Encode(OpSave, pack1x32(addr)) }
func (i Instruction) SaveAddr() uint32       { return uint32(i.Payload()) }
func NewSaveAddress(addr uint32) Instruction { return Encode(OpSaveAddress, pack1x32(addr)) }
func (i Instruction) SaveAddressAddr() uint32 { return uint32(i.Payload()) }
func NewClear() Instruction { return Encode(OpClear, 0) }

func NewClearThrough(addr uint32) Instruction { return Encode(OpClearThrough, pack1x32(addr)) }
func (i Instruction) ClearThroughAddr() uint32 { return uint32(i.Payload()) }

func NewSplitSaving(to, saving uint32) Instruction {
	return Encode(OpSplitSaving, pack2x28(to, saving))
}

func (i Instruction) SplitSavingArgs() (to, saving uint32) {
	return unpack2x28(i.Payload())
}

// --- position ------------------------------------------------------------

func NewMoveCurrentPosition(posReg uint32) Instruction {
	return Encode(OpMoveCurrentPosition, pack1x32(posReg))
}

func (i Instruction) MoveCurrentPositionReg() uint32 { return uint32(i.Payload()) }

func NewAdvance(n uint32) Instruction   { return Encode(OpAdvance, pack1x32(n)) }
func (i Instruction) AdvanceN() uint32 { return uint32(i.Payload()) }

// --- match family ----------------------------------------------------------

const (
	matchCaseInsensitiveBit = uint64(1) << 32
)

func NewMatch(elementReg uint32, caseInsensitive bool) Instruction {
	p := pack1x32(elementReg)
	if caseInsensitive {
		p |= matchCaseInsensitiveBit
	}
	return Encode(OpMatch, p)
}

func (i Instruction) MatchArgs() (elementReg uint32, caseInsensitive bool) {
	p := i.Payload()
	return uint32(p), p&matchCaseInsensitiveBit != 0
}

const (
	matchScalarCIBit = uint64(1) << 21
	matchScalarBCBit = uint64(1) << 22
)

func NewMatchScalar(scalar rune, caseInsensitive, boundaryCheck bool) Instruction {
	p := uint64(uint32(scalar)) & 0x1fffff
	if caseInsensitive {
		p |= matchScalarCIBit
	}
	if boundaryCheck {
		p |= matchScalarBCBit
	}
	return Encode(OpMatchScalar, p)
}

func (i Instruction) MatchScalarArgs() (scalar rune, caseInsensitive, boundaryCheck bool) {
	p := i.Payload()
	return rune(p & 0x1fffff), p&matchScalarCIBit != 0, p&matchScalarBCBit != 0
}

const matchBitsetScalarBit = uint64(1) << 32

func NewMatchBitset(bitsetReg uint32, isScalar bool) Instruction {
	p := pack1x32(bitsetReg)
	if isScalar {
		p |= matchBitsetScalarBit
	}
	return Encode(OpMatchBitset, p)
}

func (i Instruction) MatchBitsetArgs() (bitsetReg uint32, isScalar bool) {
	p := i.Payload()
	return uint32(p), p&matchBitsetScalarBit != 0
}

const (
	matchBuiltinStrictAsciiBit = uint64(1) << 16
	matchBuiltinScalarBit      = uint64(1) << 17
)

func NewMatchBuiltin(class uint32, strictAscii, isScalar bool) Instruction {
	p := uint64(class) & 0xffff
	if strictAscii {
		p |= matchBuiltinStrictAsciiBit
	}
	if isScalar {
		p |= matchBuiltinScalarBit
	}
	return Encode(OpMatchBuiltin, p)
}

func (i Instruction) MatchBuiltinArgs() (class uint32, strictAscii, isScalar bool) {
	p := i.Payload()
	return uint32(p & 0xffff), p&matchBuiltinStrictAsciiBit != 0, p&matchBuiltinScalarBit != 0
}

func NewConsumeBy(fnReg uint32) Instruction { return Encode(OpConsumeBy, pack1x32(fnReg)) }
func (i Instruction) ConsumeByReg() uint32  { return uint32(i.Payload()) }

// --- assertions ------------------------------------------------------------

// AssertPayload is the decoded form of assertBy's payload: the anchor
// kind plus the option-snapshot bits that give it meaning.
type AssertPayload struct {
	Kind                   uint8 // pattern.AssertionKind, narrowed to fit
	AnchorsMatchNewlines   bool
	SimpleUnicodeBoundaries bool
	ASCIIWord              bool
	ScalarSemantics        bool // true = unicodeScalar, false = graphemeCluster
}

const (
	assertAnchorsNLBit    = uint64(1) << 8
	assertSimpleBoundsBit = uint64(1) << 9
	assertASCIIWordBit    = uint64(1) << 10
	assertScalarBit       = uint64(1) << 11
)

func NewAssertBy(p AssertPayload) Instruction {
	v := uint64(p.Kind)
	if p.AnchorsMatchNewlines {
		v |= assertAnchorsNLBit
	}
	if p.SimpleUnicodeBoundaries {
		v |= assertSimpleBoundsBit
	}
	if p.ASCIIWord {
		v |= assertASCIIWordBit
	}
	if p.ScalarSemantics {
		v |= assertScalarBit
	}
	return Encode(OpAssertBy, v)
}

func (i Instruction) AssertByPayload() AssertPayload {
	p := i.Payload()
	return AssertPayload{
		Kind:                    uint8(p & 0xff),
		AnchorsMatchNewlines:    p&assertAnchorsNLBit != 0,
		SimpleUnicodeBoundaries: p&assertSimpleBoundsBit != 0,
		ASCIIWord:               p&assertASCIIWordBit != 0,
		ScalarSemantics:         p&assertScalarBit != 0,
	}
}

// --- matcher ----------------------------------------------------------------

func NewMatchBy(matcherReg, valueReg uint32) Instruction {
	return Encode(OpMatchBy, pack2x28(matcherReg, valueReg))
}

func (i Instruction) MatchByArgs() (matcherReg, valueReg uint32) {
	return unpack2x28(i.Payload())
}

// --- captures ----------------------------------------------------------------

func NewBeginCapture(capReg uint32) Instruction { return Encode(OpBeginCapture, pack1x32(capReg)) }
func (i Instruction) BeginCaptureReg() uint32   { return uint32(i.Payload()) }

func NewEndCapture(capReg uint32) Instruction { return Encode(OpEndCapture, pack1x32(capReg)) }
func (i Instruction) EndCaptureReg() uint32   { return uint32(i.Payload()) }

func NewCaptureValue(valueReg, capReg uint32) Instruction {
	return Encode(OpCaptureValue, pack2x28(valueReg, capReg))
}

func (i Instruction) CaptureValueArgs() (valueReg, capReg uint32) {
	return unpack2x28(i.Payload())
}

func NewTransformCapture(capReg, transformReg uint32) Instruction {
	return Encode(OpTransformCapture, pack2x28(capReg, transformReg))
}

func (i Instruction) TransformCaptureArgs() (capReg, transformReg uint32) {
	return unpack2x28(i.Payload())
}

func NewBackreference(capReg uint32) Instruction { return Encode(OpBackreference, pack1x32(capReg)) }
func (i Instruction) BackreferenceReg() uint32   { return uint32(i.Payload()) }

// --- quantify super-instruction ---------------------------------------------

// BodyVariant tags the specialized quantify body shape.
type BodyVariant uint8

const (
	BodyAsciiChar BodyVariant = iota
	BodyAsciiBitset
	BodyAny
	BodyAnyNonNewline
	BodyDot
	BodyBuiltinClass
)

// InfiniteTrips is the sentinel ExtraTrips value meaning "unbounded".
const InfiniteTrips = 0x1fff // 13 bits all set

// QuantifyKind narrows pattern.QuantKind to the two kinds the
// fast-quantify path ever emits: reluctant quantifiers never specialize.
type QuantifyKind uint8

const (
	QuantifyEager QuantifyKind = iota
	QuantifyPossessive
)

// QuantifyPayload is the decoded form of a quantify instruction's payload.
type QuantifyPayload struct {
	Kind       QuantifyKind
	Variant    BodyVariant
	MinTrips   uint32 // up to 4095
	ExtraTrips uint32 // up to 8190, or InfiniteTrips
	// BodyData is variant-specific: an ASCII byte for BodyAsciiChar, a
	// register index for BodyAsciiBitset/BodyBuiltinClass, unused otherwise.
	BodyData uint32
}

const (
	qKindBits     = 2
	qVariantBits  = 4
	qMinBits      = 12
	qExtraBits    = 13
	qBodyDataBits = 25

	qKindShift     = 0
	qVariantShift  = qKindShift + qKindBits
	qMinShift      = qVariantShift + qVariantBits
	qExtraShift    = qMinShift + qMinBits
	qBodyDataShift = qExtraShift + qExtraBits

	qKindMask     = (uint64(1) << qKindBits) - 1
	qVariantMask  = (uint64(1) << qVariantBits) - 1
	qMinMask      = (uint64(1) << qMinBits) - 1
	qExtraMask    = (uint64(1) << qExtraBits) - 1
	qBodyDataMask = (uint64(1) << qBodyDataBits) - 1
)

func NewQuantify(p QuantifyPayload) Instruction {
	v := uint64(p.Kind)&qKindMask |
		(uint64(p.Variant)&qVariantMask)<<qVariantShift |
		(uint64(p.MinTrips)&qMinMask)<<qMinShift |
		(uint64(p.ExtraTrips)&qExtraMask)<<qExtraShift |
		(uint64(p.BodyData)&qBodyDataMask)<<qBodyDataShift
	return Encode(OpQuantify, v)
}

func (i Instruction) QuantifyPayload() QuantifyPayload {
	p := i.Payload()
	return QuantifyPayload{
		Kind:       QuantifyKind((p >> qKindShift) & qKindMask),
		Variant:    BodyVariant((p >> qVariantShift) & qVariantMask),
		MinTrips:   uint32((p >> qMinShift) & qMinMask),
		ExtraTrips: uint32((p >> qExtraShift) & qExtraMask),
		BodyData:   uint32((p >> qBodyDataShift) & qBodyDataMask),
	}
}
