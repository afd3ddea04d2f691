package codegen

import (
	"github.com/KromDaniel/regengo/internal/instr"
	"github.com/KromDaniel/regengo/internal/options"
	"github.com/KromDaniel/regengo/internal/pattern"
)

// maxStorableTrips is one past the largest minTrips value the quantify
// super-instruction's 12-bit min field can hold; fast-quantify requires
// minTrips to be strictly below it. extraTrips is bounded separately.
const maxStorableTrips = 1 << 12 // 1 << qMinBits in internal/instr

// emitQuantification lowers a Quantification: the early-exit no-ops,
// kind resolution, the fast-quantify specialization, and the general
// minTripsControl/loopBody/exitPolicy loop for everything the
// specialization doesn't cover.
func (g *Generator) emitQuantification(q *pattern.Quantification) error {
	low := q.Amount.Low
	var high int
	unbounded := q.Amount.High == nil
	if !unbounded {
		high = *q.Amount.High
	}

	if high == 0 && !unbounded {
		return nil
	}
	if !unbounded && low > high {
		return nil
	}

	kind := q.Kind
	if kind == pattern.QuantDefaultFromOptions {
		kind = g.opts.Top().DefaultQuantificationKind
	}

	minTrips := uint32(low)
	var extraTrips uint32
	if unbounded {
		extraTrips = instr.InfiniteTrips
	} else {
		extraTrips = uint32(high - low)
	}

	fastQuantifyEligible := !g.cfg.DisableOptimizations &&
		kind != pattern.QuantReluctant &&
		g.opts.Top().SemanticLevel == options.GraphemeCluster &&
		minTrips < maxStorableTrips &&
		(unbounded || extraTrips < (1<<13)-1)

	if fastQuantifyEligible {
		if variant, bodyData, ok := g.fastQuantifyShape(q.Child); ok {
			qk := instr.QuantifyEager
			if kind == pattern.QuantPossessive {
				qk = instr.QuantifyPossessive
			}
			g.logger.Log("quantification{%d,%v}: fast-quantify specialized (variant=%v)", low, q.Amount.High, variant)
			g.matchableSeen = true
			g.b.EmitQuantify(instr.QuantifyPayload{
				Kind:       qk,
				Variant:    variant,
				MinTrips:   minTrips,
				ExtraTrips: extraTrips,
				BodyData:   bodyData,
			})
			return nil
		}
	}

	return g.emitGeneralQuantifyLoop(q.Child, kind, minTrips, extraTrips, unbounded)
}

// emitGeneralQuantifyLoop emits the general minTripsControl/loopBody/
// exitPolicy loop any quantification not covered by the fast-quantify
// specialization falls back to.
func (g *Generator) emitGeneralQuantifyLoop(child pattern.Node, kind pattern.QuantKind, minTrips, extraTrips uint32, unboundedExtra bool) error {
	var minReg uint32
	if minTrips > 1 {
		minReg = g.b.AllocInt()
	}

	var extraReg uint32
	if !unboundedExtra && extraTrips > 0 {
		extraReg = g.b.AllocInt()
	}

	if kind == pattern.QuantPossessive {
		g.b.PushEmptySavePoint()
	}

	minTripsControl := g.b.MakeAddress()
	exitPolicy := g.b.MakeAddress()
	exit := g.b.MakeAddress()
	loopBody := g.b.MakeAddress()

	g.b.Label(minTripsControl)
	switch {
	case minTrips == 0:
		g.b.EmitBranch(exitPolicy)
	case minTrips == 1:
		// fallthrough into loopBody
	default:
		g.b.EmitCondBranchZeroElseDecrement(exitPolicy, minReg)
	}

	needsSamePositionGuard := !pattern.GuaranteesForwardProgress(child) && unboundedExtra
	var startPosReg uint32
	g.b.Label(loopBody)
	if needsSamePositionGuard {
		startPosReg = g.b.AllocPos()
		g.b.EmitMoveCurrentPosition(startPosReg)
	}

	if err := g.emitNode(child); err != nil {
		return err
	}

	if needsSamePositionGuard {
		g.b.EmitCondBranchSamePosition(exit, startPosReg)
	}
	if minTrips > 1 {
		g.b.EmitBranch(minTripsControl)
	}

	g.b.Label(exitPolicy)
	switch {
	case unboundedExtra:
		// fallthrough into the kind dispatch below
	case extraTrips == 0:
		g.b.EmitBranch(exit)
	default:
		g.b.EmitCondBranchZeroElseDecrement(exit, extraReg)
	}

	switch kind {
	case pattern.QuantPossessive:
		g.b.EmitClear()
		g.b.EmitSplitSaving(loopBody, exit)
	case pattern.QuantReluctant:
		g.b.EmitSave(loopBody)
		// fallthrough to exit
	default: // eager
		g.b.EmitSplitSaving(loopBody, exit)
	}

	g.b.Label(exit)
	return nil
}

// fastQuantifyShape reports whether child matches one of the six body
// shapes the fast-quantify specialization recognizes, unwrapping
// single-child Concatenation/NonCapturingGroup(plain) wrappers first; a
// one-character ASCII QuotedLiteral is recognized as an ASCII char body.
func (g *Generator) fastQuantifyShape(n pattern.Node) (instr.BodyVariant, uint32, bool) {
	n = unwrapSingle(n)

	switch v := n.(type) {
	case *pattern.Atom:
		switch v.Kind {
		case pattern.AtomAny:
			return instr.BodyAny, 0, true
		case pattern.AtomAnyNonNewline:
			return instr.BodyAnyNonNewline, 0, true
		case pattern.AtomDot:
			return instr.BodyDot, 0, true
		case pattern.AtomChar:
			if isASCIIRune(v.Char) {
				return instr.BodyAsciiChar, uint32(v.Char), true
			}
		case pattern.AtomCharacterClass:
			if IsSingleGraphemeBuiltin(v.Class) {
				if bs, ok := AsciiBitsetConvertible(&pattern.CustomCharacterClass{Ranges: v.Class.Ranges}); ok {
					reg := g.b.InternElement(bs)
					return instr.BodyAsciiBitset, reg, true
				}
				reg := g.b.InternString(v.Class.Name)
				return instr.BodyBuiltinClass, reg, true
			}
		}
	case *pattern.QuotedLiteral:
		if len(v.Value) == 1 && isASCIIRune(rune(v.Value[0])) {
			return instr.BodyAsciiChar, uint32(v.Value[0]), true
		}
	case *pattern.CustomCharacterClass:
		if bs, ok := AsciiBitsetConvertible(v); ok {
			reg := g.b.InternElement(bs)
			return instr.BodyAsciiBitset, reg, true
		}
	}
	return 0, 0, false
}

// unwrapSingle peels off a single-child concatenation or plain
// non-capturing group wrapper so the fast-quantify shape check can see
// the body underneath.
func unwrapSingle(n pattern.Node) pattern.Node {
	for {
		switch v := n.(type) {
		case *pattern.NonCapturingGroup:
			if v.Kind == pattern.GroupPlain {
				n = v.Child
				continue
			}
		case *pattern.Concatenation:
			if len(v.Children) == 1 {
				n = v.Children[0]
				continue
			}
		}
		return n
	}
}
