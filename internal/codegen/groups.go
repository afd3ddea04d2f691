package codegen

import (
	"github.com/KromDaniel/regengo/internal/builder"
	"github.com/KromDaniel/regengo/internal/pattern"
)

// emitCapture lowers a Capture to a scoped beginCapture / child /
// endCapture bracket, with an optional trailing captureValue (for a
// Matcher child) and transformCapture (for a post-match transform).
func (g *Generator) emitCapture(c *pattern.Capture) error {
	g.opts.BeginScope()
	defer g.opts.EndScope()

	capReg := g.b.AllocCapture()
	if c.RefID != nil {
		g.b.RecordCapture(*c.RefID, capReg)
	}

	g.b.EmitBeginCapture(capReg)

	savedPending := g.pendingValueReg
	g.pendingValueReg = nil
	if err := g.emitNode(c.Child); err != nil {
		return err
	}

	g.b.EmitEndCapture(capReg)

	if g.pendingValueReg != nil {
		g.b.EmitCaptureValue(*g.pendingValueReg, capReg)
	}
	g.pendingValueReg = savedPending

	if c.Transform != nil {
		transformReg := g.b.InternTransformFn(builder.TransformFn(c.Transform.Fn))
		g.b.EmitTransformCapture(capReg, transformReg)
	}

	return nil
}

// emitGroup dispatches a NonCapturingGroup to the right scaffold: plain
// pass-through, a lookaround probe, the atomic-group commit scaffold, or
// changeMatchingOptions scoping.
func (g *Generator) emitGroup(ng *pattern.NonCapturingGroup) error {
	switch ng.Kind {
	case pattern.GroupPlain:
		return g.emitNode(ng.Child)

	case pattern.GroupChangeMatchingOptions:
		g.opts.BeginScope()
		defer g.opts.EndScope()
		if err := g.emitChangeMatchingOptions(ng.OptionChanges); err != nil {
			return err
		}
		return g.emitNode(ng.Child)

	case pattern.GroupLookahead:
		return g.emitLookaround(ng.Child, false)
	case pattern.GroupNegativeLookahead:
		return g.emitLookaround(ng.Child, true)

	case pattern.GroupLookbehind:
		return &builder.Unsupported{Feature: "lookbehind"}
	case pattern.GroupNegativeLookbehind:
		return &builder.Unsupported{Feature: "negativeLookbehind"}

	case pattern.GroupAtomicNonCapturing:
		return g.emitAtomicGroup(ng.Child)

	default:
		return &builder.Unreachable{Diagnostic: "unknown group kind"}
	}
}

// emitLookaround lowers a lookaround probe: it always rewinds input
// regardless of outcome, and a negative lookaround additionally inverts
// the probe's success into failure.
//
//	save(success)
//	save(intercept)
//	<child>               // on failure, control goes to intercept
//	clearThrough(intercept)
//	if negative: clear    // remove 'success'
//	fail                  // positive -> success; negative -> propagates
//	intercept:
//	if positive: clear
//	fail                  // positive -> propagates; negative -> success
//	success:
func (g *Generator) emitLookaround(child pattern.Node, negative bool) error {
	success := g.b.MakeAddress()
	intercept := g.b.MakeAddress()

	g.b.EmitSave(success)
	g.b.EmitSave(intercept)

	g.opts.BeginScope()
	savedPending := g.pendingValueReg
	if err := g.emitNode(child); err != nil {
		g.opts.EndScope()
		return err
	}
	g.pendingValueReg = savedPending
	g.opts.EndScope()

	g.b.EmitClearThrough(intercept)
	if negative {
		g.b.EmitClear()
	}
	g.b.EmitFail()

	g.b.Label(intercept)
	if !negative {
		g.b.EmitClear()
	}
	g.b.EmitFail()

	g.b.Label(success)
	return nil
}

// emitAtomicGroup lowers an atomic group's commit scaffold: once the
// child succeeds, saveAddress (rather than save) means the commit keeps
// the input position the child reached and pops every choice point the
// child pushed, so backtracking can never re-enter it.
//
//	saveAddress(success)  // resume-only; do NOT restore position
//	save(intercept)
//	<child>
//	clearThrough(intercept)
//	fail                  // -> success (popping child's save points with it)
//	intercept:
//	clear                 // remove 'success'
//	fail                  // propagate outer failure
//	success:
func (g *Generator) emitAtomicGroup(child pattern.Node) error {
	success := g.b.MakeAddress()
	intercept := g.b.MakeAddress()

	g.b.EmitSaveAddress(success)
	g.b.EmitSave(intercept)

	g.opts.BeginScope()
	savedPending := g.pendingValueReg
	if err := g.emitNode(child); err != nil {
		g.opts.EndScope()
		return err
	}
	g.pendingValueReg = savedPending
	g.opts.EndScope()

	g.b.EmitClearThrough(intercept)
	g.b.EmitFail()

	g.b.Label(intercept)
	g.b.EmitClear()
	g.b.EmitFail()

	g.b.Label(success)
	return nil
}

// emitOrderedChoice lowers an alternation: try each child in turn,
// saving a choice point to the next alternative, and branching to the
// shared exit once one succeeds.
//
//	save(next_1); <child_1>; branch(done)
//	label(next_1); save(next_2); <child_2>; branch(done)
//	...
//	label(next_n-1); <child_n>
//	label(done)
func (g *Generator) emitOrderedChoice(oc *pattern.OrderedChoice) error {
	if len(oc.Children) == 0 {
		return nil
	}
	if len(oc.Children) == 1 {
		return g.emitNode(oc.Children[0])
	}

	done := g.b.MakeAddress()

	for i, child := range oc.Children {
		last := i == len(oc.Children)-1
		if !last {
			next := g.b.MakeAddress()
			g.b.EmitSave(next)
			if err := g.emitNode(child); err != nil {
				return err
			}
			g.b.EmitBranch(done)
			g.b.Label(next)
			continue
		}
		if err := g.emitNode(child); err != nil {
			return err
		}
	}

	g.b.Label(done)
	return nil
}
