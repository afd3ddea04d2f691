package codegen

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/KromDaniel/regengo/internal/builder"
	"github.com/KromDaniel/regengo/internal/instr"
	"github.com/KromDaniel/regengo/internal/options"
	"github.com/KromDaniel/regengo/internal/pattern"
)

// emitAtom dispatches on an Atom's variant, lowering each leaf kind to
// the instruction sequence that matches it.
func (g *Generator) emitAtom(a *pattern.Atom) error {
	g.markMatchableIfAtom(a)

	switch a.Kind {
	case pattern.AtomChar:
		return g.emitChar(a.Char)
	case pattern.AtomScalar:
		return g.emitScalar(a.Scalar)
	case pattern.AtomAny:
		return g.emitAny()
	case pattern.AtomAnyNonNewline:
		return g.emitAnyNonNewline()
	case pattern.AtomDot:
		return g.emitDot()
	case pattern.AtomCharacterClass:
		return g.emitBuiltinClass(a.Class)
	case pattern.AtomAssertion:
		return g.emitAssertion(a.Assert)
	case pattern.AtomBackreference:
		return g.emitBackreference(a.Ref)
	case pattern.AtomSymbolicReference:
		g.b.BuildUnresolvedReference(a.SymRef)
		return nil
	case pattern.AtomChangeMatchingOptions:
		return g.emitChangeMatchingOptions(a.OptionChanges)
	case pattern.AtomUnconverted:
		name := "atom(unconverted)"
		if a.Custom != nil && a.Custom.Name != "" {
			name = fmt.Sprintf("atom(unconverted:%s)", a.Custom.Name)
		}
		return &builder.Unsupported{Feature: name}
	default:
		return &builder.Unreachable{Diagnostic: fmt.Sprintf("unknown atom kind %v", a.Kind)}
	}
}

// emitChar lowers a literal character, covering the scalar-mode,
// case-insensitive, and ASCII-fast-path branches.
func (g *Generator) emitChar(c rune) error {
	top := g.opts.Top()

	if top.SemanticLevel == options.UnicodeScalar {
		for _, s := range scalarsOf(c) {
			g.b.EmitMatchScalar(s, false, false)
		}
		return nil
	}

	if top.CaseInsensitive && isCased(c) {
		if !g.cfg.DisableOptimizations && isASCIIRune(c) {
			g.b.EmitMatchScalar(c, true, true)
			return nil
		}
		elementReg := g.b.InternElement(c)
		g.b.EmitMatch(elementReg, true)
		return nil
	}

	if !g.cfg.DisableOptimizations && isASCIIRune(c) {
		scalars := scalarsOf(c)
		for i, s := range scalars {
			g.b.EmitMatchScalar(s, false, i == len(scalars)-1)
		}
		return nil
	}

	elementReg := g.b.InternElement(c)
	g.b.EmitMatch(elementReg, false)
	return nil
}

// emitScalar lowers a literal Unicode scalar value, falling back to
// emitChar under grapheme-cluster semantics.
func (g *Generator) emitScalar(s rune) error {
	top := g.opts.Top()
	if top.SemanticLevel == options.GraphemeCluster {
		return g.emitChar(s)
	}
	ci := top.CaseInsensitive && isCased(s)
	g.b.EmitMatchScalar(s, ci, false)
	return nil
}

func (g *Generator) emitAny() error {
	top := g.opts.Top()
	if top.SemanticLevel == options.GraphemeCluster {
		g.b.EmitAdvance(1)
		return nil
	}
	fnReg := g.b.InternConsumeFn(scalarNextConsumer)
	g.b.EmitConsumeBy(fnReg)
	return nil
}

func (g *Generator) emitAnyNonNewline() error {
	top := g.opts.Top()
	if top.SemanticLevel == options.GraphemeCluster {
		fnReg := g.b.InternConsumeFn(graphemeNonNewlineConsumer)
		g.b.EmitConsumeBy(fnReg)
		return nil
	}
	fnReg := g.b.InternConsumeFn(scalarNonNewlineConsumer)
	g.b.EmitConsumeBy(fnReg)
	return nil
}

// emitDot lowers "." under the current dotMatchesNewline option: any
// unit of input when newlines are included, anyNonNewline otherwise.
func (g *Generator) emitDot() error {
	if g.opts.Top().DotMatchesNewline {
		return g.emitAny()
	}
	return g.emitAnyNonNewline()
}

// emitBuiltinClass lowers a built-in class (\w, \d, \s, ...), preferring
// an ASCII bitset the way emitCustomCharacterClass does, else a
// matchBuiltin instruction that names the class by interned index.
func (g *Generator) emitBuiltinClass(c *pattern.BuiltinClass) error {
	top := g.opts.Top()
	isScalar := top.SemanticLevel == options.UnicodeScalar

	if !g.cfg.DisableOptimizations && !isScalar {
		if bs, ok := AsciiBitsetConvertible(&pattern.CustomCharacterClass{Ranges: c.Ranges}); ok {
			if name := DetectNamedClass(c.Ranges); name != "" {
				g.logger.Log("builtin class %q: converted to an ASCII bitset", name)
			}
			bitsetReg := g.b.InternElement(bs)
			g.b.EmitMatchBitset(bitsetReg, isScalar)
			return nil
		}
	}

	classIdx := g.b.InternString(c.Name)
	g.b.EmitMatchBuiltin(classIdx, !g.cfg.DisableOptimizations, isScalar)
	return nil
}

// emitAssertion lowers a zero-width assertion, carrying the current
// option scope's boundary-semantics flags along with the assertion kind.
func (g *Generator) emitAssertion(kind pattern.AssertionKind) error {
	if kind == pattern.AssertResetStartOfMatch {
		return &builder.Unsupported{Feature: "resetStartOfMatch"}
	}

	top := g.opts.Top()
	g.b.EmitAssertBy(instr.AssertPayload{
		Kind:                    uint8(kind),
		AnchorsMatchNewlines:    top.AnchorsMatchNewlines,
		SimpleUnicodeBoundaries: top.UsesSimpleUnicodeBoundaries,
		ASCIIWord:               top.UsesASCIIWord,
		ScalarSemantics:         top.SemanticLevel == options.UnicodeScalar,
	})
	return nil
}

// emitBackreference lowers a backreference, resolving named references
// against the capture list before emitting.
func (g *Generator) emitBackreference(ref *pattern.Backreference) error {
	switch ref.Kind {
	case pattern.BackreferenceRecursesWholePattern:
		return &builder.Unsupported{Feature: "recursesWholePattern backreference"}
	case pattern.BackreferenceRelative:
		return &builder.Unsupported{Feature: "relative backreference"}
	case pattern.BackreferenceAbsolute:
		g.b.EmitBackreference(uint32(ref.Index))
		return nil
	case pattern.BackreferenceNamed:
		idx, ok := g.captureIndexForName(ref.Name)
		if !ok {
			return &builder.UncapturedReference{IDOrName: ref.Name}
		}
		g.b.EmitBackreference(uint32(idx))
		return nil
	default:
		return &builder.Unreachable{Diagnostic: fmt.Sprintf("unknown backreference kind %v", ref.Kind)}
	}
}

func (g *Generator) captureIndexForName(name string) (int, bool) {
	return g.captureList().IndexForName(name)
}

// emitChangeMatchingOptions applies an inline option change. While no
// matchable atom has yet been emitted the change also widens
// initialOptions, since nothing has committed to the prior options yet;
// it always applies to the current scope's options either way.
func (g *Generator) emitChangeMatchingOptions(changes []pattern.OptionChange) error {
	if !g.matchableSeen {
		initial := g.b.InitialOptions()
		options.ApplyTo(&initial, changes)
		g.b.SetInitialOptions(initial)
	}
	g.opts.Apply(changes)
	return nil
}

// emitCustomCharacterClass lowers a custom character class, preferring
// an ASCII bitset and falling back to a consumeBy closure for ranges
// that escape ASCII.
func (g *Generator) emitCustomCharacterClass(ccc *pattern.CustomCharacterClass) error {
	g.matchableSeen = true

	if ccc.AnyMember {
		if ccc.Inverted {
			return &builder.Unsupported{Feature: "inverted-any"}
		}
		return g.emitDot()
	}

	top := g.opts.Top()
	isScalar := top.SemanticLevel == options.UnicodeScalar

	if !g.cfg.DisableOptimizations && !isScalar {
		if bs, ok := AsciiBitsetConvertible(ccc); ok {
			g.logger.Log("custom character class: converted to an ASCII bitset")
			bitsetReg := g.b.InternElement(bs)
			g.b.EmitMatchBitset(bitsetReg, isScalar)
			return nil
		}
	}

	g.logger.Log("custom character class: falling back to consumeBy closure")
	fnReg := g.b.InternConsumeFn(customClassConsumer(ccc, isScalar))
	g.b.EmitConsumeBy(fnReg)
	return nil
}

// --- helpers ------------------------------------------------------------

func scalarsOf(c rune) []rune {
	// A char atom already names a single Unicode scalar value; callers
	// that need UTF-16-style surrogate splitting do so upstream in the
	// parser. Here "one matchScalar per scalar" collapses to one.
	return []rune{c}
}

func isASCIIRune(r rune) bool { return r < 0x80 }

func isCased(r rune) bool {
	return unicode.ToUpper(r) != unicode.ToLower(r)
}

func scalarNextConsumer(input []byte, pos int) (int, bool) {
	if pos >= len(input) {
		return pos, false
	}
	_, size := decodeRuneSize(input[pos:])
	return pos + size, true
}

func scalarNonNewlineConsumer(input []byte, pos int) (int, bool) {
	if pos >= len(input) || input[pos] == '\n' {
		return pos, false
	}
	_, size := decodeRuneSize(input[pos:])
	return pos + size, true
}

func graphemeNonNewlineConsumer(input []byte, pos int) (int, bool) {
	return scalarNonNewlineConsumer(input, pos)
}

// decodeRuneSize decodes the rune and byte length of the UTF-8 sequence
// starting at b[0], without pulling in a grapheme-segmentation oracle.
func decodeRuneSize(b []byte) (rune, int) {
	if len(b) == 0 {
		return 0, 0
	}
	r, size := utf8.DecodeRune(b)
	return r, size
}

func customClassConsumer(ccc *pattern.CustomCharacterClass, isScalar bool) builder.ConsumeFn {
	return func(input []byte, pos int) (int, bool) {
		if pos >= len(input) {
			return pos, false
		}
		r, size := decodeRuneSize(input[pos:])
		member := classContains(ccc, r)
		if ccc.Inverted {
			member = !member
		}
		if !member {
			return pos, false
		}
		return pos + size, true
	}
}

func classContains(ccc *pattern.CustomCharacterClass, r rune) bool {
	for i := 0; i+1 < len(ccc.Ranges); i += 2 {
		if r >= ccc.Ranges[i] && r <= ccc.Ranges[i+1] {
			return true
		}
	}
	for _, m := range ccc.Members {
		if m(r) {
			return true
		}
	}
	return false
}
