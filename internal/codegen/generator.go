package codegen

import (
	"fmt"

	"github.com/KromDaniel/regengo/internal/builder"
	"github.com/KromDaniel/regengo/internal/options"
	"github.com/KromDaniel/regengo/internal/pattern"
)

// Config bundles the compile-time flags that steer code generation:
// whether to disable the ASCII-fast-path and fast-quantify
// optimizations, and whether to log the decisions taken along the way.
type Config struct {
	DisableOptimizations bool
	Verbose              bool
}

// Generator is the code generator: one instance is created per regex,
// mutated through a single depth-first pass over the pattern tree, then
// finalized via the Builder's Assemble.
type Generator struct {
	b      *builder.Builder
	opts   *options.Stack
	cfg    Config
	logger *Logger

	// matchableSeen gates whether a changeMatchingOptions node still
	// updates initialOptions: an option change at the very start of the
	// root becomes the program's initial options only if it is emitted
	// before any matchable atom.
	matchableSeen bool

	// pendingValueReg carries a Matcher's produced value register up to
	// its immediately enclosing Capture, which reads it to emit
	// captureValue.
	pendingValueReg *uint32
}

// New creates a Generator writing into b, starting from the options on
// top of opts (opts.Top() must equal b.InitialOptions() for a fresh
// compile; EmitRoot does not re-derive one from the other).
func New(b *builder.Builder, opts *options.Stack, cfg Config) *Generator {
	return &Generator{b: b, opts: opts, cfg: cfg, logger: NewLogger(cfg.Verbose)}
}

// Logger exposes the generator's verbose logger (mostly useful to tests
// and to pkg/regengo, which may want to redirect its output).
func (g *Generator) Logger() *Logger { return g.logger }

// EmitRoot wraps tree in the implicit whole-match capture (index 0) and
// appends accept.
func (g *Generator) EmitRoot(tree pattern.Node) error {
	root := &pattern.Capture{Child: tree}
	if err := g.emitNode(root); err != nil {
		return err
	}
	g.b.EmitAccept()
	return nil
}

func (g *Generator) emitNode(n pattern.Node) error {
	switch v := n.(type) {
	case *pattern.Concatenation:
		return g.emitConcatenation(v)
	case *pattern.OrderedChoice:
		return g.emitOrderedChoice(v)
	case *pattern.Capture:
		return g.emitCapture(v)
	case *pattern.NonCapturingGroup:
		return g.emitGroup(v)
	case *pattern.Quantification:
		return g.emitQuantification(v)
	case *pattern.Atom:
		return g.emitAtom(v)
	case *pattern.CustomCharacterClass:
		return g.emitCustomCharacterClass(v)
	case *pattern.QuotedLiteral:
		return g.emitQuotedLiteral(v)
	case *pattern.Matcher:
		return g.emitMatcher(v)
	case *pattern.Trivia:
		return nil
	case *pattern.Empty:
		return nil
	default:
		return &builder.Unreachable{Diagnostic: fmt.Sprintf("unknown pattern node type %T", n)}
	}
}

func (g *Generator) emitConcatenation(c *pattern.Concatenation) error {
	for _, child := range c.Children {
		if err := g.emitNode(child); err != nil {
			return err
		}
	}
	return nil
}

// markMatchableIfAtom records that a matchable atom has now been
// emitted, closing the initialOptions window.
func (g *Generator) markMatchableIfAtom(a *pattern.Atom) {
	if a.IsMatchable() {
		g.matchableSeen = true
	}
}

func (g *Generator) emitQuotedLiteral(lit *pattern.QuotedLiteral) error {
	top := g.opts.Top()
	asciiFastPath := !g.cfg.DisableOptimizations && top.SemanticLevel == options.GraphemeCluster && isASCII(lit.Value)

	runes := []rune(lit.Value)
	if len(runes) == 0 {
		return nil
	}

	if asciiFastPath {
		g.logger.Log("quotedLiteral %q: emitting ASCII matchScalar run with elided boundary checks", lit.Value)
		for i, r := range runes {
			g.matchableSeen = true
			g.b.EmitMatchScalar(r, false, i == len(runes)-1)
		}
		return nil
	}

	for _, r := range runes {
		if err := g.emitNode(&pattern.Atom{Kind: pattern.AtomChar, Char: r}); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) emitMatcher(m *pattern.Matcher) error {
	g.matchableSeen = true
	matcherReg := g.b.InternMatcherFn(builder.MatcherFn(m.Fn))
	valueReg := g.b.AllocValue()
	g.b.EmitMatchBy(matcherReg, valueReg)
	g.pendingValueReg = &valueReg
	return nil
}

// captureList exposes the builder's capture list for named-backreference
// resolution (internal/codegen/atoms.go).
func (g *Generator) captureList() pattern.CaptureList { return g.b.Captures() }

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
