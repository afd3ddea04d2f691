// Package pattern defines the intermediate pattern tree consumed by the
// code generator: a tagged-variant representation of an already-parsed
// regular expression, independent of whatever surface syntax produced it.
package pattern

// Node is a pattern tree node. The concrete type of a Node is one of the
// types declared below; callers switch on the concrete type to dispatch.
type Node interface {
	// isNode restricts Node to the types declared in this package.
	isNode()
}

// Concatenation is an ordered sequence of nodes matched one after another.
type Concatenation struct {
	Children []Node
}

// OrderedChoice tries each child in order, backtracking into the next on
// failure.
type OrderedChoice struct {
	Children []Node
}

// Capture is a numbered, optionally named capture group with an optional
// post-match transform.
type Capture struct {
	// Name is nil for an unnamed group.
	Name *string
	// RefID is the symbolic id this capture resolves symbolicReference(id)
	// nodes against; nil if the capture is never referenced symbolically.
	RefID *int
	Child Node
	// Transform, if non-nil, is applied to the captured value at
	// endCapture time.
	Transform *TransformFunc
}

// TransformFunc is an interned post-capture transform closure.
type TransformFunc struct {
	Name string
	Fn   func(value any) (any, error)
}

// GroupKind identifies the kind of a NonCapturingGroup.
type GroupKind int

const (
	GroupPlain GroupKind = iota
	GroupAtomicNonCapturing
	GroupLookahead
	GroupNegativeLookahead
	GroupLookbehind
	GroupNegativeLookbehind
	GroupChangeMatchingOptions
)

// NonCapturingGroup wraps a child node with a grouping behavior that does
// not introduce a capture register. When Kind == GroupChangeMatchingOptions,
// OptionChanges holds the option-change sequence and Child is the scope the
// changes apply to.
type NonCapturingGroup struct {
	Kind          GroupKind
	Child         Node
	OptionChanges []OptionChange
}

// Amount is a quantifier's repetition bound. High == nil means unbounded.
type Amount struct {
	Low  int
	High *int
}

// QuantKind selects a quantifier's greediness.
type QuantKind int

const (
	QuantEager QuantKind = iota
	QuantReluctant
	QuantPossessive
	QuantDefaultFromOptions
)

// Quantification repeats Child Amount.Low..Amount.High times per Kind.
type Quantification struct {
	Amount Amount
	Kind   QuantKind
	Child  Node
}

// AtomKind tags the variant held by an Atom node.
type AtomKind int

const (
	AtomAny AtomKind = iota
	AtomAnyNonNewline
	AtomDot
	AtomChar
	AtomScalar
	AtomCharacterClass
	AtomAssertion
	AtomBackreference
	AtomSymbolicReference
	AtomChangeMatchingOptions
	AtomUnconverted
)

// AssertionKind enumerates the zero-width assertions an Atom(assertion)
// may carry.
type AssertionKind int

const (
	AssertStartOfSubject AssertionKind = iota
	AssertEndOfSubject
	AssertEndOfSubjectBeforeNewline
	AssertStartOfLine
	AssertEndOfLine
	AssertTextSegment
	AssertNotTextSegment
	AssertWordBoundary
	AssertNotWordBoundary
	AssertFirstMatchingPositionInSubject
	AssertResetStartOfMatch
)

// BackreferenceKind tags how a backreference names its target.
type BackreferenceKind int

const (
	BackreferenceAbsolute BackreferenceKind = iota
	BackreferenceNamed
	BackreferenceRelative
	BackreferenceRecursesWholePattern
)

// Backreference is the payload of Atom(backreference).
type Backreference struct {
	Kind  BackreferenceKind
	Index int    // valid when Kind == BackreferenceAbsolute or BackreferenceRelative
	Name  string // valid when Kind == BackreferenceNamed
}

// BuiltinClass names a built-in single-grapheme/scalar character class
// (\w, \d, \s, and their negations, plus Unicode property classes the
// parser has already resolved to a fixed id).
type BuiltinClass struct {
	Name string
	// Ranges are inclusive [lo,hi] scalar-value pairs, ASCII-oriented
	// classes populate this densely enough for bitset conversion.
	Ranges []rune
}

// Atom is a leaf pattern node that consumes input or asserts on it.
// changeMatchingOptions is the one AtomKind that is NOT "matchable": it
// neither consumes nor asserts.
type Atom struct {
	Kind AtomKind

	Char   rune   // AtomChar
	Scalar rune   // AtomScalar (single Unicode scalar value)
	Class  *BuiltinClass
	Assert AssertionKind
	Ref    *Backreference
	SymRef int // AtomSymbolicReference

	OptionChanges []OptionChange // AtomChangeMatchingOptions

	Custom *CustomMatcher // AtomUnconverted
}

// OptionChange is one (name, value) pair in a changeMatchingOptions
// sequence; Value's concrete type depends on the option (bool, or the
// string name of an enum member).
type OptionChange struct {
	Name  string
	Value any
}

// CustomMatcher is an opaque, parser-supplied matcher the backend cannot
// interpret structurally (Atom(unconverted)).
type CustomMatcher struct {
	Name string
}

// CustomCharacterClass is a set of scalar ranges plus individually listed
// members, with an inversion flag.
type CustomCharacterClass struct {
	// Ranges are inclusive [lo,hi] scalar pairs.
	Ranges []rune
	// Members holds class-membership callbacks too fine-grained to
	// express as a range (a Unicode property test, say).
	Members   []func(r rune) bool
	Inverted  bool
	AnyMember bool // true for the single-member "any"/"." class
}

// QuotedLiteral is a run of literal characters the parser has already
// merged into a single string (it may still need per-scalar lowering).
type QuotedLiteral struct {
	Value string
}

// Matcher is a user-supplied matching function invoked via matchBy.
type Matcher struct {
	Name string
	Fn   func(input []byte, pos int) (consumed int, value any, ok bool)
}

// Trivia is a no-op node a parser may emit for comments or free-spacing;
// it never fails and emits nothing.
type Trivia struct{}

// Empty matches the empty string unconditionally.
type Empty struct{}

func (*Concatenation) isNode()        {}
func (*OrderedChoice) isNode()        {}
func (*Capture) isNode()              {}
func (*NonCapturingGroup) isNode()    {}
func (*Quantification) isNode()       {}
func (*Atom) isNode()                 {}
func (*CustomCharacterClass) isNode() {}
func (*QuotedLiteral) isNode()        {}
func (*Matcher) isNode()              {}
func (*Trivia) isNode()               {}
func (*Empty) isNode()                {}

// IsMatchable reports whether an atom consumes or asserts on input.
// changeMatchingOptions is the sole non-matchable AtomKind.
func (a *Atom) IsMatchable() bool {
	return a.Kind != AtomChangeMatchingOptions
}

// CaptureEntry is one row of the pre-built capture list the parser hands
// to the compiler.
type CaptureEntry struct {
	Index int
	Name  string // empty for unnamed groups; capture 0 is always unnamed
}

// CaptureList maps capture names and ordinal positions to capture
// indices, including the implicit whole-match capture at index 0.
type CaptureList struct {
	Entries []CaptureEntry
}

// IndexForName returns the capture index for a named group, or false if
// no capture carries that name.
func (cl CaptureList) IndexForName(name string) (int, bool) {
	for _, e := range cl.Entries {
		if e.Name == name {
			return e.Index, true
		}
	}
	return 0, false
}

// Count returns 1 + the number of explicit Capture nodes.
func (cl CaptureList) Count() int {
	return len(cl.Entries)
}
