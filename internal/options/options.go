// Package options implements the scoped matching-options stack consulted
// and mutated by the code generator while it walks the pattern tree.
package options

import "github.com/KromDaniel/regengo/internal/pattern"

// SemanticLevel selects whether atoms operate on grapheme clusters or raw
// Unicode scalar values.
type SemanticLevel int

const (
	GraphemeCluster SemanticLevel = iota
	UnicodeScalar
)

// Options is one scope's worth of matching-option flags.
type Options struct {
	CaseInsensitive             bool
	DotMatchesNewline           bool
	AnchorsMatchNewlines        bool
	SemanticLevel               SemanticLevel
	DefaultQuantificationKind   pattern.QuantKind
	UsesSimpleUnicodeBoundaries bool
	UsesASCIIWord               bool
}

// Default returns the options a program starts with absent any
// changeMatchingOptions directive.
func Default() Options {
	return Options{
		SemanticLevel:             GraphemeCluster,
		DefaultQuantificationKind: pattern.QuantEager,
	}
}

// Stack is a scoped stack of Options: beginScope pushes a copy of the
// current top so writes inside a scope never leak past endScope.
type Stack struct {
	frames []Options
}

// NewStack creates a Stack seeded with initial as its base frame.
func NewStack(initial Options) *Stack {
	return &Stack{frames: []Options{initial}}
}

// Top returns the current top-of-stack options by value.
func (s *Stack) Top() Options {
	return s.frames[len(s.frames)-1]
}

// BeginScope pushes a new frame copied from the current top. The caller
// must pair every BeginScope with an EndScope, typically via defer, so
// the scope is exited on every return path, including errors and panics.
func (s *Stack) BeginScope() {
	s.frames = append(s.frames, s.Top())
}

// EndScope pops the most recently pushed frame.
func (s *Stack) EndScope() {
	if len(s.frames) <= 1 {
		panic("options: EndScope without matching BeginScope")
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// Apply applies an option-change sequence to the current top-of-stack
// frame in place.
func (s *Stack) Apply(changes []pattern.OptionChange) {
	top := s.Top()
	applyChanges(&top, changes)
	s.frames[len(s.frames)-1] = top
}

// ApplyTo applies an option-change sequence to an arbitrary Options value
// (used for initialOptions, which lives outside the scope stack).
func ApplyTo(o *Options, changes []pattern.OptionChange) {
	applyChanges(o, changes)
}

func applyChanges(o *Options, changes []pattern.OptionChange) {
	for _, c := range changes {
		switch c.Name {
		case "caseInsensitive":
			o.CaseInsensitive = c.Value.(bool)
		case "dotMatchesNewline":
			o.DotMatchesNewline = c.Value.(bool)
		case "anchorsMatchNewlines":
			o.AnchorsMatchNewlines = c.Value.(bool)
		case "usesSimpleUnicodeBoundaries":
			o.UsesSimpleUnicodeBoundaries = c.Value.(bool)
		case "usesASCIIWord":
			o.UsesASCIIWord = c.Value.(bool)
		case "semanticLevel":
			switch v := c.Value.(type) {
			case SemanticLevel:
				o.SemanticLevel = v
			case string:
				if v == "unicodeScalar" {
					o.SemanticLevel = UnicodeScalar
				} else {
					o.SemanticLevel = GraphemeCluster
				}
			}
		case "defaultQuantificationKind":
			switch v := c.Value.(type) {
			case pattern.QuantKind:
				o.DefaultQuantificationKind = v
			}
		}
	}
}
