package builder

import "fmt"

// Unsupported reports a pattern-tree shape the backend deliberately does
// not implement: backward lookaround, \K, conditionals, recursion,
// relative backreferences, custom predicates, consumer nodes.
type Unsupported struct {
	Feature string
}

func (e *Unsupported) Error() string {
	return fmt.Sprintf("regengo: unsupported feature: %s", e.Feature)
}

// UncapturedReference reports a symbolic or named backreference with no
// matching capture, surfaced from Assemble.
type UncapturedReference struct {
	IDOrName string
}

func (e *UncapturedReference) Error() string {
	return fmt.Sprintf("regengo: uncaptured reference: %s", e.IDOrName)
}

// Unreachable signals an invariant violation: the parser produced a tree
// shape the compiler's invariants forbid. These are treated as fatal
// bugs, never best-effort recoveries.
type Unreachable struct {
	Diagnostic string
}

func (e *Unreachable) Error() string {
	return fmt.Sprintf("regengo: unreachable: %s", e.Diagnostic)
}
