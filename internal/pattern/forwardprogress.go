package pattern

// GuaranteesForwardProgress reports whether matching node is guaranteed
// to advance the input position by at least one unit: the structural
// predicate consulted by unbounded quantification to decide whether a
// same-position check is required. It is a small recursive switch over
// the tree shape, unmemoized, called once per quantifier body at
// compile time.
func GuaranteesForwardProgress(n Node) bool {
	switch v := n.(type) {
	case *Concatenation:
		for _, child := range v.Children {
			if GuaranteesForwardProgress(child) {
				return true
			}
		}
		return false

	case *OrderedChoice:
		for _, child := range v.Children {
			if !GuaranteesForwardProgress(child) {
				return false
			}
		}
		return len(v.Children) > 0

	case *Capture:
		return GuaranteesForwardProgress(v.Child)

	case *NonCapturingGroup:
		switch v.Kind {
		case GroupLookahead, GroupNegativeLookahead, GroupLookbehind, GroupNegativeLookbehind:
			return false
		default:
			return GuaranteesForwardProgress(v.Child)
		}

	case *Quantification:
		return v.Amount.Low >= 1 && GuaranteesForwardProgress(v.Child)

	case *Atom:
		switch v.Kind {
		case AtomChangeMatchingOptions, AtomAssertion:
			return false
		default:
			return true
		}

	case *CustomCharacterClass:
		return true

	case *QuotedLiteral:
		return v.Value != ""

	case *Matcher, *Trivia, *Empty:
		return false

	default:
		return false
	}
}
