package pattern

import "testing"

func TestGuaranteesForwardProgress(t *testing.T) {
	charA := &Atom{Kind: AtomChar, Char: 'a'}
	charB := &Atom{Kind: AtomChar, Char: 'b'}
	optChange := &Atom{Kind: AtomChangeMatchingOptions}
	assertion := &Atom{Kind: AtomAssertion, Assert: AssertWordBoundary}

	tests := []struct {
		name string
		node Node
		want bool
	}{
		{"single char atom", charA, true},
		{"option change atom", optChange, false},
		{"assertion atom", assertion, false},
		{"empty", &Empty{}, false},
		{"trivia", &Trivia{}, false},
		{"matcher", &Matcher{Name: "m"}, false},
		{"non-empty literal", &QuotedLiteral{Value: "abc"}, true},
		{"empty literal", &QuotedLiteral{Value: ""}, false},
		{"custom character class", &CustomCharacterClass{Ranges: []rune{'a', 'z'}}, true},
		{
			"concatenation with one progressing child",
			&Concatenation{Children: []Node{optChange, charA}},
			true,
		},
		{
			"concatenation with no progressing child",
			&Concatenation{Children: []Node{optChange, assertion}},
			false,
		},
		{
			"choice where all branches progress",
			&OrderedChoice{Children: []Node{charA, charB}},
			true,
		},
		{
			"choice where one branch does not progress",
			&OrderedChoice{Children: []Node{charA, &Empty{}}},
			false,
		},
		{
			"empty choice",
			&OrderedChoice{},
			false,
		},
		{
			"capture delegates to child",
			&Capture{Child: charA},
			true,
		},
		{
			"lookahead never progresses",
			&NonCapturingGroup{Kind: GroupLookahead, Child: charA},
			false,
		},
		{
			"atomic group delegates to child",
			&NonCapturingGroup{Kind: GroupAtomicNonCapturing, Child: charA},
			true,
		},
		{
			"quantifier with low=0 never guarantees progress",
			&Quantification{Amount: Amount{Low: 0}, Child: charA},
			false,
		},
		{
			"quantifier with low>=1 delegates to child",
			&Quantification{Amount: Amount{Low: 1}, Child: charA},
			true,
		},
		{
			"quantifier with low>=1 but non-progressing child",
			&Quantification{Amount: Amount{Low: 2}, Child: optChange},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GuaranteesForwardProgress(tt.node); got != tt.want {
				t.Errorf("GuaranteesForwardProgress(%s) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
