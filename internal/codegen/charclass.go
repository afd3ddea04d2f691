package codegen

import "github.com/KromDaniel/regengo/internal/pattern"

// AsciiBitset is a 256-bit set, one bit per byte value, the
// representation a matchBitset instruction consumes.
type AsciiBitset [32]byte

func (bs *AsciiBitset) set(b byte) {
	bs[b/8] |= 1 << (b % 8)
}

func (bs AsciiBitset) test(b byte) bool {
	return bs[b/8]&(1<<(b%8)) != 0
}

// BuildAsciiBitset renders ranges (inclusive [lo,hi] scalar pairs) into
// a bitset.
func BuildAsciiBitset(ranges []rune) AsciiBitset {
	var bs AsciiBitset
	for i := 0; i+1 < len(ranges); i += 2 {
		lo, hi := ranges[i], ranges[i+1]
		for c := lo; c <= hi && c < 256; c++ {
			bs.set(byte(c))
		}
	}
	return bs
}

// AsciiBitsetConvertible reports whether a CustomCharacterClass can be
// represented as a 256-bit ASCII bitset. A class with free-form Members
// callbacks, or the single-member "any" class (which lowers to emitDot
// instead), is not convertible.
func AsciiBitsetConvertible(ccc *pattern.CustomCharacterClass) (AsciiBitset, bool) {
	if ccc.AnyMember || len(ccc.Members) != 0 {
		return AsciiBitset{}, false
	}
	for i := 0; i+1 < len(ccc.Ranges); i += 2 {
		if ccc.Ranges[i] > 0xff || ccc.Ranges[i+1] > 0xff {
			return AsciiBitset{}, false
		}
	}
	bs := BuildAsciiBitset(ccc.Ranges)
	if ccc.Inverted {
		for i := range bs {
			bs[i] = ^bs[i]
		}
	}
	return bs, true
}

// namedClassSignatures is a small table of common classes, kept purely
// for the verbose-log diagnostic ("converted \w to an ASCII bitset")
// that names the class a conversion specialized.
var namedClassSignatures = map[string][]rune{
	"word":      {'0', '9', 'A', 'Z', '_', '_', 'a', 'z'},
	"digit":     {'0', '9'},
	"space":     {'\t', '\n', '\v', '\f', '\r', '\r', ' ', ' '},
	"lowercase": {'a', 'z'},
	"uppercase": {'A', 'Z'},
	"alpha":     {'A', 'Z', 'a', 'z'},
}

// DetectNamedClass returns a human name for ranges if they match one of
// the common classes, for diagnostics only; it has no effect on codegen.
func DetectNamedClass(ranges []rune) string {
	for name, sig := range namedClassSignatures {
		if runesEqual(ranges, sig) {
			return name
		}
	}
	return ""
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsSingleGraphemeBuiltin reports whether a BuiltinClass is guaranteed to
// consume exactly one grapheme cluster when it matches, the condition
// the fast-quantify specialization requires for a "builtin-class" body
// variant. Every BuiltinClass this tree can hold is, by construction, a
// single-grapheme class (\w, \d, \s and their negations, or a resolved
// Unicode property test) — multi-grapheme builtins are not part of the
// pattern tree's data model.
func IsSingleGraphemeBuiltin(c *pattern.BuiltinClass) bool {
	return c != nil
}
