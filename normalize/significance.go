package normalize

import (
	"strings"
)

// trimVocabulary is the fixed set of trim/variant designations whose
// presence changes product identity: an SE is not the base model, a
// Touring is not a Sport. Entries are compared against DeepNormalize
// output, so fused suffix runs ("sxf") appear in fused form.
var trimVocabulary = []string{
	"se", "sel", "le", "ltd", "limited", "rr", "rs", "sx", "sxf", "xc",
	"xcw", "exc", "fe", "tc", "te", "fc", "fx", "ss", "sp", "gt", "dct",
	"abs", "trail", "touring", "sport", "enduro", "rally", "rallye",
	"adventure", "factory", "replica", "special", "anniversary",
	"premium", "ultimate", "xt", "lt", "xtr", "xmr", "xrs", "turbo",
	"pro", "max", "expert",
}

// significantLetters are the single letters that mark a submodel suffix
// on their own (KLX110R vs KLX110). A short token containing one of
// them is treated as identity-changing, which also covers fused runs
// like "rl" coming out of the normalizer.
const significantLetters = "rsxf"

// SignificanceFilter decides whether a token-level difference between
// two model strings changes product identity. It is the veto applied to
// fuzzy matches: a match is allowed to differ by a color or a typo,
// never by a displacement figure or a trim designation.
type SignificanceFilter struct {
	trims map[string]struct{}
}

// NewSignificanceFilter builds the filter over the built-in trim
// vocabulary.
func NewSignificanceFilter() *SignificanceFilter {
	trims := make(map[string]struct{}, len(trimVocabulary))
	for _, t := range trimVocabulary {
		trims[DeepNormalize(t)] = struct{}{}
	}
	return &SignificanceFilter{trims: trims}
}

// IsSignificantDifference reports whether any token in the set is
// identity-changing: purely numeric (displacement, size, year), a short
// token carrying a submodel suffix letter, or a known trim designation.
func (sf *SignificanceFilter) IsSignificantDifference(tokens []string) bool {
	for _, tok := range tokens {
		if sf.isSignificantToken(tok) {
			return true
		}
	}
	return false
}

func (sf *SignificanceFilter) isSignificantToken(tok string) bool {
	if tok == "" {
		return false
	}

	if isNumeric(tok) {
		return true
	}

	if _, known := sf.trims[tok]; known {
		return true
	}

	if len(tok) <= 3 && isAlphabetic(tok) && strings.ContainsAny(tok, significantLetters) {
		return true
	}

	return false
}

func isNumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

func isAlphabetic(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'a' || s[i] > 'z' {
			return false
		}
	}
	return len(s) > 0
}
