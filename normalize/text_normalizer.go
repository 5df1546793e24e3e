package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// deburr builds a transformer that decomposes to NFD and drops the
// combining marks, so "é" and "e" normalize identically regardless of
// how the site encoded them. The chain carries internal buffers and is
// not safe to share between goroutines, so each call gets a fresh one.
func deburr() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// DeepNormalize canonicalizes free text for product identity comparison:
// lowercase, diacritics stripped, a space forced between letter/digit
// boundaries ("ninja500" -> "ninja 500"), everything outside [a-z0-9 ]
// dropped, whitespace collapsed, and runs of single-letter tokens fused
// into one token ("r l" -> "rl") so spaced-out suffix letters and their
// concatenated form end up identical.
//
// The function is total, deterministic and idempotent.
func DeepNormalize(text string) string {
	text = strings.ToLower(text)

	if stripped, _, err := transform.String(deburr(), text); err == nil {
		text = stripped
	}

	text = splitLetterDigitBoundaries(text)
	text = dropNonAlphanumeric(text)

	return fuseSingleLetterTokens(strings.Fields(text))
}

// splitLetterDigitBoundaries inserts a space wherever a letter is
// directly followed by a digit or a digit by a letter.
func splitLetterDigitBoundaries(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 8)

	var prev rune
	for _, r := range text {
		if prev != 0 {
			prevLetter := unicode.IsLetter(prev)
			prevDigit := unicode.IsDigit(prev)
			if (prevLetter && unicode.IsDigit(r)) || (prevDigit && unicode.IsLetter(r)) {
				b.WriteByte(' ')
			}
		}
		b.WriteRune(r)
		prev = r
	}

	return b.String()
}

// dropNonAlphanumeric removes every character outside [a-z0-9 ].
// Removal (rather than replacement with a space) keeps hyphenated
// brands like "can-am" as a single token.
func dropNonAlphanumeric(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// fuseSingleLetterTokens merges consecutive single-letter alphabetic
// tokens ("s x f" -> "sxf"). Single digits are left alone: they come
// from displacement or size figures, not spelled-out suffixes.
func fuseSingleLetterTokens(tokens []string) string {
	var out []string
	var run strings.Builder

	flush := func() {
		if run.Len() > 0 {
			out = append(out, run.String())
			run.Reset()
		}
	}

	for _, tok := range tokens {
		if len(tok) == 1 && tok[0] >= 'a' && tok[0] <= 'z' {
			run.WriteString(tok)
			continue
		}
		flush()
		out = append(out, tok)
	}
	flush()

	return strings.Join(out, " ")
}
