package pricing

import (
	"regexp"
	"strconv"
	"strings"
)

// Scraped price text mixes currency symbol positions, locale separator
// conventions, several prices in one string (strikethrough old price
// next to the sale price) and, as an observed corruption mode, two
// prices concatenated into one digit run with no separator. The parser
// works through anchored patterns first and keeps a plausibility gate
// between anything it parses and the caller: a number that cannot be a
// vehicle price is worth less than no number at all.
//
// 0 is the "no price found" sentinel throughout.

const (
	numeral = `[0-9](?:[0-9 .,\x{00A0}]*[0-9])?`
)

var (
	currencySymbolRe = regexp.MustCompile(`[$€£]`)

	// non-price context: phone numbers, stock/reference codes, dates,
	// mileage, displacement, horsepower. Any of these disqualifies the
	// text unless a currency symbol vouches for it.
	contextRejectRe = regexp.MustCompile(`(?i)(t[eé]l[eé]?phone|\btel\b|\bfax\b|\bsku\b|\br[eé]f\b|r[eé]f[eé]rence|\bcode\b|\bstock\b|\bvin\b|\d{4}-\d{2}-\d{2}|\d{2}/\d{2}/\d{4}|\bkm\b|kilom[eé]trage|\bmi\b|miles|\bcc\b|cm3|\bhp\b|\bch\b|\bcv\b)`)

	currencyPrefixRe = regexp.MustCompile(`[$€£]\s*(` + numeral + `)`)
	currencySuffixRe = regexp.MustCompile(`(` + numeral + `)\s*[$€£]`)
	currencyCodeRe   = regexp.MustCompile(`(?i)(` + numeral + `)\s*(?:cad|usd|eur)\b`)
	priceKeywordRe   = regexp.MustCompile(`(?i)(?:prix|price)\s*:?\s*(` + numeral + `)`)

	// a text that is nothing but one digit run (with optional
	// separators), the shape concatenated-price corruption takes.
	bareNumeralRe = regexp.MustCompile(`^\s*(` + numeral + `)\s*$`)

	anyNumberRe = regexp.MustCompile(numeral)
	digitRe     = regexp.MustCompile(`[0-9]`)
)

// ExtractPrice pulls the most plausible price out of noisy scraped
// text. Returns 0 when no plausible price is present.
func ExtractPrice(text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	hasCurrency := currencySymbolRe.MatchString(text)

	if !hasCurrency && contextRejectRe.MatchString(text) {
		return 0
	}

	// Several currency symbols usually means old price + sale price in
	// one string; catalog markup puts the current price last.
	if len(currencySymbolRe.FindAllString(text, -1)) > 1 {
		if price := lastCurrencyAnchoredPrice(text, hasCurrency); price > 0 {
			return price
		}
	}

	for _, re := range []*regexp.Regexp{
		currencyPrefixRe, currencySuffixRe, currencyCodeRe, priceKeywordRe, bareNumeralRe,
	} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if price := gatedParse(m[1], hasCurrency); price > 0 {
			return price
		}
		// An anchored match that fails the gate is this text's best
		// shot; keep only the currency fallback after it.
		break
	}

	if hasCurrency {
		return fallbackBareNumber(text)
	}

	return 0
}

// lastCurrencyAnchoredPrice extracts every currency-anchored numeric
// substring and returns the last one in reading order that clears the
// plausibility gate.
func lastCurrencyAnchoredPrice(text string, hasCurrency bool) float64 {
	type hit struct {
		pos int
		raw string
	}
	var hits []hit

	for _, re := range []*regexp.Regexp{currencyPrefixRe, currencySuffixRe} {
		for _, idx := range re.FindAllStringSubmatchIndex(text, -1) {
			hits = append(hits, hit{pos: idx[2], raw: text[idx[2]:idx[3]]})
		}
	}

	best := 0.0
	bestPos := -1
	for _, h := range hits {
		if h.pos < bestPos {
			continue
		}
		if price := gatedParse(h.raw, hasCurrency); price > 0 {
			best = price
			bestPos = h.pos
		}
	}
	return best
}

// gatedParse cleans the locale separators out of a matched numeral,
// parses it and runs the plausibility gate.
func gatedParse(raw string, hasCurrency bool) float64 {
	cleaned := cleanNumeral(raw)
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return plausible(value, cleaned, hasCurrency)
}

// cleanNumeral converts a locale-formatted numeral to strconv form.
// With both separators present the rightmost one is the decimal mark;
// a lone comma is decimal only when followed by exactly two digits.
func cleanNumeral(raw string) string {
	s := strings.Map(func(r rune) rune {
		if r == ' ' || r == ' ' {
			return -1
		}
		return r
	}, raw)

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma && hasDot:
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			// European: 1.234,56
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// North American: 1,234.56
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		last := strings.LastIndex(s, ",")
		if strings.Count(s, ",") == 1 && len(s)-last-1 == 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	return s
}

// plausible applies the vehicle-price domain gates to a parsed value.
// cleaned is the strconv-form numeral the value came from, used for
// digit-run shape checks. Returns the accepted price (possibly the
// recovered half of a concatenated run) or 0.
func plausible(value float64, cleaned string, hasCurrency bool) float64 {
	digits := len(digitRe.FindAllString(cleaned, -1))
	hasDecimal := strings.Contains(cleaned, ".")

	// Ten bare digits with no currency anywhere is a phone number.
	// Checked before the magnitude gates: most phone numbers clear 1e9
	// and the splitter will happily carve an arbitrary digit run.
	if digits == 10 && !hasDecimal && !hasCurrency {
		return 0
	}

	// Unix-timestamp artifacts and other billion-scale garbage.
	if value >= 1e9 {
		return SplitConcatenatedPrice(cleaned)
	}

	if value > 300000 {
		if split := SplitConcatenatedPrice(cleaned); split > 0 {
			return split
		}
		if value > 500000 {
			return 0
		}
		return value
	}

	if value < 1 {
		return 0
	}

	if digits >= 8 && !hasDecimal {
		if split := SplitConcatenatedPrice(cleaned); split > 0 {
			return split
		}
		if digits >= 9 {
			return 0
		}
	}

	return value
}

// fallbackBareNumber takes the first bare number in the vehicle price
// range when a currency symbol is present but no anchored pattern
// produced a usable value.
func fallbackBareNumber(text string) float64 {
	for _, raw := range anyNumberRe.FindAllString(text, -1) {
		value, err := strconv.ParseFloat(cleanNumeral(raw), 64)
		if err != nil {
			continue
		}
		if value >= 50 && value <= 1000000 {
			return value
		}
	}
	return 0
}
