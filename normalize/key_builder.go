package normalize

import (
	"regexp"
	"strings"

	"pricematch/models"
)

var (
	// label prefixes the extraction side sometimes leaves on field
	// values ("Marque: Kawasaki").
	labelPrefixRe = regexp.MustCompile(`(?i)^\s*(marque|mod[eè]le|modele|brand|model)\s*:\s*`)

	// first plausible 4-digit model year in normalized text.
	yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// noisePhrases are dealer and location suffixes that scraped titles
// drag along ("... en vente à Laval"). The model string is truncated at
// the first one found. Phrases are in normalized form.
var noisePhrases = []string{
	"en vente a", "en vente chez", "a vendre", "disponible chez",
	"disponible a", "en inventaire", "en stock", "usage", "neuf",
	"montreal", "laval", "quebec", "levis", "sherbrooke", "gatineau",
	"terrebonne", "mirabel", "joliette", "trois rivieres",
	"saint jerome", "saint eustache", "saint hyacinthe", "granby",
	"drummondville", "victoriaville", "rimouski", "chicoutimi",
}

// KeyInfo carries side observations from key construction that the
// caller may want to surface without the builder logging anything
// itself.
type KeyInfo struct {
	// ColorFallback is true when the color filter emptied the model and
	// the pre-filter model was used instead.
	ColorFallback bool
}

// KeyBuilder composes the normalizer, brand resolver and color filter
// into canonical (brand, model, year) keys.
type KeyBuilder struct {
	brands *BrandResolver
	colors *ColorFilter
}

// NewKeyBuilder builds a KeyBuilder with the built-in vocabularies.
func NewKeyBuilder() *KeyBuilder {
	return &KeyBuilder{
		brands: NewBrandResolver(),
		colors: NewColorFilter(),
	}
}

// Build returns the canonical key for a record. See BuildWithInfo.
func (kb *KeyBuilder) Build(record models.ProductRecord, ignoreColors bool) models.NormalizedKey {
	key, _ := kb.BuildWithInfo(record, ignoreColors)
	return key
}

// BuildWithInfo builds the canonical key and reports construction side
// observations. The function is total: malformed or empty fields
// degrade to empty-string and zero sentinels, and a record with no
// usable text at all yields the zero key.
func (kb *KeyBuilder) BuildWithInfo(record models.ProductRecord, ignoreColors bool) (models.NormalizedKey, KeyInfo) {
	var info KeyInfo

	brand := DeepNormalize(stripLabelPrefix(record.Brand))
	model := DeepNormalize(stripLabelPrefix(record.Model))
	year := record.Year

	if brand == "" || model == "" {
		name := DeepNormalize(record.Name)

		detected, remainder := kb.brands.Detect(name)
		remainder, nameYear := extractYear(remainder)
		if year == 0 {
			year = nameYear
		}

		if brand == "" {
			brand = detected
		}
		if model == "" {
			// With no detected brand this is the whole year-stripped
			// name, which is the documented fallback.
			model = remainder
		}
	} else if year == 0 {
		model, year = extractYear(model)
	}

	brand = kb.brands.Canonical(brand)
	model = truncateAtNoise(model)

	if ignoreColors && model != "" {
		filtered := kb.colors.RemoveColors(model)
		if filtered == "" {
			info.ColorFallback = true
		} else {
			model = filtered
		}
	}

	return models.NormalizedKey{
		Brand: brand,
		Model: strings.Join(strings.Fields(model), " "),
		Year:  year,
	}, info
}

func stripLabelPrefix(s string) string {
	return labelPrefixRe.ReplaceAllString(s, "")
}

// extractYear pulls the first 4-digit year token out of normalized text
// and returns the text without it. Not found means year 0.
func extractYear(text string) (string, int) {
	loc := yearRe.FindStringIndex(text)
	if loc == nil {
		return text, 0
	}

	year := 0
	for _, c := range text[loc[0]:loc[1]] {
		year = year*10 + int(c-'0')
	}

	rest := text[:loc[0]] + text[loc[1]:]
	return strings.Join(strings.Fields(rest), " "), year
}

// truncateAtNoise cuts the model at the first dealer/location phrase.
// Matching is on token boundaries so "granby" cannot fire inside a
// longer word.
func truncateAtNoise(model string) string {
	padded := " " + model + " "
	cut := -1
	for _, phrase := range noisePhrases {
		idx := strings.Index(padded, " "+phrase+" ")
		if idx >= 0 && (cut == -1 || idx < cut) {
			cut = idx
		}
	}
	if cut == -1 {
		return model
	}
	return strings.TrimSpace(padded[1:cut+1])
}
