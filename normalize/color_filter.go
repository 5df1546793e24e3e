package normalize

import (
	"strings"
)

// colorVocabulary is the fixed bilingual (French/English) color and
// finish vocabulary. Entries are matched as whole tokens only, after
// both sides go through DeepNormalize: "noir" never eats "noire"'s stem
// inside another word, and multi-word finishes match token by token.
var colorVocabulary = []string{
	// base colors
	"noir", "noire", "black", "blanc", "blanche", "white",
	"rouge", "red", "bleu", "bleue", "blue", "vert", "verte", "green",
	"jaune", "yellow", "orange", "gris", "grise", "gray", "grey",
	"violet", "purple", "rose", "pink", "brun", "brune", "brown",
	"marron", "beige", "turquoise", "bourgogne", "burgundy",
	// metallics and finishes
	"argent", "silver", "or", "gold", "dore", "doree", "golden",
	"bronze", "cuivre", "copper", "chrome", "titane", "titanium",
	"metallique", "metallic", "metallise", "metallisee",
	"mat", "matte", "brillant", "brillante", "gloss", "glossy",
	"satin", "satine", "perle", "pearl", "nacre", "nacree",
	// vehicle catalog color names
	"anthracite", "graphite", "gunmetal", "charcoal", "ebene", "ebony",
	"ivoire", "ivory", "sable", "sand", "midnight", "minuit",
	"phantom", "shadow", "storm", "granite", "denim", "lime",
	"magma", "lava", "candy", "cameleon", "camo", "camouflage",
}

// ColorFilter removes color and finish descriptor tokens from product
// text so two listings of the same model in different colors build the
// same key.
type ColorFilter struct {
	vocabulary map[string]struct{}
}

// NewColorFilter builds the filter with the built-in vocabulary, each
// entry normalized exactly like the text it will be matched against.
func NewColorFilter() *ColorFilter {
	vocab := make(map[string]struct{}, len(colorVocabulary))
	for _, entry := range colorVocabulary {
		for _, tok := range strings.Fields(DeepNormalize(entry)) {
			vocab[tok] = struct{}{}
		}
	}
	return &ColorFilter{vocabulary: vocab}
}

// RemoveColors normalizes text and drops every whole token found in the
// color vocabulary. The result can be empty when every token was a
// color; the caller decides what to do in that case.
func (cf *ColorFilter) RemoveColors(text string) string {
	tokens := strings.Fields(DeepNormalize(text))

	kept := tokens[:0]
	for _, tok := range tokens {
		if _, isColor := cf.vocabulary[tok]; !isColor {
			kept = append(kept, tok)
		}
	}

	return strings.Join(kept, " ")
}

// IsColorToken reports whether a single normalized token is in the
// color vocabulary.
func (cf *ColorFilter) IsColorToken(token string) bool {
	_, ok := cf.vocabulary[token]
	return ok
}
