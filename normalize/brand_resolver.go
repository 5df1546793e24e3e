package normalize

import (
	"sort"
	"strings"
)

// knownBrands lists the powersports and vehicle brands the resolver can
// detect, in canonical form. Detection happens on DeepNormalize output,
// so hyphenated makes appear here in their collapsed spelling.
var knownBrands = []string{
	"kawasaki", "honda", "yamaha", "suzuki", "ktm", "ducati", "triumph",
	"aprilia", "husqvarna", "beta", "gasgas", "bmw", "indian", "victory",
	"polaris", "canam", "seadoo", "skidoo", "lynx", "cfmoto", "kymco",
	"arctic cat", "harley davidson", "royal enfield", "moto guzzi",
	"mv agusta", "vespa", "piaggio", "benelli", "sherco", "stacyc",
	"argo", "segway", "kove", "talaria", "surron",
}

// brandAliases unifies spelling variants that survive normalization
// (spaced forms of hyphenated makes, shorthand) to one canonical name.
var brandAliases = map[string]string{
	"can am":          "canam",
	"sea doo":         "seadoo",
	"ski doo":         "skidoo",
	"cf moto":         "cfmoto",
	"gas gas":         "gasgas",
	"harley":          "harley davidson",
	"harleydavidson":  "harley davidson",
	"arcticcat":       "arctic cat",
	"royalenfield":    "royal enfield",
	"motoguzzi":       "moto guzzi",
	"mvagusta":        "mv agusta",
	"sur ron":         "surron",
	"hd":              "harley davidson",
}

// BrandResolver detects a known brand inside normalized product text
// and canonicalizes spelling variants.
type BrandResolver struct {
	// brands holds every detectable spelling (canonical names plus
	// aliases), longest first so "moto guzzi" wins over any shorter
	// brand it could shadow.
	brands []string
}

// NewBrandResolver builds a resolver over the built-in brand list.
func NewBrandResolver() *BrandResolver {
	seen := make(map[string]struct{}, len(knownBrands)+len(brandAliases))
	var brands []string

	add := func(b string) {
		if _, dup := seen[b]; !dup {
			seen[b] = struct{}{}
			brands = append(brands, b)
		}
	}
	for _, b := range knownBrands {
		add(b)
	}
	for alias := range brandAliases {
		add(alias)
	}

	sort.Slice(brands, func(i, j int) bool {
		if len(brands[i]) != len(brands[j]) {
			return len(brands[i]) > len(brands[j])
		}
		return brands[i] < brands[j]
	})

	return &BrandResolver{brands: brands}
}

// Canonical maps a normalized brand spelling to its canonical form.
// Unknown brands pass through unchanged.
func (br *BrandResolver) Canonical(brand string) string {
	if canonical, ok := brandAliases[brand]; ok {
		return canonical
	}
	return brand
}

// Detect finds a known brand in already-normalized text. A brand at the
// start of the string wins; otherwise the first known brand occurring
// anywhere is excised. Returns the canonical brand and the remaining
// text, or ("", text) when no brand is present.
func (br *BrandResolver) Detect(normalizedName string) (string, string) {
	for _, brand := range br.brands {
		if normalizedName == brand {
			return br.Canonical(brand), ""
		}
		if strings.HasPrefix(normalizedName, brand+" ") {
			remainder := strings.TrimSpace(normalizedName[len(brand):])
			return br.Canonical(brand), remainder
		}
	}

	// No brand up front: take the first whole-token occurrence anywhere.
	padded := " " + normalizedName + " "
	bestIdx := -1
	bestBrand := ""
	for _, brand := range br.brands {
		idx := strings.Index(padded, " "+brand+" ")
		if idx >= 0 && (bestIdx == -1 || idx < bestIdx) {
			bestIdx = idx
			bestBrand = brand
		}
	}
	if bestIdx == -1 {
		return "", normalizedName
	}

	before := padded[:bestIdx]
	after := padded[bestIdx+len(bestBrand)+2:]
	remainder := strings.Join(strings.Fields(before+" "+after), " ")
	return br.Canonical(bestBrand), remainder
}
