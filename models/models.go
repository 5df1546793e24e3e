package models

import (
	"fmt"
)

// ProductRecord represents a single scraped product listing.
// Records arrive already parsed from the scraping side; the matching
// engine treats them as read-only. A Year of 0 means the listing did not
// carry a model year, and a Price of 0 means no usable price was found.
//
// The snake_case JSON tags are the scrape-side input contract and
// deliberately differ from MatchResult's camelCase output fields; a
// record embedded in a result keeps its input spelling.
type ProductRecord struct {
	Name       string  `json:"name"`
	Brand      string  `json:"brand,omitempty"`
	Model      string  `json:"model,omitempty"`
	Year       int     `json:"year,omitempty"`
	Price      float64 `json:"price,omitempty"`
	SourceURL  string  `json:"source_url"`
	SourceSite string  `json:"source_site"`
}

// HasPrice returns true if the record carries a usable price.
func (p *ProductRecord) HasPrice() bool {
	return p.Price > 0
}

// NormalizedKey is the canonical (brand, model, year) triple a record is
// indexed and compared under. It is derived on demand and never stored.
// Year 0 acts as a wildcard that matches any year.
type NormalizedKey struct {
	Brand string
	Model string
	Year  int
}

// IsZero reports whether the key carries no usable identity at all.
func (k NormalizedKey) IsZero() bool {
	return k.Brand == "" && k.Model == "" && k.Year == 0
}

func (k NormalizedKey) String() string {
	return fmt.Sprintf("%s/%s/%d", k.Brand, k.Model, k.Year)
}

// MatchTier identifies which matching strategy produced a result.
type MatchTier string

const (
	TierExact          MatchTier = "exact"
	TierYearWildcard   MatchTier = "year_wildcard"
	TierModelInclusion MatchTier = "model_inclusion"
)

// ReferenceProduct is the reference-side summary attached to a match.
// The French field names are the wire contract expected by the
// downstream reporting side and are kept as-is.
type ReferenceProduct struct {
	Name      string  `json:"name"`
	SourceURL string  `json:"sourceUrl"`
	Price     float64 `json:"prix"`
}

// MatchResult is a comparison record enriched with the reference product
// it was matched to. DifferencePrix is comparison minus reference and is
// null in JSON unless both sides have a known, positive price.
type MatchResult struct {
	Product          ProductRecord    `json:"product"`
	PrixReference    float64          `json:"prixReference"`
	DifferencePrix   *float64         `json:"differencePrix"`
	SiteReference    string           `json:"siteReference"`
	ProduitReference ReferenceProduct `json:"produitReference"`
	MatchTier        MatchTier        `json:"matchTier"`
}

// NewMatchResult builds a MatchResult for a comparison record and the
// reference record it matched. The price delta is attached only when
// both prices are known.
func NewMatchResult(comparison ProductRecord, reference *ProductRecord, site string, tier MatchTier) MatchResult {
	result := MatchResult{
		Product:       comparison,
		PrixReference: reference.Price,
		SiteReference: site,
		ProduitReference: ReferenceProduct{
			Name:      reference.Name,
			SourceURL: reference.SourceURL,
			Price:     reference.Price,
		},
		MatchTier: tier,
	}

	if comparison.Price > 0 && reference.Price > 0 {
		diff := comparison.Price - reference.Price
		result.DifferencePrix = &diff
	}

	return result
}
