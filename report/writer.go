// Package report renders match results for the downstream consumers
// the comparison runs feed: a JSON document mirroring the wire contract
// and a flat CSV for spreadsheet review.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"pricematch/models"
)

// Summary aggregates a comparison run.
type Summary struct {
	Compared      int `json:"compared"`
	Matched       int `json:"matched"`
	Cheaper       int `json:"cheaper"`
	MoreExpensive int `json:"more_expensive"`
	SamePrice     int `json:"same_price"`
	NoDelta       int `json:"no_delta"`
}

// Summarize tallies a result set. compared is the size of the original
// comparison input, including records that never matched.
func Summarize(results []models.MatchResult, compared int) Summary {
	s := Summary{Compared: compared, Matched: len(results)}
	for _, r := range results {
		if r.DifferencePrix == nil {
			s.NoDelta++
			continue
		}
		switch {
		case *r.DifferencePrix < 0:
			s.Cheaper++
		case *r.DifferencePrix > 0:
			s.MoreExpensive++
		default:
			s.SamePrice++
		}
	}
	return s
}

// document is the JSON report shape: summary first, then results.
type document struct {
	Summary Summary              `json:"summary"`
	Results []models.MatchResult `json:"results"`
}

// WriteJSON writes the full report as an indented JSON document.
func WriteJSON(w io.Writer, results []models.MatchResult, compared int) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(document{Summary: Summarize(results, compared), Results: results}); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// WriteCSV writes one row per match. Money columns go through decimal
// so 8999.9000000001-style float artifacts never reach the file.
func WriteCSV(w io.Writer, results []models.MatchResult) error {
	cw := csv.NewWriter(w)

	header := []string{
		"name", "brand", "model", "year", "price", "source_site", "source_url",
		"reference_name", "reference_price", "reference_site", "reference_url",
		"difference", "match_tier",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, r := range results {
		diff := ""
		if r.DifferencePrix != nil {
			diff = money(*r.DifferencePrix)
		}
		row := []string{
			r.Product.Name,
			r.Product.Brand,
			r.Product.Model,
			strconv.Itoa(r.Product.Year),
			money(r.Product.Price),
			r.Product.SourceSite,
			r.Product.SourceURL,
			r.ProduitReference.Name,
			money(r.PrixReference),
			r.SiteReference,
			r.ProduitReference.SourceURL,
			diff,
			string(r.MatchTier),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes the report to path in the given format ("json" or
// "csv").
func WriteFile(path, format string, results []models.MatchResult, compared int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()

	switch format {
	case "csv":
		return WriteCSV(f, results)
	case "json":
		return WriteJSON(f, results, compared)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// money renders a price with two decimals, 0 rendering as "0.00".
func money(v float64) string {
	return decimal.NewFromFloat(v).Round(2).StringFixed(2)
}
