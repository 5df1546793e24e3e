package matching

import (
	"math"

	"pricematch/models"
)

// PickBest selects the reference candidate for a comparison record.
// With a usable current price the priced candidate closest to it wins,
// ties going to the earliest candidate; without one (or when no
// candidate has a price) the first candidate wins. Candidates must be
// in insertion order; the tie-break is only deterministic because the
// engine's indices preserve it.
func PickBest(candidates []*models.ProductRecord, currentPrice float64) *models.ProductRecord {
	if len(candidates) == 0 {
		return nil
	}

	if currentPrice <= 0 {
		return candidates[0]
	}

	var best *models.ProductRecord
	bestDelta := math.Inf(1)
	for _, c := range candidates {
		if c.Price <= 0 {
			continue
		}
		delta := math.Abs(currentPrice - c.Price)
		if delta < bestDelta {
			best = c
			bestDelta = delta
		}
	}

	if best == nil {
		return candidates[0]
	}
	return best
}
