package matching

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricematch/models"
)

// captureObserver records events for assertions. Safe for the engine's
// worker pool.
type captureObserver struct {
	mu     sync.Mutex
	events []Event
}

func (c *captureObserver) Observe(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captureObserver) byType(t EventType) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Event
	for _, e := range c.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func newTestEngine(ignoreColors bool, obs Observer) *Engine {
	return NewEngine(Config{IgnoreColors: ignoreColors, Workers: 1, Observer: obs})
}

func TestMatchExactTierEndToEnd(t *testing.T) {
	engine := newTestEngine(true, nil)

	reference := []models.ProductRecord{
		{Brand: "kawasaki", Model: "ninja 500", Year: 2024, Price: 8999, SourceURL: "rA", SourceSite: "siteA"},
	}
	comparison := []models.ProductRecord{
		{Brand: "kawasaki", Model: "ninja 500 noir", Year: 2024, Price: 8499, SourceURL: "cA", SourceSite: "siteB"},
	}

	results := engine.Match(context.Background(), reference, comparison)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "cA", r.Product.SourceURL)
	assert.Equal(t, models.TierExact, r.MatchTier)
	assert.InDelta(t, 8999.0, r.PrixReference, 0.001)
	require.NotNil(t, r.DifferencePrix)
	assert.InDelta(t, -500.0, *r.DifferencePrix, 0.001)
	assert.Equal(t, "siteA", r.SiteReference)
	assert.Equal(t, "rA", r.ProduitReference.SourceURL)
}

func TestMatchYearWildcardTier(t *testing.T) {
	engine := newTestEngine(true, nil)

	reference := []models.ProductRecord{
		{Brand: "kawasaki", Model: "ninja 500", Year: 0, Price: 8999, SourceURL: "rA"},
	}
	comparison := []models.ProductRecord{
		{Brand: "kawasaki", Model: "ninja 500", Year: 2024, Price: 8499, SourceURL: "cA"},
	}

	results := engine.Match(context.Background(), reference, comparison)
	require.Len(t, results, 1)
	assert.Equal(t, models.TierYearWildcard, results[0].MatchTier)
}

func TestMatchModelInclusionTier(t *testing.T) {
	engine := newTestEngine(true, nil)

	reference := []models.ProductRecord{
		{Brand: "kawasaki", Model: "ninja 500", Year: 2024, Price: 8999, SourceURL: "rA"},
	}
	comparison := []models.ProductRecord{
		{Brand: "kawasaki", Model: "ninja 500 edition", Year: 2024, Price: 8499, SourceURL: "cA"},
	}

	results := engine.Match(context.Background(), reference, comparison)
	require.Len(t, results, 1)
	assert.Equal(t, models.TierModelInclusion, results[0].MatchTier)
}

func TestMatchSignificanceVeto(t *testing.T) {
	obs := &captureObserver{}
	engine := newTestEngine(true, obs)

	reference := []models.ProductRecord{
		{Brand: "kawasaki", Model: "ninja 500", Year: 2024, Price: 8999, SourceURL: "rA"},
	}
	comparison := []models.ProductRecord{
		// The SE trim is a different product.
		{Brand: "kawasaki", Model: "ninja 500 se", Year: 2024, Price: 8499, SourceURL: "cA"},
	}

	results := engine.Match(context.Background(), reference, comparison)
	assert.Empty(t, results)

	vetoes := obs.byType(EventSignificanceVeto)
	require.Len(t, vetoes, 1)
	assert.Equal(t, []string{"se"}, vetoes[0].Tokens)
	assert.Len(t, obs.byType(EventNoMatch), 1)
}

func TestMatchNeverCrossesBrands(t *testing.T) {
	engine := newTestEngine(true, nil)

	reference := []models.ProductRecord{
		{Brand: "honda", Model: "ninja 500", Year: 2024, Price: 8999, SourceURL: "rA"},
	}
	comparison := []models.ProductRecord{
		{Brand: "kawasaki", Model: "ninja 500", Year: 2024, Price: 8499, SourceURL: "cA"},
	}

	assert.Empty(t, engine.Match(context.Background(), reference, comparison))
}

func TestMatchNeverBridgesSpecifiedYears(t *testing.T) {
	engine := newTestEngine(true, nil)

	reference := []models.ProductRecord{
		{Brand: "kawasaki", Model: "ninja 500", Year: 2023, Price: 8999, SourceURL: "rA"},
	}
	comparison := []models.ProductRecord{
		{Brand: "kawasaki", Model: "ninja 500", Year: 2024, Price: 8499, SourceURL: "cA"},
	}

	assert.Empty(t, engine.Match(context.Background(), reference, comparison))
}

func TestMatchSkipsRecordsWithoutKey(t *testing.T) {
	obs := &captureObserver{}
	engine := newTestEngine(true, obs)

	reference := []models.ProductRecord{
		{Brand: "kawasaki", Model: "ninja 500", Year: 2024, Price: 8999, SourceURL: "rA"},
	}
	comparison := []models.ProductRecord{
		{SourceURL: "cEmpty"},
		{Brand: "kawasaki", Model: "ninja 500", Year: 2024, Price: 8499, SourceURL: "cA"},
	}

	results := engine.Match(context.Background(), reference, comparison)
	require.Len(t, results, 1)
	assert.Equal(t, "cA", results[0].Product.SourceURL)
	assert.Len(t, obs.byType(EventSkippedNoKey), 1)
}

func TestMatchKeysFromFreeTextNames(t *testing.T) {
	engine := newTestEngine(true, nil)

	reference := []models.ProductRecord{
		{Name: "Kawasaki Ninja 500 2024", Price: 8999, SourceURL: "rA", SourceSite: "siteA"},
	}
	comparison := []models.ProductRecord{
		{Name: "KAWASAKI NINJA500 Noir Mat 2024", Price: 8499, SourceURL: "cA"},
	}

	results := engine.Match(context.Background(), reference, comparison)
	require.Len(t, results, 1)
	assert.Equal(t, models.TierExact, results[0].MatchTier)
}

func TestMatchPreservesInputOrder(t *testing.T) {
	engine := NewEngine(Config{IgnoreColors: true, Workers: 4})

	var reference []models.ProductRecord
	var comparison []models.ProductRecord
	for i := 0; i < 50; i++ {
		model := fmt.Sprintf("ninja %d", 100+i)
		reference = append(reference, models.ProductRecord{
			Brand: "kawasaki", Model: model, Year: 2024, Price: float64(5000 + i), SourceURL: fmt.Sprintf("r%d", i),
		})
		comparison = append(comparison, models.ProductRecord{
			Brand: "kawasaki", Model: model, Year: 2024, Price: float64(4000 + i), SourceURL: fmt.Sprintf("c%d", i),
		})
	}

	results := engine.Match(context.Background(), reference, comparison)
	require.Len(t, results, len(comparison))
	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("c%d", i), r.Product.SourceURL)
	}
}

func TestMatchDoesNotMutateInputs(t *testing.T) {
	engine := newTestEngine(true, nil)

	reference := []models.ProductRecord{
		{Brand: "kawasaki", Model: "ninja 500", Year: 2024, Price: 8999, SourceURL: "rA"},
	}
	comparison := []models.ProductRecord{
		{Brand: "kawasaki", Model: "ninja 500", Year: 2024, Price: 8499, SourceURL: "cA"},
	}
	refCopy := reference[0]
	compCopy := comparison[0]

	engine.Match(context.Background(), reference, comparison)

	assert.Equal(t, refCopy, reference[0])
	assert.Equal(t, compCopy, comparison[0])
}

func TestMatchCancelledContext(t *testing.T) {
	engine := NewEngine(Config{IgnoreColors: true, Workers: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reference := []models.ProductRecord{
		{Brand: "kawasaki", Model: "ninja 500", Year: 2024, Price: 8999, SourceURL: "rA"},
	}
	comparison := []models.ProductRecord{
		{Brand: "kawasaki", Model: "ninja 500", Year: 2024, Price: 8499, SourceURL: "cA"},
	}

	// Already-cancelled context: no work, no panic, empty but valid
	// result.
	assert.Empty(t, engine.Match(ctx, reference, comparison))
}

func TestMatchCancelledContextParallel(t *testing.T) {
	// The parallel path must drain queued work and return instead of
	// hanging on the pool when the context is already cancelled.
	engine := NewEngine(Config{IgnoreColors: true, Workers: 4})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var reference []models.ProductRecord
	var comparison []models.ProductRecord
	for i := 0; i < 20; i++ {
		model := fmt.Sprintf("ninja %d", 100+i)
		reference = append(reference, models.ProductRecord{
			Brand: "kawasaki", Model: model, Year: 2024, Price: 5000, SourceURL: fmt.Sprintf("r%d", i),
		})
		comparison = append(comparison, models.ProductRecord{
			Brand: "kawasaki", Model: model, Year: 2024, Price: 4000, SourceURL: fmt.Sprintf("c%d", i),
		})
	}

	assert.Empty(t, engine.Match(ctx, reference, comparison))
}

func TestMatchDifferencePrixRequiresBothPrices(t *testing.T) {
	engine := newTestEngine(true, nil)

	reference := []models.ProductRecord{
		{Brand: "kawasaki", Model: "ninja 500", Year: 2024, Price: 0, SourceURL: "rA"},
	}
	comparison := []models.ProductRecord{
		{Brand: "kawasaki", Model: "ninja 500", Year: 2024, Price: 8499, SourceURL: "cA"},
	}

	results := engine.Match(context.Background(), reference, comparison)
	require.Len(t, results, 1)
	assert.Nil(t, results[0].DifferencePrix)
	assert.Zero(t, results[0].PrixReference)
}

func TestMatchColorFallbackEvent(t *testing.T) {
	obs := &captureObserver{}
	engine := newTestEngine(true, obs)

	reference := []models.ProductRecord{
		{Name: "Kawasaki Noir Mat", Price: 8999, SourceURL: "rA"},
	}
	comparison := []models.ProductRecord{
		{Name: "Kawasaki Noir Mat", Price: 8499, SourceURL: "cA"},
	}

	results := engine.Match(context.Background(), reference, comparison)
	// The pre-filter fallback keeps the record matchable.
	require.Len(t, results, 1)
	assert.Len(t, obs.byType(EventColorFilterEmptied), 2)
}
