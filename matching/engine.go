package matching

import (
	"context"
	"runtime"
	"strings"
	"sync"

	"pricematch/models"
	"pricematch/normalize"
)

// Config holds the engine's externally tunable surface. IgnoreColors is
// the only knob the matching semantics expose; the rest is plumbing.
type Config struct {
	// IgnoreColors controls whether color tokens participate in key
	// construction.
	IgnoreColors bool
	// Workers bounds the query-phase worker pool. Zero means one
	// worker per CPU.
	Workers int
	// Observer receives structured match events. Nil means none.
	Observer Observer
}

// modelKey indexes reference records by (brand, model) regardless of
// year, for the year-wildcard tier.
type modelKey struct {
	brand string
	model string
}

// refEntry is one indexed reference record with its precomputed key and
// model word set.
type refEntry struct {
	key    models.NormalizedKey
	words  map[string]struct{}
	record *models.ProductRecord
}

// Engine matches comparison records against an indexed reference set.
// Use is strictly two-phase: Match first builds the indices from the
// reference slice (single writer), then queries them read-only from a
// worker pool. Indices are per-call; the engine itself is reusable.
type Engine struct {
	ignoreColors bool
	workers      int
	observer     Observer

	keys         *normalize.KeyBuilder
	significance *normalize.SignificanceFilter
}

// NewEngine creates a matching engine.
func NewEngine(cfg Config) *Engine {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	observer := cfg.Observer
	if observer == nil {
		observer = NopObserver{}
	}

	return &Engine{
		ignoreColors: cfg.IgnoreColors,
		workers:      workers,
		observer:     observer,
		keys:         normalize.NewKeyBuilder(),
		significance: normalize.NewSignificanceFilter(),
	}
}

// indices is the read-only product of the build phase. All candidate
// lists preserve reference insertion order so the picker's tie-break
// stays deterministic.
type indices struct {
	exact   map[models.NormalizedKey][]*models.ProductRecord
	byModel map[modelKey][]*refEntry
	byBrand map[string][]*refEntry
}

// Match compares every comparison record against the reference set and
// returns one MatchResult per matched record. Unmatched and unkeyable
// records are excluded, not errors. Output order follows the iteration
// order of comparisonProducts, a hard contract: queries may run in
// parallel but results are merged back by input position. The context
// is checked once per comparison record; on cancellation the results
// merged so far are returned, still in input order.
func (e *Engine) Match(ctx context.Context, referenceProducts, comparisonProducts []models.ProductRecord) []models.MatchResult {
	idx := e.buildIndices(referenceProducts)

	slots := make([]*models.MatchResult, len(comparisonProducts))

	workers := e.workers
	if workers > len(comparisonProducts) {
		workers = len(comparisonProducts)
	}

	if workers <= 1 {
		for i := range comparisonProducts {
			if ctx.Err() != nil {
				break
			}
			slots[i] = e.matchOne(idx, comparisonProducts[i])
		}
	} else {
		jobs := make(chan int)
		var wg sync.WaitGroup

		wg.Add(workers)
		for w := 0; w < workers; w++ {
			go func() {
				defer wg.Done()
				// Cancellation is best-effort: the producer stops
				// feeding and closes jobs, but anything already queued
				// is drained here without matching so wg.Wait cannot
				// hang.
				for i := range jobs {
					if ctx.Err() != nil {
						continue
					}
					slots[i] = e.matchOne(idx, comparisonProducts[i])
				}
			}()
		}

	produce:
		for i := range comparisonProducts {
			select {
			case jobs <- i:
			case <-ctx.Done():
				break produce
			}
		}
		close(jobs)
		wg.Wait()
	}

	results := make([]models.MatchResult, 0, len(comparisonProducts))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results
}

// buildIndices runs the single-writer build phase over the reference
// set.
func (e *Engine) buildIndices(reference []models.ProductRecord) *indices {
	idx := &indices{
		exact:   make(map[models.NormalizedKey][]*models.ProductRecord, len(reference)),
		byModel: make(map[modelKey][]*refEntry, len(reference)),
		byBrand: make(map[string][]*refEntry, len(reference)),
	}

	for i := range reference {
		record := &reference[i]
		key, info := e.keys.BuildWithInfo(*record, e.ignoreColors)
		if info.ColorFallback {
			e.observer.Observe(Event{Type: EventColorFilterEmptied, Record: *record, Key: key})
		}
		if key.Model == "" {
			continue
		}

		entry := &refEntry{key: key, words: wordSet(key.Model), record: record}
		idx.exact[key] = append(idx.exact[key], record)
		mk := modelKey{brand: key.Brand, model: key.Model}
		idx.byModel[mk] = append(idx.byModel[mk], entry)
		idx.byBrand[key.Brand] = append(idx.byBrand[key.Brand], entry)
	}

	return idx
}

// matchOne runs the tier chain for a single comparison record. Returns
// nil when the record is excluded (no key or no match).
func (e *Engine) matchOne(idx *indices, record models.ProductRecord) *models.MatchResult {
	key, info := e.keys.BuildWithInfo(record, e.ignoreColors)
	if info.ColorFallback {
		e.observer.Observe(Event{Type: EventColorFilterEmptied, Record: record, Key: key})
	}
	if key.Model == "" {
		e.observer.Observe(Event{Type: EventSkippedNoKey, Record: record, Key: key})
		return nil
	}

	for _, tier := range e.tiers() {
		candidates := tier.lookup(idx, key, record)
		if len(candidates) == 0 {
			continue
		}

		best := PickBest(candidates, record.Price)
		result := models.NewMatchResult(record, best, best.SourceSite, tier.name)
		e.observer.Observe(Event{Type: EventMatch, Record: record, Key: key, Tier: tier.name})
		return &result
	}

	e.observer.Observe(Event{Type: EventNoMatch, Record: record, Key: key})
	return nil
}

// tier is one strategy in the ordered chain. Each lookup sees the full
// indices and returns its candidates in reference insertion order.
type tier struct {
	name   models.MatchTier
	lookup func(idx *indices, key models.NormalizedKey, record models.ProductRecord) []*models.ProductRecord
}

func (e *Engine) tiers() []tier {
	return []tier{
		{name: models.TierExact, lookup: e.lookupExact},
		{name: models.TierYearWildcard, lookup: e.lookupYearWildcard},
		{name: models.TierModelInclusion, lookup: e.lookupModelInclusion},
	}
}

func (e *Engine) lookupExact(idx *indices, key models.NormalizedKey, _ models.ProductRecord) []*models.ProductRecord {
	return idx.exact[key]
}

// lookupYearWildcard matches on (brand, model) when either side left
// the year unspecified. Equal years are re-accepted here as well; the
// exact tier has already consumed them, so this is unobservable, and
// the historical behavior is kept deliberately.
func (e *Engine) lookupYearWildcard(idx *indices, key models.NormalizedKey, _ models.ProductRecord) []*models.ProductRecord {
	entries := idx.byModel[modelKey{brand: key.Brand, model: key.Model}]

	var candidates []*models.ProductRecord
	for _, entry := range entries {
		if yearsCompatible(entry.key.Year, key.Year) {
			candidates = append(candidates, entry.record)
		}
	}
	return candidates
}

// lookupModelInclusion accepts a year-compatible reference of the same
// brand whose model words include (or are included by) the comparison
// model words, provided the leftover tokens are insignificant: a color
// or a typo may differ, a displacement or trim designation may not.
func (e *Engine) lookupModelInclusion(idx *indices, key models.NormalizedKey, record models.ProductRecord) []*models.ProductRecord {
	compWords := wordSet(key.Model)

	var candidates []*models.ProductRecord
	for _, entry := range idx.byBrand[key.Brand] {
		if !yearsCompatible(entry.key.Year, key.Year) {
			continue
		}
		if !isSubset(compWords, entry.words) && !isSubset(entry.words, compWords) {
			continue
		}

		diff := symmetricDifference(compWords, entry.words)
		if e.significance.IsSignificantDifference(diff) {
			e.observer.Observe(Event{
				Type:   EventSignificanceVeto,
				Record: record,
				Key:    key,
				Tokens: diff,
			})
			continue
		}

		candidates = append(candidates, entry.record)
	}
	return candidates
}

// yearsCompatible: equal, or either side unknown. Two records that both
// specify a year never bridge a mismatch.
func yearsCompatible(a, b int) bool {
	return a == 0 || b == 0 || a == b
}

func wordSet(model string) map[string]struct{} {
	words := strings.Fields(model)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func isSubset(sub, super map[string]struct{}) bool {
	if len(sub) > len(super) {
		return false
	}
	for w := range sub {
		if _, ok := super[w]; !ok {
			return false
		}
	}
	return true
}

func symmetricDifference(a, b map[string]struct{}) []string {
	var diff []string
	for w := range a {
		if _, ok := b[w]; !ok {
			diff = append(diff, w)
		}
	}
	for w := range b {
		if _, ok := a[w]; !ok {
			diff = append(diff, w)
		}
	}
	return diff
}
