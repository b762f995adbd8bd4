package usecase

import (
	"context"
	"log"
	"sort"

	"github.com/nutrimatch/backend/internal/domain"
	"github.com/nutrimatch/backend/internal/foodtext"
	"golang.org/x/sync/errgroup"
)

// Matching defaults
const (
	defaultPartialLimit     = 10
	defaultFuzzySampleSize  = 500
	defaultFuzzyThreshold   = 0.5
	defaultMaxCandidates    = 5
	defaultBatchConcurrency = 4
)

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	PartialLimit       int      // max substring hits taken from the catalog
	FuzzySampleSize    int      // catalog entries scanned by the fuzzy tier
	FullScanFuzzy      bool     // scan the whole catalog instead of a sample
	FuzzyThreshold     *float64 // fuzzy candidates must score strictly above this; nil selects 0.5
	MaxCandidates      int
	BatchConcurrency   int
	EnableDebugLogging bool
}

// MatchingService resolves free-text food names against the catalog using
// exact, partial and fuzzy tiers, stopping at the first tier with results.
type MatchingService struct {
	catalog            domain.CatalogAccessor
	partialLimit       int
	fuzzySampleSize    int
	fuzzyThreshold     float64
	maxCandidates      int
	batchConcurrency   int
	enableDebugLogging bool
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(catalog domain.CatalogAccessor, config MatchConfig) *MatchingService {
	partialLimit := config.PartialLimit
	if partialLimit <= 0 {
		partialLimit = defaultPartialLimit
	}

	sampleSize := config.FuzzySampleSize
	if sampleSize <= 0 {
		sampleSize = defaultFuzzySampleSize
	}
	if config.FullScanFuzzy {
		sampleSize = 0 // accessor treats <= 0 as unbounded
	}

	threshold := defaultFuzzyThreshold
	if config.FuzzyThreshold != nil {
		threshold = *config.FuzzyThreshold
	}

	maxCandidates := config.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = defaultMaxCandidates
	}

	concurrency := config.BatchConcurrency
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}

	return &MatchingService{
		catalog:            catalog,
		partialLimit:       partialLimit,
		fuzzySampleSize:    sampleSize,
		fuzzyThreshold:     threshold,
		maxCandidates:      maxCandidates,
		batchConcurrency:   concurrency,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// FindBestMatch finds the catalog entries that best match query.
// A query without any match yields an empty result with confidence 0, not an
// error. Errors only come from the catalog and are returned unchanged.
func (s *MatchingService) FindBestMatch(ctx context.Context, query string) (domain.MatchResult, error) {
	candidates, err := s.exactTier(ctx, query)
	if err != nil {
		return domain.MatchResult{}, err
	}

	if len(candidates) == 0 {
		candidates, err = s.partialTier(ctx, query)
		if err != nil {
			return domain.MatchResult{}, err
		}
	}

	if len(candidates) == 0 {
		candidates, err = s.fuzzyTier(ctx, query)
		if err != nil {
			return domain.MatchResult{}, err
		}
	}

	result := s.rank(query, candidates)

	if s.enableDebugLogging {
		if result.BestMatch != nil {
			log.Printf("[MATCH] %q -> %q (tier: %s, confidence: %.2f)",
				query, result.BestMatch.Name, result.Tier(), result.Confidence)
		} else {
			log.Printf("[MATCH] %q -> no match", query)
		}
	}

	return result, nil
}

// exactTier returns every entry whose stored name equals query verbatim.
func (s *MatchingService) exactTier(ctx context.Context, query string) ([]domain.MatchCandidate, error) {
	entries, err := s.catalog.FindByExactName(ctx, query)
	if err != nil {
		return nil, err
	}

	candidates := make([]domain.MatchCandidate, 0, len(entries))
	for _, entry := range entries {
		candidates = append(candidates, domain.MatchCandidate{
			Entry:     entry,
			Score:     1.0,
			MatchTier: domain.ExactMatch,
		})
	}
	return candidates, nil
}

// partialTier scores case-insensitive substring hits by token-set similarity.
func (s *MatchingService) partialTier(ctx context.Context, query string) ([]domain.MatchCandidate, error) {
	entries, err := s.catalog.FindByNameContains(ctx, query, s.partialLimit)
	if err != nil {
		return nil, err
	}

	normalizedQuery := foodtext.Normalize(query)
	candidates := make([]domain.MatchCandidate, 0, len(entries))
	for _, entry := range entries {
		score := foodtext.Jaccard(normalizedQuery, foodtext.Normalize(entry.Name))
		if s.enableDebugLogging {
			log.Printf("[MATCH] partial %q vs %q: %.3f", query, entry.Name, score)
		}
		candidates = append(candidates, domain.MatchCandidate{
			Entry:     entry,
			Score:     score,
			MatchTier: domain.PartialMatch,
		})
	}
	return candidates, nil
}

// fuzzyTier scores a bounded catalog sample by edit-distance similarity and
// keeps candidates above the fuzzy threshold.
func (s *MatchingService) fuzzyTier(ctx context.Context, query string) ([]domain.MatchCandidate, error) {
	entries, err := s.catalog.Sample(ctx, s.fuzzySampleSize)
	if err != nil {
		return nil, err
	}

	normalizedQuery := foodtext.Normalize(query)
	var candidates []domain.MatchCandidate
	for i, entry := range entries {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		score := foodtext.EditSimilarity(normalizedQuery, foodtext.Normalize(entry.Name))
		if score <= s.fuzzyThreshold {
			continue
		}
		if s.enableDebugLogging {
			log.Printf("[MATCH] fuzzy %q vs %q: %.3f", query, entry.Name, score)
		}
		candidates = append(candidates, domain.MatchCandidate{
			Entry:     entry,
			Score:     score,
			MatchTier: domain.FuzzyMatch,
		})
	}
	return candidates, nil
}

// rank sorts candidates by score descending, keeping catalog order on ties,
// and truncates them to maxCandidates.
func (s *MatchingService) rank(query string, candidates []domain.MatchCandidate) domain.MatchResult {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > s.maxCandidates {
		candidates = candidates[:s.maxCandidates]
	}

	result := domain.MatchResult{
		OriginalQuery: query,
		Candidates:    candidates,
	}
	if result.Candidates == nil {
		result.Candidates = []domain.MatchCandidate{}
	}
	if len(candidates) > 0 {
		best := candidates[0].Entry
		result.BestMatch = &best
		result.Confidence = candidates[0].Score
	}
	return result
}

// MatchAll runs FindBestMatch for every query, preserving input order.
// Distinct queries are matched concurrently and repeated ones share a result.
// The first catalog error cancels the batch.
func (s *MatchingService) MatchAll(ctx context.Context, queries []string) ([]domain.MatchResult, error) {
	results := make([]domain.MatchResult, len(queries))
	if len(queries) == 0 {
		return results, nil
	}

	// exact tier is case-sensitive, so only identical raw queries may share a result
	positions := make(map[string][]int, len(queries))
	unique := make([]string, 0, len(queries))
	for i, q := range queries {
		if _, seen := positions[q]; !seen {
			unique = append(unique, q)
		}
		positions[q] = append(positions[q], i)
	}

	matched := make([]domain.MatchResult, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, q := range unique {
		g.Go(func() error {
			result, err := s.FindBestMatch(gctx, q)
			if err != nil {
				return err
			}
			matched[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, q := range unique {
		for _, pos := range positions[q] {
			results[pos] = cloneResult(matched[i])
		}
	}
	return results, nil
}

// cloneResult copies the slices of a result so batch duplicates do not alias.
func cloneResult(r domain.MatchResult) domain.MatchResult {
	clone := r
	clone.Candidates = append([]domain.MatchCandidate(nil), r.Candidates...)
	if r.BestMatch != nil {
		best := *r.BestMatch
		clone.BestMatch = &best
	}
	return clone
}
