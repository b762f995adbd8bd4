package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/nutrimatch/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatchingService(t *testing.T) {
	t.Run("uses defaults for zero values", func(t *testing.T) {
		svc := NewMatchingService(NewMockCatalog(), MatchConfig{})
		assert.Equal(t, 10, svc.partialLimit)
		assert.Equal(t, 500, svc.fuzzySampleSize)
		assert.Equal(t, 0.5, svc.fuzzyThreshold)
		assert.Equal(t, 5, svc.maxCandidates)
		assert.Equal(t, 4, svc.batchConcurrency)
	})

	t.Run("full scan lifts the sample bound", func(t *testing.T) {
		svc := NewMatchingService(NewMockCatalog(), MatchConfig{FuzzySampleSize: 50, FullScanFuzzy: true})
		assert.Equal(t, 0, svc.fuzzySampleSize)
	})
}

func TestFindBestMatch(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name           string
		query          string
		wantTier       domain.MatchTier
		wantBestID     string
		wantConfidence float64
		wantCandidates int
	}{
		{
			name:           "exact name wins with full confidence",
			query:          "Banana",
			wantTier:       domain.ExactMatch,
			wantBestID:     "f1",
			wantConfidence: 1.0,
			wantCandidates: 1,
		},
		{
			name:           "case difference falls through to partial",
			query:          "banana",
			wantTier:       domain.PartialMatch,
			wantBestID:     "f1",
			wantConfidence: 1.0,
			wantCandidates: 1,
		},
		{
			name:           "missing accent is recovered by the fuzzy tier",
			query:          "Maça",
			wantTier:       domain.FuzzyMatch,
			wantBestID:     "f2",
			wantConfidence: 1.0,
			wantCandidates: 1,
		},
		{
			name:           "shared token keeps catalog order on ties",
			query:          "arroz",
			wantTier:       domain.PartialMatch,
			wantBestID:     "f3",
			wantConfidence: 1.0 / 3.0,
			wantCandidates: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewMatchingService(NewMockCatalog(referenceFoods()...), MatchConfig{})

			result, err := svc.FindBestMatch(ctx, tt.query)
			require.NoError(t, err)

			assert.Equal(t, tt.query, result.OriginalQuery)
			require.NotNil(t, result.BestMatch)
			assert.Equal(t, tt.wantBestID, result.BestMatch.ID)
			assert.Equal(t, tt.wantTier, result.Tier())
			assert.InDelta(t, tt.wantConfidence, result.Confidence, 1e-9)
			assert.Len(t, result.Candidates, tt.wantCandidates)
			for _, c := range result.Candidates {
				assert.Equal(t, tt.wantTier, c.MatchTier, "every candidate comes from the same tier")
			}
		})
	}
}

func TestFindBestMatch_TierShortCircuit(t *testing.T) {
	ctx := context.Background()

	t.Run("exact hit skips partial and fuzzy tiers", func(t *testing.T) {
		catalog := NewMockCatalog(referenceFoods()...)
		svc := NewMatchingService(catalog, MatchConfig{})

		_, err := svc.FindBestMatch(ctx, "Tofu")
		require.NoError(t, err)

		assert.Equal(t, 1, catalog.Calls("FindByExactName"))
		assert.Zero(t, catalog.Calls("FindByNameContains"))
		assert.Zero(t, catalog.Calls("Sample"))
	})

	t.Run("partial hit skips the fuzzy tier", func(t *testing.T) {
		catalog := NewMockCatalog(referenceFoods()...)
		svc := NewMatchingService(catalog, MatchConfig{})

		_, err := svc.FindBestMatch(ctx, "frango")
		require.NoError(t, err)

		assert.Equal(t, 1, catalog.Calls("FindByNameContains"))
		assert.Zero(t, catalog.Calls("Sample"))
	})

	t.Run("fuzzy tier uses the configured sample size", func(t *testing.T) {
		catalog := NewMockCatalog(referenceFoods()...)
		svc := NewMatchingService(catalog, MatchConfig{FuzzySampleSize: 3})

		_, err := svc.FindBestMatch(ctx, "Maça")
		require.NoError(t, err)

		assert.Equal(t, 1, catalog.Calls("Sample"))
		assert.Equal(t, 3, catalog.lastSampleLimit)
	})
}

func TestFindBestMatch_NoMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("unrelated query yields empty result", func(t *testing.T) {
		svc := NewMatchingService(NewMockCatalog(referenceFoods()...), MatchConfig{})

		result, err := svc.FindBestMatch(ctx, "xyzxyz qwerty")
		require.NoError(t, err)

		assert.Nil(t, result.BestMatch)
		assert.NotNil(t, result.Candidates)
		assert.Empty(t, result.Candidates)
		assert.Zero(t, result.Confidence)
		assert.Equal(t, domain.MatchTier(""), result.Tier())
	})

	t.Run("empty catalog yields empty result", func(t *testing.T) {
		svc := NewMatchingService(NewMockCatalog(), MatchConfig{})

		result, err := svc.FindBestMatch(ctx, "Banana")
		require.NoError(t, err)

		assert.Nil(t, result.BestMatch)
		assert.Empty(t, result.Candidates)
		assert.Zero(t, result.Confidence)
	})

	t.Run("fuzzy threshold is exclusive", func(t *testing.T) {
		// "abcd" vs "abxy" is two edits over four runes: similarity 0.5
		svc := NewMatchingService(NewMockCatalog(food("x1", "abxy", 10, 1)), MatchConfig{FuzzyThreshold: floatPtr(0.5)})

		result, err := svc.FindBestMatch(ctx, "abcd")
		require.NoError(t, err)
		assert.Empty(t, result.Candidates)
	})

	t.Run("configured zero threshold is kept", func(t *testing.T) {
		// "abcz" vs "abcdefghij" is seven edits over ten runes: similarity 0.3
		catalog := NewMockCatalog(food("x1", "Abcdefghij", 10, 1))

		strict := NewMatchingService(catalog, MatchConfig{})
		result, err := strict.FindBestMatch(ctx, "Abcz")
		require.NoError(t, err)
		assert.Empty(t, result.Candidates)

		lenient := NewMatchingService(catalog, MatchConfig{FuzzyThreshold: floatPtr(0)})
		assert.Equal(t, 0.0, lenient.fuzzyThreshold)
		result, err = lenient.FindBestMatch(ctx, "Abcz")
		require.NoError(t, err)
		require.Len(t, result.Candidates, 1)
		assert.Equal(t, domain.FuzzyMatch, result.Tier())
		assert.InDelta(t, 0.3, result.Confidence, 1e-9)
	})
}

func TestFindBestMatch_RankingAndTruncation(t *testing.T) {
	catalog := NewMockCatalog(
		food("s1", "Suco de uva integral", 60, 0.2),
		food("s2", "Suco", 40, 0.1),
		food("s3", "Suco natural", 45, 0.3),
		food("s4", "Suco de uva", 58, 0.2),
		food("s5", "Suco de laranja com acerola", 42, 0.6),
		food("s6", "Suco verde de couve e gengibre", 30, 0.8),
		food("s7", "Suco de caju adoçado com mel", 55, 0.1),
	)
	svc := NewMatchingService(catalog, MatchConfig{})

	result, err := svc.FindBestMatch(context.Background(), "suco")
	require.NoError(t, err)

	require.Len(t, result.Candidates, 5)
	for i := 1; i < len(result.Candidates); i++ {
		assert.GreaterOrEqual(t, result.Candidates[i-1].Score, result.Candidates[i].Score)
	}
	assert.Equal(t, "s2", result.Candidates[0].Entry.ID)
	assert.Equal(t, "s3", result.Candidates[1].Entry.ID)
	assert.Equal(t, "s4", result.Candidates[2].Entry.ID)
	assert.Equal(t, "s1", result.Candidates[3].Entry.ID)
	assert.Equal(t, "s5", result.Candidates[4].Entry.ID, "ties keep catalog order")
	assert.Equal(t, result.Candidates[0].Score, result.Confidence)
	assert.Equal(t, result.Candidates[0].Entry, *result.BestMatch)
}

func TestFindBestMatch_Errors(t *testing.T) {
	errBoom := errors.New("disk on fire")

	t.Run("catalog error is returned unchanged", func(t *testing.T) {
		catalog := NewMockCatalog(referenceFoods()...)
		catalog.err = errBoom
		svc := NewMatchingService(catalog, MatchConfig{})

		_, err := svc.FindBestMatch(context.Background(), "Banana")
		assert.ErrorIs(t, err, errBoom)
	})

	t.Run("cancelled context stops the fuzzy scan", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		svc := NewMatchingService(NewMockCatalog(referenceFoods()...), MatchConfig{})

		_, err := svc.FindBestMatch(ctx, "Maça")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestMatchAll(t *testing.T) {
	ctx := context.Background()

	t.Run("preserves input order and shares duplicate work", func(t *testing.T) {
		catalog := NewMockCatalog(referenceFoods()...)
		svc := NewMatchingService(catalog, MatchConfig{BatchConcurrency: 2})

		queries := []string{"Banana", "Maça", "Banana", "nada parecido"}
		results, err := svc.MatchAll(ctx, queries)
		require.NoError(t, err)

		require.Len(t, results, len(queries))
		for i, q := range queries {
			assert.Equal(t, q, results[i].OriginalQuery)
		}
		assert.Equal(t, "f1", results[0].BestMatch.ID)
		assert.Equal(t, "f2", results[1].BestMatch.ID)
		assert.Equal(t, results[0], results[2])
		assert.Nil(t, results[3].BestMatch)
		assert.Equal(t, 3, catalog.Calls("FindByExactName"), "duplicates are matched once")

		results[0].Candidates[0].Score = 0
		assert.Equal(t, 1.0, results[2].Candidates[0].Score, "duplicates do not alias")
	})

	t.Run("empty batch", func(t *testing.T) {
		svc := NewMatchingService(NewMockCatalog(referenceFoods()...), MatchConfig{})

		results, err := svc.MatchAll(ctx, nil)
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})

	t.Run("catalog error fails the whole batch", func(t *testing.T) {
		errBoom := errors.New("connection reset")
		catalog := NewMockCatalog(referenceFoods()...)
		catalog.err = errBoom
		svc := NewMatchingService(catalog, MatchConfig{})

		results, err := svc.MatchAll(ctx, []string{"Banana", "Tofu"})
		assert.ErrorIs(t, err, errBoom)
		assert.Nil(t, results)
	})
}
