package usecase

import (
	"context"
	"log"
	"time"

	"github.com/nutrimatch/backend/internal/domain"
	"github.com/nutrimatch/backend/internal/infrastructure/metrics"
)

// FoodServiceConfig holds configuration for the food service
type FoodServiceConfig struct {
	CacheTTL time.Duration
}

// FoodService is the entry point used by the delivery layer. It composes the
// matcher, the alternative finder and the enhancement policy, and caches
// single-query match results.
type FoodService struct {
	catalog      domain.CatalogAccessor
	cache        domain.CacheRepository
	matcher      *MatchingService
	alternatives *AlternativeService
	enhancer     *EnhancementService
	cacheTTL     time.Duration
}

// NewFoodService creates a new food service with dependencies
func NewFoodService(
	catalog domain.CatalogAccessor,
	cache domain.CacheRepository,
	matcher *MatchingService,
	alternatives *AlternativeService,
	enhancer *EnhancementService,
	config FoodServiceConfig,
) *FoodService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 5 * time.Minute
	}

	return &FoodService{
		catalog:      catalog,
		cache:        cache,
		matcher:      matcher,
		alternatives: alternatives,
		enhancer:     enhancer,
		cacheTTL:     cacheTTL,
	}
}

// FindBestMatch matches a single query.
// Flow: check cache -> tiered match -> cache -> return
func (s *FoodService) FindBestMatch(ctx context.Context, query string) (domain.MatchResult, error) {
	start := time.Now()
	cacheKey := "match:" + query

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			if result, ok := cached.(domain.MatchResult); ok {
				metrics.RecordMatch(result.Tier(), time.Since(start))
				return cloneResult(result), nil
			}
		}
	}

	result, err := s.matcher.FindBestMatch(ctx, query)
	if err != nil {
		return domain.MatchResult{}, err
	}
	metrics.RecordMatch(result.Tier(), time.Since(start))

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, cloneResult(result), s.cacheTTL); err != nil {
			log.Printf("[MATCH] Failed to cache result for %q: %v", query, err)
		}
	}

	return result, nil
}

// MatchAll matches a batch of queries, preserving input order.
func (s *FoodService) MatchAll(ctx context.Context, queries []string) ([]domain.MatchResult, error) {
	start := time.Now()
	results, err := s.matcher.MatchAll(ctx, queries)
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		metrics.RecordMatch(r.Tier(), time.Since(start)/time.Duration(len(results)))
	}
	return results, nil
}

// GetFood returns the catalog entry with the given id, or nil when absent.
func (s *FoodService) GetFood(ctx context.Context, id string) (*domain.FoodEntry, error) {
	return s.catalog.FindByID(ctx, id)
}

// FindSimilarFoods returns foods with a similar calorie and protein profile.
func (s *FoodService) FindSimilarFoods(ctx context.Context, foodID string, limit int) ([]domain.FoodEntry, error) {
	return s.alternatives.FindSimilarFoods(ctx, foodID, limit)
}

// FindFoodAlternatives returns restriction-compliant alternatives.
func (s *FoodService) FindFoodAlternatives(
	ctx context.Context,
	foodID string,
	restrictions []string,
	preferences domain.AlternativePreferences,
) ([]domain.FoodEntry, error) {
	return s.alternatives.FindFoodAlternatives(ctx, foodID, restrictions, preferences)
}

// EnhanceMealPlan applies the confidence-gated enhancement policy to plan.
func (s *FoodService) EnhanceMealPlan(ctx context.Context, plan domain.MealPlan) (domain.MealPlan, domain.EnhancementReport, error) {
	return s.enhancer.EnhanceMealPlan(ctx, plan)
}

// RestrictionLabels lists the configured dietary restrictions.
func (s *FoodService) RestrictionLabels() []string {
	return s.alternatives.Restrictions().Labels()
}

// InvalidateCache drops cached match results, e.g. after a catalog import.
func (s *FoodService) InvalidateCache() {
	if s.cache != nil {
		s.cache.Clear()
	}
}
