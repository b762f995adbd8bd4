package usecase

import (
	"context"
	"log"
	"math"

	"github.com/nutrimatch/backend/internal/domain"
)

// Alternative search defaults
const (
	defaultSimilarLimit            = 5
	defaultSimilarCalorieTolerance = 0.2
	defaultSimilarProteinTolerance = 0.3
	defaultSimilarProteinFloor     = 2.0
	defaultCaloricTolerance        = 0.25
	defaultAlternativesLimit       = 10
)

// AlternativeConfig holds configuration for the alternative finder
type AlternativeConfig struct {
	SimilarLimit            int
	SimilarCalorieTolerance float64
	SimilarProteinTolerance float64
	SimilarProteinFloor     float64 // grams
	CaloricTolerance        float64
	Limit                   int
	EnableDebugLogging      bool
}

// AlternativeService finds nutritionally equivalent catalog entries
type AlternativeService struct {
	catalog      domain.CatalogAccessor
	restrictions *RestrictionTable
	config       AlternativeConfig
}

// NewAlternativeService creates a new alternative finder over catalog using
// restrictions to resolve dietary restriction labels.
func NewAlternativeService(
	catalog domain.CatalogAccessor,
	restrictions *RestrictionTable,
	config AlternativeConfig,
) *AlternativeService {
	if config.SimilarLimit <= 0 {
		config.SimilarLimit = defaultSimilarLimit
	}
	if config.SimilarCalorieTolerance <= 0 {
		config.SimilarCalorieTolerance = defaultSimilarCalorieTolerance
	}
	if config.SimilarProteinTolerance <= 0 {
		config.SimilarProteinTolerance = defaultSimilarProteinTolerance
	}
	if config.SimilarProteinFloor <= 0 {
		config.SimilarProteinFloor = defaultSimilarProteinFloor
	}
	if config.CaloricTolerance <= 0 {
		config.CaloricTolerance = defaultCaloricTolerance
	}
	if config.Limit <= 0 {
		config.Limit = defaultAlternativesLimit
	}
	if restrictions == nil {
		restrictions = NewRestrictionTable(nil)
	}

	return &AlternativeService{
		catalog:      catalog,
		restrictions: restrictions,
		config:       config,
	}
}

// FindSimilarFoods returns entries with a calorie and protein profile close to
// the food identified by foodID, closest calories first. An unknown id yields
// an empty slice.
func (s *AlternativeService) FindSimilarFoods(ctx context.Context, foodID string, limit int) ([]domain.FoodEntry, error) {
	reference, err := s.catalog.FindByID(ctx, foodID)
	if err != nil {
		return nil, err
	}
	if reference == nil {
		return []domain.FoodEntry{}, nil
	}
	if limit <= 0 {
		limit = s.config.SimilarLimit
	}

	ref := reference.Nutrients
	proteinSlack := math.Max(ref.Protein*s.config.SimilarProteinTolerance, s.config.SimilarProteinFloor)
	query := domain.NutrientRangeQuery{
		Calories: band(ref.Calories, ref.Calories*s.config.SimilarCalorieTolerance),
		Protein: &domain.NutrientBand{
			Min: ref.Protein - proteinSlack,
			Max: ref.Protein + proteinSlack,
		},
		ExcludeID:    reference.ID,
		NearCalories: ref.Calories,
		Limit:        limit,
	}

	entries, err := s.catalog.FindByNutrientRange(ctx, query)
	if err != nil {
		return nil, err
	}

	if s.config.EnableDebugLogging {
		log.Printf("[ALT] %d similar foods for %q", len(entries), reference.Name)
	}
	return nonNil(entries), nil
}

// FindFoodAlternatives resolves restriction labels and returns alternatives to
// the food identified by foodID. Unknown labels are ignored; an unknown id
// yields an empty slice.
func (s *AlternativeService) FindFoodAlternatives(
	ctx context.Context,
	foodID string,
	restrictions []string,
	preferences domain.AlternativePreferences,
) ([]domain.FoodEntry, error) {
	reference, err := s.catalog.FindByID(ctx, foodID)
	if err != nil {
		return nil, err
	}
	if reference == nil {
		return []domain.FoodEntry{}, nil
	}

	return s.FindAlternatives(ctx, domain.AlternativeQuery{
		ReferenceEntry:          *reference,
		Restrictions:            s.restrictions.Resolve(restrictions),
		CaloricTolerancePercent: preferences.CaloricTolerancePercent,
		Limit:                   preferences.Limit,
	})
}

// FindAlternatives returns catalog entries within the caloric tolerance of the
// reference whose names match none of the restriction keywords, closest
// calories first. The reference entry itself is never returned.
func (s *AlternativeService) FindAlternatives(ctx context.Context, query domain.AlternativeQuery) ([]domain.FoodEntry, error) {
	tolerance := query.CaloricTolerancePercent
	if tolerance <= 0 {
		tolerance = s.config.CaloricTolerance
	}
	limit := query.Limit
	if limit <= 0 {
		limit = s.config.Limit
	}

	ref := query.ReferenceEntry
	entries, err := s.catalog.FindByNutrientRange(ctx, domain.NutrientRangeQuery{
		Calories:        band(ref.Nutrients.Calories, ref.Nutrients.Calories*tolerance),
		ExcludeID:       ref.ID,
		ExcludeKeywords: ExcludedKeywords(query.Restrictions),
		NearCalories:    ref.Nutrients.Calories,
		Limit:           limit,
	})
	if err != nil {
		return nil, err
	}

	if s.config.EnableDebugLogging {
		log.Printf("[ALT] %d alternatives for %q (restrictions: %d, tolerance: %.0f%%)",
			len(entries), ref.Name, len(query.Restrictions), tolerance*100)
	}
	return nonNil(entries), nil
}

// Restrictions exposes the restriction table used to resolve labels.
func (s *AlternativeService) Restrictions() *RestrictionTable {
	return s.restrictions
}

func band(center, slack float64) domain.NutrientBand {
	return domain.NutrientBand{Min: center - slack, Max: center + slack}
}

func nonNil(entries []domain.FoodEntry) []domain.FoodEntry {
	if entries == nil {
		return []domain.FoodEntry{}
	}
	return entries
}
