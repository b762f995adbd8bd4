package usecase

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/nutrimatch/backend/internal/domain"
	"github.com/nutrimatch/backend/internal/infrastructure/metrics"
)

// DefaultAcceptanceThreshold is the confidence a partial or fuzzy match must
// exceed before it replaces the nutrients suggested by the meal generator.
const DefaultAcceptanceThreshold = 0.7

// UnmatchedIDPrefix prefixes the placeholder ids of foods left unmatched
const UnmatchedIDPrefix = "unmatched-"

// EnhancementConfig holds configuration for the enhancement service
type EnhancementConfig struct {
	AcceptanceThreshold *float64 // nil selects DefaultAcceptanceThreshold
	EnableDebugLogging  bool
}

// EnhancementService replaces generated food lines with catalog entries when
// the match is trustworthy enough.
type EnhancementService struct {
	catalog             domain.CatalogAccessor
	matcher             *MatchingService
	acceptanceThreshold float64
	enableDebugLogging  bool
	newID               func() string
}

// NewEnhancementService creates a new enhancement service
func NewEnhancementService(
	catalog domain.CatalogAccessor,
	matcher *MatchingService,
	config EnhancementConfig,
) *EnhancementService {
	threshold := DefaultAcceptanceThreshold
	if config.AcceptanceThreshold != nil {
		threshold = *config.AcceptanceThreshold
	}

	return &EnhancementService{
		catalog:             catalog,
		matcher:             matcher,
		acceptanceThreshold: threshold,
		enableDebugLogging:  config.EnableDebugLogging,
		newID:               func() string { return UnmatchedIDPrefix + uuid.NewString() },
	}
}

// AcceptanceThreshold returns the confidence a match must exceed to be applied.
func (s *EnhancementService) AcceptanceThreshold() float64 {
	return s.acceptanceThreshold
}

// EnhanceMealPlan resolves every food of plan against the catalog.
// Each food is first looked up by its literal name; otherwise the tiered
// matcher runs and its best match is applied only when confidence exceeds the
// acceptance threshold. Foods left unmatched get a placeholder id and keep
// their generated nutrients. The input plan is not modified.
func (s *EnhancementService) EnhanceMealPlan(
	ctx context.Context,
	plan domain.MealPlan,
) (domain.MealPlan, domain.EnhancementReport, error) {
	var report domain.EnhancementReport
	enhanced := domain.MealPlan{Meals: make([]domain.Meal, 0, len(plan.Meals))}

	for _, meal := range plan.Meals {
		out := domain.Meal{
			Name:  meal.Name,
			Time:  meal.Time,
			Foods: make([]domain.PlannedFood, 0, len(meal.Foods)),
		}

		for _, food := range meal.Foods {
			resolved, outcome, err := s.resolveFood(ctx, food)
			if err != nil {
				return domain.MealPlan{}, domain.EnhancementReport{}, err
			}

			switch outcome {
			case metrics.OutcomeExact:
				report.ExactMatches++
			case metrics.OutcomeSubstituted:
				report.Substituted++
			default:
				report.Unmatched++
				report.UnmatchedNames = append(report.UnmatchedNames, food.Name)
			}
			metrics.RecordEnhancedFood(outcome)

			out.Foods = append(out.Foods, resolved)
			out.Totals = out.Totals.Add(resolved.Nutrients)
		}

		enhanced.Meals = append(enhanced.Meals, out)
		enhanced.Totals = enhanced.Totals.Add(out.Totals)
	}

	log.Printf("[ENHANCE] exact=%d substituted=%d unmatched=%d",
		report.ExactMatches, report.Substituted, report.Unmatched)

	return enhanced, report, nil
}

func (s *EnhancementService) resolveFood(ctx context.Context, food domain.PlannedFood) (domain.PlannedFood, string, error) {
	exact, err := s.catalog.FindByExactName(ctx, food.Name)
	if err != nil {
		return domain.PlannedFood{}, "", err
	}
	if len(exact) > 0 {
		return applyEntry(food, exact[0], domain.ExactMatch, 1.0), metrics.OutcomeExact, nil
	}

	result, err := s.matcher.FindBestMatch(ctx, food.Name)
	if err != nil {
		return domain.PlannedFood{}, "", err
	}

	if result.BestMatch != nil && result.Confidence > s.acceptanceThreshold {
		if s.enableDebugLogging {
			log.Printf("[ENHANCE] %q substituted by %q (confidence: %.2f)",
				food.Name, result.BestMatch.Name, result.Confidence)
		}
		return applyEntry(food, *result.BestMatch, result.Tier(), result.Confidence), metrics.OutcomeSubstituted, nil
	}

	log.Printf("[ENHANCE] %q left unmatched (confidence: %.2f)", food.Name, result.Confidence)
	unmatched := food
	unmatched.FoodID = s.newID()
	unmatched.Matched = false
	unmatched.MatchTier = ""
	unmatched.Confidence = result.Confidence
	return unmatched, metrics.OutcomeUnmatched, nil
}

// applyEntry replaces the nutrients of food with those of entry, scaled from
// the entry serving to the planned quantity when both are known.
func applyEntry(food domain.PlannedFood, entry domain.FoodEntry, tier domain.MatchTier, confidence float64) domain.PlannedFood {
	nutrients := entry.Nutrients
	if food.Quantity > 0 && entry.ServingSize > 0 {
		nutrients = nutrients.Scale(food.Quantity / entry.ServingSize)
	}

	food.FoodID = entry.ID
	food.Nutrients = nutrients
	food.Matched = true
	food.MatchTier = tier
	food.Confidence = confidence
	if food.Unit == "" {
		food.Unit = entry.ServingUnit
	}
	return food
}
