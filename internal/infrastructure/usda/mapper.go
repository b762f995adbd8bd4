package usda

import (
	"fmt"
	"strings"

	"github.com/nutrimatch/backend/internal/domain"
)

// USDA Nutrient IDs for the nutrients kept in the catalog
const (
	NutrientIDEnergy       = 1008 // Calories (kcal)
	NutrientIDProtein      = 1003 // Protein (g)
	NutrientIDCarbohydrate = 1005 // Carbohydrates (g)
	NutrientIDTotalFat     = 1004 // Total Fat (g)
	NutrientIDFiber        = 1079 // Fiber, total dietary (g)
	NutrientIDSugars       = 2000 // Sugars, total (g)
	NutrientIDSodium       = 1093 // Sodium (mg)
)

// IDPrefix prefixes catalog ids of foods imported from USDA
const IDPrefix = "usda-"

// MapToFoodEntry converts USDA food data to a catalog entry. USDA reports
// nutrients per 100 g.
func MapToFoodEntry(usdaFood *domain.USDAFood) domain.FoodEntry {
	return domain.FoodEntry{
		ID:          fmt.Sprintf("%s%d", IDPrefix, usdaFood.FdcID),
		Name:        strings.TrimSpace(usdaFood.Description),
		ServingSize: 100,
		ServingUnit: "g",
		Nutrients:   extractNutrients(usdaFood.Nutrients),
	}
}

// MapToFoodEntries converts a search page, skipping foods that would violate
// the catalog invariants.
func MapToFoodEntries(foods []domain.USDAFood) []domain.FoodEntry {
	entries := make([]domain.FoodEntry, 0, len(foods))
	for i := range foods {
		entry := MapToFoodEntry(&foods[i])
		if err := entry.Validate(); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// extractNutrients extracts the catalog nutrients from a USDA nutrient list
func extractNutrients(usdaNutrients []domain.USDANutrient) domain.Nutrients {
	nutrients := domain.Nutrients{}

	for _, nutrient := range usdaNutrients {
		value := nutrient.Quantity()
		switch nutrient.ID() {
		case NutrientIDEnergy:
			nutrients.Calories = value
		case NutrientIDProtein:
			nutrients.Protein = value
		case NutrientIDCarbohydrate:
			nutrients.Carbohydrates = value
		case NutrientIDTotalFat:
			nutrients.Fat = value
		case NutrientIDFiber:
			nutrients.Fiber = &value
		case NutrientIDSugars:
			nutrients.Sugar = &value
		case NutrientIDSodium:
			nutrients.Sodium = &value
		}
	}

	return nutrients
}
