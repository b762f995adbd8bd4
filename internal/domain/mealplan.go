package domain

// PlannedFood is one food line of a generated meal plan
type PlannedFood struct {
	FoodID     string    `json:"foodId,omitempty"`
	Name       string    `json:"name" binding:"required"`
	Quantity   float64   `json:"quantity"`
	Unit       string    `json:"unit,omitempty"`
	Nutrients  Nutrients `json:"nutrients"`
	Matched    bool      `json:"matched"`
	MatchTier  MatchTier `json:"matchTier,omitempty"`
	Confidence float64   `json:"confidence"`
}

// Meal groups the foods eaten at one moment of the day
type Meal struct {
	Name   string        `json:"name"`
	Time   string        `json:"time,omitempty"`
	Foods  []PlannedFood `json:"foods" binding:"dive"`
	Totals Nutrients     `json:"totals"`
}

// MealPlan is a candidate plan, usually produced by the AI provider
type MealPlan struct {
	Meals  []Meal    `json:"meals"`
	Totals Nutrients `json:"totals"`
}

// EnhancementReport summarizes how the foods of a plan were resolved
type EnhancementReport struct {
	ExactMatches   int      `json:"exactMatches"`
	Substituted    int      `json:"substituted"`
	Unmatched      int      `json:"unmatched"`
	UnmatchedNames []string `json:"unmatchedNames,omitempty"`
}
