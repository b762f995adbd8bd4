package domain

// RestrictionRule is a named dietary exclusion policy. A food is excluded when
// its normalized name contains any of the keywords.
type RestrictionRule struct {
	Label                string   `json:"label" mapstructure:"label"`
	ExcludedNameKeywords []string `json:"keywords" mapstructure:"keywords"`
}

// AlternativeQuery is the input of a restricted-alternative search
type AlternativeQuery struct {
	ReferenceEntry          FoodEntry
	Restrictions            []RestrictionRule
	CaloricTolerancePercent float64 // fraction, 0.25 means 25%
	Limit                   int
}

// AlternativePreferences tunes a restricted-alternative search requested by id.
// Zero values fall back to the finder defaults.
type AlternativePreferences struct {
	CaloricTolerancePercent float64 `json:"caloricTolerance,omitempty"`
	Limit                   int     `json:"limit,omitempty"`
}

// NutrientBand is an inclusive [Min, Max] interval
type NutrientBand struct {
	Min float64
	Max float64
}

// Contains reports whether v lies inside the band.
func (b NutrientBand) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// NutrientRangeQuery selects catalog entries by nutrient bands, ordered by
// absolute calorie distance from NearCalories.
type NutrientRangeQuery struct {
	Calories        NutrientBand
	Protein         *NutrientBand
	ExcludeID       string
	ExcludeKeywords []string // already normalized
	NearCalories    float64
	Limit           int
}
