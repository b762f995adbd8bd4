package domain

import (
	"fmt"
	"math"
	"strings"
)

// Nutrients holds the nutrient values of one serving.
// Fiber, Sugar and Sodium are optional and nil when the source does not report them.
type Nutrients struct {
	Calories      float64  `json:"calories" yaml:"calories"`
	Protein       float64  `json:"protein" yaml:"protein"`             // grams
	Carbohydrates float64  `json:"carbohydrates" yaml:"carbohydrates"` // grams
	Fat           float64  `json:"fat" yaml:"fat"`                     // grams
	Fiber         *float64 `json:"fiber,omitempty" yaml:"fiber,omitempty"`
	Sugar         *float64 `json:"sugar,omitempty" yaml:"sugar,omitempty"`
	Sodium        *float64 `json:"sodium,omitempty" yaml:"sodium,omitempty"` // milligrams
}

// Scale returns the nutrients multiplied by factor.
func (n Nutrients) Scale(factor float64) Nutrients {
	scaled := Nutrients{
		Calories:      n.Calories * factor,
		Protein:       n.Protein * factor,
		Carbohydrates: n.Carbohydrates * factor,
		Fat:           n.Fat * factor,
	}
	scaled.Fiber = scaleOptional(n.Fiber, factor)
	scaled.Sugar = scaleOptional(n.Sugar, factor)
	scaled.Sodium = scaleOptional(n.Sodium, factor)
	return scaled
}

// Add returns the sum of n and other. An optional field is present in the
// result when it is present in either operand.
func (n Nutrients) Add(other Nutrients) Nutrients {
	return Nutrients{
		Calories:      n.Calories + other.Calories,
		Protein:       n.Protein + other.Protein,
		Carbohydrates: n.Carbohydrates + other.Carbohydrates,
		Fat:           n.Fat + other.Fat,
		Fiber:         addOptional(n.Fiber, other.Fiber),
		Sugar:         addOptional(n.Sugar, other.Sugar),
		Sodium:        addOptional(n.Sodium, other.Sodium),
	}
}

func scaleOptional(v *float64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	scaled := *v * factor
	return &scaled
}

func addOptional(a, b *float64) *float64 {
	if a == nil && b == nil {
		return nil
	}
	var sum float64
	if a != nil {
		sum += *a
	}
	if b != nil {
		sum += *b
	}
	return &sum
}

// FoodEntry represents one item of the reference food catalog
type FoodEntry struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	ServingSize float64   `json:"servingSize" yaml:"servingSize"`
	ServingUnit string    `json:"servingUnit" yaml:"servingUnit"`
	Nutrients   Nutrients `json:"nutrients" yaml:"nutrients"`
}

// Validate checks the catalog invariants: non-empty id and name,
// finite non-negative nutrients and a finite positive serving size.
func (f *FoodEntry) Validate() error {
	if strings.TrimSpace(f.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidFoodEntry)
	}
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: empty name for id %q", ErrInvalidFoodEntry, f.ID)
	}
	if !finite(f.ServingSize) || f.ServingSize <= 0 {
		return fmt.Errorf("%w: serving size must be positive for %q", ErrInvalidFoodEntry, f.Name)
	}

	n := f.Nutrients
	values := map[string]*float64{
		"calories":      &n.Calories,
		"protein":       &n.Protein,
		"carbohydrates": &n.Carbohydrates,
		"fat":           &n.Fat,
		"fiber":         n.Fiber,
		"sugar":         n.Sugar,
		"sodium":        n.Sodium,
	}
	for name, v := range values {
		if v == nil {
			continue
		}
		if !finite(*v) {
			return fmt.Errorf("%w: non-finite %s for %q", ErrInvalidFoodEntry, name, f.Name)
		}
		if *v < 0 {
			return fmt.Errorf("%w: negative %s for %q", ErrInvalidFoodEntry, name, f.Name)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// MatchTier identifies the matching strategy that produced a candidate
type MatchTier string

const (
	ExactMatch   MatchTier = "exact"
	PartialMatch MatchTier = "partial"
	FuzzyMatch   MatchTier = "fuzzy"
)

// MatchCandidate is a scored catalog entry produced by one matching tier
type MatchCandidate struct {
	Entry     FoodEntry `json:"entry"`
	Score     float64   `json:"score"` // 0-1
	MatchTier MatchTier `json:"matchTier"`
}

// MatchResult represents the ranked outcome of matching one free-text food name
type MatchResult struct {
	OriginalQuery string           `json:"originalQuery"`
	Candidates    []MatchCandidate `json:"candidates"`
	BestMatch     *FoodEntry       `json:"bestMatch,omitempty"`
	Confidence    float64          `json:"confidence"`
}

// Tier returns the tier of the best candidate, or "" when nothing matched.
func (r MatchResult) Tier() MatchTier {
	if len(r.Candidates) == 0 {
		return ""
	}
	return r.Candidates[0].MatchTier
}
