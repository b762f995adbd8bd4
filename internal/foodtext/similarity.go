package foodtext

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Jaccard returns |A∩B| / |A∪B| over the token sets of two normalized strings.
// Two empty strings are identical (1.0); one empty side scores 0.
func Jaccard(a, b string) float64 {
	setA := Tokens(a)
	setB := Tokens(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for t := range setA {
		if _, ok := setB[t]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection

	return float64(intersection) / float64(union)
}

// Distance returns the Levenshtein edit distance between a and b, counted in runes.
func Distance(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// EditSimilarity returns 1 - distance/max(len(a), len(b)).
// Two empty strings score 1.0.
func EditSimilarity(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if lb := utf8.RuneCountInString(b); lb > maxLen {
		maxLen = lb
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(Distance(a, b))/float64(maxLen)
}
