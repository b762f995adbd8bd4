// Package foodtext canonicalizes food names and scores their similarity.
package foodtext

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)

	// NFD splits "ç" into "c" + U+0327, the combining mark is then dropped
	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
)

// Normalize lower-cases text, strips diacritics and drops every character
// outside [a-z0-9\s]. Leading and trailing whitespace is trimmed, inner runs
// are kept as they are.
//
//	Normalize("Maçã Fuji!") == "maca fuji"
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	lowered := strings.ToLower(text)
	stripped, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		stripped = lowered
	}
	return strings.TrimSpace(nonAlphanumericRegex.ReplaceAllString(stripped, ""))
}

// Fold lower-cases text for case-insensitive containment checks.
// Unlike Normalize it keeps accents and punctuation.
func Fold(text string) string {
	return strings.ToLower(text)
}

// Tokens splits a normalized string into its distinct whitespace-separated tokens.
func Tokens(normalized string) map[string]struct{} {
	fields := strings.Fields(normalized)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// ContainsAny reports whether normalizedName contains any of the keywords.
// Keywords are expected to be normalized already; empty ones never match.
func ContainsAny(normalizedName string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(normalizedName, kw) {
			return true
		}
	}
	return false
}
