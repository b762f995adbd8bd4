package usecase

import (
	"log"

	"github.com/nutrimatch/backend/internal/domain"
	"github.com/nutrimatch/backend/internal/foodtext"
)

// RestrictionTable maps restriction labels to their keyword sets.
// Labels are looked up by normalized form, so "sem glúten" and "Sem gluten"
// resolve to the same rule. The table is immutable once built.
type RestrictionTable struct {
	rules map[string]domain.RestrictionRule
}

// NewRestrictionTable builds a table from rules. Keywords are normalized and
// rules sharing a label are merged.
func NewRestrictionTable(rules []domain.RestrictionRule) *RestrictionTable {
	table := &RestrictionTable{rules: make(map[string]domain.RestrictionRule, len(rules))}
	for _, rule := range rules {
		key := foodtext.Normalize(rule.Label)
		if key == "" {
			continue
		}
		existing, ok := table.rules[key]
		if !ok {
			existing = domain.RestrictionRule{Label: rule.Label}
		}
		existing.ExcludedNameKeywords = unionKeywords(existing.ExcludedNameKeywords, rule.ExcludedNameKeywords)
		table.rules[key] = existing
	}
	return table
}

// Lookup returns the rule registered for label.
func (t *RestrictionTable) Lookup(label string) (domain.RestrictionRule, bool) {
	rule, ok := t.rules[foodtext.Normalize(label)]
	return rule, ok
}

// Resolve returns the rules for labels, skipping unknown ones.
func (t *RestrictionTable) Resolve(labels []string) []domain.RestrictionRule {
	rules := make([]domain.RestrictionRule, 0, len(labels))
	for _, label := range labels {
		rule, ok := t.Lookup(label)
		if !ok {
			log.Printf("[ALT] Unknown dietary restriction %q ignored", label)
			continue
		}
		rules = append(rules, rule)
	}
	return rules
}

// Labels returns the display labels of every rule.
func (t *RestrictionTable) Labels() []string {
	labels := make([]string, 0, len(t.rules))
	for _, rule := range t.rules {
		labels = append(labels, rule.Label)
	}
	return labels
}

// ExcludedKeywords returns the normalized union of the keyword sets of rules.
func ExcludedKeywords(rules []domain.RestrictionRule) []string {
	var keywords []string
	for _, rule := range rules {
		keywords = unionKeywords(keywords, rule.ExcludedNameKeywords)
	}
	return keywords
}

func unionKeywords(base, extra []string) []string {
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, kw := range list {
			n := foodtext.Normalize(kw)
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
