// Package catalog provides CatalogAccessor implementations for the reference
// food database.
package catalog

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/nutrimatch/backend/internal/domain"
	"github.com/nutrimatch/backend/internal/foodtext"
)

// indexedEntry keeps the precomputed name forms next to the entry
type indexedEntry struct {
	entry      domain.FoodEntry
	folded     string
	normalized string
}

// MemoryCatalog is an immutable in-memory snapshot of the catalog. Entries
// keep the order they were given in, which is the order every query returns.
// It is safe for concurrent use.
type MemoryCatalog struct {
	entries []indexedEntry
	byID    map[string]int
	byName  map[string][]int
}

// NewMemoryCatalog builds a snapshot from entries. Later duplicates of an id
// replace the earlier entry in place.
func NewMemoryCatalog(entries []domain.FoodEntry) *MemoryCatalog {
	c := &MemoryCatalog{
		entries: make([]indexedEntry, 0, len(entries)),
		byID:    make(map[string]int, len(entries)),
		byName:  make(map[string][]int, len(entries)),
	}

	for _, e := range entries {
		ie := indexedEntry{
			entry:      copyEntry(e),
			folded:     foodtext.Fold(e.Name),
			normalized: foodtext.Normalize(e.Name),
		}
		if idx, ok := c.byID[e.ID]; ok {
			c.entries[idx] = ie
			continue
		}
		c.byID[e.ID] = len(c.entries)
		c.entries = append(c.entries, ie)
	}

	for idx, ie := range c.entries {
		c.byName[ie.entry.Name] = append(c.byName[ie.entry.Name], idx)
	}

	return c
}

// Len returns the number of entries in the snapshot
func (c *MemoryCatalog) Len() int {
	return len(c.entries)
}

// FindByExactName returns the entries whose name equals name, case-sensitively
func (c *MemoryCatalog) FindByExactName(ctx context.Context, name string) ([]domain.FoodEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idxs := c.byName[name]
	out := make([]domain.FoodEntry, 0, len(idxs))
	for _, idx := range idxs {
		out = append(out, copyEntry(c.entries[idx].entry))
	}
	return out, nil
}

// FindByNameContains returns up to limit entries whose name contains
// substring, ignoring case
func (c *MemoryCatalog) FindByNameContains(ctx context.Context, substring string, limit int) ([]domain.FoodEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	needle := foodtext.Fold(substring)

	var out []domain.FoodEntry
	for _, ie := range c.entries {
		if limit > 0 && len(out) >= limit {
			break
		}
		if strings.Contains(ie.folded, needle) {
			out = append(out, copyEntry(ie.entry))
		}
	}
	return out, nil
}

// Sample returns the first limit entries, or all of them when limit <= 0
func (c *MemoryCatalog) Sample(ctx context.Context, limit int) ([]domain.FoodEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n := len(c.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.FoodEntry, 0, n)
	for _, ie := range c.entries[:n] {
		out = append(out, copyEntry(ie.entry))
	}
	return out, nil
}

// FindByID returns the entry with the given id, or nil when absent
func (c *MemoryCatalog) FindByID(ctx context.Context, id string) (*domain.FoodEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx, ok := c.byID[id]
	if !ok {
		return nil, nil
	}
	entry := copyEntry(c.entries[idx].entry)
	return &entry, nil
}

// FindByNutrientRange filters by the query bands and keywords and orders the
// hits by calorie distance, catalog order breaking ties
func (c *MemoryCatalog) FindByNutrientRange(ctx context.Context, query domain.NutrientRangeQuery) ([]domain.FoodEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var hits []domain.FoodEntry
	for _, ie := range c.entries {
		e := ie.entry
		if query.ExcludeID != "" && e.ID == query.ExcludeID {
			continue
		}
		if !query.Calories.Contains(e.Nutrients.Calories) {
			continue
		}
		if query.Protein != nil && !query.Protein.Contains(e.Nutrients.Protein) {
			continue
		}
		if foodtext.ContainsAny(ie.normalized, query.ExcludeKeywords) {
			continue
		}
		hits = append(hits, copyEntry(e))
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return math.Abs(hits[i].Nutrients.Calories-query.NearCalories) <
			math.Abs(hits[j].Nutrients.Calories-query.NearCalories)
	})

	if query.Limit > 0 && len(hits) > query.Limit {
		hits = hits[:query.Limit]
	}
	return hits, nil
}

// copyEntry detaches the optional nutrient pointers from the snapshot
func copyEntry(e domain.FoodEntry) domain.FoodEntry {
	out := e
	out.Nutrients.Fiber = copyFloat(e.Nutrients.Fiber)
	out.Nutrients.Sugar = copyFloat(e.Nutrients.Sugar)
	out.Nutrients.Sodium = copyFloat(e.Nutrients.Sodium)
	return out
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
