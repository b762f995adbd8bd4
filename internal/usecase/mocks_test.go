package usecase

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nutrimatch/backend/internal/domain"
	"github.com/nutrimatch/backend/internal/foodtext"
)

// MockCatalog is an in-memory domain.CatalogAccessor that records calls and
// can be told to fail.
type MockCatalog struct {
	mu      sync.Mutex
	entries []domain.FoodEntry
	err     error
	calls   map[string]int

	lastSampleLimit int
	lastRangeQuery  domain.NutrientRangeQuery
}

func NewMockCatalog(entries ...domain.FoodEntry) *MockCatalog {
	return &MockCatalog{entries: entries, calls: make(map[string]int)}
}

func (m *MockCatalog) record(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[method]++
	return m.err
}

func (m *MockCatalog) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockCatalog) FindByExactName(ctx context.Context, name string) ([]domain.FoodEntry, error) {
	if err := m.record("FindByExactName"); err != nil {
		return nil, err
	}
	out := []domain.FoodEntry{}
	for _, e := range m.entries {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockCatalog) FindByNameContains(ctx context.Context, substring string, limit int) ([]domain.FoodEntry, error) {
	if err := m.record("FindByNameContains"); err != nil {
		return nil, err
	}
	needle := strings.ToLower(substring)
	out := []domain.FoodEntry{}
	for _, e := range m.entries {
		if limit > 0 && len(out) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(e.Name), needle) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockCatalog) Sample(ctx context.Context, limit int) ([]domain.FoodEntry, error) {
	if err := m.record("Sample"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.lastSampleLimit = limit
	m.mu.Unlock()
	if limit > 0 && limit < len(m.entries) {
		return append([]domain.FoodEntry(nil), m.entries[:limit]...), nil
	}
	return append([]domain.FoodEntry(nil), m.entries...), nil
}

func (m *MockCatalog) FindByID(ctx context.Context, id string) (*domain.FoodEntry, error) {
	if err := m.record("FindByID"); err != nil {
		return nil, err
	}
	for _, e := range m.entries {
		if e.ID == id {
			found := e
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MockCatalog) FindByNutrientRange(ctx context.Context, q domain.NutrientRangeQuery) ([]domain.FoodEntry, error) {
	if err := m.record("FindByNutrientRange"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.lastRangeQuery = q
	m.mu.Unlock()

	out := []domain.FoodEntry{}
	for _, e := range m.entries {
		if e.ID == q.ExcludeID || !q.Calories.Contains(e.Nutrients.Calories) {
			continue
		}
		if q.Protein != nil && !q.Protein.Contains(e.Nutrients.Protein) {
			continue
		}
		if foodtext.ContainsAny(foodtext.Normalize(e.Name), q.ExcludeKeywords) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Nutrients.Calories-q.NearCalories) < math.Abs(out[j].Nutrients.Calories-q.NearCalories)
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// MockCacheRepository is a mock implementation of domain.CacheRepository
type MockCacheRepository struct {
	mu        sync.Mutex
	data      map[string]interface{}
	setError  error
	getCalled int
	setCalled int
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{data: make(map[string]interface{})}
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) (interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalled++
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalled++
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MockCacheRepository) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]interface{})
}

func food(id, name string, calories, protein float64) domain.FoodEntry {
	return domain.FoodEntry{
		ID:          id,
		Name:        name,
		ServingSize: 100,
		ServingUnit: "g",
		Nutrients: domain.Nutrients{
			Calories:      calories,
			Protein:       protein,
			Carbohydrates: 10,
			Fat:           2,
		},
	}
}

// referenceFoods is a small Brazilian catalog used across the usecase tests
func referenceFoods() []domain.FoodEntry {
	return []domain.FoodEntry{
		food("f1", "Banana", 89, 1.1),
		food("f2", "Maçã", 52, 0.3),
		food("f3", "Arroz branco cozido", 130, 2.7),
		food("f4", "Arroz integral cozido", 124, 2.6),
		food("f5", "Frango grelhado", 165, 31),
		food("f6", "Tofu", 145, 15),
		food("f7", "Queijo minas", 264, 17.4),
		food("f8", "Lentilha cozida", 116, 9),
		food("f9", "Grão-de-bico cozido", 164, 8.9),
		food("f10", "Peito de peru", 150, 29),
	}
}

func floatPtr(v float64) *float64 { return &v }
