package domain

import (
	"context"
	"time"
)

// CatalogAccessor defines read access to the reference food catalog.
// Implementations must be safe for concurrent reads.
type CatalogAccessor interface {
	FindByExactName(ctx context.Context, name string) ([]FoodEntry, error)
	FindByNameContains(ctx context.Context, substring string, limit int) ([]FoodEntry, error)
	Sample(ctx context.Context, limit int) ([]FoodEntry, error)
	FindByID(ctx context.Context, id string) (*FoodEntry, error)
	FindByNutrientRange(ctx context.Context, query NutrientRangeQuery) ([]FoodEntry, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear()
}

// USDAClient defines the interface for interacting with USDA FoodData Central API
type USDAClient interface {
	SearchFoods(ctx context.Context, query string, pageSize int) (*USDASearchResponse, error)
	GetFoodDetails(ctx context.Context, fdcID string) (*USDAFood, error)
}

// CatalogWriter defines write access to a persistent catalog
type CatalogWriter interface {
	Upsert(ctx context.Context, entries []FoodEntry) error
}
