// Package app wires configuration into the catalog and the usecase services.
package app

import (
	"context"
	"log"

	"github.com/nutrimatch/backend/config"
	"github.com/nutrimatch/backend/internal/infrastructure/cache"
	"github.com/nutrimatch/backend/internal/infrastructure/catalog"
	"github.com/nutrimatch/backend/internal/usecase"
)

// App holds the long-lived dependencies shared by the server and the CLI
type App struct {
	Catalog     catalog.Catalog
	Cache       *cache.MemoryCache
	FoodService *usecase.FoodService
}

// New opens the configured catalog and builds the services on top of it
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := catalog.Open(ctx, catalog.Options{
		Driver:   cfg.Catalog.Driver,
		Path:     cfg.Catalog.Path,
		SeedFile: cfg.Catalog.SeedFile,
	})
	if err != nil {
		return nil, err
	}

	memoryCache := cache.NewMemoryCache(cfg.Cache.TTL)

	matcher := usecase.NewMatchingService(store, usecase.MatchConfig{
		PartialLimit:       cfg.Matching.PartialLimit,
		FuzzySampleSize:    cfg.Matching.FuzzySampleSize,
		FullScanFuzzy:      cfg.Matching.FullScanFuzzy,
		FuzzyThreshold:     &cfg.Matching.FuzzyThreshold,
		MaxCandidates:      cfg.Matching.MaxCandidates,
		BatchConcurrency:   cfg.Matching.BatchConcurrency,
		EnableDebugLogging: cfg.Matching.EnableDebugLogging,
	})

	alternatives := usecase.NewAlternativeService(
		store,
		usecase.NewRestrictionTable(cfg.Restrictions),
		usecase.AlternativeConfig{
			SimilarLimit:            cfg.Alternatives.SimilarLimit,
			SimilarCalorieTolerance: cfg.Alternatives.SimilarCalorieTolerance,
			SimilarProteinTolerance: cfg.Alternatives.SimilarProteinTolerance,
			SimilarProteinFloor:     cfg.Alternatives.SimilarProteinFloor,
			CaloricTolerance:        cfg.Alternatives.CaloricTolerance,
			Limit:                   cfg.Alternatives.Limit,
			EnableDebugLogging:      cfg.Matching.EnableDebugLogging,
		},
	)

	enhancer := usecase.NewEnhancementService(store, matcher, usecase.EnhancementConfig{
		AcceptanceThreshold: &cfg.Matching.AcceptanceThreshold,
		EnableDebugLogging:  cfg.Matching.EnableDebugLogging,
	})

	foodService := usecase.NewFoodService(store, memoryCache, matcher, alternatives, enhancer,
		usecase.FoodServiceConfig{CacheTTL: cfg.Cache.TTL})

	log.Printf("[APP] Matching: partial=%d sample=%d full_scan=%v fuzzy>%.2f accept>%.2f",
		cfg.Matching.PartialLimit, cfg.Matching.FuzzySampleSize, cfg.Matching.FullScanFuzzy,
		cfg.Matching.FuzzyThreshold, enhancer.AcceptanceThreshold())

	return &App{
		Catalog:     store,
		Cache:       memoryCache,
		FoodService: foodService,
	}, nil
}

// Close releases the cache janitor and the catalog
func (a *App) Close() error {
	a.Cache.Close()
	return a.Catalog.Close()
}
