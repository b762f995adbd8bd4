package usecase

import (
	"context"
	"fmt"
	"log"

	"github.com/nutrimatch/backend/internal/domain"
	"github.com/nutrimatch/backend/internal/infrastructure/usda"
)

// importBatchSize bounds the number of entries written per Upsert call
const importBatchSize = 500

// ImportService loads foods into a persistent catalog from files or the USDA
// FoodData Central API
type ImportService struct {
	writer   domain.CatalogWriter
	client   domain.USDAClient
	progress func(written int)
}

// NewImportService creates a new import service. client may be nil when only
// local files are imported.
func NewImportService(writer domain.CatalogWriter, client domain.USDAClient) *ImportService {
	return &ImportService{writer: writer, client: client}
}

// OnProgress registers fn to be called with the size of every written batch
func (s *ImportService) OnProgress(fn func(written int)) {
	s.progress = fn
}

// ImportEntries validates entries and upserts them in batches. Nothing is
// written when any entry is invalid. On a write error the count of entries
// already written is returned with the error.
func (s *ImportService) ImportEntries(ctx context.Context, entries []domain.FoodEntry) (int, error) {
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return 0, fmt.Errorf("entry %d: %w", i, err)
		}
	}

	written := 0
	for start := 0; start < len(entries); start += importBatchSize {
		end := min(start+importBatchSize, len(entries))
		if err := s.writer.Upsert(ctx, entries[start:end]); err != nil {
			return written, err
		}
		written += end - start
		if s.progress != nil {
			s.progress(end - start)
		}
	}

	if written > 0 {
		log.Printf("[IMPORT] Upserted %d foods", written)
	}
	return written, nil
}

// ImportUSDASearch searches USDA for query and imports every usable result.
// Foods missing a description or reporting negative nutrients are skipped.
func (s *ImportService) ImportUSDASearch(ctx context.Context, query string, pageSize int) (int, error) {
	if query == "" {
		return 0, fmt.Errorf("%w: empty search query", domain.ErrInvalidRequest)
	}
	if s.client == nil {
		return 0, fmt.Errorf("%w: USDA client not configured", domain.ErrUSDAAPIFailure)
	}

	resp, err := s.client.SearchFoods(ctx, query, pageSize)
	if err != nil {
		return 0, err
	}

	entries := usda.MapToFoodEntries(resp.Foods)
	if skipped := len(resp.Foods) - len(entries); skipped > 0 {
		log.Printf("[IMPORT] Skipped %d USDA foods with invalid data for %q", skipped, query)
	}
	return s.ImportEntries(ctx, entries)
}

// ImportUSDAFood imports a single USDA food by FDC id
func (s *ImportService) ImportUSDAFood(ctx context.Context, fdcID string) (domain.FoodEntry, error) {
	if s.client == nil {
		return domain.FoodEntry{}, fmt.Errorf("%w: USDA client not configured", domain.ErrUSDAAPIFailure)
	}

	food, err := s.client.GetFoodDetails(ctx, fdcID)
	if err != nil {
		return domain.FoodEntry{}, err
	}

	entry := usda.MapToFoodEntry(food)
	if _, err := s.ImportEntries(ctx, []domain.FoodEntry{entry}); err != nil {
		return domain.FoodEntry{}, err
	}
	return entry, nil
}
