package catalog

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/nutrimatch/backend/internal/domain"
)

// Supported catalog drivers
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Catalog is a CatalogAccessor that holds resources until closed
type Catalog interface {
	domain.CatalogAccessor
	io.Closer
}

// Options selects the catalog driver and its data sources
type Options struct {
	Driver   string
	Path     string // sqlite database file
	SeedFile string // optional json/yaml/csv file loaded on open
}

// Close is a no-op; the snapshot holds no external resources
func (c *MemoryCatalog) Close() error { return nil }

// Open builds the catalog described by opts. The memory driver is populated
// from the seed file; the sqlite driver upserts the seed file, when given,
// into the database before returning.
func Open(ctx context.Context, opts Options) (Catalog, error) {
	var seed []domain.FoodEntry
	if opts.SeedFile != "" {
		entries, err := LoadFile(opts.SeedFile)
		if err != nil {
			return nil, err
		}
		seed = entries
	}

	switch opts.Driver {
	case DriverMemory, "":
		if len(seed) == 0 {
			log.Printf("[CATALOG] WARNING: memory catalog is empty (no seed file configured)")
		}
		return NewMemoryCatalog(seed), nil

	case DriverSQLite:
		store, err := NewSQLiteCatalog(opts.Path)
		if err != nil {
			return nil, err
		}
		if len(seed) > 0 {
			if err := store.Upsert(ctx, seed); err != nil {
				store.Close()
				return nil, fmt.Errorf("failed to seed catalog: %w", err)
			}
		}
		count, err := store.Count(ctx)
		if err != nil {
			store.Close()
			return nil, err
		}
		log.Printf("[CATALOG] SQLite catalog %s holds %d foods", opts.Path, count)
		return store, nil

	default:
		return nil, fmt.Errorf("unknown catalog driver %q", opts.Driver)
	}
}
