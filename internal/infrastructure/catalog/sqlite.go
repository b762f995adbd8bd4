package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/nutrimatch/backend/internal/domain"
	"github.com/nutrimatch/backend/internal/foodtext"
)

const foodColumns = `id, name, serving_size, serving_unit, calories, protein, carbohydrates, fat, fiber, sugar, sodium`

// SQLiteCatalog is a CatalogAccessor backed by a SQLite database. Catalog
// order is insertion (rowid) order. The folded and normalized name columns
// are computed in Go on write so that reads match MemoryCatalog semantics.
type SQLiteCatalog struct {
	db *sql.DB
}

// NewSQLiteCatalog opens (or creates) the database at dbPath and ensures the schema
func NewSQLiteCatalog(dbPath string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dbPath == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	c := &SQLiteCatalog{db: db}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return c, nil
}

// Close closes the underlying database
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}

func (c *SQLiteCatalog) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS foods (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        name_folded TEXT NOT NULL,
        name_normalized TEXT NOT NULL,
        serving_size REAL NOT NULL,
        serving_unit TEXT NOT NULL,
        calories REAL NOT NULL,
        protein REAL NOT NULL,
        carbohydrates REAL NOT NULL,
        fat REAL NOT NULL,
        fiber REAL,
        sugar REAL,
        sodium REAL
    );

    CREATE INDEX IF NOT EXISTS idx_foods_name ON foods(name);
    CREATE INDEX IF NOT EXISTS idx_foods_calories ON foods(calories);
    `

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Upsert validates and stores entries in a single transaction. Existing ids
// are updated in place and keep their catalog position.
func (c *SQLiteCatalog) Upsert(ctx context.Context, entries []domain.FoodEntry) error {
	for i := range entries {
		if err := entries[i].Validate(); err != nil {
			return err
		}
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to start transaction: %v", domain.ErrCatalogUnavailable, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO foods (id, name, name_folded, name_normalized, serving_size, serving_unit,
                           calories, protein, carbohydrates, fat, fiber, sugar, sodium)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name = excluded.name,
            name_folded = excluded.name_folded,
            name_normalized = excluded.name_normalized,
            serving_size = excluded.serving_size,
            serving_unit = excluded.serving_unit,
            calories = excluded.calories,
            protein = excluded.protein,
            carbohydrates = excluded.carbohydrates,
            fat = excluded.fat,
            fiber = excluded.fiber,
            sugar = excluded.sugar,
            sodium = excluded.sodium
    `)
	if err != nil {
		return fmt.Errorf("%w: failed to prepare insert: %v", domain.ErrCatalogUnavailable, err)
	}
	defer stmt.Close()

	for _, e := range entries {
		n := e.Nutrients
		_, err := stmt.ExecContext(ctx,
			e.ID, e.Name, foodtext.Fold(e.Name), foodtext.Normalize(e.Name),
			e.ServingSize, e.ServingUnit,
			n.Calories, n.Protein, n.Carbohydrates, n.Fat,
			nullable(n.Fiber), nullable(n.Sugar), nullable(n.Sodium))
		if err != nil {
			return fmt.Errorf("%w: failed to insert food %q: %v", domain.ErrCatalogUnavailable, e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit: %v", domain.ErrCatalogUnavailable, err)
	}
	return nil
}

// Count returns the number of stored foods
func (c *SQLiteCatalog) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM foods`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	return n, nil
}

// FindByExactName returns the entries whose name equals name, case-sensitively
func (c *SQLiteCatalog) FindByExactName(ctx context.Context, name string) ([]domain.FoodEntry, error) {
	return c.query(ctx, `SELECT `+foodColumns+` FROM foods WHERE name = ? ORDER BY rowid`, name)
}

// FindByNameContains returns up to limit entries whose name contains
// substring, ignoring case
func (c *SQLiteCatalog) FindByNameContains(ctx context.Context, substring string, limit int) ([]domain.FoodEntry, error) {
	return c.query(ctx,
		`SELECT `+foodColumns+` FROM foods WHERE instr(name_folded, ?) > 0 ORDER BY rowid LIMIT ?`,
		foodtext.Fold(substring), sqlLimit(limit))
}

// Sample returns the first limit entries in catalog order, or all when limit <= 0
func (c *SQLiteCatalog) Sample(ctx context.Context, limit int) ([]domain.FoodEntry, error) {
	return c.query(ctx, `SELECT `+foodColumns+` FROM foods ORDER BY rowid LIMIT ?`, sqlLimit(limit))
}

// FindByID returns the entry with the given id, or nil when absent
func (c *SQLiteCatalog) FindByID(ctx context.Context, id string) (*domain.FoodEntry, error) {
	entries, err := c.query(ctx, `SELECT `+foodColumns+` FROM foods WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// FindByNutrientRange filters by the query bands and keywords and orders the
// hits by calorie distance, rowid breaking ties
func (c *SQLiteCatalog) FindByNutrientRange(ctx context.Context, query domain.NutrientRangeQuery) ([]domain.FoodEntry, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + foodColumns + ` FROM foods WHERE calories BETWEEN ? AND ?`)
	args := []interface{}{query.Calories.Min, query.Calories.Max}

	if query.Protein != nil {
		sb.WriteString(` AND protein BETWEEN ? AND ?`)
		args = append(args, query.Protein.Min, query.Protein.Max)
	}
	if query.ExcludeID != "" {
		sb.WriteString(` AND id <> ?`)
		args = append(args, query.ExcludeID)
	}
	for _, kw := range query.ExcludeKeywords {
		if kw == "" {
			continue
		}
		sb.WriteString(` AND instr(name_normalized, ?) = 0`)
		args = append(args, kw)
	}

	sb.WriteString(` ORDER BY ABS(calories - ?), rowid LIMIT ?`)
	args = append(args, query.NearCalories, sqlLimit(query.Limit))

	return c.query(ctx, sb.String(), args...)
}

func (c *SQLiteCatalog) query(ctx context.Context, q string, args ...interface{}) ([]domain.FoodEntry, error) {
	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
	}
	defer rows.Close()

	var entries []domain.FoodEntry
	for rows.Next() {
		var (
			e                    domain.FoodEntry
			fiber, sugar, sodium sql.NullFloat64
		)
		err := rows.Scan(&e.ID, &e.Name, &e.ServingSize, &e.ServingUnit,
			&e.Nutrients.Calories, &e.Nutrients.Protein, &e.Nutrients.Carbohydrates, &e.Nutrients.Fat,
			&fiber, &sugar, &sodium)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan food: %v", domain.ErrCatalogUnavailable, err)
		}
		e.Nutrients.Fiber = fromNull(fiber)
		e.Nutrients.Sugar = fromNull(sugar)
		e.Nutrients.Sodium = fromNull(sodium)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}

	return entries, nil
}

// sqlLimit maps "unbounded" to SQLite's LIMIT -1
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func nullable(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
