package catalog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/nutrimatch/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

// LoadFile reads catalog entries from a .json, .yaml/.yml or .csv file
func LoadFile(path string) ([]domain.FoodEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer f.Close()

	var entries []domain.FoodEntry
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		entries, err = LoadJSON(f)
	case ".yaml", ".yml":
		entries, err = LoadYAML(f)
	case ".csv":
		entries, err = LoadCSV(f)
	default:
		return nil, fmt.Errorf("unsupported catalog file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	log.Printf("[CATALOG] Loaded %d foods from %s", len(entries), path)
	return entries, nil
}

// LoadJSON decodes a JSON array of food entries
func LoadJSON(r io.Reader) ([]domain.FoodEntry, error) {
	var entries []domain.FoodEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	return prepare(entries)
}

// LoadYAML decodes a YAML list of food entries
func LoadYAML(r io.Reader) ([]domain.FoodEntry, error) {
	var entries []domain.FoodEntry
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to decode YAML: %w", err)
	}
	return prepare(entries)
}

// LoadCSV decodes a CSV file with a header row. Recognized columns are id,
// name, serving_size, serving_unit, calories, protein, carbohydrates, fat,
// fiber, sugar and sodium; the optional nutrients may be left blank.
func LoadCSV(r io.Reader) ([]domain.FoodEntry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"name", "calories", "protein", "carbohydrates", "fat"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: CSV header missing %q column", domain.ErrInvalidFoodEntry, required)
		}
	}

	var entries []domain.FoodEntry
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		entry, err := parseCSVRecord(record, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, entry)
	}

	return prepare(entries)
}

func parseCSVRecord(record []string, index map[string]int) (domain.FoodEntry, error) {
	field := func(name string) string {
		if i, ok := index[name]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}
	number := func(name string) (float64, error) {
		raw := field(name)
		if raw == "" {
			return 0, nil
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q is not a number", domain.ErrInvalidFoodEntry, name, raw)
		}
		return v, nil
	}
	optional := func(name string) (*float64, error) {
		if field(name) == "" {
			return nil, nil
		}
		v, err := number(name)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}

	e := domain.FoodEntry{
		ID:          field("id"),
		Name:        field("name"),
		ServingUnit: field("serving_unit"),
	}

	var err error
	if e.ServingSize, err = number("serving_size"); err != nil {
		return e, err
	}
	n := &e.Nutrients
	if n.Calories, err = number("calories"); err != nil {
		return e, err
	}
	if n.Protein, err = number("protein"); err != nil {
		return e, err
	}
	if n.Carbohydrates, err = number("carbohydrates"); err != nil {
		return e, err
	}
	if n.Fat, err = number("fat"); err != nil {
		return e, err
	}
	if n.Fiber, err = optional("fiber"); err != nil {
		return e, err
	}
	if n.Sugar, err = optional("sugar"); err != nil {
		return e, err
	}
	if n.Sodium, err = optional("sodium"); err != nil {
		return e, err
	}
	return e, nil
}

// prepare fills defaults (generated id, 100 g serving) and validates entries
func prepare(entries []domain.FoodEntry) ([]domain.FoodEntry, error) {
	for i := range entries {
		e := &entries[i]
		e.Name = strings.TrimSpace(e.Name)
		if strings.TrimSpace(e.ID) == "" {
			e.ID = uuid.NewString()
		}
		if e.ServingSize == 0 {
			e.ServingSize = 100
		}
		if e.ServingUnit == "" {
			e.ServingUnit = "g"
		}
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return entries, nil
}
