package main

import (
	"bytes"
	"context"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testdata(t *testing.T, name string) string {
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..", "internal", "infrastructure", "catalog", "testdata", name)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestImportAndMatch(t *testing.T) {
	t.Chdir(t.TempDir())
	db := filepath.Join(t.TempDir(), "foods.db")

	out, err := run(t, "--db", db, "import", testdata(t, "foods.csv"))
	require.NoError(t, err)
	assert.Contains(t, out, "Imported")

	out, err = run(t, "--db", db, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Driver: sqlite")
	assert.NotContains(t, out, "Foods: 0")

	out, err = run(t, "--db", db, "match", "Tofu grelhado", "queijo inexistente xyz")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Tofu grelhado -> Tofu grelhado [20] (exact, 1.00)")
	assert.Contains(t, lines[1], "no match")
}

func TestMatchJSONWithSeed(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := run(t, "--seed", testdata(t, "foods.json"), "match", "--json", "Maça")
	require.NoError(t, err)
	assert.Contains(t, out, `"originalQuery": "Maça"`)
	assert.Contains(t, out, `"matchTier": "fuzzy"`)
}

func TestCommandErrors(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("import needs sqlite", func(t *testing.T) {
		_, err := run(t, "import", testdata(t, "foods.json"))
		assert.Error(t, err)
	})

	t.Run("import-usda needs an api key", func(t *testing.T) {
		_, err := run(t, "--db", filepath.Join(t.TempDir(), "x.db"), "import-usda", "rice")
		assert.Error(t, err)
	})

	t.Run("match needs a query", func(t *testing.T) {
		_, err := run(t, "match")
		assert.Error(t, err)
	})
}
