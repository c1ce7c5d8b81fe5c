package skills

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	require.Greater(t, catalog.Len(), 10)

	again, err := DefaultCatalog()
	require.NoError(t, err)
	assert.Same(t, catalog, again, "default catalog is loaded once")

	family, ok := catalog.Lookup("ReactJS")
	require.True(t, ok)
	assert.Equal(t, "frontend-react", family.Name)

	family, ok = catalog.Lookup("  Golang ")
	require.True(t, ok)
	assert.Equal(t, "go", family.Canonical)

	_, ok = catalog.Lookup("underwater basket weaving")
	assert.False(t, ok)
}

func TestNewCatalogKeepsDeclarationOrder(t *testing.T) {
	t.Parallel()

	catalog, err := NewCatalog([]Family{
		{Name: "first", Canonical: "alpha", Variants: []string{"shared"}},
		{Name: "second", Canonical: "beta", Variants: []string{"shared", "b"}},
	})
	require.NoError(t, err)

	family, ok := catalog.Lookup("Shared")
	require.True(t, ok)
	assert.Equal(t, "first", family.Name)

	family, ok = catalog.Lookup("b")
	require.True(t, ok)
	assert.Equal(t, "second", family.Name)

	families := catalog.Families()
	families[0].Name = "mutated"
	assert.Equal(t, "first", catalog.Families()[0].Name)
}

func TestNewCatalogRejectsInvalidTables(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		families []Family
	}{
		{name: "empty", families: nil},
		{name: "missing name", families: []Family{{Canonical: "go"}}},
		{name: "duplicate name", families: []Family{
			{Name: "lang", Canonical: "go"},
			{Name: "lang", Canonical: "rust"},
		}},
		{name: "missing canonical", families: []Family{{Name: "lang", Canonical: "  "}}},
		{name: "duplicate canonical", families: []Family{
			{Name: "a", Canonical: "Go"},
			{Name: "b", Canonical: "go"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewCatalog(tt.families)
			require.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	t.Parallel()

	catalog, err := LoadCatalog(strings.NewReader(`
families:
  - name: db-postgres
    canonical: postgresql
    variants: [postgres, psql]
`))
	require.NoError(t, err)
	assert.Equal(t, 1, catalog.Len())

	_, err = LoadCatalog(strings.NewReader("families:\n  - name: x\n    canonical: y\n    aliases: [z]\n"))
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "react js", Normalize("  React \t  JS "))
	assert.Equal(t, "react", Normalize("ＲＥＡＣＴ"))
	assert.Equal(t, "", Normalize(" \n "))
}
