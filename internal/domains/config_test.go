package domains

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "no steps", mutate: func(c *Config) { c.Steps = nil }},
		{name: "factor above one", mutate: func(c *Config) { c.Steps[0].Factor = 1.2 }},
		{name: "negative minimum", mutate: func(c *Config) { c.Steps[4].Min = -1 }},
		{name: "minimums not decreasing", mutate: func(c *Config) { c.Steps[1].Min = 95 }},
		{name: "factor increases as score drops", mutate: func(c *Config) { c.Steps[2].Factor = 0.9 }},
		{name: "not exhaustive", mutate: func(c *Config) { c.Steps[4].Min = 10 }},
		{name: "unknown score out of range", mutate: func(c *Config) { c.UnknownScore = 101 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrConfiguration)
		})
	}
}

func smallTable() Table {
	return Table{
		Categories: []Category{
			{Name: "Engineering", Keywords: []string{"golang"}},
			{Name: "Finance", Keywords: []string{"ledger"}},
		},
		Matrix: map[string]map[string]int{
			"Engineering": {"Engineering": 100, "Finance": 20},
			"Finance":     {"Engineering": 20, "Finance": 100},
		},
	}
}

func TestNewRejectsInvalidTables(t *testing.T) {
	t.Parallel()

	_, err := New(smallTable(), DefaultConfig())
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Table)
	}{
		{name: "no categories", mutate: func(tb *Table) { tb.Categories = nil }},
		{name: "reserved name", mutate: func(tb *Table) { tb.Categories[0].Name = "Unknown" }},
		{name: "duplicate name", mutate: func(tb *Table) { tb.Categories[1].Name = "engineering" }},
		{name: "no keywords", mutate: func(tb *Table) { tb.Categories[1].Keywords = nil }},
		{name: "missing row", mutate: func(tb *Table) { delete(tb.Matrix, "Finance") }},
		{name: "missing entry", mutate: func(tb *Table) { delete(tb.Matrix["Finance"], "Engineering") }},
		{name: "out of range", mutate: func(tb *Table) {
			tb.Matrix["Finance"]["Engineering"] = 120
			tb.Matrix["Engineering"]["Finance"] = 120
		}},
		{name: "self pair below 100", mutate: func(tb *Table) { tb.Matrix["Finance"]["Finance"] = 90 }},
		{name: "asymmetric", mutate: func(tb *Table) { tb.Matrix["Finance"]["Engineering"] = 30 }},
		{name: "stray row", mutate: func(tb *Table) { tb.Matrix["Legal"] = map[string]int{"Legal": 100} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			table := smallTable()
			tt.mutate(&table)
			_, err := New(table, DefaultConfig())
			require.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestLoadTable(t *testing.T) {
	t.Parallel()

	table, err := LoadTable(strings.NewReader(`
categories:
  - name: Engineering
    keywords: [golang]
matrix:
  Engineering:
    Engineering: 100
`))
	require.NoError(t, err)

	engine, err := New(table, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 100, engine.Compatibility("engineering", "Engineering").Score)

	_, err = LoadTable(strings.NewReader("categories: [oops"))
	require.ErrorIs(t, err, ErrConfiguration)
}
