package domains

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/spigell/fitscore/internal/record"
)

// ErrConfiguration is returned when a domain table or engine config is invalid.
var ErrConfiguration = errors.New("invalid domain configuration")

//go:embed categories.yaml
var categoriesYAML []byte

// Category is an industry classification with the keywords that identify it.
type Category struct {
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	Keywords    []string `yaml:"keywords" json:"keywords"`
}

// Table holds the categories in declaration order and the compatibility
// matrix between them.
type Table struct {
	Categories []Category                `yaml:"categories" json:"categories"`
	Matrix     map[string]map[string]int `yaml:"matrix" json:"matrix"`
}

var defaultTable = sync.OnceValues(func() (Table, error) {
	return LoadTable(bytes.NewReader(categoriesYAML))
})

// DefaultTable returns the built-in eleven category table.
func DefaultTable() (Table, error) {
	return defaultTable()
}

// LoadTable reads a YAML domain table.
func LoadTable(r io.Reader) (Table, error) {
	var t Table
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return Table{}, fmt.Errorf("%w: decoding domain table: %w", ErrConfiguration, err)
	}
	return t, nil
}

// validate checks the table and returns the matrix indexed by category position.
func (t Table) validate() ([][]int, error) {
	n := len(t.Categories)
	if n == 0 {
		return nil, fmt.Errorf("%w: no domain categories", ErrConfiguration)
	}

	seen := make(map[string]struct{}, n)
	for i, c := range t.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: category #%d has no name", ErrConfiguration, i)
		}
		key := strings.ToLower(name)
		if key == record.UnknownDomain {
			return nil, fmt.Errorf("%w: %q is reserved", ErrConfiguration, record.UnknownDomain)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrConfiguration, name)
		}
		seen[key] = struct{}{}
		if len(c.Keywords) == 0 {
			return nil, fmt.Errorf("%w: category %q has no keywords", ErrConfiguration, name)
		}
	}

	for row, cols := range t.Matrix {
		if _, ok := seen[strings.ToLower(row)]; !ok {
			return nil, fmt.Errorf("%w: matrix row %q is not a category", ErrConfiguration, row)
		}
		for col := range cols {
			if _, ok := seen[strings.ToLower(col)]; !ok {
				return nil, fmt.Errorf("%w: matrix column %q in row %q is not a category", ErrConfiguration, col, row)
			}
		}
	}

	scores := make([][]int, n)
	for i, a := range t.Categories {
		scores[i] = make([]int, n)
		row, ok := t.Matrix[a.Name]
		if !ok {
			return nil, fmt.Errorf("%w: matrix has no row for %q", ErrConfiguration, a.Name)
		}
		for j, b := range t.Categories {
			score, ok := row[b.Name]
			if !ok {
				return nil, fmt.Errorf("%w: matrix has no entry for %q -> %q", ErrConfiguration, a.Name, b.Name)
			}
			if score < 0 || score > 100 {
				return nil, fmt.Errorf("%w: score %d for %q -> %q is outside [0, 100]", ErrConfiguration, score, a.Name, b.Name)
			}
			if i == j && score != 100 {
				return nil, fmt.Errorf("%w: self compatibility of %q is %d, want 100", ErrConfiguration, a.Name, score)
			}
			scores[i][j] = score
		}
	}

	for i := range scores {
		for j := i + 1; j < n; j++ {
			if scores[i][j] != scores[j][i] {
				return nil, fmt.Errorf("%w: matrix is not symmetric for %q and %q (%d vs %d)",
					ErrConfiguration, t.Categories[i].Name, t.Categories[j].Name, scores[i][j], scores[j][i])
			}
		}
	}

	return scores, nil
}
