package skills

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// ErrConfiguration is returned for invalid skill tables or resolver options.
var ErrConfiguration = errors.New("invalid skills configuration")

//go:embed families.yaml
var familiesYAML []byte

// Family is a canonical skill with its accepted spellings and synonyms.
type Family struct {
	Name      string   `yaml:"name" json:"name"`
	Canonical string   `yaml:"canonical" json:"canonical"`
	Variants  []string `yaml:"variants" json:"variants"`
}

type catalogFile struct {
	Families []Family `yaml:"families"`
}

// Catalog is an immutable, ordered set of skill families.
// It is safe for concurrent use.
type Catalog struct {
	families []Family
	index    map[string]int
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return LoadCatalog(bytes.NewReader(familiesYAML))
})

// DefaultCatalog returns the built-in catalog, loading it on first use.
func DefaultCatalog() (*Catalog, error) {
	return defaultCatalog()
}

// LoadCatalog reads a YAML skill table.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: decoding skill families: %w", ErrConfiguration, err)
	}
	return NewCatalog(file.Families)
}

// NewCatalog indexes the families. Declaration order is kept: a mention that
// matches several families belongs to the first one.
func NewCatalog(families []Family) (*Catalog, error) {
	if len(families) == 0 {
		return nil, fmt.Errorf("%w: no skill families", ErrConfiguration)
	}

	c := &Catalog{
		families: make([]Family, 0, len(families)),
		index:    make(map[string]int),
	}
	names := make(map[string]struct{}, len(families))
	canonicals := make(map[string]struct{}, len(families))

	for i, f := range families {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: family #%d has no name", ErrConfiguration, i)
		}
		if _, dup := names[name]; dup {
			return nil, fmt.Errorf("%w: duplicate family %q", ErrConfiguration, name)
		}
		names[name] = struct{}{}

		canonical := Normalize(f.Canonical)
		if canonical == "" {
			return nil, fmt.Errorf("%w: family %q has no canonical skill", ErrConfiguration, name)
		}
		if _, dup := canonicals[canonical]; dup {
			return nil, fmt.Errorf("%w: canonical skill %q declared twice", ErrConfiguration, canonical)
		}
		canonicals[canonical] = struct{}{}

		variants := append([]string{f.Canonical}, f.Variants...)
		for _, v := range variants {
			key := Normalize(v)
			if key == "" {
				continue
			}
			if _, taken := c.index[key]; !taken {
				c.index[key] = i
			}
		}

		c.families = append(c.families, Family{
			Name:      name,
			Canonical: f.Canonical,
			Variants:  append([]string(nil), f.Variants...),
		})
	}

	return c, nil
}

// Lookup returns the family a mention belongs to.
func (c *Catalog) Lookup(mention string) (Family, bool) {
	i, ok := c.lookup(Normalize(mention))
	if !ok {
		return Family{}, false
	}
	return c.families[i], true
}

func (c *Catalog) lookup(normalized string) (int, bool) {
	if c == nil || normalized == "" {
		return 0, false
	}
	i, ok := c.index[normalized]
	return i, ok
}

// Families returns a copy of the families in declaration order.
func (c *Catalog) Families() []Family {
	out := make([]Family, len(c.families))
	copy(out, c.families)
	return out
}

// Len returns the number of families.
func (c *Catalog) Len() int { return len(c.families) }

// Normalize folds a skill mention for comparison: NFKC, lower case,
// trimmed, internal whitespace collapsed.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
