package skills

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Tier is the strength of a skill comparison. Higher tiers rank first.
type Tier int

const (
	TierNone Tier = iota
	TierSubstring
	TierFuzzy
	TierAnalogy
	TierExact
)

const (
	ExactConfidence     = 1.0
	AnalogyConfidence   = 0.95
	SubstringConfidence = 0.80

	DefaultFuzzyThreshold     = 0.70
	DefaultMinSubstringLength = 4
)

var tierNames = map[Tier]string{
	TierNone:      "none",
	TierSubstring: "substring",
	TierFuzzy:     "fuzzy",
	TierAnalogy:   "analogy",
	TierExact:     "exact",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return tierNames[TierNone]
}

// MarshalText renders the tier name in JSON and YAML output.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a tier name.
func (t *Tier) UnmarshalText(b []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(b)))
	for tier, n := range tierNames {
		if n == name {
			*t = tier
			return nil
		}
	}
	return fmt.Errorf("unknown match tier %q", name)
}

// Resolver decides whether two skill mentions denote the same competency.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	catalog        *Catalog
	fuzzyThreshold float64
	minSubstring   int
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithFuzzyThreshold sets the minimum similarity ratio for the fuzzy tier.
func WithFuzzyThreshold(threshold float64) Option {
	return func(r *Resolver) { r.fuzzyThreshold = threshold }
}

// WithMinSubstringLength sets how many runes both mentions need before a
// containment check is attempted.
func WithMinSubstringLength(n int) Option {
	return func(r *Resolver) { r.minSubstring = n }
}

// NewResolver builds a resolver over the catalog.
func NewResolver(catalog *Catalog, opts ...Option) (*Resolver, error) {
	if catalog == nil {
		return nil, fmt.Errorf("%w: catalog is required", ErrConfiguration)
	}

	r := &Resolver{
		catalog:        catalog,
		fuzzyThreshold: DefaultFuzzyThreshold,
		minSubstring:   DefaultMinSubstringLength,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.fuzzyThreshold <= 0 || r.fuzzyThreshold > 1 {
		return nil, fmt.Errorf("%w: fuzzy threshold %.2f is outside (0, 1]", ErrConfiguration, r.fuzzyThreshold)
	}
	if r.minSubstring < 1 {
		return nil, fmt.Errorf("%w: minimum substring length %d must be positive", ErrConfiguration, r.minSubstring)
	}

	return r, nil
}

// Catalog returns the catalog the resolver was built with.
func (r *Resolver) Catalog() *Catalog { return r.catalog }

// Match compares two mentions and returns the first applicable tier with its
// confidence. The comparison is commutative.
func (r *Resolver) Match(a, b string) (Tier, float64) {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return TierNone, 0
	}

	if na == nb {
		return TierExact, ExactConfidence
	}

	fa, okA := r.catalog.lookup(na)
	fb, okB := r.catalog.lookup(nb)
	if okA && okB && fa == fb {
		return TierAnalogy, AnalogyConfidence
	}

	if ratio := Similarity(na, nb); ratio >= r.fuzzyThreshold {
		return TierFuzzy, ratio
	}

	if r.containable(na, nb) && (strings.Contains(na, nb) || strings.Contains(nb, na)) {
		return TierSubstring, SubstringConfidence
	}

	return TierNone, 0
}

func (r *Resolver) containable(a, b string) bool {
	return utf8.RuneCountInString(a) >= r.minSubstring && utf8.RuneCountInString(b) >= r.minSubstring
}

// Similarity is the normalized Levenshtein similarity of two strings in [0, 1].
func Similarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if longest == 0 {
		return 1
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(longest)
}
