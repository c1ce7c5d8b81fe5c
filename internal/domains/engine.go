package domains

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spigell/fitscore/internal/record"
)

// Level buckets a compatibility score.
type Level string

const (
	LevelPerfect    Level = "Perfect"
	LevelGood       Level = "Good"
	LevelAcceptable Level = "Acceptable"
	LevelPoor       Level = "Poor"
)

// LevelFor returns the level of a compatibility score.
func LevelFor(score int) Level {
	switch {
	case score >= 85:
		return LevelPerfect
	case score >= 60:
		return LevelGood
	case score >= 35:
		return LevelAcceptable
	default:
		return LevelPoor
	}
}

const (
	SourceLabel    = "label"
	SourceKeywords = "keywords"
	SourceModel    = "model"
)

// Hit counts keyword occurrences for one category.
type Hit struct {
	Category string `json:"category" yaml:"category"`
	Count    int    `json:"count" yaml:"count"`
}

// Classification is the domain assigned to a record.
type Classification struct {
	Category string `json:"category" yaml:"category"`
	// Confidence is the share of all keyword hits that went to Category, 0-100.
	Confidence int    `json:"confidence" yaml:"confidence"`
	Source     string `json:"source" yaml:"source"`
	Ambiguous  bool   `json:"ambiguous" yaml:"ambiguous"`
	Reason     string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Top        []Hit  `json:"top,omitempty" yaml:"top,omitempty"`
}

// Compatibility describes how well experience in Source transfers to Target.
type Compatibility struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Score  int    `json:"score" yaml:"score"`
	Level  Level  `json:"level" yaml:"level"`
	Detail string `json:"detail" yaml:"detail"`
}

// Engine classifies records and scores cross-domain moves. It is immutable
// after construction and safe for concurrent use.
type Engine struct {
	categories []Category
	keywords   [][]string
	index      map[string]int
	scores     [][]int
	cfg        Config
}

// New validates the table and config and builds an engine.
func New(table Table, cfg Config) (*Engine, error) {
	scores, err := table.validate()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		categories: make([]Category, len(table.Categories)),
		keywords:   make([][]string, len(table.Categories)),
		index:      make(map[string]int, len(table.Categories)),
		scores:     scores,
		cfg:        Config{Steps: append([]Step(nil), cfg.Steps...), UnknownScore: cfg.UnknownScore},
	}
	for i, c := range table.Categories {
		e.categories[i] = Category{
			Name:        c.Name,
			Description: c.Description,
			Keywords:    append([]string(nil), c.Keywords...),
		}
		seen := make(map[string]struct{}, len(c.Keywords))
		for _, kw := range c.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if _, dup := seen[kw]; kw == "" || dup {
				continue
			}
			seen[kw] = struct{}{}
			e.keywords[i] = append(e.keywords[i], kw)
		}
		e.index[strings.ToLower(c.Name)] = i
	}

	return e, nil
}

// Categories returns a copy of the categories in declaration order.
func (e *Engine) Categories() []Category {
	out := make([]Category, len(e.categories))
	copy(out, e.categories)
	return out
}

// Known returns the declared name of a category, matched case-insensitively.
func (e *Engine) Known(name string) (string, bool) {
	i, ok := e.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", false
	}
	return e.categories[i].Name, true
}

// Resolve prefers the record's own domain label when it names a known
// category and falls back to keyword classification otherwise.
func (e *Engine) Resolve(rec record.Record) Classification {
	if name, ok := e.Known(rec.Domain); ok {
		return Classification{Category: name, Confidence: 100, Source: SourceLabel}
	}
	c := e.Classify(rec)
	if rec.HasDomain() {
		c.Reason = strings.TrimSpace(fmt.Sprintf("label %q is not a known category. %s", rec.Domain, c.Reason))
	}
	return c
}

// Classify assigns the category with the most whole-word keyword hits in the
// record text. Ties go to the category declared first and zero hits yield
// "unknown"; both are flagged as ambiguous.
func (e *Engine) Classify(rec record.Record) Classification {
	text := strings.ToLower(rec.Text())

	hits := make([]Hit, 0, len(e.categories))
	total := 0
	for i, c := range e.categories {
		count := 0
		for _, kw := range e.keywords[i] {
			count += countWord(text, kw)
		}
		if count > 0 {
			hits = append(hits, Hit{Category: c.Name, Count: count})
			total += count
		}
	}

	if total == 0 {
		return Classification{
			Category:  record.UnknownDomain,
			Source:    SourceKeywords,
			Ambiguous: true,
			Reason:    "no domain keywords found",
		}
	}

	// Stable insertion sort keeps declaration order among equal counts.
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].Count > hits[j-1].Count; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}

	c := Classification{
		Category:   hits[0].Category,
		Confidence: hits[0].Count * 100 / total,
		Source:     SourceKeywords,
		Top:        hits[:min(3, len(hits))],
	}
	if len(hits) > 1 && hits[1].Count == hits[0].Count {
		c.Ambiguous = true
		c.Reason = fmt.Sprintf("tie between %s and %s (%d hits each), first declared wins",
			hits[0].Category, hits[1].Category, hits[0].Count)
	}
	return c
}

// Compatibility looks up the matrix score for a move from source to target.
// When either side is unknown the configured unknown score is used.
func (e *Engine) Compatibility(source, target string) Compatibility {
	si, okS := e.index[strings.ToLower(strings.TrimSpace(source))]
	ti, okT := e.index[strings.ToLower(strings.TrimSpace(target))]

	if !okS || !okT {
		score := e.cfg.UnknownScore
		return Compatibility{
			Source: e.nameOrUnknown(si, okS),
			Target: e.nameOrUnknown(ti, okT),
			Score:  score,
			Level:  LevelFor(score),
			Detail: "Could not determine domain(s).",
		}
	}

	src, dst := e.categories[si].Name, e.categories[ti].Name
	score := e.scores[si][ti]
	level := LevelFor(score)

	var detail string
	switch {
	case si == ti:
		detail = fmt.Sprintf("Both from the same domain (%s).", src)
	case level == LevelPerfect:
		detail = fmt.Sprintf("Strong domain alignment: %s -> %s.", src, dst)
	case level == LevelGood:
		detail = fmt.Sprintf("Reasonable domain alignment: %s -> %s. Some skills are transferable.", src, dst)
	case level == LevelAcceptable:
		detail = fmt.Sprintf("Moderate domain shift: %s -> %s. Candidate may need upskilling.", src, dst)
	default:
		detail = fmt.Sprintf("Significant domain change: %s -> %s. Major career pivot required.", src, dst)
	}

	return Compatibility{Source: src, Target: dst, Score: score, Level: level, Detail: detail}
}

// AdjustmentFactor maps a compatibility score to a multiplier in [0, 1].
func (e *Engine) AdjustmentFactor(score int) float64 {
	for _, s := range e.cfg.Steps {
		if score >= s.Min {
			return s.Factor
		}
	}
	return e.cfg.Steps[len(e.cfg.Steps)-1].Factor
}

func (e *Engine) nameOrUnknown(i int, ok bool) string {
	if ok {
		return e.categories[i].Name
	}
	return record.UnknownDomain
}

// countWord counts occurrences of kw in text that are not embedded in a
// longer word. Both arguments must already be lower case.
func countWord(text, kw string) int {
	count := 0
	for offset := 0; offset < len(text); {
		i := strings.Index(text[offset:], kw)
		if i < 0 {
			break
		}
		start := offset + i
		end := start + len(kw)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			count++
			offset = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return count
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
