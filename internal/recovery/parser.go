// Package recovery turns raw language-model output into validated records.
// Parsing is total: every input yields a record, falling back through
// progressively more lenient stages and finally to all defaults.
package recovery

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/fitscore/internal/logger"
	"github.com/spigell/fitscore/internal/record"
	"github.com/spigell/fitscore/internal/utils"
)

const (
	// StageDefaults names the outcome when no stage produced anything.
	StageDefaults = "defaults"

	defaultMaxLogLength = 200
	maxCutAttempts      = 256
)

// Stage is one recovery strategy. Recover must not modify shared state. A
// panic inside a stage, or an empty object, counts as a failed stage.
type Stage interface {
	Name() string
	Recover(text string, kind record.Kind) (map[string]any, bool)
}

// StageFunc adapts a function to the Stage interface.
type StageFunc struct {
	StageName string
	Fn        func(text string, kind record.Kind) (map[string]any, bool)
}

func (s StageFunc) Name() string { return s.StageName }

func (s StageFunc) Recover(text string, kind record.Kind) (map[string]any, bool) {
	return s.Fn(text, kind)
}

// DefaultStages returns the built-in stages in the order they are tried.
func DefaultStages() []Stage {
	return []Stage{
		StageFunc{"direct", direct},
		StageFunc{"boundary", boundary},
		StageFunc{"autocomplete", autocomplete},
		StageFunc{"normalize", normalize},
		StageFunc{"aggressive", aggressive},
	}
}

func direct(text string, _ record.Kind) (map[string]any, bool) {
	return decodeObject(text)
}

func boundary(text string, _ record.Kind) (map[string]any, bool) {
	obj, ok := balancedObject(text)
	if !ok {
		return nil, false
	}
	return decodeObject(obj)
}

func autocomplete(text string, _ record.Kind) (map[string]any, bool) {
	start := objectStart(text)
	if start < 0 {
		return nil, false
	}
	return decodeObject(complete(text[start:]))
}

func normalize(text string, _ record.Kind) (map[string]any, bool) {
	start := objectStart(text)
	if start < 0 {
		return nil, false
	}
	fixed := normalizeSyntax(text[start:])
	if obj, ok := balancedObject(fixed); ok {
		if out, ok := decodeObject(obj); ok {
			return out, true
		}
	}
	return decodeObject(complete(fixed))
}

// aggressive first cuts the normalized text back to the longest prefix that
// completes into an object, then falls back to extracting fields one by one.
func aggressive(text string, kind record.Kind) (map[string]any, bool) {
	if start := objectStart(text); start >= 0 {
		fixed := normalizeSyntax(text[start:])
		cuts := cutPoints(fixed)
		for i, tried := len(cuts)-1, 0; i >= 0 && tried < maxCutAttempts; i, tried = i-1, tried+1 {
			if obj, ok := decodeObject(complete(fixed[:cuts[i]])); ok && len(obj) > 0 {
				return obj, true
			}
		}
	}

	fields := extractFields(text, kind)
	return fields, len(fields) > 0
}

// Result is the outcome of parsing one document.
type Result struct {
	Record record.Record `json:"record" yaml:"record"`
	// Recovered is false only when every stage failed and the record is all defaults.
	Recovered bool `json:"recovered" yaml:"recovered"`
	// Stage names the stage that produced the object.
	Stage string `json:"stage" yaml:"stage"`
	// Defaults lists the fields that were filled with defaults.
	Defaults []string `json:"defaults" yaml:"defaults"`
	// Notes lists coercions applied while building the record.
	Notes []string `json:"notes,omitempty" yaml:"notes,omitempty"`
	// Violations lists where the recovered object departs from the schema.
	Violations []string `json:"violations,omitempty" yaml:"violations,omitempty"`
}

// Parser runs the recovery stages. It is safe for concurrent use.
type Parser struct {
	logger       *zap.Logger
	stages       []Stage
	maxLogLength int
}

// Option customizes a Parser.
type Option func(*Parser)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(log *zap.Logger) Option {
	return func(p *Parser) { p.logger = logger.WithFields(log) }
}

// WithStages replaces the stage list.
func WithStages(stages ...Stage) Option {
	return func(p *Parser) { p.stages = stages }
}

// WithMaxLogLength limits how much of the raw input is echoed to logs.
func WithMaxLogLength(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxLogLength = n
		}
	}
}

// NewParser creates a parser with the default stages.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		logger:       zap.NewNop(),
		stages:       DefaultStages(),
		maxLogLength: defaultMaxLogLength,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse recovers a record of the given kind from text. It never fails: when
// no stage succeeds the all-defaults record is returned with Recovered unset.
func (p *Parser) Parse(text string, kind record.Kind) Result {
	text = strings.ToValidUTF8(text, "")
	if kind != record.KindCandidate && kind != record.KindRequirement {
		p.logger.Warn("unknown record kind, parsing as candidate", zap.String(logger.FieldKind, string(kind)))
		kind = record.KindCandidate
	}

	log := p.logger.With(zap.String(logger.FieldKind, string(kind)))

	for _, stage := range p.stages {
		obj, ok := p.run(stage, text, kind)
		log.Debug("recovery stage", zap.String("stage", stage.Name()), zap.Bool("ok", ok))
		if !ok {
			continue
		}

		rec, defaults, notes := coerceRecord(obj, kind)
		result := Result{
			Record:    rec,
			Recovered: true,
			Stage:     stage.Name(),
			Defaults:  defaults,
			Notes:     notes,
		}
		mismatches, err := violations(obj, kind)
		if err != nil {
			log.Warn("schema validation unavailable", zap.Error(err))
		}
		result.Violations = mismatches

		log.Info("document recovered",
			zap.String("stage", result.Stage),
			zap.Strings("defaults", defaults),
			zap.Int("violations", len(mismatches)),
		)
		return result
	}

	log.Warn("document could not be recovered, using defaults",
		zap.String("input", utils.TruncateForLog(text, p.maxLogLength)),
	)
	return defaultsResult(kind)
}

// Object runs the stages without coercing the result into a record. It
// reports the stage that produced the object, or StageDefaults and false.
func (p *Parser) Object(text string) (map[string]any, string, bool) {
	text = strings.ToValidUTF8(text, "")
	for _, stage := range p.stages {
		if obj, ok := p.run(stage, text, record.KindCandidate); ok {
			return obj, stage.Name(), true
		}
	}
	return nil, StageDefaults, false
}

func (p *Parser) run(stage Stage, text string, kind record.Kind) (obj map[string]any, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("recovery stage panicked",
				zap.String("stage", stage.Name()),
				zap.String("panic", fmt.Sprint(r)),
			)
			obj, ok = nil, false
		}
	}()
	obj, ok = stage.Recover(text, kind)
	// An empty object carries nothing worth reporting as recovered.
	if ok && len(obj) == 0 {
		ok = false
	}
	return obj, ok
}

func defaultsResult(kind record.Kind) Result {
	rec := record.New(kind)
	if kind == record.KindCandidate {
		rec.Summary = record.DefaultSummary
	}
	defaults := make([]string, 0, len(fieldsFor(kind)))
	for _, f := range fieldsFor(kind) {
		defaults = append(defaults, f.name)
	}
	return Result{
		Record:    rec,
		Recovered: false,
		Stage:     StageDefaults,
		Defaults:  defaults,
	}
}
