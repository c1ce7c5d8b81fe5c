// Package extraction asks a language model to turn a plain-text resume or job
// description into a record, and hands the reply to the recovery parser.
package extraction

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/fitscore/internal/domains"
	"github.com/spigell/fitscore/internal/logger"
	"github.com/spigell/fitscore/internal/record"
	"github.com/spigell/fitscore/internal/recovery"
	"github.com/spigell/fitscore/internal/utils"
)

const (
	defaultMaxDocumentRunes = 8000
	defaultMaxDomainRunes   = 2000
	defaultPasses           = 2
	defaultMaxLogLength     = 200
)

// ErrEmptyDocument is returned when there is no text to extract from.
var ErrEmptyDocument = errors.New("document is empty")

//go:embed prompts/*.md
var prompts embed.FS

// Generator sends a prompt to a model and returns its textual reply.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Forgetter is implemented by generators that cache replies. A rejected reply
// is forgotten so the next request for the same prompt reaches the model.
type Forgetter interface {
	Forget(prompt string)
}

// Extractor renders prompts, calls the generator and recovers records from
// the replies. It is safe for concurrent use when the generator is.
type Extractor struct {
	generator Generator
	parser    *recovery.Parser
	logger    *zap.Logger

	maxDocumentRunes int
	maxDomainRunes   int
	passes           int
	maxLogLength     int
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithMaxDocumentRunes limits how much of the document is sent to the model.
func WithMaxDocumentRunes(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxDocumentRunes = n
		}
	}
}

// WithPasses sets how many times the model is asked before giving up on a
// recoverable reply.
func WithPasses(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.passes = n
		}
	}
}

// WithMaxLogLength limits how much of prompts and replies is logged.
func WithMaxLogLength(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.maxLogLength = n
		}
	}
}

// New builds an extractor. A nil parser gets a default one logging to log.
func New(gen Generator, parser *recovery.Parser, log *zap.Logger, opts ...Option) (*Extractor, error) {
	if gen == nil {
		return nil, errors.New("extraction generator is required")
	}
	log = logger.WithFields(log)
	if parser == nil {
		parser = recovery.NewParser(recovery.WithLogger(log))
	}

	e := &Extractor{
		generator:        gen,
		parser:           parser,
		logger:           log,
		maxDocumentRunes: defaultMaxDocumentRunes,
		maxDomainRunes:   defaultMaxDomainRunes,
		passes:           defaultPasses,
		maxLogLength:     defaultMaxLogLength,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Extract asks the model for a record of the given kind. The model is asked
// again while its reply cannot be recovered. When every reply fails recovery
// the all-defaults result of the last one is returned; an error is returned
// only when no reply was obtained at all.
func (e *Extractor) Extract(ctx context.Context, text string, kind record.Kind) (*recovery.Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}
	if kind != record.KindCandidate && kind != record.KindRequirement {
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}

	prompt, err := e.render(string(kind)+".md", defaultDomainNames(), map[string]string{
		"DOCUMENT": truncateRunes(text, e.maxDocumentRunes),
	})
	if err != nil {
		return nil, err
	}

	log := e.logger.With(zap.String(logger.FieldKind, string(kind)))

	var (
		last    *recovery.Result
		lastErr error
	)
	for pass := 1; pass <= e.passes; pass++ {
		raw, err := e.generate(ctx, log, prompt)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("extract %s: %w", kind, ctxErr)
			}
			log.Warn("extraction pass failed", zap.Int("pass", pass), zap.Error(err))
			lastErr = err
			continue
		}

		result := e.parser.Parse(raw, kind)
		if result.Recovered {
			log.Info("extraction succeeded", zap.Int("pass", pass), zap.String("stage", result.Stage))
			return &result, nil
		}
		log.Warn("extraction reply could not be recovered", zap.Int("pass", pass))
		e.reject(prompt)
		last = &result
	}

	if last != nil {
		return last, nil
	}
	return nil, fmt.Errorf("extract %s: %w", kind, lastErr)
}

// ClassifyDomain asks the model which category the text belongs to. When the
// model is unavailable or names no known category the keyword classifier
// decides instead.
func (e *Extractor) ClassifyDomain(ctx context.Context, text string, kind record.Kind, engine *domains.Engine) (domains.Classification, error) {
	if engine == nil {
		return domains.Classification{}, errors.New("domain engine is required")
	}

	fallback := func(reason string) domains.Classification {
		rec := record.New(kind)
		rec.Summary = text
		c := engine.Classify(rec)
		if c.Reason == "" {
			c.Reason = reason
		} else {
			c.Reason = reason + ". " + c.Reason
		}
		return c
	}

	if strings.TrimSpace(text) == "" {
		return fallback("document is empty"), nil
	}

	docKind := "resume"
	if kind == record.KindRequirement {
		docKind = "job description"
	}
	names := make([]string, 0, len(engine.Categories()))
	for _, c := range engine.Categories() {
		names = append(names, c.Name)
	}
	prompt, err := e.render("domain.md", names, map[string]string{
		"KIND":     docKind,
		"DOCUMENT": truncateRunes(text, e.maxDomainRunes),
	})
	if err != nil {
		return domains.Classification{}, err
	}

	raw, err := e.generate(ctx, e.logger, prompt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domains.Classification{}, fmt.Errorf("classify domain: %w", ctxErr)
		}
		e.logger.Warn("model domain classification failed, using keywords", zap.Error(err))
		return fallback("model unavailable"), nil
	}

	obj, _, ok := e.parser.Object(raw)
	if !ok {
		e.reject(prompt)
		return fallback("model reply could not be parsed"), nil
	}

	label, _ := obj["primary_domain"].(string)
	name, known := engine.Known(label)
	if !known {
		e.logger.Debug("model named an unknown domain", zap.String("domain", label))
		e.reject(prompt)
		return fallback(fmt.Sprintf("model label %q is not a known category", label)), nil
	}

	reasoning, _ := obj["reasoning"].(string)
	return domains.Classification{
		Category:   name,
		Confidence: confidence(obj["confidence"]),
		Source:     domains.SourceModel,
		Reason:     strings.TrimSpace(reasoning),
	}, nil
}

func (e *Extractor) generate(ctx context.Context, log *zap.Logger, prompt string) (string, error) {
	log.Debug("model request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, e.maxLogLength)),
	)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return "", err
	}

	log.Debug("model response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLength)),
	)
	return raw, nil
}

// reject drops a cached reply for prompt, if the generator keeps one.
func (e *Extractor) reject(prompt string) {
	if f, ok := e.generator.(Forgetter); ok {
		f.Forget(prompt)
	}
}

func (e *Extractor) render(name string, domainNames []string, vars map[string]string) (string, error) {
	data, err := prompts.ReadFile("prompts/" + name)
	if err != nil {
		return "", fmt.Errorf("loading prompt %s: %w", name, err)
	}
	prompt := strings.ReplaceAll(string(data), "{{DOMAINS}}", strings.Join(domainNames, ", "))
	for k, v := range vars {
		prompt = strings.ReplaceAll(prompt, "{{"+k+"}}", v)
	}
	return prompt, nil
}

// defaultDomainNames lists the built-in categories offered to the model.
func defaultDomainNames() []string {
	table, err := domains.DefaultTable()
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(table.Categories))
	for _, c := range table.Categories {
		names = append(names, c.Name)
	}
	return names
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

func confidence(v any) int {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(val), "%"), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, f))))
}
