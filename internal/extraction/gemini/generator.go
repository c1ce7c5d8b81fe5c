// Package gemini implements the extraction generator on the Google GenAI API.
package gemini

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/fitscore/internal/logger"
)

const (
	// Provider names the backend in logs.
	Provider = "gemini"

	defaultModel      = "gemini-2.5-flash"
	defaultMaxRetries = 3
	// Quota errors asking to wait longer than this are not retried.
	maxQuotaDelay = 30 * time.Second
)

var retryDelayPattern = regexp.MustCompile(`(?i)retry (?:after|in) ([\d.]+)\s*s`)

// models is the part of the genai client the generator needs.
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator wraps the Google GenAI client to provide simple prompt-based
// interactions. Replies are cached per prompt for the life of the generator.
type Generator struct {
	models     models
	modelName  string
	maxRetries int
	logger     *zap.Logger
	newBackOff func() backoff.BackOff

	cacheMu sync.RWMutex
	cache   map[string]string
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
// maxRetries counts every attempt, including the first.
func NewGenerator(ctx context.Context, apiKey, model string, maxRetries int, log *zap.Logger) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, model, maxRetries, log), nil
}

func newGenerator(m models, model string, maxRetries int, log *zap.Logger) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if maxRetries < 1 {
		maxRetries = defaultMaxRetries
	}

	return &Generator{
		models:     m,
		modelName:  model,
		maxRetries: maxRetries,
		logger:     logger.WithCommonFields(log, Provider, model),
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
		cache:      make(map[string]string),
	}
}

// GenerateContent sends the prompt to Gemini and returns the textual response.
// Rate limits and server errors are retried with exponential backoff.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	key := promptKey(prompt)
	g.cacheMu.RLock()
	cached, ok := g.cache[key]
	g.cacheMu.RUnlock()
	if ok {
		g.logger.Debug("gemini reply served from cache")
		return cached, nil
	}

	var (
		output  string
		attempt int
	)
	op := func() error {
		attempt++
		text, err := g.generateOnce(ctx, prompt)
		if err != nil {
			if retryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		output = text
		return nil
	}
	notify := func(err error, wait time.Duration) {
		g.logger.Warn("gemini request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(g.newBackOff(), uint64(g.maxRetries-1)), ctx)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	g.cacheMu.Lock()
	g.cache[key] = output
	g.cacheMu.Unlock()

	return output, nil
}

// Forget drops the cached reply for prompt so the next request for it goes to
// the model.
func (g *Generator) Forget(prompt string) {
	if g == nil {
		return
	}
	key := promptKey(strings.TrimSpace(prompt))
	g.cacheMu.Lock()
	delete(g.cache, key)
	g.cacheMu.Unlock()
}

func (g *Generator) generateOnce(ctx context.Context, prompt string) (string, error) {
	resp, err := g.models.GenerateContent(ctx, g.modelName, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", errors.New("gemini api returned no response")
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

// Model returns the model name requests are sent to.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

// retryable reports whether err is a rate limit or server error worth another
// attempt. Quota errors that ask for a long wait are given up on.
func retryable(err error) bool {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var ptr *genai.APIError
		if !errors.As(err, &ptr) || ptr == nil {
			return false
		}
		apiErr = *ptr
	}

	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		if delay, ok := retryDelay(apiErr.Message); ok && delay > maxQuotaDelay {
			return false
		}
		return true
	case apiErr.Code >= http.StatusInternalServerError:
		return true
	default:
		return false
	}
}

func retryDelay(message string) (time.Duration, bool) {
	m := retryDelayPattern.FindStringSubmatch(message)
	if m == nil {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}

func promptKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return fmt.Sprintf("%x", sum[:])
}
