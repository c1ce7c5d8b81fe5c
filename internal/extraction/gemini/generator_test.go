package gemini

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeResponse struct {
	resp *genai.GenerateContentResponse
	err  error
}

type modelCall struct {
	model  string
	prompt string
}

type fakeModels struct {
	mu    sync.Mutex
	calls []modelCall
	queue []fakeResponse
}

func (f *fakeModels) enqueue(resp *genai.GenerateContentResponse, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, fakeResponse{resp: resp, err: err})
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prompt := ""
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		prompt = contents[0].Parts[0].Text
	}
	f.calls = append(f.calls, modelCall{model: model, prompt: prompt})
	if len(f.queue) == 0 {
		return nil, errors.New("unexpected call")
	}
	res := f.queue[0]
	f.queue = f.queue[1:]
	return res.resp, res.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func newTestGenerator(m models, maxRetries int) *Generator {
	g := newGenerator(m, "gemini-pro", maxRetries, zap.NewNop())
	g.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return g
}

func TestGeneratorRetriesOnTemporaryError(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"})
	models.enqueue(textResponse("retry ok"), nil)

	g := newTestGenerator(models, 2)

	output, err := g.GenerateContent(context.Background(), "message")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if output != "retry ok" {
		t.Fatalf("unexpected output: %q", output)
	}

	if len(models.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(models.calls))
	}

	for _, call := range models.calls {
		if call.model != "gemini-pro" || call.prompt != "message" {
			t.Fatalf("unexpected call: %+v", call)
		}
	}
}

func TestGeneratorRetriesOnRateLimit(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(nil, &genai.APIError{Code: http.StatusTooManyRequests, Message: "slow down, retry in 2s"})
	models.enqueue(textResponse("ok"), nil)

	g := newTestGenerator(models, 3)

	if _, err := g.GenerateContent(context.Background(), "message"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(models.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(models.calls))
	}
}

func TestGeneratorStopsAfterRetriesExhausted(t *testing.T) {
	models := &fakeModels{}
	tempErr := genai.APIError{Code: http.StatusInternalServerError, Status: "INTERNAL"}
	models.enqueue(nil, tempErr)
	models.enqueue(nil, tempErr)
	models.enqueue(textResponse("too late"), nil)

	g := newTestGenerator(models, 2)

	_, err := g.GenerateContent(context.Background(), "msg")
	if err == nil {
		t.Fatal("expected error after retries exhausted")
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != http.StatusInternalServerError {
		t.Fatalf("expected the api error to be wrapped, got %v", err)
	}

	if len(models.calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(models.calls))
	}
}

func TestGeneratorDoesNotRetryOnLongQuotaDelay(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{
		Code:    http.StatusTooManyRequests,
		Status:  "RESOURCE_EXHAUSTED",
		Message: "quota exhausted, retry after 60 seconds",
	})

	g := newTestGenerator(models, 3)

	if _, err := g.GenerateContent(context.Background(), "msg"); err == nil {
		t.Fatal("expected error when quota delay too long")
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(models.calls))
	}
}

func TestGeneratorDoesNotRetryClientErrors(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{Code: http.StatusBadRequest, Status: "INVALID_ARGUMENT"})

	g := newTestGenerator(models, 3)

	if _, err := g.GenerateContent(context.Background(), "msg"); err == nil {
		t.Fatal("expected error for a bad request")
	}
	if len(models.calls) != 1 {
		t.Fatalf("expected single call, got %d", len(models.calls))
	}
}

func TestGeneratorCachesReplies(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(textResponse("first", "second"), nil)

	g := newTestGenerator(models, 1)

	for i := 0; i < 3; i++ {
		output, err := g.GenerateContent(context.Background(), "  same prompt ")
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if output != "first\nsecond" {
			t.Fatalf("unexpected output: %q", output)
		}
	}

	if len(models.calls) != 1 {
		t.Fatalf("expected one upstream call, got %d", len(models.calls))
	}
}

func TestGeneratorRejectsEmptyResponses(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(textResponse("   "), nil)

	g := newTestGenerator(models, 1)

	if _, err := g.GenerateContent(context.Background(), "msg"); err == nil {
		t.Fatal("expected error for empty response")
	}

	if _, err := g.GenerateContent(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}

func TestGeneratorHonorsCancelledContext(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(nil, genai.APIError{Code: http.StatusServiceUnavailable})
	models.enqueue(textResponse("never"), nil)

	g := newTestGenerator(models, 5)
	g.newBackOff = func() backoff.BackOff { return backoff.NewConstantBackOff(time.Hour) }

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := g.GenerateContent(ctx, "msg")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), "  ", "", 0, nil); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestDefaults(t *testing.T) {
	g := newGenerator(&fakeModels{}, " ", 0, nil)
	if g.Model() != defaultModel {
		t.Fatalf("expected default model, got %q", g.Model())
	}
	if g.maxRetries != defaultMaxRetries {
		t.Fatalf("expected default retries, got %d", g.maxRetries)
	}

	var nilGen *Generator
	if nilGen.Model() != "" {
		t.Fatal("expected empty model for nil generator")
	}
}
