package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/fitscore/internal/extraction"
	"github.com/spigell/fitscore/internal/record"
)

func TestExtractorSecondPassReachesModel(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(textResponse("I could not produce JSON, sorry."), nil)
	models.enqueue(textResponse(`{"role": "Backend Engineer", "totalYearsExperience": 4, "skills": ["Go"]}`), nil)

	g := newTestGenerator(models, 1)
	e, err := extraction.New(g, nil, zap.NewNop())
	require.NoError(t, err)

	result, err := e.Extract(context.Background(), "Backend engineer, four years of Go.", record.KindCandidate)
	require.NoError(t, err)

	assert.Len(t, models.calls, 2)
	assert.True(t, result.Recovered)
	assert.Equal(t, "Backend Engineer", result.Record.Role)
	assert.Equal(t, 4.0, result.Record.YearsExperience)
}

func TestGeneratorForget(t *testing.T) {
	models := &fakeModels{}
	models.enqueue(textResponse("first"), nil)
	models.enqueue(textResponse("second"), nil)

	g := newTestGenerator(models, 1)

	out, err := g.GenerateContent(context.Background(), "message")
	require.NoError(t, err)
	assert.Equal(t, "first", out)

	g.Forget("  message\n")

	out, err = g.GenerateContent(context.Background(), "message")
	require.NoError(t, err)
	assert.Equal(t, "second", out)
	assert.Len(t, models.calls, 2)
}
