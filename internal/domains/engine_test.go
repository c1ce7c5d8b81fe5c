package domains

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/fitscore/internal/record"
)

func newDefaultEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	table, err := DefaultTable()
	require.NoError(t, err)
	engine, err := New(table, cfg)
	require.NoError(t, err)
	return engine
}

func candidate(skills ...string) record.Record {
	rec := record.New(record.KindCandidate)
	rec.Skills = skills
	return rec
}

func TestDefaultTable(t *testing.T) {
	t.Parallel()

	engine := newDefaultEngine(t, DefaultConfig())
	categories := engine.Categories()
	require.Len(t, categories, 11)
	assert.Equal(t, "IT/Software", categories[0].Name)
	assert.Equal(t, "Finance/Banking", categories[10].Name)

	for _, a := range categories {
		for _, b := range categories {
			ab := engine.Compatibility(a.Name, b.Name)
			ba := engine.Compatibility(b.Name, a.Name)
			require.Equal(t, ab.Score, ba.Score, "%s <-> %s", a.Name, b.Name)
		}
	}
}

func TestCompatibility(t *testing.T) {
	t.Parallel()

	engine := newDefaultEngine(t, DefaultConfig())

	tests := []struct {
		name           string
		source, target string
		score          int
		level          Level
		factor         float64
	}{
		{name: "same domain", source: "DevOps/Cloud", target: "devops/cloud", score: 100, level: LevelPerfect, factor: 1.0},
		{name: "close domains", source: "IT/Software", target: "Backend Development", score: 95, level: LevelPerfect, factor: 1.0},
		{name: "adjacent domains", source: "DevOps/Cloud", target: "Backend Development", score: 85, level: LevelPerfect, factor: 0.85},
		{name: "finance to ml", source: "Finance/Accounting", target: "AI/ML/Data Science", score: 45, level: LevelAcceptable, factor: 0.40},
		{name: "career pivot", source: "HR/Recruitment", target: "IT/Software", score: 10, level: LevelPoor, factor: 0.25},
		{name: "unknown source", source: "unknown", target: "IT/Software", score: 0, level: LevelPoor, factor: 0.25},
		{name: "unknown target", source: "Healthcare", target: "Astronomy", score: 0, level: LevelPoor, factor: 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := engine.Compatibility(tt.source, tt.target)
			assert.Equal(t, tt.score, c.Score)
			assert.Equal(t, tt.level, c.Level)
			assert.NotEmpty(t, c.Detail)
			assert.InDelta(t, tt.factor, engine.AdjustmentFactor(c.Score), 1e-9)
		})
	}
}

func TestCompatibilityUnknownScoreOverride(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.UnknownScore = 60
	engine := newDefaultEngine(t, cfg)

	c := engine.Compatibility("unknown", "Healthcare")
	assert.Equal(t, 60, c.Score)
	assert.Equal(t, LevelGood, c.Level)
	assert.Equal(t, record.UnknownDomain, c.Source)
	assert.Equal(t, "Healthcare", c.Target)
	assert.InDelta(t, 0.65, engine.AdjustmentFactor(c.Score), 1e-9)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	engine := newDefaultEngine(t, DefaultConfig())

	t.Run("keyword majority", func(t *testing.T) {
		t.Parallel()
		c := engine.Classify(candidate("Docker", "AWS", "Kubernetes"))
		assert.Equal(t, "DevOps/Cloud", c.Category)
		assert.Equal(t, 100, c.Confidence)
		assert.False(t, c.Ambiguous)
		assert.Equal(t, []Hit{{Category: "DevOps/Cloud", Count: 3}}, c.Top)
	})

	t.Run("tie goes to first declared", func(t *testing.T) {
		t.Parallel()
		c := engine.Classify(candidate("React", "Docker"))
		assert.Equal(t, "Frontend Development", c.Category)
		assert.Equal(t, 50, c.Confidence)
		assert.True(t, c.Ambiguous)
		assert.Contains(t, c.Reason, "tie")
	})

	t.Run("no hits", func(t *testing.T) {
		t.Parallel()
		c := engine.Classify(candidate("Python"))
		assert.Equal(t, record.UnknownDomain, c.Category)
		assert.True(t, c.Ambiguous)
		assert.Zero(t, c.Confidence)
	})

	t.Run("keywords inside longer words do not count", func(t *testing.T) {
		t.Parallel()
		rec := candidate()
		rec.Summary = "waiting for submission with patience"
		c := engine.Classify(rec)
		assert.Equal(t, record.UnknownDomain, c.Category)
	})

	t.Run("role and experience count", func(t *testing.T) {
		t.Parallel()
		rec := candidate()
		rec.Role = "Staff Accountant"
		rec.Experience = []record.Experience{{Title: "Audit associate"}, {Title: "Tax preparer"}}
		c := engine.Classify(rec)
		assert.Equal(t, "Finance/Accounting", c.Category)
	})
}

func TestResolve(t *testing.T) {
	t.Parallel()

	engine := newDefaultEngine(t, DefaultConfig())

	rec := candidate("Python")
	rec.Domain = "devops/cloud"
	c := engine.Resolve(rec)
	assert.Equal(t, "DevOps/Cloud", c.Category)
	assert.Equal(t, SourceLabel, c.Source)

	rec = candidate("Docker")
	rec.Domain = "Space Exploration"
	c = engine.Resolve(rec)
	assert.Equal(t, "DevOps/Cloud", c.Category)
	assert.Equal(t, SourceKeywords, c.Source)
	assert.Contains(t, c.Reason, "Space Exploration")

	c = engine.Resolve(candidate("Python"))
	assert.Equal(t, record.UnknownDomain, c.Category)
	assert.NotContains(t, c.Reason, "label")
}

func TestCountWord(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2, countWord("ci/cd pipelines and ci/cd", "ci/cd"))
	assert.Equal(t, 1, countWord("with it", "it"))
	assert.Equal(t, 2, countWord("aws,aws", "aws"))
	assert.Equal(t, 0, countWord("awsome", "aws"))
	assert.Equal(t, 1, countWord("naïve ai", "ai"))
}
