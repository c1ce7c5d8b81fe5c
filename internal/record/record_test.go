package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDegree(t *testing.T) {
	tests := []struct {
		in    string
		level DegreeLevel
		ok    bool
	}{
		{"PhD in Physics", LevelDoctorate, true},
		{"Doctor of Medicine", LevelDoctorate, true},
		{"MBA", LevelMaster, true},
		{"M.Tech", LevelMaster, true},
		{"Master of Science", LevelMaster, true},
		{"B.Tech", LevelBachelor, true},
		{"Bachelor of Arts", LevelBachelor, true},
		{"Associate Degree", LevelDiploma, true},
		{"GED", LevelNone, true},
		{"Culinary arts", LevelNone, false},
		{"   ", LevelNone, false},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			level, ok := ParseDegree(tc.in)
			assert.Equal(t, tc.level, level)
			assert.Equal(t, tc.ok, ok)
		})
	}
}

func TestDegreeLevelString(t *testing.T) {
	assert.Equal(t, "Master", LevelMaster.String())
	assert.Equal(t, "None", DegreeLevel(42).String())
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{
		"candidate": KindCandidate,
		" Resume ":  KindCandidate,
		"jd":        KindRequirement,
		"vacancy":   KindRequirement,
	} {
		got, ok := ParseKind(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseKind("cover letter")
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	cand := New(KindCandidate)
	assert.Equal(t, DefaultRole, cand.Role)
	assert.Equal(t, UnknownDomain, cand.Domain)
	assert.NotNil(t, cand.Skills)
	assert.Empty(t, cand.Education)
	assert.False(t, cand.HasDomain())

	req := New(KindRequirement)
	assert.Equal(t, []Education{{Degree: NotSpecified, Level: LevelNone}}, req.Education)
}

func TestHighestDegree(t *testing.T) {
	r := New(KindCandidate)
	assert.Equal(t, Education{}, r.HighestDegree())

	r.Education = []Education{
		{Degree: "B.Sc", Level: LevelBachelor},
		{Degree: "MBA", Level: LevelMaster},
		{Degree: "Diploma", Level: LevelDiploma},
	}
	assert.Equal(t, "MBA", r.HighestDegree().Degree)
}

func TestText(t *testing.T) {
	r := New(KindCandidate)
	r.Summary = DefaultSummary
	assert.Empty(t, r.Text())

	r.Role = "Accountant"
	r.Skills = []string{"GAAP"}
	r.Experience = []Experience{{Title: "Auditor"}}
	r.Responsibilities = []string{"Close the ledger"}
	assert.Equal(t, "Accountant\nGAAP\nAuditor\nClose the ledger", r.Text())
}
