package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/fitscore/internal/domains"
	"github.com/spigell/fitscore/internal/record"
	"github.com/spigell/fitscore/internal/recovery"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadManifest(t *testing.T) {
	dir := t.TempDir()

	path := writeFile(t, dir, "pairs.yaml", `
- id: first
  candidate: a.json
  requirement: b.json
- candidate: c.json
  requirement: /abs/d.json
`)
	entries, err := readManifest(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].ID)
	assert.Equal(t, "pair-2", entries[1].ID)
	assert.Equal(t, filepath.Join(dir, "a.json"), resolvePath(dir, entries[0].Candidate))
	assert.Equal(t, "/abs/d.json", resolvePath(dir, entries[1].Requirement))

	for name, content := range map[string]string{
		"missing.yaml":   "- id: x\n  candidate: a.json\n",
		"duplicate.yaml": "- {id: x, candidate: a, requirement: b}\n- {id: x, candidate: c, requirement: d}\n",
		"unknown.yaml":   "- {id: x, candidate: a, requirement: b, weight: 3}\n",
	} {
		_, err := readManifest(writeFile(t, dir, name, content))
		assert.Error(t, err, name)
	}
}

func TestLoadRecord(t *testing.T) {
	dir := t.TempDir()
	parser := recovery.NewParser()

	valid := writeFile(t, dir, "cand.json", `{"role": "SRE", "totalYearsExperience": 4}`)
	rec, err := loadRecord(parser, valid, record.KindCandidate, false, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "SRE", rec.Role)

	broken := writeFile(t, dir, "cand.txt", "Sure! {\"role\": \"SRE\", \"totalYearsExperience\": 4")
	_, err = loadRecord(parser, broken, record.KindCandidate, false, zap.NewNop())
	require.ErrorContains(t, err, "--raw")

	rec, err = loadRecord(parser, broken, record.KindCandidate, true, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 4.0, rec.YearsExperience)
}

func TestOutputFormats(t *testing.T) {
	_, err := validateFormat("xml")
	require.Error(t, err)

	format, err := validateFormat(" YAML ")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeOutput(&buf, map[string]int{"score": 80}, format))
	assert.Equal(t, "score: 80\n", buf.String())

	buf.Reset()
	require.NoError(t, writeOutput(&buf, map[string]int{"score": 80}, formatJSON))
	assert.JSONEq(t, `{"score": 80}`, buf.String())
}

func TestYAMLOutputUsesRecordKeys(t *testing.T) {
	rec := record.New(record.KindCandidate)
	rec.YearsExperience = 4
	rec.PreferredSkills = []string{"Go"}
	report := ExtractReport{
		Result: &recovery.Result{Record: rec, Recovered: true, Stage: "boundary"},
		Domain: &domains.Classification{Category: "Finance", Source: domains.SourceModel},
	}

	var buf bytes.Buffer
	require.NoError(t, writeOutput(&buf, report, formatYAML))

	out := buf.String()
	for _, key := range []string{"totalYearsExperience: 4", "preferredSkills:", "responsibilities:", "recovered: true", "category: Finance", "source: model"} {
		assert.Contains(t, out, key)
	}
	assert.NotContains(t, out, "yearsexperience")
	assert.NotContains(t, out, "preferredskills")
}

func TestValidateWeight(t *testing.T) {
	assert.NoError(t, validateWeight(" 12.5 "))
	assert.Error(t, validateWeight("-1"))
	assert.Error(t, validateWeight("lots"))
}
