package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/fitscore/internal/logger"
	"github.com/spigell/fitscore/internal/record"
	"github.com/spigell/fitscore/internal/scoring"
)

// ManifestEntry names the two files of one pair. Relative paths are resolved
// against the manifest's directory.
type ManifestEntry struct {
	ID          string `yaml:"id"`
	Candidate   string `yaml:"candidate"`
	Requirement string `yaml:"requirement"`
}

// BatchReport is what the batch command prints.
type BatchReport struct {
	RunID   string       `json:"runId" yaml:"runId"`
	Results []BatchEntry `json:"results" yaml:"results"`
}

type BatchEntry struct {
	ID     string               `json:"id" yaml:"id"`
	Result *scoring.MatchResult `json:"result" yaml:"result"`
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Score every pair listed in a manifest",
	Run: func(cmd *cobra.Command, _ []string) {
		runBatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringP("manifest", "m", "", "YAML list of {id, candidate, requirement} file pairs")
	batchCmd.Flags().IntP("workers", "w", 0, "pairs scored concurrently (default is the number of CPUs)")
	batchCmd.Flags().Bool("raw", false, "the files hold raw model output and may be malformed")
	batchCmd.Flags().StringP("output", "o", formatJSON, "output format: json or yaml")

	batchCmd.MarkFlagRequired("manifest")
	viper.BindPFlag("workers", batchCmd.Flags().Lookup("workers"))
}

func runBatch(cmd *cobra.Command) {
	runID := uuid.NewString()
	log := newLogger().With(zap.String(logger.FieldRun, runID))
	config := loadConfig(log)

	format, err := validateFormat(cmd.Flag("output").Value.String())
	if err != nil {
		log.Fatal("parsing flags", zap.Error(err))
	}

	c, err := buildComponents(config, log)
	if err != nil {
		log.Fatal("building the scoring engine", zap.Error(err))
	}

	manifestPath := cmd.Flag("manifest").Value.String()
	entries, err := readManifest(manifestPath)
	if err != nil {
		log.Fatal("reading the manifest", zap.Error(err))
	}

	raw := cmd.Flag("raw").Value.String() == "true"
	base := filepath.Dir(manifestPath)

	pairs := make([]scoring.Pair, 0, len(entries))
	for _, e := range entries {
		candidate, err := loadRecord(c.parser, resolvePath(base, e.Candidate), record.KindCandidate, raw, log)
		if err != nil {
			log.Fatal("loading a candidate", zap.String(logger.FieldPair, e.ID), zap.Error(err))
		}
		requirement, err := loadRecord(c.parser, resolvePath(base, e.Requirement), record.KindRequirement, raw, log)
		if err != nil {
			log.Fatal("loading a requirement", zap.String(logger.FieldPair, e.ID), zap.Error(err))
		}
		pairs = append(pairs, scoring.Pair{ID: e.ID, Candidate: candidate, Requirement: requirement})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info("starting the batch", zap.Int("pairs", len(pairs)), zap.Int("workers", config.Workers))

	results, err := c.engine.Batch(ctx, pairs, config.Workers)
	if err != nil {
		log.Fatal("scoring the batch", zap.Error(err))
	}

	report := BatchReport{RunID: runID, Results: make([]BatchEntry, len(results))}
	for i, r := range results {
		report.Results[i] = BatchEntry{ID: pairs[i].ID, Result: r}
	}

	log.Info("batch finished", zap.Int("pairs", len(results)))

	if err := writeOutput(cmd.OutOrStdout(), report, format); err != nil {
		log.Fatal("writing output", zap.Error(err))
	}
}

// readManifest decodes the pair list, filling in missing ids.
func readManifest(path string) ([]ManifestEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var entries []ManifestEntry
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(entries))
	for i := range entries {
		e := &entries[i]
		if strings.TrimSpace(e.Candidate) == "" || strings.TrimSpace(e.Requirement) == "" {
			return nil, fmt.Errorf("entry %d needs both a candidate and a requirement", i+1)
		}
		if e.ID = strings.TrimSpace(e.ID); e.ID == "" {
			e.ID = fmt.Sprintf("pair-%d", i+1)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("duplicate pair id %q", e.ID)
		}
		seen[e.ID] = struct{}{}
	}

	return entries, nil
}

func resolvePath(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
