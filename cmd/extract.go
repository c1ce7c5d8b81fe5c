package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/fitscore/internal/domains"
	"github.com/spigell/fitscore/internal/extraction"
	"github.com/spigell/fitscore/internal/extraction/gemini"
	"github.com/spigell/fitscore/internal/logger"
	"github.com/spigell/fitscore/internal/record"
	"github.com/spigell/fitscore/internal/recovery"
	"github.com/spigell/fitscore/internal/secrets"
)

// ExtractReport is what the extract command prints.
type ExtractReport struct {
	Result *recovery.Result        `json:"result" yaml:"result"`
	Domain *domains.Classification `json:"domain,omitempty" yaml:"domain,omitempty"`
}

var extractCmd = &cobra.Command{
	Use:   "extract FILE",
	Short: "Extract a record from a plain-text resume or job description with Gemini",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runExtract(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("kind", "k", string(record.KindCandidate), "document kind: candidate or requirement")
	extractCmd.Flags().StringP("output", "o", formatJSON, "output format: json or yaml")
	extractCmd.Flags().Bool("classify", false, "also ask the model for the document's domain")
}

func runExtract(cmd *cobra.Command, path string) {
	ctx := context.Background()

	log := newLogger()
	config := loadConfig(log)

	kind, ok := record.ParseKind(cmd.Flag("kind").Value.String())
	if !ok {
		log.Fatal("unknown document kind", zap.String("kind", cmd.Flag("kind").Value.String()))
	}

	format, err := validateFormat(cmd.Flag("output").Value.String())
	if err != nil {
		log.Fatal("parsing flags", zap.Error(err))
	}

	text, err := readDocument(path)
	if err != nil {
		log.Fatal("reading a document", zap.Error(err))
	}

	extractor, err := newExtractor(ctx, &config.AI.Gemini, log)
	if err != nil {
		log.Fatal("building the extractor", zap.Error(err))
	}

	result, err := extractor.Extract(ctx, text, kind)
	if err != nil {
		log.Fatal("extracting", zap.Error(err))
	}

	report := ExtractReport{Result: result}

	if cmd.Flag("classify").Value.String() == "true" {
		c, err := buildComponents(config, log)
		if err != nil {
			log.Fatal("building the domain engine", zap.Error(err))
		}
		domain, err := extractor.ClassifyDomain(ctx, text, kind, c.domains)
		if err != nil {
			log.Fatal("classifying the domain", zap.Error(err))
		}
		report.Domain = &domain
	}

	if err := writeOutput(cmd.OutOrStdout(), report, format); err != nil {
		log.Fatal("writing output", zap.Error(err))
	}
}

func newExtractor(ctx context.Context, cfg *GeminiConfig, log *zap.Logger) (*extraction.Extractor, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.APIKeyFile,
		Value: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set GEMINI_API_KEY, GEMINI_API_KEY_FILE or ai.gemini.api-key-file)", err)
	}

	genLogger := log.With(zap.Int("ai_retry_attempts", cfg.MaxRetries))

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Model, cfg.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	extractLogger := logger.WithCommonFields(log, gemini.Provider, generator.Model())

	return extraction.New(generator, nil, extractLogger, extraction.WithMaxLogLength(cfg.MaxLogLength))
}
