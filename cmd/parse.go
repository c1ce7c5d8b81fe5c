package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/fitscore/internal/record"
	"github.com/spigell/fitscore/internal/recovery"
)

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Recover a record from raw model output",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runParse(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringP("kind", "k", string(record.KindCandidate), "document kind: candidate or requirement")
	parseCmd.Flags().StringP("output", "o", formatJSON, "output format: json or yaml")
}

func runParse(cmd *cobra.Command, path string) {
	logger := newLogger()

	kind, ok := record.ParseKind(cmd.Flag("kind").Value.String())
	if !ok {
		logger.Fatal("unknown document kind", zap.String("kind", cmd.Flag("kind").Value.String()))
	}

	format, err := validateFormat(cmd.Flag("output").Value.String())
	if err != nil {
		logger.Fatal("parsing flags", zap.Error(err))
	}

	text, err := readDocument(path)
	if err != nil {
		logger.Fatal("reading a document", zap.Error(err))
	}

	result := recovery.NewParser(recovery.WithLogger(logger)).Parse(text, kind)
	if !result.Recovered {
		logger.Warn("nothing could be recovered, printing defaults", zap.String("file", path))
	}

	if err := writeOutput(cmd.OutOrStdout(), result, format); err != nil {
		logger.Fatal("writing output", zap.Error(err))
	}
}
