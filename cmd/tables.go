package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/fitscore/internal/domains"
	"github.com/spigell/fitscore/internal/skills"
)

// TablesReport lists the loaded lookup tables.
type TablesReport struct {
	SkillFamilies []skills.Family    `json:"skillFamilies" yaml:"skillFamilies"`
	Domains       []domains.Category `json:"domains" yaml:"domains"`
}

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Print the skill families and domain categories in use",
	Run: func(cmd *cobra.Command, _ []string) {
		runTables(cmd)
	},
}

func init() {
	rootCmd.AddCommand(tablesCmd)

	tablesCmd.Flags().StringP("output", "o", formatYAML, "output format: json or yaml")
}

func runTables(cmd *cobra.Command) {
	logger := newLogger()
	config := loadConfig(logger)

	format, err := validateFormat(cmd.Flag("output").Value.String())
	if err != nil {
		logger.Fatal("parsing flags", zap.Error(err))
	}

	c, err := buildComponents(config, logger)
	if err != nil {
		logger.Fatal("loading the tables", zap.Error(err))
	}

	report := TablesReport{
		SkillFamilies: c.resolver.Catalog().Families(),
		Domains:       c.domains.Categories(),
	}

	logger.Debug("tables loaded",
		zap.Int("skill_families", len(report.SkillFamilies)),
		zap.Int("domains", len(report.Domains)),
	)

	if err := writeOutput(cmd.OutOrStdout(), report, format); err != nil {
		logger.Fatal("writing output", zap.Error(err))
	}
}
