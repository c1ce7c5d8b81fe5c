package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/fitscore/internal/domains"
	"github.com/spigell/fitscore/internal/logger"
	"github.com/spigell/fitscore/internal/recovery"
	"github.com/spigell/fitscore/internal/scoring"
	"github.com/spigell/fitscore/internal/skills"
)

const (
	app = "fitscore"
)

type Config struct {
	Scoring scoring.Config `mapstructure:"scoring"`
	Skills  SkillsConfig   `mapstructure:"skills"`
	Domains DomainsConfig  `mapstructure:"domains"`
	Workers int            `mapstructure:"workers"`
	AI      AIConfig       `mapstructure:"ai"`
}

type SkillsConfig struct {
	Table              string  `mapstructure:"table"`
	FuzzyThreshold     float64 `mapstructure:"fuzzy-threshold"`
	MinSubstringLength int     `mapstructure:"min-substring-length"`
}

type DomainsConfig struct {
	Table        string         `mapstructure:"table"`
	UnknownScore int            `mapstructure:"unknown-score"`
	Steps        []domains.Step `mapstructure:"steps"`
}

type AIConfig struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "fitscore recovers structured resumes and job descriptions and scores how well they match",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	for key, env := range map[string]string{
		"ai.gemini.api-key":      "GEMINI_API_KEY",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"workers":                "FITSCORE_WORKERS",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults()
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is fitscore.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("skills-table", "", "a YAML skill families table replacing the built-in one")
	rootCmd.PersistentFlags().String("domains-table", "", "a YAML domain categories table replacing the built-in one")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("skills.table", rootCmd.PersistentFlags().Lookup("skills-table"))
	viper.BindPFlag("domains.table", rootCmd.PersistentFlags().Lookup("domains-table"))
}

func setDefaults() {
	weights := scoring.DefaultWeights()
	viper.SetDefault("scoring.weights.experience", weights.Experience)
	viper.SetDefault("scoring.weights.education", weights.Education)
	viper.SetDefault("scoring.weights.skills", weights.Skills)
	viper.SetDefault("scoring.skill-threshold", scoring.DefaultConfig().SkillThreshold)
	viper.SetDefault("skills.fuzzy-threshold", skills.DefaultFuzzyThreshold)
	viper.SetDefault("skills.min-substring-length", skills.DefaultMinSubstringLength)
	viper.SetDefault("domains.unknown-score", domains.DefaultConfig().UnknownScore)
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.max-log-length", 200)
}

func initConfig() {
	// A missing .env file is fine; a broken one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app)
	viper.SetConfigType("yaml")

	// The default config file is optional, but it must parse when present.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}
	if config == nil {
		config = &Config{}
	}

	if len(config.Scoring.Bands) == 0 {
		config.Scoring.Bands = scoring.DefaultConfig().Bands
	}
	if len(config.Domains.Steps) == 0 {
		config.Domains.Steps = domains.DefaultConfig().Steps
	}

	return config, nil
}

// newLogger builds the process logger from the persistent flags.
func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

// loadConfig returns the decoded config or stops the process.
func loadConfig(l *zap.Logger) *Config {
	config, err := getConfig()
	if err != nil {
		l.Fatal("getting a config", zap.Error(err))
	}
	return config
}

// components holds everything a scoring command needs.
type components struct {
	parser   *recovery.Parser
	resolver *skills.Resolver
	domains  *domains.Engine
	engine   *scoring.Engine
}

func buildComponents(config *Config, l *zap.Logger) (*components, error) {
	catalog, err := loadCatalog(config.Skills.Table)
	if err != nil {
		return nil, err
	}

	resolver, err := skills.NewResolver(catalog,
		skills.WithFuzzyThreshold(config.Skills.FuzzyThreshold),
		skills.WithMinSubstringLength(config.Skills.MinSubstringLength),
	)
	if err != nil {
		return nil, err
	}

	table, err := loadDomainTable(config.Domains.Table)
	if err != nil {
		return nil, err
	}

	domainEngine, err := domains.New(table, domains.Config{
		Steps:        config.Domains.Steps,
		UnknownScore: config.Domains.UnknownScore,
	})
	if err != nil {
		return nil, err
	}

	engine, err := scoring.New(config.Scoring, resolver, domainEngine, l)
	if err != nil {
		return nil, err
	}

	return &components{
		parser:   recovery.NewParser(recovery.WithLogger(l)),
		resolver: resolver,
		domains:  domainEngine,
		engine:   engine,
	}, nil
}

func loadCatalog(path string) (*skills.Catalog, error) {
	if path == "" {
		return skills.DefaultCatalog()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening skills table: %w", err)
	}
	defer f.Close()
	return skills.LoadCatalog(f)
}

func loadDomainTable(path string) (domains.Table, error) {
	if path == "" {
		return domains.DefaultTable()
	}
	f, err := os.Open(path)
	if err != nil {
		return domains.Table{}, fmt.Errorf("opening domains table: %w", err)
	}
	defer f.Close()
	return domains.LoadTable(f)
}
