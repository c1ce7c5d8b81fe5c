package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/fitscore/internal/record"
	"github.com/spigell/fitscore/internal/recovery"
	"github.com/spigell/fitscore/internal/scoring"
)

const (
	PromptSummary         = "Show summary"
	PromptCriteria        = "Show criteria"
	PromptGaps            = "Show gaps and recommendations"
	PromptAdjustWeights   = "Adjust weights"
	PromptResetWeights    = "Reset weights"
	PromptDump            = "Print full result"
	PromptExit            = "Exit"
	defaultInteractiveOut = formatYAML
)

var errExit = errors.New("exit requested")

var matchPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptSummary, PromptCriteria, PromptGaps, PromptAdjustWeights, PromptResetWeights, PromptDump, PromptExit},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score a candidate against a requirement",
	Run: func(cmd *cobra.Command, _ []string) {
		runMatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("candidate", "c", "", "candidate record file")
	matchCmd.Flags().StringP("requirement", "r", "", "requirement record file")
	matchCmd.Flags().Bool("raw", false, "the files hold raw model output and may be malformed")
	matchCmd.Flags().StringP("output", "o", formatJSON, "output format: json or yaml")
	matchCmd.Flags().BoolP("interactive", "i", false, "explore the result and try other weights")

	matchCmd.MarkFlagRequired("candidate")
	matchCmd.MarkFlagRequired("requirement")
}

func runMatch(cmd *cobra.Command) {
	logger := newLogger()
	config := loadConfig(logger)

	format, err := validateFormat(cmd.Flag("output").Value.String())
	if err != nil {
		logger.Fatal("parsing flags", zap.Error(err))
	}

	c, err := buildComponents(config, logger)
	if err != nil {
		logger.Fatal("building the scoring engine", zap.Error(err))
	}

	raw := cmd.Flag("raw").Value.String() == "true"

	candidate, err := loadRecord(c.parser, cmd.Flag("candidate").Value.String(), record.KindCandidate, raw, logger)
	if err != nil {
		logger.Fatal("loading the candidate", zap.Error(err))
	}

	requirement, err := loadRecord(c.parser, cmd.Flag("requirement").Value.String(), record.KindRequirement, raw, logger)
	if err != nil {
		logger.Fatal("loading the requirement", zap.Error(err))
	}

	result := c.engine.Score(candidate, requirement)

	if cmd.Flag("interactive").Value.String() == "false" {
		if err := writeOutput(cmd.OutOrStdout(), result, format); err != nil {
			logger.Fatal("writing output", zap.Error(err))
		}
		return
	}

	session := &matchSession{
		out:         cmd.OutOrStdout(),
		engine:      c.engine,
		candidate:   candidate,
		requirement: requirement,
		result:      result,
		format:      format,
	}

	for {
		_, action, err := matchPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := session.handle(action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Error("action failed", zap.String("action", action), zap.Error(err))
		}
	}
}

// loadRecord reads and recovers one side of a match. Without raw the file
// must already be well-formed JSON.
func loadRecord(p *recovery.Parser, path string, kind record.Kind, raw bool, logger *zap.Logger) (record.Record, error) {
	text, err := readDocument(path)
	if err != nil {
		return record.Record{}, err
	}

	if !raw && !json.Valid([]byte(text)) {
		return record.Record{}, fmt.Errorf("%s is not valid JSON, pass --raw for model output", path)
	}

	result := p.Parse(text, kind)
	if !result.Recovered {
		logger.Warn("nothing could be recovered, scoring defaults", zap.String("file", path))
	}
	if len(result.Violations) > 0 {
		logger.Debug("record departs from the schema",
			zap.String("file", path),
			zap.Strings("violations", result.Violations),
		)
	}
	return result.Record, nil
}

type matchSession struct {
	out         io.Writer
	engine      *scoring.Engine
	candidate   record.Record
	requirement record.Record
	result      *scoring.MatchResult
	format      string
}

func (s *matchSession) handle(action string) error {
	switch action {
	case PromptSummary:
		fmt.Fprintf(s.out, "%d/100 (%s)\n%s\n", s.result.OverallScore, s.result.Assessment, s.result.Summary)
		return nil
	case PromptCriteria:
		return writeOutput(s.out, s.result.Criteria, defaultInteractiveOut)
	case PromptGaps:
		for _, g := range s.result.Gaps {
			fmt.Fprintf(s.out, "- %s\n", g.Reason)
		}
		for _, r := range s.result.Recommendations {
			fmt.Fprintf(s.out, "* %s\n", r)
		}
		return nil
	case PromptAdjustWeights:
		w, err := promptWeights(s.result.Weights)
		if err != nil {
			return err
		}
		return s.rescore(w)
	case PromptResetWeights:
		return s.rescore(s.engine.Weights())
	case PromptDump:
		return writeOutput(s.out, s.result, s.format)
	case PromptExit:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (s *matchSession) rescore(w scoring.Weights) error {
	result, err := s.engine.ScoreWithWeights(s.candidate, s.requirement, w)
	if err != nil {
		return err
	}
	s.result = result
	fmt.Fprintf(s.out, "rescored: %d/100 (%s)\n", result.OverallScore, result.Assessment)
	return nil
}

func promptWeights(current scoring.Weights) (scoring.Weights, error) {
	var w scoring.Weights
	for _, field := range []struct {
		label string
		value float64
		dst   *float64
	}{
		{"Experience weight", current.Experience, &w.Experience},
		{"Education weight", current.Education, &w.Education},
		{"Skills weight", current.Skills, &w.Skills},
	} {
		p := promptui.Prompt{
			Label:    field.label,
			Default:  strconv.FormatFloat(field.value, 'f', -1, 64),
			Validate: validateWeight,
		}
		answer, err := p.Run()
		if err != nil {
			return scoring.Weights{}, err
		}
		*field.dst, _ = strconv.ParseFloat(strings.TrimSpace(answer), 64)
	}
	return w, nil
}

func validateWeight(input string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil {
		return errors.New("enter a number")
	}
	if v < 0 {
		return errors.New("weights cannot be negative")
	}
	return nil
}
