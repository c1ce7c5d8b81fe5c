package domains

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Step maps a compatibility score floor to a score multiplier.
type Step struct {
	Min    int     `mapstructure:"min" yaml:"min" json:"min" validate:"gte=0,lte=100"`
	Factor float64 `mapstructure:"factor" yaml:"factor" json:"factor" validate:"gte=0,lte=1"`
}

// Config tunes the compatibility engine.
type Config struct {
	// Steps are checked in order; the first step whose Min is reached wins.
	Steps []Step `mapstructure:"steps" yaml:"steps" json:"steps" validate:"required,min=1,dive"`
	// UnknownScore is the compatibility used when either side has no domain.
	UnknownScore int `mapstructure:"unknown-score" yaml:"unknown-score" json:"unknownScore" validate:"gte=0,lte=100"`
}

// DefaultConfig returns the reference step function and treats unknown
// domains as the lowest compatibility band.
func DefaultConfig() Config {
	return Config{
		Steps: []Step{
			{Min: 90, Factor: 1.0},
			{Min: 70, Factor: 0.85},
			{Min: 50, Factor: 0.65},
			{Min: 30, Factor: 0.40},
			{Min: 0, Factor: 0.25},
		},
		UnknownScore: 0,
	}
}

// Validate reports whether the step function is monotonic and covers [0, 100].
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	for i := 1; i < len(c.Steps); i++ {
		prev, cur := c.Steps[i-1], c.Steps[i]
		if cur.Min >= prev.Min {
			return fmt.Errorf("%w: step minimums must be strictly decreasing (%d after %d)", ErrConfiguration, cur.Min, prev.Min)
		}
		if cur.Factor > prev.Factor {
			return fmt.Errorf("%w: step factors must not increase as scores drop (%.2f after %.2f)", ErrConfiguration, cur.Factor, prev.Factor)
		}
	}

	if last := c.Steps[len(c.Steps)-1]; last.Min != 0 {
		return fmt.Errorf("%w: last step must start at 0, got %d", ErrConfiguration, last.Min)
	}

	return nil
}
