package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
)

// ErrConfiguration is returned for weights, thresholds or bands the engine
// cannot work with.
var ErrConfiguration = errors.New("invalid scoring configuration")

// Weights is the relative importance of each criterion. The values need not
// sum to 100; they are scaled to a 100 point basis before use.
type Weights struct {
	Experience float64 `mapstructure:"experience" yaml:"experience" json:"experience" validate:"gte=0"`
	Education  float64 `mapstructure:"education" yaml:"education" json:"education" validate:"gte=0"`
	Skills     float64 `mapstructure:"skills" yaml:"skills" json:"skills" validate:"gte=0"`
}

// DefaultWeights returns the 35/25/40 split.
func DefaultWeights() Weights {
	return Weights{Experience: 35, Education: 25, Skills: 40}
}

// Validate rejects negative, non-finite and all-zero weights.
func (w Weights) Validate() error {
	for _, v := range []float64{w.Experience, w.Education, w.Skills} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: weights must be finite", ErrConfiguration)
		}
	}
	if err := validate.Struct(w); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if w.sum() == 0 {
		return fmt.Errorf("%w: at least one weight must be positive", ErrConfiguration)
	}
	return nil
}

func (w Weights) sum() float64 {
	return w.Experience + w.Education + w.Skills
}

// normalized scales the weights so they sum to 100. Callers validate first.
func (w Weights) normalized() Weights {
	scale := 100 / w.sum()
	return Weights{
		Experience: w.Experience * scale,
		Education:  w.Education * scale,
		Skills:     w.Skills * scale,
	}
}

// Band labels every final score at or above Min.
type Band struct {
	Min   int    `mapstructure:"min" yaml:"min" json:"min" validate:"gte=0,lte=100"`
	Label string `mapstructure:"label" yaml:"label" json:"label" validate:"required"`
}

// Config holds every scoring knob.
type Config struct {
	Weights Weights `mapstructure:"weights" yaml:"weights" json:"weights"`
	// SkillThreshold is the overlap percentage at which the skills criterion is met.
	SkillThreshold float64 `mapstructure:"skill-threshold" yaml:"skill-threshold" json:"skillThreshold" validate:"gte=0,lte=100"`
	// Bands are ordered from the highest Min down and must end at 0.
	Bands []Band `mapstructure:"bands" yaml:"bands" json:"bands" validate:"required,min=1,dive"`
}

// DefaultConfig returns the standard weights, a 50% skill threshold and the
// five assessment bands.
func DefaultConfig() Config {
	return Config{
		Weights:        DefaultWeights(),
		SkillThreshold: 50,
		Bands: []Band{
			{Min: 90, Label: "Excellent"},
			{Min: 75, Label: "Great"},
			{Min: 60, Label: "Good"},
			{Min: 40, Label: "Moderate"},
			{Min: 0, Label: "Poor"},
		},
	}
}

var validate = validator.New()

// Validate checks the weights, the threshold and that the bands are strictly
// decreasing and cover [0, 100].
func (c Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if math.IsNaN(c.SkillThreshold) {
		return fmt.Errorf("%w: skill threshold must be a number", ErrConfiguration)
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	for i := 1; i < len(c.Bands); i++ {
		if c.Bands[i].Min >= c.Bands[i-1].Min {
			return fmt.Errorf("%w: band %q must start below %q", ErrConfiguration, c.Bands[i].Label, c.Bands[i-1].Label)
		}
	}
	if last := c.Bands[len(c.Bands)-1]; last.Min != 0 {
		return fmt.Errorf("%w: lowest band %q must start at 0, got %d", ErrConfiguration, last.Label, last.Min)
	}
	return nil
}

// assessment returns the label of the first band the score reaches.
func (c Config) assessment(score int) string {
	for _, b := range c.Bands {
		if score >= b.Min {
			return b.Label
		}
	}
	return c.Bands[len(c.Bands)-1].Label
}
