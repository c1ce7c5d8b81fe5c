// Package scoring combines the experience, education and skills criteria
// into a weighted score, applies the domain adjustment and explains the
// result.
package scoring

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/spigell/fitscore/internal/domains"
	"github.com/spigell/fitscore/internal/logger"
	"github.com/spigell/fitscore/internal/record"
	"github.com/spigell/fitscore/internal/skills"
)

// Engine scores candidate records against requirement records. It is
// immutable after construction and safe for concurrent use.
type Engine struct {
	cfg      Config
	weights  Weights
	resolver *skills.Resolver
	domains  *domains.Engine
	logger   *zap.Logger
}

// New validates the configuration and builds an engine. Misconfiguration is
// reported here, once, rather than per match.
func New(cfg Config, resolver *skills.Resolver, domainEngine *domains.Engine, log *zap.Logger) (*Engine, error) {
	if resolver == nil {
		return nil, fmt.Errorf("%w: skill resolver is required", ErrConfiguration)
	}
	if domainEngine == nil {
		return nil, fmt.Errorf("%w: domain engine is required", ErrConfiguration)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Bands = append([]Band(nil), cfg.Bands...)
	return &Engine{
		cfg:      cfg,
		weights:  cfg.Weights.normalized(),
		resolver: resolver,
		domains:  domainEngine,
		logger:   logger.WithFields(log),
	}, nil
}

// Weights returns the configured weights scaled to a 100 point basis.
func (e *Engine) Weights() Weights { return e.weights }

// Score matches a candidate against a requirement with the configured weights.
func (e *Engine) Score(candidate, requirement record.Record) *MatchResult {
	return e.score(candidate, requirement, e.weights)
}

// ScoreWithWeights matches with caller supplied weights. Invalid weights are
// rejected with ErrConfiguration.
func (e *Engine) ScoreWithWeights(candidate, requirement record.Record, w Weights) (*MatchResult, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return e.score(candidate, requirement, w.normalized()), nil
}

func (e *Engine) score(candidate, requirement record.Record, w Weights) *MatchResult {
	res := &MatchResult{Weights: w}

	res.Criteria.Experience = experience(candidate, requirement, w.Experience)
	res.Criteria.Education = e.education(candidate, requirement, w.Education)
	res.Criteria.Skills = e.skills(candidate, requirement, w.Skills)
	res.Domain = e.domain(candidate, requirement)

	raw := res.Criteria.Experience.Score + res.Criteria.Education.Score + res.Criteria.Skills.Score
	raw = math.Min(100, math.Max(0, raw))
	final := int(math.Round(raw * res.Domain.AdjustmentFactor))

	res.RawScore = round(raw, 2)
	res.OverallScore = min(100, max(0, final))
	res.Assessment = e.cfg.assessment(res.OverallScore)
	res.Gaps = gaps(res)
	res.Recommendations = recommendations(res)
	res.Summary = summary(res)
	res.roundForDisplay()

	e.logger.Debug("match scored",
		append(logger.MatchFields(candidate.Role, requirement.Role),
			zap.Float64("raw_score", res.RawScore),
			zap.Float64("adjustment_factor", res.Domain.AdjustmentFactor),
			zap.Int("overall_score", res.OverallScore),
			zap.String("assessment", res.Assessment),
		)...,
	)
	return res
}

func (e *Engine) domain(candidate, requirement record.Record) DomainResult {
	cand := e.domains.Resolve(candidate)
	req := e.domains.Resolve(requirement)
	compat := e.domains.Compatibility(cand.Category, req.Category)

	d := DomainResult{
		CandidateDomain:   compat.Source,
		RequirementDomain: compat.Target,
		Compatibility:     compat.Score,
		Level:             compat.Level,
		AdjustmentFactor:  e.domains.AdjustmentFactor(compat.Score),
		Detail:            compat.Detail,
		Ambiguous:         cand.Ambiguous || req.Ambiguous,
		CandidateSource:   cand.Source,
		RequirementSource: req.Source,
	}
	if cand.Reason != "" {
		d.Notes = append(d.Notes, "candidate: "+cand.Reason)
	}
	if req.Reason != "" {
		d.Notes = append(d.Notes, "requirement: "+req.Reason)
	}
	return d
}

func (r *MatchResult) roundForDisplay() {
	for _, c := range []*Criterion{
		&r.Criteria.Experience.Criterion,
		&r.Criteria.Education.Criterion,
		&r.Criteria.Skills.Criterion,
	} {
		c.Score = round(c.Score, 2)
		c.MaxScore = round(c.MaxScore, 2)
		c.Percentage = round(c.Percentage, 2)
	}
	r.Weights = Weights{
		Experience: round(r.Weights.Experience, 2),
		Education:  round(r.Weights.Education, 2),
		Skills:     round(r.Weights.Skills, 2),
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
