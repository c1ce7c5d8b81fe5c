package scoring

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/fitscore/internal/record"
)

// experience awards full points when the candidate meets the required years
// and a proportional share otherwise. No requirement is a full match.
func experience(cand, req record.Record, points float64) ExperienceResult {
	have, need := cand.YearsExperience, req.YearsExperience
	r := ExperienceResult{CandidateYears: have, RequiredYears: need}
	r.MaxScore = points

	switch {
	case need <= 0:
		r.Met, r.Score, r.Percentage = true, points, 100
		r.Detail = fmt.Sprintf("No specific experience required. Candidate has %s years.", formatYears(have))
	case have >= need:
		r.Met, r.Score, r.Percentage = true, points, 100
		r.Detail = fmt.Sprintf("Candidate has %s years, %s required.", formatYears(have), formatYears(need))
	default:
		ratio := max(0, have/need)
		r.Score, r.Percentage = points*ratio, ratio*100
		r.Detail = fmt.Sprintf("Candidate has %s years, %s required (%.0f%% match).",
			formatYears(have), formatYears(need), r.Percentage)
	}
	return r
}

// education compares the candidate's highest tier with the lowest tier the
// requirement accepts, using the same proportional rule as experience.
func (e *Engine) education(cand, req record.Record, points float64) EducationResult {
	for _, ed := range cand.Education {
		if _, ok := record.ParseDegree(ed.Degree); !ok && ed.Level == record.LevelNone && ed.Degree != "" {
			e.logger.Debug("unrecognized degree treated as lowest tier", zap.String("degree", ed.Degree))
		}
	}

	have := cand.HighestDegree()
	need := requiredEducation(req)

	r := EducationResult{
		CandidateDegree: degreeName(have),
		RequiredDegree:  degreeName(need),
		CandidateLevel:  have.Level.String(),
		RequiredLevel:   need.Level.String(),
	}
	r.MaxScore = points

	switch {
	case need.Level <= record.LevelNone:
		r.Met, r.Score, r.Percentage = true, points, 100
		r.Detail = "No specific education required."
	case have.Level >= need.Level:
		r.Met, r.Score, r.Percentage = true, points, 100
		r.Overqualified = have.Level > need.Level
		if r.Overqualified {
			r.Detail = fmt.Sprintf("Candidate is overqualified: has %s, %s required.", r.CandidateDegree, r.RequiredDegree)
		} else {
			r.Detail = fmt.Sprintf("Candidate has %s, %s required.", r.CandidateDegree, r.RequiredDegree)
		}
	default:
		ratio := float64(have.Level) / float64(need.Level)
		r.Score, r.Percentage = points*ratio, ratio*100
		r.Detail = fmt.Sprintf("Candidate has %s, %s required (%.0f%% match).",
			r.CandidateDegree, r.RequiredDegree, r.Percentage)
	}
	return r
}

// requiredEducation returns the lowest tier among the requirement's entries,
// since any one of them is acceptable.
func requiredEducation(req record.Record) record.Education {
	if len(req.Education) == 0 {
		return record.Education{Degree: record.NotSpecified, Level: record.LevelNone}
	}
	need := req.Education[0]
	for _, ed := range req.Education[1:] {
		if ed.Level < need.Level {
			need = ed
		}
	}
	return need
}

// skills applies the overlap percentage against the hard threshold: below it
// the criterion scores zero, at or above it the score is proportional.
func (e *Engine) skills(cand, req record.Record, points float64) SkillsResult {
	overlap := e.resolver.Overlap(req.Skills, cand.Skills)
	optional := e.resolver.Overlap(req.PreferredSkills, cand.Skills)

	r := SkillsResult{
		MatchedSkills:         overlap.Matched(),
		MissingSkills:         overlap.Missing,
		OptionalSkills:        optional.Matched(),
		MissingOptionalSkills: optional.Missing,
		Matches:               overlap.Matches,
	}
	r.MaxScore = points
	r.Percentage = overlap.Percentage

	if overlap.Percentage >= e.cfg.SkillThreshold {
		r.Met = true
		r.Score = overlap.Percentage / 100 * points
	}

	matched, required := len(overlap.Matches), len(req.Skills)
	switch {
	case required == 0:
		r.Detail = fmt.Sprintf("No specific skills required. Candidate lists %d skills.", len(cand.Skills))
	case matched == 0:
		r.Detail = fmt.Sprintf("No matching skills. Candidate lists %d, %d required.", len(cand.Skills), required)
	case !r.Met:
		r.Detail = fmt.Sprintf("%d/%d required skills (%.0f%%). Partial match, below the %.0f%% threshold.",
			matched, required, r.Percentage, e.cfg.SkillThreshold)
	case r.Percentage >= 75:
		r.Detail = fmt.Sprintf("%d/%d required skills (%.0f%%). Excellent match.", matched, required, r.Percentage)
	default:
		r.Detail = fmt.Sprintf("%d/%d required skills (%.0f%%). Good match.", matched, required, r.Percentage)
	}
	return r
}

func degreeName(ed record.Education) string {
	if d := strings.TrimSpace(ed.Degree); d != "" {
		return d
	}
	return record.NotSpecified
}

// formatYears prints whole years without a fraction and anything else with one decimal.
func formatYears(y float64) string {
	return strconv.FormatFloat(round(y, 1), 'f', -1, 64)
}
