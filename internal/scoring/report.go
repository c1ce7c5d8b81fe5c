package scoring

import (
	"fmt"
	"strings"
)

// Compatibility thresholds for the domain gap and the summary note.
const (
	domainGapBelow     = 60
	majorShiftBelow    = 35
	moderateShiftBelow = 60
)

// gaps lists every unmet criterion, then the domain when compatibility is low.
func gaps(r *MatchResult) []Gap {
	out := []Gap{}

	if exp := r.Criteria.Experience; !exp.Met {
		out = append(out, Gap{
			Criterion: CriterionExperience,
			Reason: fmt.Sprintf("Experience: %s years short (%s of %s years, %.0f%% match).",
				formatYears(exp.RequiredYears-exp.CandidateYears),
				formatYears(exp.CandidateYears), formatYears(exp.RequiredYears), exp.Percentage),
		})
	}

	if edu := r.Criteria.Education; !edu.Met {
		out = append(out, Gap{
			Criterion: CriterionEducation,
			Reason: fmt.Sprintf("Education: %s (%s) is below the required %s (%s), %.0f%% match.",
				edu.CandidateDegree, edu.CandidateLevel, edu.RequiredDegree, edu.RequiredLevel, edu.Percentage),
		})
	}

	if sk := r.Criteria.Skills; !sk.Met {
		out = append(out, Gap{
			Criterion: CriterionSkills,
			Reason: fmt.Sprintf("Skills: missing %s (%.0f%% of required skills matched).",
				strings.Join(sk.MissingSkills, ", "), sk.Percentage),
		})
	}

	if d := r.Domain; d.Compatibility < domainGapBelow {
		reason := fmt.Sprintf("Domain shift: %s -> %s (%d%% compatibility).",
			d.CandidateDomain, d.RequirementDomain, d.Compatibility)
		if !d.known() {
			reason = fmt.Sprintf("Domain could not be determined (%s -> %s), %d%% compatibility assumed.",
				d.CandidateDomain, d.RequirementDomain, d.Compatibility)
		}
		out = append(out, Gap{Criterion: CriterionDomain, Reason: reason})
	}

	return out
}

// recommendations maps each gap to one templated action and closes with the
// domain detail.
func recommendations(r *MatchResult) []string {
	out := make([]string, 0, len(r.Gaps)+1)
	for _, g := range r.Gaps {
		switch g.Criterion {
		case CriterionExperience:
			exp := r.Criteria.Experience
			out = append(out, fmt.Sprintf("Gain about %s more years of relevant experience, or show equivalent project work.",
				formatYears(exp.RequiredYears-exp.CandidateYears)))
		case CriterionEducation:
			out = append(out, fmt.Sprintf("Pursue a %s level qualification or an equivalent certification.",
				r.Criteria.Education.RequiredLevel))
		case CriterionSkills:
			out = append(out, fmt.Sprintf("Build and demonstrate experience with %s.",
				strings.Join(r.Criteria.Skills.MissingSkills, ", ")))
		case CriterionDomain:
			if r.Domain.known() {
				out = append(out, fmt.Sprintf("Highlight skills that transfer from %s to %s.",
					r.Domain.CandidateDomain, r.Domain.RequirementDomain))
			} else {
				out = append(out, "State the industry or domain explicitly in the document.")
			}
		}
	}
	return append(out, r.Domain.Detail)
}

// summary is "Matches N/3 criteria." followed by a domain note and a phrase
// chosen by the final score.
func summary(r *MatchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Matches %d/3 criteria. ", r.Criteria.met())

	d := r.Domain
	switch {
	case !d.known():
		b.WriteString("Domain could not be determined. ")
	case d.Compatibility < majorShiftBelow:
		fmt.Fprintf(&b, "Major domain shift (%s -> %s). ", d.CandidateDomain, d.RequirementDomain)
	case d.Compatibility < moderateShiftBelow:
		fmt.Fprintf(&b, "Moderate domain change (%s -> %s). ", d.CandidateDomain, d.RequirementDomain)
	}

	switch {
	case r.OverallScore >= 75:
		b.WriteString("Strong candidate for interview.")
	case r.OverallScore >= 60:
		b.WriteString("Good candidate to consider.")
	case r.OverallScore >= 40:
		b.WriteString("Moderate candidate with gaps.")
	default:
		b.WriteString("Significant improvement needed.")
	}
	return b.String()
}
