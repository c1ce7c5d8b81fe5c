package scoring

import (
	"github.com/spigell/fitscore/internal/domains"
	"github.com/spigell/fitscore/internal/record"
	"github.com/spigell/fitscore/internal/skills"
)

// Criterion names used in gaps.
const (
	CriterionExperience = "experience"
	CriterionEducation  = "education"
	CriterionSkills     = "skills"
	CriterionDomain     = "domain"
)

// Criterion is the part shared by every per-criterion result.
type Criterion struct {
	Met        bool    `json:"met" yaml:"met"`
	Score      float64 `json:"score" yaml:"score"`
	MaxScore   float64 `json:"maxScore" yaml:"maxScore"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
	Detail     string  `json:"detail" yaml:"detail"`
}

type ExperienceResult struct {
	Criterion      `yaml:",inline"`
	CandidateYears float64 `json:"candidateYears" yaml:"candidateYears"`
	RequiredYears  float64 `json:"requiredYears" yaml:"requiredYears"`
}

type EducationResult struct {
	Criterion       `yaml:",inline"`
	CandidateDegree string `json:"candidateDegree" yaml:"candidateDegree"`
	RequiredDegree  string `json:"requiredDegree" yaml:"requiredDegree"`
	CandidateLevel  string `json:"candidateLevel" yaml:"candidateLevel"`
	RequiredLevel   string `json:"requiredLevel" yaml:"requiredLevel"`
	// Overqualified is informational and never changes the score.
	Overqualified bool `json:"overqualified" yaml:"overqualified"`
}

type SkillsResult struct {
	Criterion             `yaml:",inline"`
	MatchedSkills         []string            `json:"matchedSkills" yaml:"matchedSkills"`
	MissingSkills         []string            `json:"missingSkills" yaml:"missingSkills"`
	OptionalSkills        []string            `json:"optionalSkills" yaml:"optionalSkills"`
	MissingOptionalSkills []string            `json:"missingOptionalSkills" yaml:"missingOptionalSkills"`
	Matches               []skills.SkillMatch `json:"matches" yaml:"matches"`
}

type Criteria struct {
	Experience ExperienceResult `json:"experience" yaml:"experience"`
	Education  EducationResult  `json:"education" yaml:"education"`
	Skills     SkillsResult     `json:"skills" yaml:"skills"`
}

// met counts the criteria that were met.
func (c Criteria) met() int {
	n := 0
	for _, ok := range []bool{c.Experience.Met, c.Education.Met, c.Skills.Met} {
		if ok {
			n++
		}
	}
	return n
}

// DomainResult explains the domain adjustment.
type DomainResult struct {
	CandidateDomain   string        `json:"candidateDomain" yaml:"candidateDomain"`
	RequirementDomain string        `json:"requirementDomain" yaml:"requirementDomain"`
	Compatibility     int           `json:"compatibility" yaml:"compatibility"`
	Level             domains.Level `json:"level" yaml:"level"`
	AdjustmentFactor  float64       `json:"adjustmentFactor" yaml:"adjustmentFactor"`
	Detail            string        `json:"detail" yaml:"detail"`
	// Ambiguous is set when either side was classified from a tie or from no keywords at all.
	Ambiguous         bool     `json:"ambiguous" yaml:"ambiguous"`
	CandidateSource   string   `json:"candidateSource" yaml:"candidateSource"`
	RequirementSource string   `json:"requirementSource" yaml:"requirementSource"`
	Notes             []string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

func (d DomainResult) known() bool {
	return d.CandidateDomain != record.UnknownDomain && d.RequirementDomain != record.UnknownDomain
}

// Gap is one unmet criterion with a human readable reason.
type Gap struct {
	Criterion string `json:"criterion" yaml:"criterion"`
	Reason    string `json:"reason" yaml:"reason"`
}

// MatchResult is the full, serializable outcome of matching one candidate
// against one requirement. It is not modified after Score returns.
type MatchResult struct {
	OverallScore    int          `json:"overallScore" yaml:"overallScore"`
	RawScore        float64      `json:"rawScore" yaml:"rawScore"`
	Assessment      string       `json:"assessment" yaml:"assessment"`
	Weights         Weights      `json:"weights" yaml:"weights"`
	Criteria        Criteria     `json:"criteria" yaml:"criteria"`
	Domain          DomainResult `json:"domain" yaml:"domain"`
	Gaps            []Gap        `json:"gaps" yaml:"gaps"`
	Recommendations []string     `json:"recommendations" yaml:"recommendations"`
	Summary         string       `json:"summary" yaml:"summary"`
}
