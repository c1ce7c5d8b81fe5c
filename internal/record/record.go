package record

import (
	"strings"
)

// Kind selects which document schema a record was parsed with.
type Kind string

const (
	KindCandidate   Kind = "candidate"
	KindRequirement Kind = "requirement"
)

const (
	// UnknownDomain marks a record whose domain label is missing.
	UnknownDomain = "unknown"
	// DefaultRole is used when no role or job title could be extracted.
	DefaultRole = "Not extracted"
	// DefaultSummary is used for candidate records that could not be recovered at all.
	DefaultSummary = "Error parsing this document"
	// NotSpecified is the requirement education default.
	NotSpecified = "Not specified"
)

// ParseKind maps a user supplied string to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "candidate", "resume", "cv":
		return KindCandidate, true
	case "requirement", "jd", "job", "vacancy":
		return KindRequirement, true
	default:
		return "", false
	}
}

// Experience is a single position held by the candidate.
type Experience struct {
	Title        string  `json:"title" yaml:"title"`
	Organization string  `json:"organization" yaml:"organization"`
	Years        float64 `json:"years" yaml:"years"`
}

// Education is a single education entry. For requirement records it holds the required degree.
type Education struct {
	Degree      string      `json:"degree" yaml:"degree"`
	Level       DegreeLevel `json:"level" yaml:"level"`
	Field       string      `json:"field,omitempty" yaml:"field,omitempty"`
	Institution string      `json:"institution,omitempty" yaml:"institution,omitempty"`
	Year        int         `json:"year,omitempty" yaml:"year,omitempty"`
}

// Record is the validated, schema-conformant profile of a candidate or a requirement.
// Slices are never nil and numbers are never negative.
type Record struct {
	Kind             Kind         `json:"kind" yaml:"kind"`
	Role             string       `json:"role" yaml:"role"`
	YearsExperience  float64      `json:"totalYearsExperience" yaml:"totalYearsExperience"`
	Experience       []Experience `json:"experience" yaml:"experience"`
	Skills           []string     `json:"skills" yaml:"skills"`
	PreferredSkills  []string     `json:"preferredSkills" yaml:"preferredSkills"`
	Education        []Education  `json:"education" yaml:"education"`
	Certifications   []string     `json:"certifications" yaml:"certifications"`
	Domain           string       `json:"domain" yaml:"domain"`
	Summary          string       `json:"summary" yaml:"summary"`
	Responsibilities []string     `json:"responsibilities" yaml:"responsibilities"`
}

// New returns the all-defaults record for the kind.
func New(kind Kind) Record {
	r := Record{
		Kind:             kind,
		Role:             DefaultRole,
		Experience:       []Experience{},
		Skills:           []string{},
		PreferredSkills:  []string{},
		Education:        []Education{},
		Certifications:   []string{},
		Domain:           UnknownDomain,
		Responsibilities: []string{},
	}
	if kind == KindRequirement {
		r.Education = []Education{{Degree: NotSpecified, Level: LevelNone}}
	}
	return r
}

// HighestDegree returns the education entry with the highest level.
// The zero Education is returned when there are no entries.
func (r *Record) HighestDegree() Education {
	var best Education
	found := false
	for _, e := range r.Education {
		if !found || e.Level > best.Level {
			best = e
			found = true
		}
	}
	return best
}

// HasDomain reports whether the record carries a domain label.
func (r *Record) HasDomain() bool {
	d := strings.TrimSpace(r.Domain)
	return d != "" && !strings.EqualFold(d, UnknownDomain)
}

// Text joins the free-text parts of the record used for keyword classification.
func (r *Record) Text() string {
	parts := make([]string, 0, 2+len(r.Skills)+len(r.Experience)+len(r.Responsibilities))
	if r.Role != DefaultRole {
		parts = append(parts, r.Role)
	}
	if r.Summary != DefaultSummary {
		parts = append(parts, r.Summary)
	}
	parts = append(parts, r.Skills...)
	parts = append(parts, r.PreferredSkills...)
	for _, e := range r.Experience {
		parts = append(parts, e.Title)
	}
	parts = append(parts, r.Responsibilities...)
	return strings.Join(parts, "\n")
}
