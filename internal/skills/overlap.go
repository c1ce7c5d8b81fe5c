package skills

// SkillMatch is the best candidate skill found for one required skill.
type SkillMatch struct {
	Required   string  `json:"required" yaml:"required"`
	Candidate  string  `json:"candidate" yaml:"candidate"`
	Tier       Tier    `json:"tier" yaml:"tier"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// Overlap is the per-requirement comparison of a required skill set against
// a candidate skill set.
type Overlap struct {
	Matches    []SkillMatch `json:"matches" yaml:"matches"`
	Missing    []string     `json:"missing" yaml:"missing"`
	Percentage float64      `json:"percentage" yaml:"percentage"`
}

// Matched returns the required skills that found a match, in requirement order.
func (o Overlap) Matched() []string {
	out := make([]string, 0, len(o.Matches))
	for _, m := range o.Matches {
		out = append(out, m.Required)
	}
	return out
}

// Overlap matches every required skill against every candidate skill.
// A candidate skill may satisfy several requirements. An empty requirement
// list is a full match.
func (r *Resolver) Overlap(required, candidate []string) Overlap {
	result := Overlap{
		Matches: []SkillMatch{},
		Missing: []string{},
	}
	if len(required) == 0 {
		result.Percentage = 100
		return result
	}

	for _, req := range required {
		best, ok := r.best(req, candidate)
		if !ok {
			result.Missing = append(result.Missing, req)
			continue
		}
		result.Matches = append(result.Matches, best)
	}

	result.Percentage = float64(len(result.Matches)) / float64(len(required)) * 100
	return result
}

// best ranks by tier first, then confidence; earlier candidates win ties.
func (r *Resolver) best(required string, candidate []string) (SkillMatch, bool) {
	var (
		best  SkillMatch
		found bool
	)
	for _, c := range candidate {
		tier, confidence := r.Match(c, required)
		if tier == TierNone {
			continue
		}
		if !found || tier > best.Tier || (tier == best.Tier && confidence > best.Confidence) {
			best = SkillMatch{Required: required, Candidate: c, Tier: tier, Confidence: confidence}
			found = true
		}
		if tier == TierExact {
			break
		}
	}
	return best, found
}
