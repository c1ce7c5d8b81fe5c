package recovery

import (
	"embed"
	"fmt"
	"sort"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/spigell/fitscore/internal/record"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindNumber
	kindStrings
	kindSkills
	kindExperience
	kindEducation
)

// field is one record field and the keys it may appear under in model output.
type field struct {
	name    string
	aliases []string
	kind    fieldKind
}

const (
	fieldRole             = "role"
	fieldYears            = "totalYearsExperience"
	fieldExperience       = "experience"
	fieldSkills           = "skills"
	fieldPreferredSkills  = "preferredSkills"
	fieldEducation        = "education"
	fieldCertifications   = "certifications"
	fieldDomain           = "domain"
	fieldSummary          = "summary"
	fieldResponsibilities = "responsibilities"
)

// The record's own JSON keys are always among the aliases so a serialized
// record parses back to itself.
var candidateFields = []field{
	{fieldRole, []string{"role", "title", "currentRole", "currentTitle"}, kindString},
	{fieldYears, []string{"totalYearsExperience", "yearsExperience", "yearsOfExperience", "experienceYears"}, kindNumber},
	{fieldExperience, []string{"experienceDetails", "experience", "workExperience", "employment"}, kindExperience},
	{fieldSkills, []string{"skills", "technicalSkills"}, kindSkills},
	{fieldEducation, []string{"education"}, kindEducation},
	{fieldCertifications, []string{"certifications", "certificates"}, kindStrings},
	{fieldDomain, []string{"domain", "industry"}, kindString},
	{fieldSummary, []string{"summary", "profile", "about"}, kindString},
	{fieldResponsibilities, []string{"responsibilities"}, kindStrings},
}

var requirementFields = []field{
	{fieldRole, []string{"jobTitle", "role", "title", "position"}, kindString},
	{fieldYears, []string{"minExperienceYears", "totalYearsExperience", "experienceYears", "yearsExperience", "minimumExperience"}, kindNumber},
	{fieldSkills, []string{"requiredSkills", "skills", "mustHaveSkills"}, kindSkills},
	{fieldPreferredSkills, []string{"preferredSkills", "niceToHaveSkills", "optionalSkills"}, kindSkills},
	{fieldEducation, []string{"requiredEducation", "education", "educationRequirement"}, kindEducation},
	{fieldCertifications, []string{"certifications", "requiredCertifications"}, kindStrings},
	{fieldDomain, []string{"domain", "industry"}, kindString},
	{fieldSummary, []string{"description", "summary"}, kindString},
	{fieldResponsibilities, []string{"responsibilities", "duties"}, kindStrings},
}

func fieldsFor(kind record.Kind) []field {
	if kind == record.KindRequirement {
		return requirementFields
	}
	return candidateFields
}

//go:embed schemas/*.json
var schemaFS embed.FS

var schemas = sync.OnceValues(func() (map[record.Kind]*gojsonschema.Schema, error) {
	out := make(map[record.Kind]*gojsonschema.Schema, 2)
	for kind, file := range map[record.Kind]string{
		record.KindCandidate:   "schemas/candidate.json",
		record.KindRequirement: "schemas/requirement.json",
	} {
		data, err := schemaFS.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			return nil, fmt.Errorf("compiling %s: %w", file, err)
		}
		out[kind] = schema
	}
	return out, nil
})

// violations validates a decoded object against the kind's schema and
// returns one line per mismatch, sorted.
func violations(obj map[string]any, kind record.Kind) ([]string, error) {
	compiled, err := schemas()
	if err != nil {
		return nil, err
	}
	result, err := compiled[kind].Validate(gojsonschema.NewGoLoader(obj))
	if err != nil {
		return nil, fmt.Errorf("validating %s object: %w", kind, err)
	}
	if result.Valid() {
		return nil, nil
	}
	out := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		out = append(out, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	sort.Strings(out)
	return out, nil
}
