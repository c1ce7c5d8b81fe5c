package record

import (
	"regexp"
	"strings"
)

// DegreeLevel is the five tier education hierarchy.
type DegreeLevel int

const (
	LevelNone DegreeLevel = iota
	LevelDiploma
	LevelBachelor
	LevelMaster
	LevelDoctorate
)

var levelNames = [...]string{"None", "Diploma", "Bachelor", "Master", "Doctorate"}

func (l DegreeLevel) String() string {
	if l < LevelNone || l > LevelDoctorate {
		return levelNames[LevelNone]
	}
	return levelNames[l]
}

type degreePattern struct {
	level DegreeLevel
	re    *regexp.Regexp
}

// Checked from the highest tier down so "MBA" is not read as "B.A".
var degreePatterns = []degreePattern{
	{LevelDoctorate, regexp.MustCompile(`\b(ph\.?\s?d|doctorate|doctoral|doctor of|d\.?phil)\b`)},
	{LevelMaster, regexp.MustCompile(`\b(master'?s?|m\.?\s?tech|mba|m\.?b\.?a|m\.?sc|msc|m\.s\.?|ms|m\.a\.?|m\.?eng|mca|postgraduate|post-graduate)\b`)},
	{LevelBachelor, regexp.MustCompile(`\b(bachelor'?s?|b\.?\s?tech|b\.?sc|bsc|b\.s\.?|bs|b\.a\.?|ba|b\.e\.?|b\.?eng|bca|undergraduate|graduate degree)\b`)},
	{LevelDiploma, regexp.MustCompile(`\b(diploma|associate'?s?|a\.a\.?|a\.s\.?|certificate program)\b`)},
	{LevelNone, regexp.MustCompile(`\b(high school|secondary|ged|12th|10th)\b`)},
}

// ParseDegree maps a free-text degree to its tier. The second value reports
// whether the text was recognized; unrecognized text maps to LevelNone.
func ParseDegree(degree string) (DegreeLevel, bool) {
	text := strings.ToLower(strings.TrimSpace(degree))
	if text == "" {
		return LevelNone, false
	}
	for _, p := range degreePatterns {
		if p.re.MatchString(text) {
			return p.level, true
		}
	}
	return LevelNone, false
}
