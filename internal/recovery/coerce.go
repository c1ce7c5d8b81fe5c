package recovery

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/fitscore/internal/record"
	"github.com/spigell/fitscore/internal/skills"
)

var (
	leadingNumber = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	listSeparator = regexp.MustCompile(`[,;|\n]+`)
)

// coercion turns a decoded object into a record, noting every default it had
// to apply.
type coercion struct {
	obj      map[string]any
	kind     record.Kind
	defaults []string
	notes    []string
}

func coerceRecord(obj map[string]any, kind record.Kind) (record.Record, []string, []string) {
	c := &coercion{obj: obj, kind: kind}
	rec := record.New(kind)
	rec.Summary = ""

	for _, f := range fieldsFor(kind) {
		v, ok := c.lookup(f)
		if !ok {
			c.defaults = append(c.defaults, f.name)
			continue
		}
		c.apply(&rec, f, v)
	}

	if kind == record.KindCandidate && c.defaulted(fieldYears) && len(rec.Experience) > 0 {
		var total float64
		for _, e := range rec.Experience {
			total += e.Years
		}
		rec.YearsExperience = total
		c.notes = append(c.notes, "totalYearsExperience derived from experience entries")
	}
	if kind == record.KindRequirement && len(rec.Education) == 0 {
		rec.Education = []record.Education{{Degree: record.NotSpecified, Level: record.LevelNone}}
	}

	return rec, c.defaults, c.notes
}

// lookup finds the first alias present with a non-null value. Keys are
// matched exactly first, then case-insensitively.
func (c *coercion) lookup(f field) (any, bool) {
	for _, alias := range f.aliases {
		if v, ok := c.obj[alias]; ok && v != nil {
			return v, true
		}
	}
	for key, v := range c.obj {
		if v == nil {
			continue
		}
		for _, alias := range f.aliases {
			if strings.EqualFold(key, alias) {
				return v, true
			}
		}
	}
	return nil, false
}

func (c *coercion) defaulted(name string) bool {
	for _, d := range c.defaults {
		if d == name {
			return true
		}
	}
	return false
}

func (c *coercion) apply(rec *record.Record, f field, v any) {
	switch f.name {
	case fieldRole:
		if s := coerceString(v); s != "" {
			rec.Role = s
		} else {
			c.defaults = append(c.defaults, f.name)
		}
	case fieldYears:
		n := coerceFloat(v)
		switch {
		case math.IsNaN(n):
			c.defaults = append(c.defaults, f.name)
		case n < 0:
			c.notes = append(c.notes, fmt.Sprintf("%s %v clamped to 0", f.name, n))
		default:
			rec.YearsExperience = n
		}
	case fieldExperience:
		rec.Experience = c.experience(v)
	case fieldSkills:
		rec.Skills = coerceSkills(v)
	case fieldPreferredSkills:
		rec.PreferredSkills = coerceSkills(v)
	case fieldEducation:
		rec.Education = c.education(v)
	case fieldCertifications:
		rec.Certifications = coerceStrings(v)
	case fieldDomain:
		if s := coerceString(v); s != "" && !strings.EqualFold(s, record.UnknownDomain) {
			rec.Domain = s
		}
	case fieldSummary:
		rec.Summary = coerceString(v)
	case fieldResponsibilities:
		rec.Responsibilities = coerceStrings(v)
	}
}

type experienceEntry struct {
	Title        string  `mapstructure:"title"`
	Role         string  `mapstructure:"role"`
	Position     string  `mapstructure:"position"`
	Organization string  `mapstructure:"organization"`
	Company      string  `mapstructure:"company"`
	Employer     string  `mapstructure:"employer"`
	Years        float64 `mapstructure:"years"`
	Duration     float64 `mapstructure:"durationYears"`
	StartDate    string  `mapstructure:"startDate"`
	EndDate      string  `mapstructure:"endDate"`
}

func (c *coercion) experience(v any) []record.Experience {
	out := []record.Experience{}
	for _, item := range asList(v) {
		var e experienceEntry
		switch val := item.(type) {
		case map[string]any:
			if err := decodeWeak(val, &e); err != nil {
				c.notes = append(c.notes, fmt.Sprintf("experience entry: %v", err))
			}
		case string:
			e.Title = strings.TrimSpace(val)
		default:
			continue
		}

		years := e.Years
		if years == 0 {
			years = e.Duration
		}
		if years == 0 {
			years = spanYears(e.StartDate, e.EndDate)
		}
		entry := record.Experience{
			Title:        firstNonEmpty(e.Title, e.Role, e.Position),
			Organization: firstNonEmpty(e.Organization, e.Company, e.Employer),
			Years:        math.Max(0, years),
		}
		if entry.Title == "" && entry.Organization == "" && entry.Years == 0 {
			continue
		}
		out = append(out, entry)
	}
	return out
}

type educationEntry struct {
	Degree        string `mapstructure:"degree"`
	Qualification string `mapstructure:"qualification"`
	Level         any    `mapstructure:"level"`
	Field         string `mapstructure:"field"`
	Major         string `mapstructure:"major"`
	Institution   string `mapstructure:"institution"`
	School        string `mapstructure:"school"`
	University    string `mapstructure:"university"`
	Year          int    `mapstructure:"year"`
}

func (c *coercion) education(v any) []record.Education {
	out := []record.Education{}
	for _, item := range asList(v) {
		var e educationEntry
		switch val := item.(type) {
		case map[string]any:
			if err := decodeWeak(val, &e); err != nil {
				c.notes = append(c.notes, fmt.Sprintf("education entry: %v", err))
			}
		case string:
			e.Degree = strings.TrimSpace(val)
		default:
			continue
		}

		degree := firstNonEmpty(e.Degree, e.Qualification)
		level, known := record.ParseDegree(degree)
		if !known {
			if n := coerceFloat(e.Level); !math.IsNaN(n) && n >= float64(record.LevelNone) && n <= float64(record.LevelDoctorate) {
				level = record.DegreeLevel(n)
			} else if degree != "" && !strings.EqualFold(degree, record.NotSpecified) {
				c.notes = append(c.notes, fmt.Sprintf("unrecognized degree %q treated as %s", degree, record.LevelNone))
			}
		}
		if degree == "" && e.Level == nil {
			continue
		}
		out = append(out, record.Education{
			Degree:      degree,
			Level:       level,
			Field:       firstNonEmpty(e.Field, e.Major),
			Institution: firstNonEmpty(e.Institution, e.University, e.School),
			Year:        max(0, e.Year),
		})
	}
	return out
}

// decodeWeak decodes a loosely typed map into out. Numeric strings such as
// "3 years" or "1,200" are accepted for numeric fields; field names match
// case-insensitively.
func decodeWeak(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook:       lenientNumbers,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

func lenientNumbers(from, to reflect.Kind, data any) (any, error) {
	if from != reflect.String {
		return data, nil
	}
	switch to {
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64, reflect.Int32:
		n := coerceFloat(data)
		if math.IsNaN(n) {
			return 0, nil
		}
		if to == reflect.Float32 || to == reflect.Float64 {
			return n, nil
		}
		return int(n), nil
	}
	return data, nil
}

// spanYears computes end-start for four digit years. Open-ended ranges are
// left at zero so parsing stays independent of the clock.
func spanYears(start, end string) float64 {
	s, okS := yearOf(start)
	e, okE := yearOf(end)
	if !okS || !okE || e < s {
		return 0
	}
	return float64(e - s)
}

var fourDigitYear = regexp.MustCompile(`\b(19|20)\d{2}\b`)

func yearOf(s string) (int, bool) {
	m := fourDigitYear.FindString(s)
	if m == "" {
		return 0, false
	}
	y, err := strconv.Atoi(m)
	return y, err == nil
}

func coerceSkills(v any) []string {
	out := []string{}
	seen := make(map[string]struct{})
	add := func(s string) {
		s = strings.TrimSpace(s)
		key := skills.Normalize(s)
		if key == "" {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}

	for _, item := range asList(v) {
		switch val := item.(type) {
		case map[string]any:
			for _, key := range []string{"name", "skill", "title"} {
				if s := coerceString(val[key]); s != "" {
					add(s)
					break
				}
			}
		default:
			add(coerceString(val))
		}
	}
	return out
}

func coerceStrings(v any) []string {
	out := []string{}
	for _, item := range asList(v) {
		var s string
		if m, ok := item.(map[string]any); ok {
			s = firstNonEmpty(coerceString(m["name"]), coerceString(m["title"]))
		} else {
			s = coerceString(item)
		}
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// asList normalizes a value expected to be a list: lists pass through,
// strings are split on common separators, other scalars become one item.
func asList(v any) []any {
	switch val := v.(type) {
	case nil:
		return nil
	case []any:
		return val
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out
	case string:
		var out []any
		for _, part := range listSeparator.Split(val, -1) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	default:
		return []any{val}
	}
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		trimmed := strings.ReplaceAll(strings.TrimSpace(val), ",", "")
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
		m := leadingNumber.FindString(trimmed)
		if m == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
