package recovery

import (
	"encoding/json"
	"regexp"
	"strings"
	"sync"

	"github.com/spigell/fitscore/internal/record"
)

var (
	stringLiteral = regexp.MustCompile(`"((?:[^"\\\n]|\\.)*)"`)
	objectChunk   = regexp.MustCompile(`\{[^{}]*\}?`)
	nameValue     = regexp.MustCompile(`(?i)"(?:name|skill)"\s*:\s*"((?:[^"\\\n]|\\.)*)"`)
)

// fieldPatterns holds the per-alias expressions for one field.
type fieldPatterns struct {
	field field
	keys  []*regexp.Regexp
}

var compiledFields = sync.OnceValue(func() map[record.Kind][]fieldPatterns {
	out := make(map[record.Kind][]fieldPatterns, 2)
	for _, kind := range []record.Kind{record.KindCandidate, record.KindRequirement} {
		for _, f := range fieldsFor(kind) {
			fp := fieldPatterns{field: f}
			for _, alias := range f.aliases {
				fp.keys = append(fp.keys, keyPattern(alias, f.kind))
			}
			out[kind] = append(out[kind], fp)
		}
	}
	return out
})

// keyPattern matches `"alias": <value>` with lenient quoting and returns the
// raw value in group 1. Values may be cut off by truncation.
func keyPattern(alias string, kind fieldKind) *regexp.Regexp {
	key := `(?:^|[^\w])["'\x{201C}\x{201D}]?` + regexp.QuoteMeta(alias) + `["'\x{201C}\x{201D}]?\s*[:=]\s*`
	var value string
	switch kind {
	case kindNumber:
		value = `"?(-?[\d,]*\.?\d+)`
	case kindString:
		value = `"((?:[^"\\\n]|\\.)*)`
	case kindEducation:
		value = `("(?:[^"\\\n]|\\.)*"?|\[[^\]]*)`
	default:
		value = `(\[[^\]]*|"(?:[^"\\\n]|\\.)*"?)`
	}
	return regexp.MustCompile(`(?i)` + key + value)
}

// extractFields pulls each field out of the text independently. Fields that
// cannot be found are left out; the result is empty when nothing was found.
func extractFields(text string, kind record.Kind) map[string]any {
	out := make(map[string]any)
	for _, fp := range compiledFields()[kind] {
		for _, re := range fp.keys {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			if v, ok := fieldValue(fp.field.kind, m[1]); ok {
				out[fp.field.name] = v
				break
			}
		}
	}
	return out
}

func fieldValue(kind fieldKind, raw string) (any, bool) {
	switch kind {
	case kindNumber:
		return raw, raw != ""
	case kindString:
		s := unquote(raw)
		return s, s != ""
	}

	if !strings.HasPrefix(raw, "[") {
		// A scalar where a list was expected, e.g. "requiredEducation": "BSc".
		s := unquote(strings.TrimPrefix(strings.TrimSuffix(raw, `"`), `"`))
		return s, s != ""
	}

	body := raw[1:]
	switch kind {
	case kindSkills:
		if names := nameValue.FindAllStringSubmatch(body, -1); len(names) > 0 {
			return collect(names), true
		}
		list := collect(stringLiteral.FindAllStringSubmatch(body, -1))
		return list, len(list) > 0
	case kindExperience, kindEducation:
		var entries []any
		for _, chunk := range objectChunk.FindAllString(body, -1) {
			if obj, ok := decodeObject(complete(chunk)); ok {
				entries = append(entries, obj)
			}
		}
		if len(entries) == 0 {
			for _, s := range collect(stringLiteral.FindAllStringSubmatch(body, -1)) {
				entries = append(entries, s)
			}
		}
		return entries, len(entries) > 0
	default:
		list := collect(stringLiteral.FindAllStringSubmatch(body, -1))
		return list, len(list) > 0
	}
}

func collect(matches [][]string) []any {
	out := make([]any, 0, len(matches))
	for _, m := range matches {
		if s := unquote(m[1]); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// unquote resolves JSON escapes in a captured string body, keeping the raw
// text when it is not a valid JSON string.
func unquote(body string) string {
	var s string
	if err := json.Unmarshal([]byte(`"`+body+`"`), &s); err != nil {
		return strings.TrimSpace(body)
	}
	return strings.TrimSpace(s)
}
