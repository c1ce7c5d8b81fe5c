package recovery

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

var literals = map[string]string{
	"None":      "null",
	"null":      "null",
	"NULL":      "null",
	"Null":      "null",
	"nil":       "null",
	"undefined": "null",
	"NaN":       "null",
	"Infinity":  "null",
	"True":      "true",
	"true":      "true",
	"TRUE":      "true",
	"False":     "false",
	"false":     "false",
	"FALSE":     "false",
}

// quotePairs maps opening quote runes that are not valid JSON string
// delimiters to the runes that may close them.
var quotePairs = map[rune]string{
	'\'':     "'",
	'`':      "`",
	'\u201C': "\u201D\u201C",
	'\u201D': "\u201D\u201C",
	'\u2018': "\u2019\u2018",
	'\u2019': "\u2019\u2018",
	'\u00AB': "\u00BB",
}

// normalizeSyntax rewrites common model syntax drift into JSON in a single
// string-aware pass. Text inside valid double-quoted strings is preserved
// except for raw control characters and invalid escapes.
func normalizeSyntax(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 16)

	for i := 0; i < len(text); {
		c := text[i]

		switch {
		case c == '"':
			i = copyString(&b, text, i)
			if next, at := nextSignificant(text, i); next == '"' && strings.ContainsRune(text[i:at], '\n') {
				b.WriteByte(',')
			}

		case isDigit(c) || (c == '-' && i+1 < len(text) && isDigit(text[i+1])):
			end := i + 1
			for end < len(text) && (isDigit(text[end]) || strings.IndexByte(".eE+-", text[end]) >= 0) {
				end++
			}
			b.WriteString(text[i:end])
			i = end

		case c == ',':
			if next, _ := nextSignificant(text, i+1); next == '}' || next == ']' || next == 0 {
				i++
				continue
			}
			b.WriteByte(c)
			i++

		case c == '}' || c == ']':
			b.WriteByte(c)
			i++
			if next, _ := nextSignificant(text, i); next == '{' || next == '[' || next == '"' {
				b.WriteByte(',')
			}

		case c == '/' && i+1 < len(text) && (text[i+1] == '/' || text[i+1] == '*'):
			i = skipComment(text, i)

		case isIdentStart(c):
			i = writeIdent(&b, text, i)

		case c < 0x20 && c != '\n' && c != '\r' && c != '\t':
			i++

		case c >= utf8.RuneSelf:
			r, size := utf8.DecodeRuneInString(text[i:])
			if closers, ok := quotePairs[r]; ok {
				i = convertQuoted(&b, text, i+size, closers)
				continue
			}
			b.WriteString(text[i : i+size])
			i += size

		case c == '\'' || c == '`':
			i = convertQuoted(&b, text, i+1, quotePairs[rune(c)])

		default:
			b.WriteByte(c)
			i++
		}
	}

	return b.String()
}

// copyString copies a double-quoted string starting at text[start] and
// returns the index after it. A quote followed by a letter is taken as part
// of the text rather than the end of the string.
func copyString(b *strings.Builder, text string, start int) int {
	b.WriteByte('"')
	i := start + 1
	for i < len(text) {
		c := text[i]
		switch {
		case c == '\\':
			if i+1 < len(text) && strings.IndexByte(`"\/bfnrtu`, text[i+1]) >= 0 {
				b.WriteByte(c)
				b.WriteByte(text[i+1])
				i += 2
				continue
			}
			b.WriteString(`\\`)
			i++
		case c == '"':
			if next, _ := nextSignificant(text, i+1); isLetter(next) {
				b.WriteString(`\"`)
				i++
				continue
			}
			b.WriteByte('"')
			return i + 1
		case c == '\n':
			b.WriteString(`\n`)
			i++
		case c == '\r':
			b.WriteString(`\r`)
			i++
		case c == '\t':
			b.WriteString(`\t`)
			i++
		case c < 0x20:
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return i
}

// convertQuoted reads a string delimited by non-JSON quotes starting at
// text[start] (just past the opening quote) and writes it as a JSON string.
// Like copyString, a closing quote followed by a letter is kept as text, so
// apostrophes survive.
func convertQuoted(b *strings.Builder, text string, start int, closers string) int {
	var content strings.Builder
	i := start
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == '\\' && i+size < len(text) {
			next, nsize := utf8.DecodeRuneInString(text[i+size:])
			if strings.ContainsRune(closers, next) {
				content.WriteRune(next)
				i += size + nsize
				continue
			}
		}
		if strings.ContainsRune(closers, r) {
			if next, _ := nextSignificant(text, i+size); !isLetter(next) {
				i += size
				break
			}
		}
		content.WriteRune(r)
		i += size
	}
	lit, _ := json.Marshal(content.String())
	b.Write(lit)
	return i
}

// writeIdent handles a bare word outside strings: an unquoted key, a Python
// or JavaScript literal, or an unquoted string value.
func writeIdent(b *strings.Builder, text string, start int) int {
	end := start
	for end < len(text) && isIdentPart(text[end]) {
		end++
	}
	word := text[start:end]

	if next, _ := nextSignificant(text, end); next == ':' {
		b.WriteByte('"')
		b.WriteString(word)
		b.WriteByte('"')
		return end
	}
	if lit, ok := literals[word]; ok {
		b.WriteString(lit)
		return end
	}

	stop := end
	for stop < len(text) && strings.IndexByte(",}]\n\r", text[stop]) < 0 {
		stop++
	}
	lit, _ := json.Marshal(strings.TrimSpace(text[start:stop]))
	b.Write(lit)
	return stop
}

func skipComment(text string, start int) int {
	if text[start+1] == '/' {
		if nl := strings.IndexByte(text[start:], '\n'); nl >= 0 {
			return start + nl
		}
		return len(text)
	}
	if end := strings.Index(text[start+2:], "*/"); end >= 0 {
		return start + 2 + end + 2
	}
	return len(text)
}

// nextSignificant returns the first non-whitespace byte at or after i, or 0.
func nextSignificant(text string, i int) (byte, int) {
	for ; i < len(text); i++ {
		switch text[i] {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return text[i], i
		}
	}
	return 0, len(text)
}

func isIdentStart(c byte) bool {
	return isLetter(c) || c == '_' || c == '$'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
