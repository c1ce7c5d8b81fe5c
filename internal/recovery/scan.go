package recovery

import (
	"encoding/json"
	"strings"
)

// scanner walks JSON-like text byte by byte, tracking string literals and the
// stack of open delimiters. Multi-byte UTF-8 sequences never contain ASCII
// bytes, so byte-wise scanning is safe.
type scanner struct {
	stack    []byte
	inString bool
	escaped  bool
	// keyString is set while inside a string that sits in object key position.
	keyString bool
	// lastSig is the last significant byte seen outside strings.
	lastSig byte
	// afterKey is set when the last complete token was an object key.
	afterKey bool
}

func (s *scanner) top() byte {
	if len(s.stack) == 0 {
		return 0
	}
	return s.stack[len(s.stack)-1]
}

// step consumes one byte. It returns true when the byte closed the outermost
// delimiter.
func (s *scanner) step(c byte) bool {
	if s.inString {
		switch {
		case s.escaped:
			s.escaped = false
		case c == '\\':
			s.escaped = true
		case c == '"':
			s.inString = false
			s.afterKey = s.keyString
			s.lastSig = '"'
		}
		return false
	}

	switch c {
	case ' ', '\t', '\n', '\r':
		return false
	case '"':
		s.inString = true
		s.keyString = s.top() == '{' && (s.lastSig == '{' || s.lastSig == ',')
	case '{', '[':
		s.stack = append(s.stack, c)
	case '}', ']':
		if len(s.stack) > 0 && s.top() == opener(c) {
			s.stack = s.stack[:len(s.stack)-1]
			if len(s.stack) == 0 {
				s.lastSig = c
				s.afterKey = false
				return true
			}
		}
	}
	if c != '"' {
		s.afterKey = false
	}
	s.lastSig = c
	return false
}

func opener(c byte) byte {
	if c == '}' {
		return '{'
	}
	return '['
}

func closer(c byte) byte {
	if c == '{' {
		return '}'
	}
	return ']'
}

// objectStart returns the index of the first '{' or -1.
func objectStart(text string) int {
	return strings.IndexByte(text, '{')
}

// balancedObject returns the substring from the first '{' to its matching
// '}' at the same nesting depth.
func balancedObject(text string) (string, bool) {
	start := objectStart(text)
	if start < 0 {
		return "", false
	}
	var s scanner
	for i := start; i < len(text); i++ {
		if s.step(text[i]) {
			return text[start : i+1], true
		}
	}
	return "", false
}

// complete closes whatever the fragment left open: an unterminated string, a
// dangling key or separator, then every open delimiter in reverse order.
func complete(fragment string) string {
	var s scanner
	for i := 0; i < len(fragment); i++ {
		s.step(fragment[i])
	}

	var b strings.Builder
	b.Grow(len(fragment) + len(s.stack) + 8)

	if s.inString {
		body := fragment
		if s.escaped {
			body = body[:len(body)-1]
		}
		b.WriteString(body)
		b.WriteByte('"')
		if s.keyString {
			b.WriteString(": null")
		}
	} else {
		body := strings.TrimRight(fragment, " \t\r\n")
		for strings.HasSuffix(body, ",") {
			body = strings.TrimRight(strings.TrimSuffix(body, ","), " \t\r\n")
		}
		b.WriteString(body)
		switch {
		case strings.HasSuffix(body, ":"):
			b.WriteString(" null")
		case s.afterKey && strings.HasSuffix(body, `"`):
			b.WriteString(": null")
		}
	}

	for i := len(s.stack) - 1; i >= 0; i-- {
		b.WriteByte(closer(s.stack[i]))
	}
	return b.String()
}

// cutPoints lists prefix lengths, in ascending order, after which the text
// can be cut and completed: right after a closing delimiter or a closing
// quote, and right before a separating comma.
func cutPoints(text string) []int {
	var (
		s    scanner
		cuts []int
	)
	for i := 0; i < len(text); i++ {
		c := text[i]
		wasInString := s.inString
		s.step(c)
		switch {
		case wasInString && !s.inString:
			cuts = append(cuts, i+1)
		case !wasInString && (c == '}' || c == ']'):
			cuts = append(cuts, i+1)
		case !wasInString && c == ',':
			cuts = append(cuts, i)
		}
	}
	return cuts
}

// decodeObject decodes text into a JSON object. A JSON null or a non-object
// value is a failure.
func decodeObject(text string) (map[string]any, bool) {
	text = strings.TrimSpace(text)
	if text == "" || text[0] != '{' {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}
