package core

import "strings"

const jsonFence = "```json"

// Span is a half-open byte range [Start, End) inside a model reply.
type Span struct {
	Start int
	End   int
}

// Text returns the spanned substring of s.
func (sp Span) Text(s string) string { return s[sp.Start:sp.End] }

// FencedJSON returns the body of the first "```json" fenced block: the text
// after the fence up to the next "```", or to the end of s when the block is
// never closed.
func FencedJSON(s string) (string, bool) {
	idx := strings.Index(s, jsonFence)
	if idx < 0 {
		return "", false
	}
	body := s[idx+len(jsonFence):]
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body), true
}

// ScanSpan finds the first balanced span that opens with one of openers.
// Scanning starts at the first opener in s; quoted strings are skipped so
// braces inside JSON strings do not count.  Only the first span is ever
// returned, even when s holds several.  It reports false when s has no
// opener or the first one is never closed.
func ScanSpan(s string, openers ...byte) (Span, bool) {
	start := -1
	for i := 0; i < len(s); i++ {
		if isOneOf(s[i], openers) {
			start = i
			break
		}
	}
	if start < 0 {
		return Span{}, false
	}
	var stack []byte
	inString := false
	escape := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escape:
				escape = false
			case c == '\\':
				escape = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, closerFor(c))
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return Span{}, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return Span{Start: start, End: i + 1}, true
			}
		}
	}
	return Span{}, false
}

// ExtractJSON picks the candidate JSON text out of a model reply: the fenced
// block when present, otherwise the first balanced span.
func ExtractJSON(s string, openers ...byte) (string, bool) {
	if body, ok := FencedJSON(s); ok {
		return body, true
	}
	span, ok := ScanSpan(s, openers...)
	if !ok {
		return "", false
	}
	return span.Text(s), true
}

func closerFor(c byte) byte {
	if c == '[' {
		return ']'
	}
	return '}'
}

func isOneOf(c byte, set []byte) bool {
	for _, x := range set {
		if c == x {
			return true
		}
	}
	return false
}
