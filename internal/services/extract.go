package services

import (
	"encoding/json"
	"strings"
)

// ExtractJSON returns the first balanced JSON object embedded in text, preferring
// one that parses. Braces inside string literals are ignored. When no balanced
// object exists it falls back to the span between the first '{' and the last
// '}'. ok is false when text holds no object candidate at all.
func ExtractJSON(text string) (string, bool) {
	firstBalanced := ""
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchObject(text, start); end > 0 {
			candidate := text[start:end]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
			if firstBalanced == "" {
				firstBalanced = candidate
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	if firstBalanced != "" {
		return firstBalanced, true
	}

	first := strings.IndexByte(text, '{')
	last := strings.LastIndexByte(text, '}')
	if first < 0 || last <= first {
		return "", false
	}
	return text[first : last+1], true
}

// matchObject scans from the '{' at start and returns the index just past its
// closing brace, or -1 if the object never closes.
func matchObject(text string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}

	return -1
}
