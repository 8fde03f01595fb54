// Package jsonext recovers JSON objects from LLM responses, which routinely
// arrive wrapped in markdown code fences or surrounded by prose.
package jsonext

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripCodeFences removes markdown code fence markers.
func StripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// Extract pulls the first complete JSON object out of a response. After
// de-fencing it scans for a balanced top-level {...} block, skipping braces
// inside strings.
func Extract(s string) ([]byte, error) {
	s = StripCodeFences(s)

	if json.Valid([]byte(s)) && strings.HasPrefix(s, "{") {
		return []byte(s), nil
	}

	start := strings.IndexByte(s, '{')
	if start < 0 {
		return nil, fmt.Errorf("no JSON object in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				candidate := s[start : i+1]
				if !json.Valid([]byte(candidate)) {
					return nil, fmt.Errorf("malformed JSON object in response")
				}
				return []byte(candidate), nil
			}
		}
	}
	return nil, fmt.Errorf("unterminated JSON object in response")
}
