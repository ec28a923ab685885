package matcher

import (
	"encoding/json"
	"strings"
)

// extractJSON extracts a complete JSON object from text, handling nested
// braces and code fences.
func extractJSON(text string) string {
	// Prefer JSON inside a markdown code block when present
	if strings.Contains(text, "```json") {
		start := strings.Index(text, "```json") + len("```json")
		if end := strings.Index(text[start:], "```"); end != -1 {
			candidate := strings.TrimSpace(text[start : start+end])
			if isValidJSON(candidate) {
				return candidate
			}
		}
	}

	// Find the first opening brace
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	// Count braces to find the matching closing brace
	braceCount := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		char := text[i]

		if escaped {
			escaped = false
			continue
		}

		if char == '\\' {
			escaped = true
			continue
		}

		if char == '"' {
			inString = !inString
			continue
		}

		if !inString {
			switch char {
			case '{':
				braceCount++
			case '}':
				braceCount--
				if braceCount == 0 {
					return text[start : i+1]
				}
			}
		}
	}

	return ""
}

// isValidJSON validates if a string is valid JSON
func isValidJSON(s string) bool {
	var js json.RawMessage
	return json.Unmarshal([]byte(s), &js) == nil
}
