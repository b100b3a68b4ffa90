package service

import "strings"

// stripCodeFences removes a surrounding ```json / ``` markdown fence, if
// present. LLMs wrap JSON payloads in fences often enough that every
// structured response goes through this first.
func stripCodeFences(input string) string {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	if end := strings.LastIndex(trimmed, "```"); end != -1 {
		trimmed = trimmed[:end]
	}
	return strings.TrimSpace(trimmed)
}

// extractFirstJSONObject returns the first balanced top-level JSON object
// in input, or "" when none exists. String escapes are honored so braces
// inside values do not unbalance the scan.
func extractFirstJSONObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start == -1 {
		return ""
	}

	inString := false
	escape := false
	depth := 0

	for i := start; i < len(input); i++ {
		ch := input[i]

		if inString {
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
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
				return input[start : i+1]
			}
			if depth < 0 {
				return ""
			}
		}
	}

	return ""
}
