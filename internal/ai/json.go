package ai

import (
	"encoding/json"
	"strings"

	"github.com/thomas-vilte/debtguard/internal/regex"
)

// ExtractJSON pulls the JSON object out of a completion, tolerating code
// fences and prose around it. When several candidates are valid, the
// longest one wins.
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)

	var bestFenced string
	for _, m := range regex.FencedBlock.FindAllStringSubmatch(text, -1) {
		if len(m) < 2 {
			continue
		}
		sanitized := SanitizeJSON(strings.TrimSpace(m[1]))
		if json.Valid([]byte(sanitized)) && len(sanitized) > len(bestFenced) {
			bestFenced = sanitized
		}
	}
	if bestFenced != "" {
		return bestFenced
	}

	var bestBlock string
	for i := 0; i < len(text); {
		startIdx := strings.IndexAny(text[i:], "{[")
		if startIdx == -1 {
			break
		}
		startIdx += i

		endIdx := matchingClose(text, startIdx)
		if endIdx == -1 {
			i = startIdx + 1
			continue
		}

		sanitized := SanitizeJSON(text[startIdx : endIdx+1])
		if json.Valid([]byte(sanitized)) && len(sanitized) > len(bestBlock) {
			bestBlock = sanitized
		}
		i = endIdx + 1
	}

	if bestBlock != "" {
		return bestBlock
	}

	return SanitizeJSON(text)
}

// matchingClose returns the index of the bracket closing the one at start,
// ignoring brackets inside string literals, or -1.
func matchingClose(text string, start int) int {
	opener := text[start]
	closer := byte('}')
	if opener == '[' {
		closer = ']'
	}

	depth := 0
	inString := false
	escaped := false

	for j := start; j < len(text); j++ {
		char := text[j]
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
		if inString {
			continue
		}

		switch char {
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return -1
}

// SanitizeJSON escapes raw newlines inside string literals, a common LLM
// formatting slip.
func SanitizeJSON(s string) string {
	return regex.JSONString.ReplaceAllStringFunc(s, func(m string) string {
		return strings.ReplaceAll(m, "\n", "\\n")
	})
}
