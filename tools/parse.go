package tools

import (
	"strings"

	"github.com/BaSui01/agentline/types"
)

// StripCodeFences removes a surrounding markdown code fence from an LLM
// response. The opening line is dropped whole, so language tags like
// ```json disappear with it. Responses without a fence are returned
// trimmed.
func StripCodeFences(response string) string {
	trimmed := strings.TrimSpace(response)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return ""
	}
	return strings.Join(lines[1:len(lines)-1], "\n")
}

// ExtractJSON returns the first balanced JSON object or array embedded in
// text, tolerating prose around it. The scan respects strings and escape
// sequences, so braces inside values do not end the match.
func ExtractJSON(text string) (string, error) {
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return "", types.Invalid("no json found in text").WithCode(types.ErrToolFailed)
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", types.Invalid("unterminated json in text").WithCode(types.ErrToolFailed)
}

// ParseLines splits text into trimmed, non-empty lines.
func ParseLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
