package script

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractArray pulls a JSON array out of raw model output, with
// lightweight recovery for markdown code fences and surrounding prose.
// Candidates are tried in order: the whole string, the string with code
// fences stripped, then the first bracketed span.
func ExtractArray(content string) ([]any, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty model output")
	}

	candidates := []string{content}
	if stripped := stripCodeFences(content); stripped != "" && stripped != content {
		candidates = append(candidates, stripped)
	}
	if span := bracketedSpan(content); span != "" && span != content {
		candidates = append(candidates, span)
	}

	for _, candidate := range candidates {
		var parsed any
		if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
			continue
		}
		if list, ok := parsed.([]any); ok {
			return list, nil
		}
	}

	return nil, fmt.Errorf("model output is not a JSON array")
}

func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return ""
	}

	// Drop first fence line.
	lines = lines[1:]
	// Drop trailing fence if present.
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// bracketedSpan returns the outermost [...] span, covering the common case
// of a valid array wrapped in commentary.
func bracketedSpan(content string) string {
	start := strings.Index(content, "[")
	if start < 0 {
		return ""
	}
	end := strings.LastIndex(content, "]")
	if end < start {
		return ""
	}
	return strings.TrimSpace(content[start : end+1])
}
