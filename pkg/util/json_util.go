package util

import (
	"regexp"
	"strings"
)

var jsonFenceRe = regexp.MustCompile("(?s)```(?:json)?(.*?)```")

// ExtractJsonFromText pulls the JSON payload out of an LLM response, which may
// wrap it in a markdown code fence or surround it with prose.
func ExtractJsonFromText(text string) string {
	if matches := jsonFenceRe.FindStringSubmatch(text); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	start := firstIndex(strings.Index(text, "{"), strings.Index(text, "["))
	if start == -1 {
		return text
	}

	end := strings.LastIndex(text, "}")
	if endArr := strings.LastIndex(text, "]"); endArr > end {
		end = endArr
	}
	if end > start {
		return text[start : end+1]
	}
	return text
}

func firstIndex(a, b int) int {
	if a == -1 {
		return b
	}
	if b == -1 || a < b {
		return a
	}
	return b
}
