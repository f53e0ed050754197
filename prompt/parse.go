package prompt

import (
	"encoding/json"
	"strings"
)

// Answer is the structured result extracted from a model reply.
type Answer struct {
	Answer    string   `json:"answer"`
	Citations []string `json:"citations"`
}

// ParseAnswer extracts an Answer from raw model output. Models reliably
// produce JSON-shaped replies but occasionally wrap them in prose or markdown
// fences, so parsing degrades instead of failing: first the whole trimmed
// output is tried as JSON, then the substring between the first "{" and the
// last "}", and finally the raw text becomes the answer with no citations.
// Citations is always non-nil.
func ParseAnswer(raw string) Answer {
	trimmed := strings.TrimSpace(raw)

	if a, ok := parseObject(trimmed); ok {
		return a
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start != -1 && end > start {
		if a, ok := parseObject(trimmed[start : end+1]); ok {
			return a
		}
	}

	return Answer{Answer: trimmed, Citations: []string{}}
}

// A missing "answer" coerces to an empty string and a "citations" value that
// is not an array of strings coerces to an empty list.
func parseObject(s string) (Answer, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return Answer{}, false
	}

	a := Answer{Citations: []string{}}
	if v, ok := obj["answer"].(string); ok {
		a.Answer = v
	}
	if arr, ok := obj["citations"].([]any); ok {
		for _, c := range arr {
			if tag, ok := c.(string); ok {
				a.Citations = append(a.Citations, tag)
			}
		}
	}

	return a, true
}
