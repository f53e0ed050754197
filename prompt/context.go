// Package prompt assembles the bounded, citation-tagged context window,
// renders the instruction template and parses the model's structured reply.
package prompt

import (
	"fmt"
	"strings"

	"github.com/gamma-omg/docqa/docstore"
)

const (
	// NoContext is returned instead of an empty string so the instruction
	// template always has something to reference.
	NoContext = "No context."

	// RawExcerptChars caps the raw-text excerpt before it competes with
	// retrieved chunks for the context budget.
	RawExcerptChars = 3000

	// DefaultContextChars bounds the assembled context as a whole.
	DefaultContextChars = 6000
)

// CitationTag returns the label for a retrieved chunk at the given 1-based
// retrieval rank.
func CitationTag(rank int) string {
	return fmt.Sprintf("C%d", rank)
}

// AssembleContext combines retrieved matches with a raw-text excerpt into one
// context string of at most maxChars characters. Matches keep their retrieval
// order and are tagged C1, C2, ... so the model can cite them. The excerpt is
// capped before concatenation: retrieved, query-relevant content wins the
// budget over generic raw text.
func AssembleContext(matches []docstore.Match, rawExcerpt string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultContextChars
	}
	rawExcerpt = strings.TrimSpace(rawExcerpt)
	if len(rawExcerpt) > RawExcerptChars {
		rawExcerpt = rawExcerpt[:RawExcerptChars]
	}

	var parts []string
	if len(matches) > 0 {
		tagged := make([]string, 0, len(matches))
		for i, m := range matches {
			tagged = append(tagged, fmt.Sprintf("[%s] %s", CitationTag(i+1), m.Text))
		}
		parts = append(parts, "Retrieved chunks:\n"+strings.Join(tagged, "\n\n"))
	}
	if rawExcerpt != "" {
		parts = append(parts, "Additional context:\n"+rawExcerpt)
	}

	combined := strings.TrimSpace(strings.Join(parts, "\n\n"))
	if combined == "" {
		return NoContext
	}
	if len(combined) > maxChars {
		combined = combined[:maxChars]
	}

	return combined
}
