package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// Mock substitutes a canned reply when no model provider is configured or AI
// is explicitly disabled. The reply is valid structured output, so the rest
// of the pipeline behaves exactly as with a live model.
type Mock struct {
	Reason string
}

func (m *Mock) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := json.Marshal(map[string]any{
		"answer":    fmt.Sprintf("(mock) AI disabled or unavailable: %s", m.Reason),
		"citations": []string{},
	})
	if err != nil {
		return "", err
	}

	return string(out), nil
}
