package prompt

import "fmt"

// Style selects the answering register asked of the model.
type Style string

const StyleConcise Style = "concise"

const qaTemplate = `You are a careful RAG assistant. Follow these rules:

1) Use ONLY the provided context to answer. If the answer is not present, say "I don't see that in the document."
2) If you cite, reference the chunk IDs like "C1", "C2" (from the [C#] tags).
3) Be %s. No extra preamble, no disclaimers.
4) Output STRICT JSON with keys:
   - "answer": string
   - "citations": array of strings (e.g., ["C2", "C3"]). If none, use [].

Context:
%s

User question:
%s

Now return ONLY a JSON object with fields "answer" and "citations".`

// Build wraps context and question in the instruction template. Pure string
// templating: identical inputs produce identical prompts.
func Build(context, question string, style Style) string {
	if style == "" {
		style = StyleConcise
	}

	return fmt.Sprintf(qaTemplate, style, context, question)
}

const generalTemplate = `You are a helpful AI assistant. Answer the following question clearly and concisely.
If you don't know the answer, say so honestly.

Question: %s

Answer:`

// BuildGeneral renders the free-form prompt used when no document context is
// involved. The reply is plain text, not structured JSON.
func BuildGeneral(question string) string {
	return fmt.Sprintf(generalTemplate, question)
}
