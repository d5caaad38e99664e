package answer

import (
	"strings"

	"github.com/futig/docqa-backend/internal/entity"
)

const sourceSeparator = "\n\n---\n\n"

// BuildPrompt renders the single-sentence answering prompt for question
// grounded on the retrieved matches, in retrieval order.
func BuildPrompt(question string, matches []entity.RetrievalMatch) string {
	parts := make([]string, len(matches))
	for i, m := range matches {
		parts[i] = m.Content
	}

	var b strings.Builder
	b.WriteString("**Role:** You are an expert document analyst. Your task is to answer a question with extreme precision based *only* on the provided text.\n")
	b.WriteString("**Source Text:**\n---\n")
	b.WriteString(strings.Join(parts, sourceSeparator))
	b.WriteString("\n---\n\n")
	b.WriteString("**Instructions:**\n")
	b.WriteString("1. Analyze the entire source text to find all facts, figures, and conditions related to the user's question.\n")
	b.WriteString("2. Synthesize these facts into a single, comprehensive, and factual sentence.\n")
	b.WriteString("3. Your answer **MUST** be a single sentence.\n")
	b.WriteString("4. Do **NOT** add any information that is not explicitly stated in the source text.\n")
	b.WriteString("5. Answer directly. Do not start with phrases like \"According to the document...\".\n")
	b.WriteString("**User Question:** ")
	b.WriteString(question)
	b.WriteString("\n**Single-Sentence Answer:**")
	return b.String()
}

// normalize collapses every whitespace run, newlines included, into one space
func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
