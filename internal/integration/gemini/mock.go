package gemini

import (
	"context"
	"strings"

	"github.com/futig/docqa-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	sourceStart = "**Source Text:**\n---\n"
	sourceEnd   = "\n---\n\n**Instructions:**"
)

// MockGenerator answers with the first sentence of the best passage in the prompt
type MockGenerator struct {
	logger *zap.Logger
}

func NewMockGenerator(logger *zap.Logger) *MockGenerator {
	return &MockGenerator{
		logger: logger,
	}
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string, _ entity.GenerationConfig) (string, error) {
	ctxzap.Info(ctx, "[MOCK] generating answer")

	answer := "No source text was provided."
	if passage := firstPassage(prompt); passage != "" {
		answer = firstSentence(passage)
	}

	ctxzap.Info(ctx, "[MOCK] answer generated", zap.Int("answer_length", len(answer)))
	return answer, nil
}

func firstPassage(prompt string) string {
	start := strings.Index(prompt, sourceStart)
	if start < 0 {
		return ""
	}
	rest := prompt[start+len(sourceStart):]
	if end := strings.Index(rest, sourceEnd); end >= 0 {
		rest = rest[:end]
	}
	passage, _, _ := strings.Cut(rest, "\n\n---\n\n")
	return strings.TrimSpace(passage)
}

func firstSentence(text string) string {
	for i, r := range text {
		if (r == '.' || r == '!' || r == '?') && (i+1 == len(text) || text[i+1] == ' ' || text[i+1] == '\n') {
			return text[:i+1]
		}
	}
	return text
}
