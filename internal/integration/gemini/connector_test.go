package gemini

import (
	"errors"
	"fmt"
	"testing"

	"github.com/futig/docqa-backend/internal/entity"
	"google.golang.org/genai"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		rateLimited bool
	}{
		{
			name:        "quota exceeded",
			err:         genai.APIError{Code: 429, Message: "Resource has been exhausted", Status: "RESOURCE_EXHAUSTED"},
			rateLimited: true,
		},
		{
			name:        "wrapped quota exceeded",
			err:         fmt.Errorf("call failed: %w", genai.APIError{Code: 429}),
			rateLimited: true,
		},
		{
			name: "bad request",
			err:  genai.APIError{Code: 400, Message: "invalid argument"},
		},
		{
			name: "plain error mentioning 429",
			err:  errors.New("upstream said 429 somewhere"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			if errors.Is(got, entity.ErrRateLimited) != tt.rateLimited {
				t.Errorf("rate limited = %v, want %v (%v)", !tt.rateLimited, tt.rateLimited, got)
			}
			if !tt.rateLimited && !errors.Is(got, entity.ErrGeneration) {
				t.Errorf("expected ErrGeneration, got %v", got)
			}
		})
	}
}

func TestMockGenerator_AnswersFromFirstPassage(t *testing.T) {
	prompt := "**Role:** analyst.\n**Source Text:**\n---\nThe warranty period is 24 months. It starts at purchase.\n\n---\n\nOther text.\n---\n\n**Instructions:**\n1. ..."

	got, err := NewMockGenerator(nil).Generate(t.Context(), prompt, entity.DefaultGenerationConfig())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got != "The warranty period is 24 months." {
		t.Errorf("unexpected answer %q", got)
	}
}
