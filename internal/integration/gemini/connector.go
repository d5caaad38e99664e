package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/docqa-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// maxEmbedBatch is the largest number of contents accepted by one embed call
const maxEmbedBatch = 100

type ClientConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(ctx context.Context, cfg ClientConfig) (*genai.Client, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return client, nil
}

// Generator answers prompts with a Gemini model
type Generator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGenerator(client *genai.Client, model string, timeout time.Duration) *Generator {
	return &Generator{
		client:  client,
		model:   model,
		timeout: timeout,
	}
}

func (g *Generator) Generate(ctx context.Context, prompt string, cfg entity.GenerationConfig) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	ctxzap.Debug(ctx, "generating answer via gemini", zap.String("model", g.model), zap.Int("prompt_length", len(prompt)))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(cfg.Temperature),
		CandidateCount:  cfg.CandidateCount,
		MaxOutputTokens: cfg.MaxOutputTokens,
	})
	if err != nil {
		return "", mapError(err)
	}

	return resp.Text(), nil
}

// Embedder embeds texts with a Gemini embedding model
type Embedder struct {
	client *genai.Client
	model  string
	dim    int
}

func NewEmbedder(client *genai.Client, model string, dim int) *Embedder {
	return &Embedder{
		client: client,
		model:  model,
		dim:    dim,
	}
}

func (e *Embedder) Name() string { return "gemini:" + e.model }

func (e *Embedder) Dimension() int { return e.dim }

func (e *Embedder) EmbedStrings(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += maxEmbedBatch {
		end := min(start+maxEmbedBatch, len(texts))

		contents := make([]*genai.Content, 0, end-start)
		for _, t := range texts[start:end] {
			contents = append(contents, genai.NewContentFromText(t, genai.RoleUser))
		}

		resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
			OutputDimensionality: genai.Ptr(int32(e.dim)),
		})
		if err != nil {
			return nil, mapError(err)
		}
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("gemini returned %d embeddings for %d texts", len(resp.Embeddings), end-start)
		}

		for _, emb := range resp.Embeddings {
			vectors = append(vectors, emb.Values)
		}
	}

	return vectors, nil
}

// mapError classifies provider errors; quota rejections become entity.ErrRateLimited
func mapError(err error) error {
	if code, ok := statusCode(err); ok {
		if code == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %w", entity.ErrRateLimited, err)
		}
		return fmt.Errorf("%w: gemini status %d: %w", entity.ErrGeneration, code, err)
	}
	return fmt.Errorf("%w: %w", entity.ErrGeneration, err)
}

func statusCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, true
	}
	return 0, false
}
