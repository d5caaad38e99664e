package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/futig/docqa-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type ClientConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(cfg ClientConfig) *goopenai.Client {
	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}
	return goopenai.NewClientWithConfig(clientCfg)
}

// Generator answers prompts with a chat completion model
type Generator struct {
	client  *goopenai.Client
	model   string
	timeout time.Duration
}

func NewGenerator(client *goopenai.Client, model string, timeout time.Duration) *Generator {
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

	ctxzap.Debug(ctx, "generating answer via openai", zap.String("model", g.model), zap.Int("prompt_length", len(prompt)))

	temperature := cfg.Temperature
	if temperature == 0 {
		// zero is dropped by omitempty and the API would default to 1.0
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := g.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: g.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
		MaxTokens:   int(cfg.MaxOutputTokens),
		N:           int(cfg.CandidateCount),
	})
	if err != nil {
		return "", mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", entity.ErrGeneration)
	}

	return resp.Choices[0].Message.Content, nil
}

// Embedder embeds texts with an OpenAI-compatible embeddings endpoint
type Embedder struct {
	client *goopenai.Client
	model  string
	dim    int
}

func NewEmbedder(client *goopenai.Client, model string, dim int) *Embedder {
	return &Embedder{
		client: client,
		model:  model,
		dim:    dim,
	}
}

func (e *Embedder) Name() string { return "openai:" + e.model }

func (e *Embedder) Dimension() int { return e.dim }

func (e *Embedder) EmbedStrings(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Input:      texts,
		Model:      goopenai.EmbeddingModel(e.model),
		Dimensions: e.dim,
	})
	if err != nil {
		return nil, mapError(err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai returned %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	// the API reports positions explicitly; do not rely on response order
	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return vectors, nil
}

func mapError(err error) error {
	if code, ok := statusCode(err); ok {
		if code == http.StatusTooManyRequests {
			return fmt.Errorf("%w: %w", entity.ErrRateLimited, err)
		}
		return fmt.Errorf("%w: openai status %d: %w", entity.ErrGeneration, code, err)
	}
	return fmt.Errorf("%w: %w", entity.ErrGeneration, err)
}

func statusCode(err error) (int, bool) {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode, true
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode, true
	}
	return 0, false
}
