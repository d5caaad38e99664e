package retriever

import (
	"context"
	"fmt"

	"github.com/futig/docqa-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const DefaultTopK = 8

// QueryEncoder embeds query texts
type QueryEncoder interface {
	Encode(ctx context.Context, texts []string, normalize bool) ([][]float32, error)
}

// Index is the searchable side of a vector store
type Index interface {
	Count() int
	Query(vector []float32, k int) ([]entity.RetrievalMatch, error)
}

// Retriever finds the chunks of an indexed document closest to a question
type Retriever struct {
	encoder QueryEncoder
	index   Index
}

func New(encoder QueryEncoder, index Index) *Retriever {
	return &Retriever{
		encoder: encoder,
		index:   index,
	}
}

// Search returns at most topK matches ordered best first.
// An empty index yields no matches without embedding the query.
func (r *Retriever) Search(ctx context.Context, query string, topK int) ([]entity.RetrievalMatch, error) {
	if topK <= 0 || r.index.Count() == 0 {
		ctxzap.Debug(ctx, "retrieval skipped", zap.Int("top_k", topK), zap.Int("indexed", r.index.Count()))
		return []entity.RetrievalMatch{}, nil
	}

	vectors, err := r.encoder.Encode(ctx, []string{query}, true)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(vectors))
	}

	matches, err := r.index.Query(vectors[0], topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	if matches == nil {
		matches = []entity.RetrievalMatch{}
	}

	ctxzap.Debug(ctx, "retrieved chunks", zap.Int("top_k", topK), zap.Int("found", len(matches)))
	return matches, nil
}
