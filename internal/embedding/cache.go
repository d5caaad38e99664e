package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Cache stores vectors by key. GetMany returns a slice aligned with keys
// where a nil entry marks a miss.
type Cache interface {
	GetMany(ctx context.Context, keys []string) ([][]float32, error)
	SetMany(ctx context.Context, keys []string, vectors [][]float32) error
}

// CachedEmbedder serves repeated texts from a Cache and forwards only
// the misses to the wrapped Embedder, in a single call.
type CachedEmbedder struct {
	next  Embedder
	cache Cache
}

func NewCachedEmbedder(next Embedder, cache Cache) *CachedEmbedder {
	return &CachedEmbedder{next: next, cache: cache}
}

func (e *CachedEmbedder) Name() string { return e.next.Name() + "+cache" }

func (e *CachedEmbedder) Dimension() int { return e.next.Dimension() }

func (e *CachedEmbedder) EmbedStrings(ctx context.Context, texts []string) ([][]float32, error) {
	keys := make([]string, len(texts))
	for i, text := range texts {
		keys[i] = e.key(text)
	}

	vectors, err := e.cache.GetMany(ctx, keys)
	if err != nil || len(vectors) != len(texts) {
		ctxzap.Warn(ctx, "embedding cache lookup failed, embedding everything", zap.Error(err))
		vectors = make([][]float32, len(texts))
	}

	var (
		missTexts []string
		missIdx   []int
	)
	for i, v := range vectors {
		if v == nil {
			missTexts = append(missTexts, texts[i])
			missIdx = append(missIdx, i)
		}
	}

	ctxzap.Debug(ctx, "embedding cache lookup",
		zap.Int("requested", len(texts)),
		zap.Int("misses", len(missTexts)),
	)

	if len(missTexts) == 0 {
		return vectors, nil
	}

	fresh, err := e.next.EmbedStrings(ctx, missTexts)
	if err != nil {
		return nil, err
	}

	missKeys := make([]string, len(missIdx))
	for j, i := range missIdx {
		if j < len(fresh) {
			vectors[i] = fresh[j]
		}
		missKeys[j] = keys[i]
	}

	if len(fresh) == len(missTexts) {
		if err := e.cache.SetMany(ctx, missKeys, fresh); err != nil {
			ctxzap.Warn(ctx, "failed to store embeddings in cache", zap.Error(err))
		}
	}

	return vectors, nil
}

func (e *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(e.next.Name() + "\x00" + text))
	return "emb:" + hex.EncodeToString(sum[:])
}
