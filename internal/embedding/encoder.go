package embedding

import (
	"context"
	"fmt"

	"github.com/futig/docqa-backend/internal/entity"
)

// Encoder embeds texts through a lazily loaded Embedder
type Encoder struct {
	loader *Loader
}

func NewEncoder(loader *Loader) *Encoder {
	return &Encoder{loader: loader}
}

// Encode embeds texts, returning one vector per text in input order.
// Vectors are L2-normalised when normalize is set.
func (e *Encoder) Encode(ctx context.Context, texts []string, normalize bool) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	embedder, err := e.loader.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	vectors, err := embedder.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed %d texts with %s: %w", len(texts), embedder.Name(), err)
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedder %s returned %d vectors for %d texts", embedder.Name(), len(vectors), len(texts))
	}

	dim := embedder.Dimension()
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d values, expected %d", entity.ErrDimensionMismatch, i, len(v), dim)
		}
		if normalize {
			Normalize(v)
		}
	}

	return vectors, nil
}

// Dimension returns the dimension of the underlying embedder, loading it if needed
func (e *Encoder) Dimension(ctx context.Context) (int, error) {
	embedder, err := e.loader.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	return embedder.Dimension(), nil
}
