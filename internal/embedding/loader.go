package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/futig/docqa-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Loader holds a single Embedder that is built on first Acquire.
// A failed build is reported to the caller and attempted again on the
// next Acquire.
type Loader struct {
	factory Factory

	mu       sync.Mutex
	embedder Embedder
}

func NewLoader(factory Factory) *Loader {
	return &Loader{factory: factory}
}

// Acquire returns the loaded Embedder, constructing it if necessary
func (l *Loader) Acquire(ctx context.Context) (Embedder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.embedder != nil {
		return l.embedder, nil
	}

	ctxzap.Info(ctx, "lazily loading embedding model")
	start := time.Now()

	embedder, err := l.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrEmbedderInit, err)
	}

	ctxzap.Info(ctx, "embedding model loaded",
		zap.String("embedder", embedder.Name()),
		zap.Int("dimension", embedder.Dimension()),
		zap.Duration("took", time.Since(start)),
	)

	l.embedder = embedder
	return embedder, nil
}
