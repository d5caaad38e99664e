// Package vectorstore holds the in-memory similarity index of the document
// currently being answered, together with the chunk records it points at.
package vectorstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/futig/docqa-backend/internal/entity"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const DefaultBatchSize = 8

// Encoder embeds texts, optionally L2-normalising the result
type Encoder interface {
	Encode(ctx context.Context, texts []string, normalize bool) ([][]float32, error)
	Dimension(ctx context.Context) (int, error)
}

// Record is the document-store entry at the same position as its vector
type Record struct {
	Content  string
	Metadata entity.ChunkMetadata
}

// Stats describes the live generation
type Stats struct {
	Generation string
	Count      int
	Dimension  int
}

type generation struct {
	id    string
	index *FlatL2
	docs  []Record
}

// Store owns exactly one generation of indexed chunks. ResetAndIndex
// replaces it wholesale; searches only ever see a fully built generation
// or an empty one.
type Store struct {
	encoder   Encoder
	batchSize int

	// writeMu serialises ResetAndIndex calls
	writeMu sync.Mutex

	mu   sync.RWMutex
	live *generation
}

func NewStore(encoder Encoder, batchSize int) *Store {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Store{
		encoder:   encoder,
		batchSize: batchSize,
	}
}

// ResetAndIndex discards the current generation and indexes chunks as the
// new one. Chunks are embedded in fixed-size batches to bound peak memory.
// If any batch fails the store is left empty.
func (s *Store) ResetAndIndex(ctx context.Context, chunks []entity.Chunk) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.publish(nil)

	if len(chunks) == 0 {
		ctxzap.Info(ctx, "no chunks to index, index left empty")
		return nil
	}

	dim, err := s.encoder.Dimension(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", entity.ErrIndexing, err)
	}

	staged := &generation{
		id:    uuid.New().String(),
		index: NewFlatL2(dim),
		docs:  make([]Record, 0, len(chunks)),
	}

	ctxzap.Info(ctx, "generating embeddings for chunks",
		zap.Int("chunk_count", len(chunks)),
		zap.Int("batch_size", s.batchSize),
		zap.String("generation", staged.id),
	)
	start := time.Now()

	for i := 0; i < len(chunks); i += s.batchSize {
		end := min(i+s.batchSize, len(chunks))
		batch := chunks[i:end]

		texts := make([]string, len(batch))
		for j, c := range batch {
			texts[j] = c.Content
		}

		vectors, err := s.encoder.Encode(ctx, texts, true)
		if err != nil {
			return fmt.Errorf("%w: batch %d-%d: %w", entity.ErrIndexing, i, end, err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("%w: batch %d-%d: got %d vectors for %d chunks", entity.ErrIndexing, i, end, len(vectors), len(batch))
		}
		if err := staged.index.Add(vectors); err != nil {
			return fmt.Errorf("%w: batch %d-%d: %w", entity.ErrIndexing, i, end, err)
		}
		for _, c := range batch {
			staged.docs = append(staged.docs, Record{Content: c.Content, Metadata: c.Metadata})
		}
	}

	if staged.index.Count() != len(staged.docs) {
		return fmt.Errorf("%w: index holds %d vectors but store holds %d records", entity.ErrIndexing, staged.index.Count(), len(staged.docs))
	}

	s.publish(staged)

	ctxzap.Info(ctx, "embedded and indexed chunks",
		zap.Int("indexed", staged.index.Count()),
		zap.String("generation", staged.id),
		zap.Duration("took", time.Since(start)),
	)

	return nil
}

// Query returns up to k records nearest to vector, closest first, with
// their squared L2 distances. NotFound slots are dropped.
func (s *Store) Query(vector []float32, k int) ([]entity.RetrievalMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.live == nil || s.live.index.Count() == 0 || k <= 0 {
		return nil, nil
	}

	k = min(k, s.live.index.Count())
	distances, labels, err := s.live.index.Search(vector, k)
	if err != nil {
		return nil, err
	}

	matches := make([]entity.RetrievalMatch, 0, len(labels))
	for i, label := range labels {
		if label == NotFound || label >= len(s.live.docs) {
			continue
		}
		matches = append(matches, entity.RetrievalMatch{
			Content:         s.live.docs[label].Content,
			SimilarityScore: distances[i],
		})
	}
	return matches, nil
}

// Count returns the number of indexed vectors in the live generation
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.live == nil {
		return 0
	}
	return s.live.index.Count()
}

// Records returns a copy of the document store in index order
func (s *Store) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.live == nil {
		return nil
	}
	return append([]Record(nil), s.live.docs...)
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.live == nil {
		return Stats{}
	}
	return Stats{
		Generation: s.live.id,
		Count:      s.live.index.Count(),
		Dimension:  s.live.index.Dimension(),
	}
}

func (s *Store) publish(g *generation) {
	s.mu.Lock()
	s.live = g
	s.mu.Unlock()
}
