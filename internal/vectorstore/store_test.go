package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/futig/docqa-backend/internal/embedding"
	"github.com/futig/docqa-backend/internal/entity"
)

type stubEncoder struct {
	dim       int
	batches   []int
	failAfter int // fail on this batch number (1-based), 0 means never
}

func (s *stubEncoder) Dimension(context.Context) (int, error) { return s.dim, nil }

func (s *stubEncoder) Encode(_ context.Context, texts []string, _ bool) ([][]float32, error) {
	s.batches = append(s.batches, len(texts))
	if s.failAfter > 0 && len(s.batches) == s.failAfter {
		return nil, errors.New("embedding backend unavailable")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, s.dim)
		out[i][0] = 1
	}
	return out, nil
}

func makeChunks(prefix string, n int) []entity.Chunk {
	chunks := make([]entity.Chunk, n)
	for i := range chunks {
		chunks[i] = entity.Chunk{
			Content:  fmt.Sprintf("%s passage number %d about coverage", prefix, i),
			Metadata: entity.ChunkMetadata{ChunkID: i, Source: prefix},
		}
	}
	return chunks
}

func hashEncoder() *embedding.Encoder {
	return embedding.NewEncoder(embedding.NewLoader(func(context.Context) (embedding.Embedder, error) {
		return embedding.NewHashEmbedder(128), nil
	}))
}

func TestStore_ResetAndIndexBatches(t *testing.T) {
	enc := &stubEncoder{dim: 4}
	s := NewStore(enc, 8)

	if err := s.ResetAndIndex(context.Background(), makeChunks("doc", 19)); err != nil {
		t.Fatalf("index: %v", err)
	}

	want := []int{8, 8, 3}
	if len(enc.batches) != len(want) {
		t.Fatalf("expected batches %v, got %v", want, enc.batches)
	}
	for i := range want {
		if enc.batches[i] != want[i] {
			t.Errorf("batch %d: expected %d, got %d", i, want[i], enc.batches[i])
		}
	}

	records := s.Records()
	if s.Count() != len(records) || s.Count() != 19 {
		t.Fatalf("index/store mismatch: count=%d records=%d", s.Count(), len(records))
	}
	for i, r := range records {
		if r.Metadata.ChunkID != i {
			t.Errorf("record %d has chunk id %d", i, r.Metadata.ChunkID)
		}
	}
	if st := s.Stats(); st.Generation == "" || st.Dimension != 4 || st.Count != 19 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestStore_EmptyChunksLeavesIndexEmpty(t *testing.T) {
	enc := &stubEncoder{dim: 4}
	s := NewStore(enc, 8)
	_ = s.ResetAndIndex(context.Background(), makeChunks("old", 3))

	if err := s.ResetAndIndex(context.Background(), nil); err != nil {
		t.Fatalf("index: %v", err)
	}
	if s.Count() != 0 || len(s.Records()) != 0 {
		t.Errorf("expected empty store, count=%d", s.Count())
	}
}

func TestStore_FailedBatchLeavesStoreCleared(t *testing.T) {
	enc := &stubEncoder{dim: 4}
	s := NewStore(enc, 2)
	if err := s.ResetAndIndex(context.Background(), makeChunks("old", 4)); err != nil {
		t.Fatalf("index: %v", err)
	}

	enc.batches = nil
	enc.failAfter = 2
	err := s.ResetAndIndex(context.Background(), makeChunks("new", 6))
	if !errors.Is(err, entity.ErrIndexing) {
		t.Fatalf("expected ErrIndexing, got %v", err)
	}

	if s.Count() != 0 || len(s.Records()) != 0 {
		t.Errorf("expected cleared store after failure, count=%d records=%d", s.Count(), len(s.Records()))
	}
}

func TestStore_BatchSizeHasNoSemanticEffect(t *testing.T) {
	chunks := makeChunks("doc", 13)
	query := "passage number 7 about coverage"

	var results [][]entity.RetrievalMatch
	for _, batch := range []int{1, 8, 100} {
		enc := hashEncoder()
		s := NewStore(enc, batch)
		if err := s.ResetAndIndex(context.Background(), chunks); err != nil {
			t.Fatalf("index with batch %d: %v", batch, err)
		}
		q, err := enc.Encode(context.Background(), []string{query}, true)
		if err != nil {
			t.Fatalf("encode query: %v", err)
		}
		matches, err := s.Query(q[0], 5)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		results = append(results, matches)
	}

	for i := 1; i < len(results); i++ {
		if len(results[i]) != len(results[0]) {
			t.Fatalf("result sizes differ: %d vs %d", len(results[i]), len(results[0]))
		}
		for j := range results[0] {
			if results[i][j] != results[0][j] {
				t.Errorf("result %d differs for batch variant %d: %+v vs %+v", j, i, results[i][j], results[0][j])
			}
		}
	}
}

func TestStore_SecondResetReplacesFirst(t *testing.T) {
	enc := hashEncoder()
	s := NewStore(enc, 8)
	ctx := context.Background()

	if err := s.ResetAndIndex(ctx, makeChunks("alpha", 5)); err != nil {
		t.Fatalf("first index: %v", err)
	}
	if err := s.ResetAndIndex(ctx, makeChunks("beta", 3)); err != nil {
		t.Fatalf("second index: %v", err)
	}

	q, _ := enc.Encode(ctx, []string{"alpha passage number 1 about coverage"}, true)
	matches, err := s.Query(q[0], 10)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches from second generation, got %d", len(matches))
	}
	for _, m := range matches {
		if strings.HasPrefix(m.Content, "alpha") {
			t.Errorf("first generation content leaked: %q", m.Content)
		}
	}
}
