package embedding

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/futig/docqa-backend/internal/entity"
)

type stubEmbedder struct {
	dim    int
	calls  atomic.Int32
	inputs [][]string
	mu     sync.Mutex
	err    error
	vector func(text string) []float32
}

func (s *stubEmbedder) Name() string   { return "stub" }
func (s *stubEmbedder) Dimension() int { return s.dim }

func (s *stubEmbedder) EmbedStrings(_ context.Context, texts []string) ([][]float32, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.inputs = append(s.inputs, append([]string(nil), texts...))
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if s.vector != nil {
			out[i] = s.vector(text)
			continue
		}
		v := make([]float32, s.dim)
		v[0] = float32(len(text))
		out[i] = v
	}
	return out, nil
}

func TestLoader_BuildsOnce(t *testing.T) {
	var builds atomic.Int32
	loader := NewLoader(func(ctx context.Context) (Embedder, error) {
		builds.Add(1)
		return NewHashEmbedder(16), nil
	})

	if n := builds.Load(); n != 0 {
		t.Fatalf("loader must not build before first use, got %d builds", n)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := loader.Acquire(context.Background()); err != nil {
				t.Errorf("acquire: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := builds.Load(); n != 1 {
		t.Errorf("expected exactly one build, got %d", n)
	}
}

func TestLoader_InitFailure(t *testing.T) {
	attempts := 0
	loader := NewLoader(func(ctx context.Context) (Embedder, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("model files missing")
		}
		return NewHashEmbedder(8), nil
	})

	_, err := loader.Acquire(context.Background())
	if !errors.Is(err, entity.ErrEmbedderInit) {
		t.Fatalf("expected ErrEmbedderInit, got %v", err)
	}

	if _, err := loader.Acquire(context.Background()); err != nil {
		t.Fatalf("expected second acquire to succeed, got %v", err)
	}
}

func TestEncoder_Normalizes(t *testing.T) {
	stub := &stubEmbedder{dim: 2, vector: func(string) []float32 { return []float32{3, 4} }}
	enc := NewEncoder(NewLoader(func(context.Context) (Embedder, error) { return stub, nil }))

	vectors, err := enc.Encode(context.Background(), []string{"a", "b"}, true)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	for _, v := range vectors {
		if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
			t.Errorf("expected unit vector (0.6, 0.8), got %v", v)
		}
	}

	raw, err := enc.Encode(context.Background(), []string{"a"}, false)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if raw[0][0] != 3 || raw[0][1] != 4 {
		t.Errorf("expected raw vector, got %v", raw[0])
	}
}

func TestEncoder_DimensionMismatch(t *testing.T) {
	stub := &stubEmbedder{dim: 4, vector: func(string) []float32 { return []float32{1, 2} }}
	enc := NewEncoder(NewLoader(func(context.Context) (Embedder, error) { return stub, nil }))

	_, err := enc.Encode(context.Background(), []string{"a"}, true)
	if !errors.Is(err, entity.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestEncoder_EmptyInputSkipsLoading(t *testing.T) {
	loader := NewLoader(func(context.Context) (Embedder, error) {
		t.Fatal("factory must not be called")
		return nil, nil
	})

	vectors, err := NewEncoder(loader).Encode(context.Background(), nil, true)
	if err != nil || vectors != nil {
		t.Fatalf("expected nil, nil; got %v, %v", vectors, err)
	}
}

func TestNormalize_ZeroVector(t *testing.T) {
	v := []float32{0, 0, 0}
	Normalize(v)
	for _, x := range v {
		if x != 0 {
			t.Fatalf("zero vector changed: %v", v)
		}
	}
}

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder(64)
	a, _ := e.EmbedStrings(context.Background(), []string{"The warranty lasts 2 years."})
	b, _ := e.EmbedStrings(context.Background(), []string{"the WARRANTY lasts 2 years"})

	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("expected identical vectors for same tokens at %d", i)
		}
	}
}

func TestCachedEmbedder_ServesRepeats(t *testing.T) {
	stub := &stubEmbedder{dim: 3}
	cached := NewCachedEmbedder(stub, NewMemoryCache(time.Minute))
	ctx := context.Background()

	first, err := cached.EmbedStrings(ctx, []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}

	second, err := cached.EmbedStrings(ctx, []string{"beta", "gamma", "alpha"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}

	if stub.calls.Load() != 2 {
		t.Fatalf("expected 2 backend calls, got %d", stub.calls.Load())
	}
	if got := stub.inputs[1]; len(got) != 1 || got[0] != "gamma" {
		t.Errorf("expected only the miss to be embedded, got %v", got)
	}
	if second[0][0] != first[1][0] || second[2][0] != first[0][0] {
		t.Errorf("cached vectors misaligned: first=%v second=%v", first, second)
	}
	if second[1][0] != float32(len("gamma")) {
		t.Errorf("unexpected fresh vector %v", second[1])
	}
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()
	_ = c.SetMany(ctx, []string{"k"}, [][]float32{{1, 2}})

	got, _ := c.GetMany(ctx, []string{"k", "missing"})
	got[0][0] = 99

	again, _ := c.GetMany(ctx, []string{"k"})
	if again[0][0] != 1 {
		t.Errorf("stored vector was mutated: %v", again[0])
	}
	if got[1] != nil {
		t.Errorf("expected miss for unknown key, got %v", got[1])
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 item, got %d", c.Len())
	}
}

func TestVectorCodec(t *testing.T) {
	in := []float32{0, -1.5, 3.25, float32(math.Pi)}
	out, err := decodeVector(encodeVector(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("value %d: expected %v, got %v", i, in[i], out[i])
		}
	}

	if _, err := decodeVector([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for truncated payload")
	}
}
