package vectorstore

import (
	"errors"
	"testing"

	"github.com/futig/docqa-backend/internal/entity"
)

func TestFlatL2_SearchOrderAndPadding(t *testing.T) {
	ix := NewFlatL2(2)
	if err := ix.Add([][]float32{{0, 0}, {3, 0}, {1, 0}}); err != nil {
		t.Fatalf("add: %v", err)
	}

	distances, labels, err := ix.Search([]float32{0.9, 0}, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	wantLabels := []int{2, 0, 1, NotFound, NotFound}
	for i, want := range wantLabels {
		if labels[i] != want {
			t.Errorf("label %d: expected %d, got %d", i, want, labels[i])
		}
	}
	for i := 1; i < 3; i++ {
		if distances[i] < distances[i-1] {
			t.Errorf("distances not ascending: %v", distances)
		}
	}
	if d := distances[0]; d < 0.0099 || d > 0.0101 {
		t.Errorf("expected squared distance 0.01, got %v", d)
	}
}

func TestFlatL2_DimensionChecks(t *testing.T) {
	ix := NewFlatL2(3)

	if err := ix.Add([][]float32{{1, 2}}); !errors.Is(err, entity.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch on add, got %v", err)
	}
	if ix.Count() != 0 {
		t.Errorf("rejected add must not store anything, count=%d", ix.Count())
	}
	if _, _, err := ix.Search([]float32{1}, 1); !errors.Is(err, entity.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch on search, got %v", err)
	}
}

func TestFlatL2_Reset(t *testing.T) {
	ix := NewFlatL2(1)
	_ = ix.Add([][]float32{{1}, {2}})
	ix.Reset()
	if ix.Count() != 0 {
		t.Errorf("expected empty index after reset, got %d", ix.Count())
	}
}
