package vectorstore

import (
	"fmt"
	"math"
	"sort"

	"github.com/futig/docqa-backend/internal/entity"
)

// NotFound is the label reported for result slots with no real neighbour
const NotFound = -1

// FlatL2 is an exact nearest-neighbour index over float32 vectors using
// squared Euclidean distance. Vectors are stored contiguously and are
// addressed by insertion order. It is not safe for concurrent mutation.
type FlatL2 struct {
	dim  int
	data []float32
}

func NewFlatL2(dim int) *FlatL2 {
	return &FlatL2{dim: dim}
}

func (ix *FlatL2) Dimension() int { return ix.dim }

// Count returns the number of stored vectors
func (ix *FlatL2) Count() int {
	if ix.dim == 0 {
		return 0
	}
	return len(ix.data) / ix.dim
}

// Add appends vectors; their labels continue from Count()
func (ix *FlatL2) Add(vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != ix.dim {
			return fmt.Errorf("%w: vector %d has %d values, index expects %d", entity.ErrDimensionMismatch, i, len(v), ix.dim)
		}
	}
	for _, v := range vectors {
		ix.data = append(ix.data, v...)
	}
	return nil
}

// Reset drops every stored vector
func (ix *FlatL2) Reset() {
	ix.data = nil
}

// Search returns the k nearest vectors to query, closest first.
// When fewer than k vectors exist the tail is padded with NotFound labels.
func (ix *FlatL2) Search(query []float32, k int) (distances []float32, labels []int, err error) {
	if len(query) != ix.dim {
		return nil, nil, fmt.Errorf("%w: query has %d values, index expects %d", entity.ErrDimensionMismatch, len(query), ix.dim)
	}
	if k <= 0 {
		return nil, nil, nil
	}

	n := ix.Count()
	type hit struct {
		label int
		dist  float32
	}
	hits := make([]hit, n)
	for i := 0; i < n; i++ {
		hits[i] = hit{label: i, dist: squaredL2(query, ix.data[i*ix.dim:(i+1)*ix.dim])}
	}
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].dist < hits[b].dist
	})

	distances = make([]float32, k)
	labels = make([]int, k)
	for i := 0; i < k; i++ {
		if i < n {
			distances[i] = hits[i].dist
			labels[i] = hits[i].label
			continue
		}
		distances[i] = math.MaxFloat32
		labels[i] = NotFound
	}
	return distances, labels, nil
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
