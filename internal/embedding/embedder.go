// Package embedding turns text into fixed-dimension vectors.
//
// Backends implement Embedder. The Loader defers construction of the
// backend until the first call that needs it, and the Encoder adds
// validation and optional L2 normalisation on top.
package embedding

import (
	"context"
	"math"
)

// Embedder converts texts into vectors positionally aligned with the input
type Embedder interface {
	EmbedStrings(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	Name() string
}

// Factory constructs an Embedder. It is invoked lazily by a Loader.
type Factory func(ctx context.Context) (Embedder, error)

// Normalize scales v to unit L2 length in place. Zero vectors are left as is.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
}
