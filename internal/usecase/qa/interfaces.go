package qa

import (
	"context"
	"time"

	"github.com/futig/docqa-backend/internal/entity"
)

type DocumentDownloader interface {
	Download(ctx context.Context, url string) (*entity.Document, error)
}

type TextExtractor interface {
	Extract(ctx context.Context, doc *entity.Document) (string, error)
}

type Chunker interface {
	Chunk(text string, meta entity.ChunkMetadata) []entity.Chunk
}

// Encoder embeds chunks and queries
type Encoder interface {
	Encode(ctx context.Context, texts []string, normalize bool) ([][]float32, error)
	Dimension(ctx context.Context) (int, error)
}

type AnswerSynthesizer interface {
	Answer(ctx context.Context, question string, matches []entity.RetrievalMatch) string
}

type Metrics interface {
	ObserveStage(stage string, took time.Duration)
	ObserveIndexed(chunks int)
	RunFinished(err error)
}
