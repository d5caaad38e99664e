// Package extractor pulls plain text out of downloaded documents.
package extractor

import (
	"context"
	"fmt"

	"github.com/futig/docqa-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// TextExtractor extracts text from one document format
type TextExtractor interface {
	Extract(content []byte) (string, error)
}

// Registry dispatches extraction on the document type
type Registry struct {
	extractors map[entity.DocumentType]TextExtractor
}

func NewRegistry() *Registry {
	return &Registry{
		extractors: map[entity.DocumentType]TextExtractor{
			entity.DocumentTypePDF:  NewPDFExtractor(),
			entity.DocumentTypeDOCX: NewDOCXExtractor(),
		},
	}
}

// Register adds or replaces the extractor for a type
func (r *Registry) Register(docType entity.DocumentType, e TextExtractor) {
	r.extractors[docType] = e
}

func (r *Registry) Extract(ctx context.Context, doc *entity.Document) (string, error) {
	e, ok := r.extractors[doc.Type]
	if !ok {
		return "", fmt.Errorf("%w: %q", entity.ErrUnsupportedType, doc.Type)
	}

	text, err := e.Extract(doc.Content)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", entity.ErrExtraction, doc.Type, err)
	}

	ctxzap.Info(ctx, "text extracted",
		zap.String("type", string(doc.Type)),
		zap.Int("text_length", len(text)),
	)

	return text, nil
}
