package document

import (
	"context"
	"fmt"

	"github.com/futig/docqa-backend/internal/entity"
	"github.com/futig/docqa-backend/internal/pkg/formatter"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const mockTitle = "Sample Home Appliance Warranty"

var mockParagraphs = []string{
	"This warranty covers manufacturing defects in materials and workmanship. " +
		"The warranty period is 24 months from the date of purchase.",
	"Damage caused by misuse, accidents or unauthorised repairs is not covered. " +
		"Consumable parts such as filters and bulbs are excluded from this warranty.",
	"To make a claim, contact customer support with proof of purchase. " +
		"Claims must be filed within thirty days of discovering the defect.",
	"Returns are accepted within 14 days of delivery for a full refund. " +
		"Returned items must be unused and in their original packaging.",
}

// MockConnector renders a fixed sample document instead of downloading.
// DOCX rendering needs a unidoc license; without one DOCX URLs are served as PDF.
type MockConnector struct {
	formatters  *formatter.Factory
	docxEnabled bool
	logger      *zap.Logger
}

func NewMockConnector(docxEnabled bool, logger *zap.Logger) *MockConnector {
	return &MockConnector{
		formatters:  formatter.NewFactory(),
		docxEnabled: docxEnabled,
		logger:      logger,
	}
}

func (m *MockConnector) Download(ctx context.Context, url string) (*entity.Document, error) {
	ctxzap.Info(ctx, "[MOCK] downloading document", zap.String("url", url))

	docType := entity.DocumentTypeFromURL(url)
	if docType == entity.DocumentTypeDOCX && !m.docxEnabled {
		ctxzap.Warn(ctx, "[MOCK] no DOCX license configured, rendering PDF instead")
		docType = entity.DocumentTypePDF
	}
	f, err := m.formatters.Create(docType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrDownload, err)
	}

	content, err := f.Format(mockTitle, mockParagraphs)
	if err != nil {
		return nil, fmt.Errorf("%w: render mock document: %w", entity.ErrDownload, err)
	}

	ctxzap.Info(ctx, "[MOCK] document downloaded",
		zap.String("type", string(docType)),
		zap.Int("size_bytes", len(content)),
	)

	return &entity.Document{
		Source:  url,
		Type:    docType,
		Content: content,
	}, nil
}
