// Package formatter renders plain text into the binary document formats the
// service ingests. It backs the mock document source and test fixtures.
package formatter

import (
	"fmt"

	"github.com/futig/docqa-backend/internal/entity"
)

type Formatter interface {
	// Format renders paragraphs under title. Each paragraph becomes its own block.
	Format(title string, paragraphs []string) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(docType entity.DocumentType) (Formatter, error) {
	switch docType {
	case entity.DocumentTypeDOCX:
		return NewDOCXFormatter(), nil
	case entity.DocumentTypePDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedType, docType)
	}
}
