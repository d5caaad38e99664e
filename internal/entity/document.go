package entity

import (
	"net/url"
	"strings"
)

type DocumentType string

const (
	DocumentTypePDF  DocumentType = "pdf"
	DocumentTypeDOCX DocumentType = "docx"
)

func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypePDF, DocumentTypeDOCX:
		return true
	default:
		return false
	}
}

// DocumentTypeFromURL infers the document type from the URL path suffix.
// Anything that is not recognisably a .docx is treated as a PDF.
func DocumentTypeFromURL(rawURL string) DocumentType {
	path := rawURL
	if parsed, err := url.Parse(rawURL); err == nil {
		path = parsed.Path
	}

	path = strings.ToLower(path)
	switch {
	case strings.HasSuffix(path, ".pdf"):
		return DocumentTypePDF
	case strings.HasSuffix(path, ".docx"):
		return DocumentTypeDOCX
	default:
		return DocumentTypePDF
	}
}

// Document is downloaded document content with its declared type
type Document struct {
	Source  string
	Type    DocumentType
	Content []byte
}
