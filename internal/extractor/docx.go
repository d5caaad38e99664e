package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/unidoc/unioffice/document"
)

type DOCXExtractor struct{}

func NewDOCXExtractor() *DOCXExtractor {
	return &DOCXExtractor{}
}

// Extract returns the non-blank paragraphs of the document body, one per line
func (e *DOCXExtractor) Extract(content []byte) (string, error) {
	doc, err := document.Read(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	defer doc.Close()

	var paragraphs []string
	for _, p := range doc.Paragraphs() {
		var b strings.Builder
		for _, r := range p.Runs() {
			b.WriteString(r.Text())
		}
		if text := b.String(); strings.TrimSpace(text) != "" {
			paragraphs = append(paragraphs, text)
		}
	}

	return strings.Join(paragraphs, "\n"), nil
}
