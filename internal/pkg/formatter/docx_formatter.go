package formatter

import (
	"bytes"

	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (mf *DOCXFormatter) Format(title string, paragraphs []string) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	if title != "" {
		titlePar := doc.AddParagraph()
		titlePar.SetStyle("Heading1")
		titlePar.AddRun().AddText(title)

		// blank separator paragraph
		doc.AddParagraph()
	}

	for _, text := range paragraphs {
		doc.AddParagraph().AddRun().AddText(text)
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (mf *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
