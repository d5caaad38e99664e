package formatter

import (
	"bytes"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// core font, no TTF file needed; limited to cp1252 text
	pdfFontName = "Helvetica"
)

type PDFFormatter struct {
	// pageBreak puts every paragraph on its own page
	pageBreak bool
}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{}
}

// NewPagedPDFFormatter returns a formatter that starts a new page for each paragraph
func NewPagedPDFFormatter() *PDFFormatter {
	return &PDFFormatter{pageBreak: true}
}

func (mf *PDFFormatter) Format(title string, paragraphs []string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	if title != "" {
		pdf.SetFont(pdfFontName, "B", 20)
		pdf.Cell(0, 10, tr(title))
		pdf.Ln(12)
	}

	pdf.SetFont(pdfFontName, "", 12)
	_, lineHeight := pdf.GetFontSize()
	for i, text := range paragraphs {
		if mf.pageBreak && i > 0 {
			pdf.AddPage()
		}
		pdf.MultiCell(0, lineHeight*1.5, tr(text), "", "", false)
		pdf.Ln(lineHeight)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (mf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
