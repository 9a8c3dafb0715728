package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const unicodeFamily = "roster"

// PDFExporter renders datasets into a basic tabular PDF.
type PDFExporter struct {
	fontPath string
}

// NewPDFExporter constructs a PDF exporter. When fontPath names a TrueType
// font it is embedded so non-Latin names render; otherwise the core Arial
// font is used.
func NewPDFExporter(fontPath string) *PDFExporter {
	return &PDFExporter{fontPath: fontPath}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)

	family := "Arial"
	if e.fontPath != "" {
		pdf.AddUTF8Font(unicodeFamily, "", e.fontPath)
		pdf.AddUTF8Font(unicodeFamily, "B", e.fontPath)
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("load pdf font: %w", err)
		}
		family = unicodeFamily
	}
	pdf.AddPage()

	if title != "" {
		pdf.SetFont(family, "B", 14)
		pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont(family, "B", 10)
	colWidth := 190.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(family, "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, row[header], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
