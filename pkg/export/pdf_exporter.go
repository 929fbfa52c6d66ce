package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Section groups a titled table with optional trailing note lines, used for
// per-category blocks in grade reports.
type Section struct {
	Title   string
	Table   Dataset
	Notes   []string
	Alerts  []string
	Summary []string
}

// PDFExporter renders datasets into a basic tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with an optional title and table body.
func (e *PDFExporter) Render(data Dataset, title string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		e.writeTitle(pdf, title)
	}
	e.writeTable(pdf, data)

	return e.output(pdf)
}

// RenderSections creates a multi-section PDF document, one block per section,
// suitable for individual grade reports.
func (e *PDFExporter) RenderSections(title string, sections []Section) ([]byte, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("pdf requires at least one section")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		e.writeTitle(pdf, title)
	}

	for _, section := range sections {
		if section.Title != "" {
			pdf.SetFont("Arial", "B", 11)
			pdf.CellFormat(0, 8, section.Title, "", 1, "L", false, 0, "")
		}
		if len(section.Table.Headers) > 0 {
			e.writeTable(pdf, section.Table)
		}
		pdf.SetFont("Arial", "", 9)
		for _, note := range section.Notes {
			pdf.CellFormat(0, 6, note, "", 1, "L", false, 0, "")
		}
		for _, line := range section.Summary {
			pdf.SetFont("Arial", "B", 9)
			pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
		}
		if len(section.Alerts) > 0 {
			pdf.SetFont("Arial", "B", 9)
			pdf.SetTextColor(200, 0, 0)
			for _, alert := range section.Alerts {
				pdf.CellFormat(0, 6, "! "+alert, "", 1, "L", false, 0, "")
			}
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.Ln(4)
	}

	return e.output(pdf)
}

func (e *PDFExporter) writeTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
	pdf.Ln(5)
}

func (e *PDFExporter) writeTable(pdf *gofpdf.Fpdf, data Dataset) {
	pdf.SetFont("Arial", "B", 10)
	colWidth := 190.0 / float64(len(data.Headers))
	for _, header := range data.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range data.Rows {
		for _, header := range data.Headers {
			pdf.CellFormat(colWidth, 7, row[header], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func (e *PDFExporter) output(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
