package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// Field is a labelled value printed above the tables of a document.
type Field struct {
	Label string
	Value string
}

// Table is a titled dataset inside a document.
type Table struct {
	Title string
	Data  Dataset
}

// Document describes a printable report.
type Document struct {
	Title    string
	Subtitle string
	Fields   []Field
	Tables   []Table
}

// PDFExporter renders documents into landscape A4 PDFs.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

const (
	pageWidth   = 277.0
	labelWidth  = 70.0
	fieldHeight = 6.0
	cellHeight  = 6.0
)

// Render creates the PDF document.
func (e *PDFExporter) Render(doc Document) ([]byte, error) {
	if doc.Title == "" && len(doc.Fields) == 0 && len(doc.Tables) == 0 {
		return nil, fmt.Errorf("pdf requires content")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	if doc.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "C", false, 0, "")
	}
	if doc.Subtitle != "" {
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(0, 6, tr(doc.Subtitle), "", 1, "C", false, 0, "")
	}
	pdf.Ln(3)

	for _, f := range doc.Fields {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(labelWidth, fieldHeight, tr(f.Label), "", 0, "", false, 0, "")
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(pageWidth-labelWidth, fieldHeight, tr(valueOrDash(f.Value)), "", "", false)
	}

	for _, t := range doc.Tables {
		pdf.Ln(4)
		if t.Title != "" {
			pdf.SetFont("Arial", "B", 11)
			pdf.CellFormat(0, 8, tr(t.Title), "", 1, "", false, 0, "")
		}
		if len(t.Data.Headers) == 0 {
			continue
		}
		colWidth := pageWidth / float64(len(t.Data.Headers))
		pdf.SetFont("Arial", "B", 8)
		pdf.SetFillColor(230, 230, 230)
		for _, header := range t.Data.Headers {
			pdf.CellFormat(colWidth, cellHeight+1, tr(header), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 8)
		for _, row := range t.Data.Rows {
			for _, header := range t.Data.Headers {
				pdf.CellFormat(colWidth, cellHeight, tr(truncate(row[header], colWidth)), "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func valueOrDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

// truncate keeps table cells on a single line; roughly two characters fit per millimetre at 8pt.
func truncate(v string, width float64) string {
	limit := int(width / 2)
	runes := []rune(v)
	if limit < 4 || len(runes) <= limit {
		return v
	}
	return string(runes[:limit-3]) + "..."
}
