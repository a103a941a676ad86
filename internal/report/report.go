// Package report renders a valuation as a downloadable PDF or XLSX document.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/bikeval/internal/domain"
	"github.com/kailas-cloud/bikeval/internal/domain/valuation"
	"github.com/kailas-cloud/bikeval/internal/format"
)

// Format is an export file type.
type Format string

// Supported formats.
const (
	PDF  Format = "pdf"
	XLSX Format = "xlsx"
)

// Sheet names in the XLSX export.
const (
	SummarySheet     = "summary"
	ComparablesSheet = "comparables"
)

// ParseFormat accepts "pdf" or "xlsx" in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case PDF, XLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type for HTTP responses.
func (f Format) ContentType() string {
	if f == PDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Filename builds a download name like "valuation-royal-enfield-classic-350.pdf".
func (f Format) Filename(label string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, label)
	slug = strings.Trim(slug, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	if slug == "" {
		slug = "bike"
	}
	return "valuation-" + slug + "." + string(f)
}

// Build renders v in the requested format.
func Build(f Format, v *valuation.Valuation, generated time.Time) ([]byte, error) {
	switch f {
	case PDF:
		return BuildPDF(v, generated)
	case XLSX:
		return BuildXLSX(v, generated)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, f)
	}
}

// BuildPDF renders a one-page valuation summary with a comparables table.
// Core PDF fonts lack the rupee sign, so amounts use "Rs.".
func BuildPDF(v *valuation.Valuation, generated time.Time) ([]byte, error) {
	money := format.NewMoney(language.English, format.RupeeASCII)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Bike valuation: "+v.Label, true)
	pdf.SetFont("Arial", "B", 14)
	pdf.AddPage()

	pdf.Cell(0, 8, "Used Bike Valuation")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Bike: %s", v.Label))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Category: %s", v.Category))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Year: %d (age %d)", v.Year, v.Features.Age))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Kms driven: %s", money.Number(v.Features.KmsDriven)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Engine: %.0f cc", v.Features.Power))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generated.Format(time.RFC3339)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 6, fmt.Sprintf("Estimated market value: %s", money.Format(v.Estimate)))
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Fair range (%s): %s", v.Profile, money.Range(v.Range)))
	pdf.Ln(8)

	if v.Summary != "" {
		pdf.MultiCell(0, 5, v.Summary, "", "L", false)
		pdf.Ln(4)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(80, 6, "Similar listing", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "City", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Kms", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Price", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	if len(v.Comparables) == 0 {
		pdf.CellFormat(180, 6, "No similar listings in this price band", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
	for i := range v.Comparables {
		l := &v.Comparables[i]
		pdf.CellFormat(80, 6, l.Name(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, l.City(), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, money.Number(l.KmsDriven()), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, money.Format(l.Price()), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildXLSX renders a workbook with a summary sheet and a comparables sheet.
// Amounts are written as numbers so they stay sortable.
func BuildXLSX(v *valuation.Valuation, generated time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(ComparablesSheet); err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	summary := [][2]any{
		{"Bike", v.Label},
		{"Category", v.Category.String()},
		{"Year", v.Year},
		{"Age", v.Features.Age},
		{"Kms driven", v.Features.KmsDriven},
		{"Engine (cc)", v.Features.Power},
		{"Estimate", v.Estimate},
		{"Range low", v.Range.Lower},
		{"Range high", v.Range.Upper},
		{"Profile", v.Profile},
		{"Generated", generated.Format(time.RFC3339)},
	}
	if v.Summary != "" {
		summary = append(summary, [2]any{"Summary", v.Summary})
	}

	_ = f.SetCellValue(SummarySheet, "A1", "Used Bike Valuation")
	for i, kv := range summary {
		row := i + 3
		_ = f.SetCellValue(SummarySheet, fmt.Sprintf("A%d", row), kv[0])
		_ = f.SetCellValue(SummarySheet, fmt.Sprintf("B%d", row), kv[1])
	}

	_ = f.SetCellValue(ComparablesSheet, "A1", "Name")
	_ = f.SetCellValue(ComparablesSheet, "B1", "Brand")
	_ = f.SetCellValue(ComparablesSheet, "C1", "City")
	_ = f.SetCellValue(ComparablesSheet, "D1", "Kms driven")
	_ = f.SetCellValue(ComparablesSheet, "E1", "Power (cc)")
	_ = f.SetCellValue(ComparablesSheet, "F1", "Price")
	for i := range v.Comparables {
		l := &v.Comparables[i]
		row := i + 2
		_ = f.SetCellValue(ComparablesSheet, fmt.Sprintf("A%d", row), l.Name())
		_ = f.SetCellValue(ComparablesSheet, fmt.Sprintf("B%d", row), l.Brand())
		_ = f.SetCellValue(ComparablesSheet, fmt.Sprintf("C%d", row), l.City())
		_ = f.SetCellValue(ComparablesSheet, fmt.Sprintf("D%d", row), l.KmsDriven())
		_ = f.SetCellValue(ComparablesSheet, fmt.Sprintf("E%d", row), l.Power())
		_ = f.SetCellValue(ComparablesSheet, fmt.Sprintf("F%d", row), l.Price())
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
