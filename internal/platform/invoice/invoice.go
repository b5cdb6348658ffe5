// Package invoice renders a billing snapshot into a paginated XLSX artifact.
// Content is sliced into fixed-height vertical bands, one worksheet per
// band, mirroring how the printed invoice is laid out.
package invoice

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// Layout constants for one printable band.
const (
	rowsPerPage  = 36
	headerRows   = 6
	contentWidth = 5
)

// Header carries the admission context printed at the top of every page.
type Header struct {
	Hospital    string
	PatientName string
	UHID        string
	RoomType    string
	BedNumber   string
	DoctorName  string
	AdmitDate   time.Time
}

// Line is one printable content row.
type Line struct {
	Label  string
	Detail string
	Count  int
	Unit   float64
	Total  float64
}

// Totals is the derived summary block appended after the content lines.
type Totals struct {
	ServiceTotal    float64
	ConsultantTotal float64
	Discount        float64
	NetTotal        float64
	TotalDeposit    float64
	Due             float64
}

// Document is a complete invoice snapshot ready for rendering.
type Document struct {
	Header      Header
	Services    []Line
	Consultants []Line
	Payments    []Line
	Totals      Totals
}

// Paginate slices lines into bands of at most perPage rows. An empty input
// yields a single empty band so the artifact always has one page.
func Paginate(lines []Line, perPage int) [][]Line {
	if perPage < 1 {
		perPage = 1
	}
	if len(lines) == 0 {
		return [][]Line{nil}
	}
	var pages [][]Line
	for start := 0; start < len(lines); start += perPage {
		end := start + perPage
		if end > len(lines) {
			end = len(lines)
		}
		pages = append(pages, lines[start:end])
	}
	return pages
}

// Build renders the document into XLSX bytes. The totals block is printed
// once, on the final page, after the last content band.
func Build(doc *Document) ([]byte, error) {
	lines := assemble(doc)
	pages := Paginate(lines, rowsPerPage-headerRows)

	f := excelize.NewFile()
	defer f.Close()

	for i, page := range pages {
		sheet := fmt.Sprintf("Page %d", i+1)
		if i == 0 {
			f.SetSheetName("Sheet1", sheet)
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, fmt.Errorf("add sheet: %w", err)
			}
		}
		if err := writeHeader(f, sheet, doc.Header); err != nil {
			return nil, err
		}
		row := headerRows + 1
		for _, l := range page {
			if err := writeLine(f, sheet, row, l); err != nil {
				return nil, err
			}
			row++
		}
		if i == len(pages)-1 {
			if err := writeTotals(f, sheet, row+1, doc.Totals); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// assemble flattens the document sections into one printable line stream
// with section captions.
func assemble(doc *Document) []Line {
	var lines []Line
	if len(doc.Services) > 0 {
		lines = append(lines, Line{Label: "SERVICES"})
		lines = append(lines, doc.Services...)
	}
	if len(doc.Consultants) > 0 {
		lines = append(lines, Line{Label: "CONSULTANT VISITS"})
		lines = append(lines, doc.Consultants...)
	}
	if len(doc.Payments) > 0 {
		lines = append(lines, Line{Label: "PAYMENTS"})
		lines = append(lines, doc.Payments...)
	}
	return lines
}

func writeHeader(f *excelize.File, sheet string, h Header) error {
	hospital := h.Hospital
	if hospital == "" {
		hospital = "IPD Invoice"
	}
	cells := []struct {
		cell  string
		value interface{}
	}{
		{"A1", hospital},
		{"A2", "Patient: " + h.PatientName},
		{"C2", "UHID: " + h.UHID},
		{"A3", "Room: " + h.RoomType},
		{"C3", "Bed: " + h.BedNumber},
		{"A4", "Doctor: " + h.DoctorName},
		{"C4", "Admitted: " + h.AdmitDate.Format("02 Jan 2006")},
		{"A6", "Description"},
		{"B6", "Detail"},
		{"C6", "Qty"},
		{"D6", "Rate"},
		{"E6", "Amount"},
	}
	for _, c := range cells {
		if err := f.SetCellValue(sheet, c.cell, c.value); err != nil {
			return fmt.Errorf("write header cell %s: %w", c.cell, err)
		}
	}
	return nil
}

func writeLine(f *excelize.File, sheet string, row int, l Line) error {
	if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", row), l.Label); err != nil {
		return err
	}
	if l.Detail != "" {
		if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", row), l.Detail); err != nil {
			return err
		}
	}
	// Caption rows carry no figures.
	if l.Count == 0 && l.Unit == 0 && l.Total == 0 {
		return nil
	}
	if err := f.SetCellValue(sheet, fmt.Sprintf("C%d", row), l.Count); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, fmt.Sprintf("D%d", row), l.Unit); err != nil {
		return err
	}
	return f.SetCellValue(sheet, fmt.Sprintf("E%d", row), l.Total)
}

func writeTotals(f *excelize.File, sheet string, row int, t Totals) error {
	entries := []struct {
		label string
		value float64
	}{
		{"Service Total", t.ServiceTotal},
		{"Consultant Total", t.ConsultantTotal},
		{"Discount", t.Discount},
		{"Net Total", t.NetTotal},
		{"Total Deposit", t.TotalDeposit},
		{"Due", t.Due},
	}
	for i, e := range entries {
		if err := f.SetCellValue(sheet, fmt.Sprintf("D%d", row+i), e.label); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("E%d", row+i), e.value); err != nil {
			return err
		}
	}
	return nil
}
