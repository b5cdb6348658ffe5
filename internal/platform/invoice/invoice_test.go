package invoice

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestPaginate(t *testing.T) {
	lines := make([]Line, 70)

	pages := Paginate(lines, 30)
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages for 70 lines at 30/page, got %d", len(pages))
	}
	if len(pages[0]) != 30 || len(pages[1]) != 30 || len(pages[2]) != 10 {
		t.Errorf("unexpected band sizes: %d, %d, %d", len(pages[0]), len(pages[1]), len(pages[2]))
	}

	// Every line lands on exactly one page.
	total := 0
	for _, p := range pages {
		total += len(p)
	}
	if total != len(lines) {
		t.Errorf("pagination dropped or duplicated lines: %d != %d", total, len(lines))
	}
}

func TestPaginate_Empty(t *testing.T) {
	pages := Paginate(nil, 30)
	if len(pages) != 1 {
		t.Fatalf("expected a single empty page, got %d", len(pages))
	}
	if len(pages[0]) != 0 {
		t.Errorf("expected empty band, got %d lines", len(pages[0]))
	}
}

func TestPaginate_ExactFit(t *testing.T) {
	pages := Paginate(make([]Line, 60), 30)
	if len(pages) != 2 {
		t.Fatalf("expected 2 full pages, got %d", len(pages))
	}
}

func sampleDocument() *Document {
	return &Document{
		Header: Header{
			Hospital:    "City Hospital",
			PatientName: "Ravi Kumar",
			UHID:        "UHID-260830-00001",
			RoomType:    "general",
			BedNumber:   "G-4",
			DoctorName:  "Dr. Rao",
			AdmitDate:   time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
		},
		Services: []Line{
			{Label: "Oxygen", Count: 2, Unit: 200, Total: 400},
		},
		Consultants: []Line{
			{Label: "Dr. A", Count: 1, Unit: 500, Total: 500},
		},
		Payments: []Line{
			{Label: "advance", Detail: "cash", Total: 1000},
		},
		Totals: Totals{
			ServiceTotal:    400,
			ConsultantTotal: 500,
			Discount:        100,
			NetTotal:        800,
			TotalDeposit:    1000,
			Due:             -200,
		},
	}
}

func TestBuild_ProducesReadableWorkbook(t *testing.T) {
	data, err := Build(sampleDocument())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty artifact")
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("artifact is not a valid workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Page 1" {
		t.Fatalf("expected single sheet 'Page 1', got %v", sheets)
	}

	patient, err := f.GetCellValue("Page 1", "A2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if patient != "Patient: Ravi Kumar" {
		t.Errorf("header cell = %q", patient)
	}
}

func TestBuild_SpillsOntoSecondPage(t *testing.T) {
	doc := sampleDocument()
	for i := 0; i < rowsPerPage; i++ {
		doc.Services = append(doc.Services, Line{Label: "Dressing", Count: 1, Unit: 50, Total: 50})
	}

	data, err := Build(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("artifact is not a valid workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) < 2 {
		t.Fatalf("expected overflow onto a second page, got sheets %v", sheets)
	}
	// Each page repeats the header band.
	for _, sheet := range sheets {
		v, err := f.GetCellValue(sheet, "A6")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != "Description" {
			t.Errorf("sheet %s missing column header, got %q", sheet, v)
		}
	}
}
