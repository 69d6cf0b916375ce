package report

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/quote-compare/constants"
	"github.com/joseph-ayodele/quote-compare/internal/entity"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func comparison() entity.Comparison {
	return entity.Comparison{
		ID:        "0f8fad5b-d9cb-469f-a165-70867728950e",
		CreatedAt: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC),
		Status:    constants.StatusCompleted,
		FileNames: []string{"hollard.pdf", "santam.pdf", "scan.pdf"},
		Quotes: []entity.Quote{
			{FileName: "hollard.pdf", Vendor: "Hollard", TotalPremium: "R2,963.68", PaymentTerms: "Monthly",
				ContactPhone: "011 408 4911", Sections: map[string]entity.PolicySection{
					"Fire":  {Included: "Y", Premium: "R450.00", SumInsured: "R1,200,000.00", SubSections: []string{"Contents"}},
					"Money": {Included: "N"},
				}},
			{FileName: "santam.pdf", Vendor: "Santam", TotalPremium: "R3,100.00", Sections: map[string]entity.PolicySection{
				"Fire":   {Included: "Y", Premium: "R510.00", Excess: "R2,500.00"},
				"Other":  {Included: "Y", SubSections: []string{"Key person"}},
				"SASRIA": {Included: "Y", Premium: "R234.07"},
			}},
			{FileName: "scan.pdf", Vendor: "Extraction failed", TotalPremium: "unknown",
				Sections: map[string]entity.PolicySection{}, Error: "extraction failed: no usable text"},
		},
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2024, 3, 15, 14, 5, 9, 0, time.UTC)
	if got := Filename("0f8fad5b-d9cb", at, "pdf"); got != "quote_comparison_0f8fad5b_20240315_140509.pdf" {
		t.Fatalf("Filename = %q", got)
	}
	if got := Filename("abc", at, "xlsx"); got != "quote_comparison_abc_20240315_140509.xlsx" {
		t.Fatalf("short id Filename = %q", got)
	}
	if got := DownloadURL("https://quotes.example.com/", "r.pdf"); got != "https://quotes.example.com/api/reports/download/r.pdf" {
		t.Fatalf("DownloadURL = %q", got)
	}
}

func TestSectionMatrixOrder(t *testing.T) {
	rows := SectionMatrix(comparison().Quotes)
	var names []string
	for _, r := range rows {
		names = append(names, r.Section)
	}
	if diff := cmp.Diff([]string{"Fire", "Money", "SASRIA", "Other"}, names); diff != "" {
		t.Fatalf("sections (-want +got):\n%s", diff)
	}
	money := rows[1]
	if !money.Present[0] || money.Present[1] || money.Present[2] {
		t.Fatalf("money presence = %v", money.Present)
	}
	if got := CellText(rows[0].Cells[1], true); got != "Y R510.00" {
		t.Fatalf("CellText = %q", got)
	}
	if got := CellText(entity.PolicySection{}, false); got != "-" {
		t.Fatalf("absent CellText = %q", got)
	}
}

func TestPDFRendererProducesDocument(t *testing.T) {
	r := NewPDFRenderer("https://quotes.example.com", quiet)
	r.Now = func() time.Time { return time.Date(2024, 3, 15, 14, 5, 9, 0, time.UTC) }

	name, data, err := r.Render(context.Background(), comparison())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if name != "quote_comparison_0f8fad5b_20240315_140509.pdf" {
		t.Fatalf("name = %q", name)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", data[:min(len(data), 16)])
	}
}

func TestPDFRendererHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := NewPDFRenderer("", quiet).Render(ctx, comparison()); err == nil {
		t.Fatal("expected context error")
	}
}
