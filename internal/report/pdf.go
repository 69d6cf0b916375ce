package report

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"log/slog"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/joseph-ayodele/quote-compare/internal/entity"
)

const (
	pageWidth    = 277.0 // A4 landscape minus margins
	sectionCol   = 58.0
	rowHeight    = 7.0
	pageBreakY   = 185.0
	maxCellRunes = 38
)

// PDFRenderer draws the comparison with gofpdf.
type PDFRenderer struct {
	// PublicBaseURL, when set, adds a QR code pointing at the download link.
	PublicBaseURL string
	Now           func() time.Time
	Logger        *slog.Logger
}

func NewPDFRenderer(publicBaseURL string, logger *slog.Logger) *PDFRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFRenderer{PublicBaseURL: publicBaseURL, Now: time.Now, Logger: logger}
}

func (r *PDFRenderer) Format() string { return "pdf" }

func (r *PDFRenderer) Render(ctx context.Context, c entity.Comparison) (string, []byte, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	now := r.Now()
	name := Filename(c.ID, now, r.Format())

	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Insurance Quote Comparison", false)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 6, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	// title
	pdf.SetFillColor(0, 0, 0)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(pageWidth, 12, "Insurance Quote Comparison", "1", 1, "C", true, 0, "")
	pdf.SetFillColor(255, 255, 255)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(pageWidth, 6, tr("Comparison: "+c.ID))
	pdf.Ln(5)
	pdf.Cell(pageWidth, 6, fmt.Sprintf("Quotes compared: %d", len(c.Quotes)))
	pdf.Ln(5)
	pdf.Cell(pageWidth, 6, "Generated on: "+now.Format("2006-01-02 15:04:05"))
	pdf.Ln(8)

	if r.PublicBaseURL != "" {
		if err := r.drawQR(pdf, DownloadURL(r.PublicBaseURL, name)); err != nil {
			r.Logger.Warn("report.pdf.qr_failed", "comparison_id", c.ID, "error", err)
		}
	}

	r.summaryTable(pdf, tr, c.Quotes)
	pdf.Ln(6)
	r.sectionTable(pdf, tr, c.Quotes)
	pdf.Ln(6)
	r.details(pdf, tr, c.Quotes)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return "", nil, fmt.Errorf("pdf output: %w", err)
	}
	r.Logger.Info("report.pdf.ok", "comparison_id", c.ID, "file", name, "bytes", buf.Len())
	return name, buf.Bytes(), nil
}

func (r *PDFRenderer) drawQR(pdf *gofpdf.Fpdf, url string) error {
	qr, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, qr.Image(200), nil); err != nil {
		return err
	}
	opts := gofpdf.ImageOptions{ImageType: "JPG"}
	pdf.RegisterImageOptionsReader("download-qr", opts, &buf)
	pdf.ImageOptions("download-qr", 10+pageWidth-30, 24, 30, 30, false, opts, 0, "")
	return pdf.Error()
}

func header(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(pageWidth, 9, title, "1", 1, "C", true, 0, "")
	pdf.SetFillColor(255, 255, 255)
}

func columnHeaders(pdf *gofpdf.Fpdf, tr func(string) string, widths []float64, labels []string) {
	pdf.SetFillColor(50, 50, 50)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 9)
	for i, l := range labels {
		ln := 0
		if i == len(labels)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 8, tr(clip(l, maxCellRunes)), "1", ln, "C", true, 0, "")
	}
	pdf.SetFillColor(255, 255, 255)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "", 8)
}

func (r *PDFRenderer) summaryTable(pdf *gofpdf.Fpdf, tr func(string) string, quotes []entity.Quote) {
	header(pdf, "Summary")
	widths := []float64{60, 35, 30, 45, 30, 77}
	labels := []string{"Insurer", "Total premium", "Payment terms", "Reference", "Quote date", "File"}
	columnHeaders(pdf, tr, widths, labels)
	for _, q := range quotes {
		if pdf.GetY() > pageBreakY {
			pdf.AddPage()
			columnHeaders(pdf, tr, widths, labels)
		}
		vals := []string{q.Vendor, q.TotalPremium, q.PaymentTerms, q.QuoteReference, q.QuoteDate, q.FileName}
		for i, v := range vals {
			ln := 0
			if i == len(vals)-1 {
				ln = 1
			}
			pdf.CellFormat(widths[i], rowHeight, tr(clip(v, maxCellRunes)), "1", ln, "L", false, 0, "")
		}
	}
}

func (r *PDFRenderer) sectionTable(pdf *gofpdf.Fpdf, tr func(string) string, quotes []entity.Quote) {
	rows := SectionMatrix(quotes)
	header(pdf, "Policy sections (included / premium)")
	if len(rows) == 0 || len(quotes) == 0 {
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(pageWidth, rowHeight, "No policy sections were identified.", "1", 1, "L", false, 0, "")
		return
	}

	colW := (pageWidth - sectionCol) / float64(len(quotes))
	widths := []float64{sectionCol}
	labels := []string{"Section"}
	for _, q := range quotes {
		widths = append(widths, colW)
		labels = append(labels, q.Vendor)
	}
	columnHeaders(pdf, tr, widths, labels)

	for _, row := range rows {
		if pdf.GetY() > pageBreakY {
			pdf.AddPage()
			columnHeaders(pdf, tr, widths, labels)
		}
		pdf.SetFont("Arial", "B", 8)
		pdf.CellFormat(sectionCol, rowHeight, tr(row.Section), "1", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 8)
		for i := range quotes {
			ln := 0
			if i == len(quotes)-1 {
				ln = 1
			}
			text := CellText(row.Cells[i], row.Present[i])
			if si := row.Cells[i].SumInsured; si != "" {
				text += " / SI " + si
			}
			pdf.CellFormat(colW, rowHeight, tr(clip(text, maxCellRunes)), "1", ln, "C", false, 0, "")
		}
	}
}

// details lists sub-sections, excesses, contact details and per-file errors.
func (r *PDFRenderer) details(pdf *gofpdf.Fpdf, tr func(string) string, quotes []entity.Quote) {
	header(pdf, "Quote details")
	for _, q := range quotes {
		if pdf.GetY() > pageBreakY {
			pdf.AddPage()
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(pageWidth, 7, tr(q.Vendor+" ("+q.FileName+")"), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 8)

		var lines []string
		if q.Error != "" {
			lines = append(lines, "Processing error: "+q.Error)
		}
		contact := strings.TrimSpace(strings.Join(nonEmpty(q.ContactPhone, q.ContactEmail), "  "))
		if contact != "" {
			lines = append(lines, "Contact: "+contact)
		}
		if q.ClientDetails != "" {
			lines = append(lines, "Client: "+q.ClientDetails)
		}
		if q.RiskAddress != "" {
			lines = append(lines, "Risk address: "+q.RiskAddress)
		}
		for _, row := range SectionMatrix([]entity.Quote{q}) {
			ps := row.Cells[0]
			var parts []string
			if len(ps.SubSections) > 0 {
				parts = append(parts, strings.Join(ps.SubSections, ", "))
			}
			if ps.Excess != "" {
				parts = append(parts, "excess "+ps.Excess)
			}
			if len(parts) > 0 {
				lines = append(lines, row.Section+": "+strings.Join(parts, "; "))
			}
		}
		for _, l := range lines {
			pdf.MultiCell(pageWidth, 5, tr(l), "", "L", false)
		}
		pdf.Ln(3)
	}
}

func nonEmpty(vals ...string) []string {
	out := vals[:0:0]
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
