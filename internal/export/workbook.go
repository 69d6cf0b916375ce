// Package export writes comparisons as XLSX workbooks.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/quote-compare/internal/entity"
	"github.com/joseph-ayodele/quote-compare/internal/money"
	"github.com/joseph-ayodele/quote-compare/internal/report"
)

const (
	sheetSummary  = "Summary"
	sheetSections = "Sections"
)

// Workbook renders a comparison as a "Summary" sheet plus a "Sections" sheet.
type Workbook struct {
	Now    func() time.Time
	Logger *slog.Logger
}

func NewWorkbook(logger *slog.Logger) *Workbook {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workbook{Now: time.Now, Logger: logger}
}

func (w *Workbook) Format() string { return "xlsx" }

func (w *Workbook) Render(ctx context.Context, c entity.Comparison) (string, []byte, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	start := time.Now()
	name := report.Filename(c.ID, w.Now(), w.Format())

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return "", nil, err
	}
	if _, err := f.NewSheet(sheetSections); err != nil {
		return "", nil, err
	}
	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	headers := []string{
		"Insurer",
		"Total Premium",
		"Premium (numeric)",
		"Payment Terms",
		"Quote Reference",
		"Quote Date",
		"Contact Phone",
		"Contact Email",
		"Client",
		"Risk Address",
		"Strategy",
		"File",
		"Error",
	}
	writeRow(f, sheetSummary, 1, toAny(headers))
	_ = f.SetCellStyle(sheetSummary, "A1", cell(len(headers), 1), bold)

	row := 2
	for _, q := range c.Quotes {
		var numeric any = ""
		if v, ok := money.Parse(q.TotalPremium); ok {
			numeric = v
		}
		writeRow(f, sheetSummary, row, []any{
			q.Vendor,
			q.TotalPremium,
			numeric,
			q.PaymentTerms,
			q.QuoteReference,
			q.QuoteDate,
			q.ContactPhone,
			q.ContactEmail,
			q.ClientDetails,
			q.RiskAddress,
			q.Strategy,
			q.FileName,
			truncate(q.Error, 140),
		})
		row++
	}
	_ = f.SetColWidth(sheetSummary, "A", "A", 26)
	_ = f.SetColWidth(sheetSummary, "B", "C", 16)
	_ = f.SetColWidth(sheetSummary, "D", "H", 20)
	_ = f.SetColWidth(sheetSummary, "I", "J", 36)
	_ = f.SetColWidth(sheetSummary, "K", "M", 24)

	// one column group of four per quote
	sec := []any{"Section"}
	for _, q := range c.Quotes {
		sec = append(sec, q.Vendor+" included", "premium", "sum insured", "excess")
	}
	writeRow(f, sheetSections, 1, sec)
	_ = f.SetCellStyle(sheetSections, "A1", cell(len(sec), 1), bold)

	row = 2
	for _, r := range report.SectionMatrix(c.Quotes) {
		vals := []any{r.Section}
		for i := range c.Quotes {
			ps := r.Cells[i]
			if !r.Present[i] {
				vals = append(vals, "-", "", "", "")
				continue
			}
			vals = append(vals, ps.Included, ps.Premium, ps.SumInsured, ps.Excess)
		}
		writeRow(f, sheetSections, row, vals)
		row++
		if subs := subSectionLine(r); subs != "" {
			writeRow(f, sheetSections, row, []any{"  sub-sections", subs})
			row++
		}
	}
	_ = f.SetColWidth(sheetSections, "A", "A", 32)

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return "", nil, fmt.Errorf("xlsx write: %w", err)
	}

	w.Logger.Info("export.xlsx.ok",
		"comparison_id", c.ID,
		"rows", len(c.Quotes),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return name, buf.Bytes(), nil
}

func subSectionLine(r report.SectionRow) string {
	var parts []string
	for i, ps := range r.Cells {
		if r.Present[i] && len(ps.SubSections) > 0 {
			parts = append(parts, strings.Join(ps.SubSections, ", "))
		}
	}
	return strings.Join(parts, " | ")
}

func writeRow(f *excelize.File, sheet string, row int, vals []any) {
	for i, v := range vals {
		_ = f.SetCellValue(sheet, cell(i+1, row), v)
	}
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
