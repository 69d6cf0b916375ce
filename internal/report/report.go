// Package report renders completed comparisons into documents.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joseph-ayodele/quote-compare/constants"
	"github.com/joseph-ayodele/quote-compare/internal/entity"
)

// Renderer turns a completed comparison into one document. The comparison is
// read-only to renderers.
type Renderer interface {
	// Format is the file extension the renderer produces, e.g. "pdf".
	Format() string
	Render(ctx context.Context, c entity.Comparison) (name string, data []byte, err error)
}

const downloadPath = "/api/reports/download/"

// Filename builds quote_comparison_<first 8 of id>_<YYYYMMDD_HHMMSS>.<ext>.
func Filename(comparisonID string, at time.Time, ext string) string {
	short := comparisonID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("quote_comparison_%s_%s.%s", short, at.UTC().Format("20060102_150405"), ext)
}

// DownloadURL joins the public base URL (may be empty) and the download route.
func DownloadURL(baseURL, name string) string {
	return strings.TrimRight(baseURL, "/") + downloadPath + name
}

// SectionRow is one section across every quote of a comparison. Cells[i]
// belongs to quotes[i]; Present[i] is false when that quote never mentions it.
type SectionRow struct {
	Section string
	Cells   []entity.PolicySection
	Present []bool
}

// SectionMatrix lists the sections any quote mentions, taxonomy order first
// and the Other bucket last.
func SectionMatrix(quotes []entity.Quote) []SectionRow {
	order := append(constants.SectionsAsStrings(), string(constants.SectionOther))
	known := make(map[string]bool, len(order))
	for _, s := range order {
		known[s] = true
	}
	// labels outside the taxonomy go last
	for _, q := range quotes {
		for name := range q.Sections {
			if !known[name] {
				known[name] = true
				order = append(order, name)
			}
		}
	}

	var rows []SectionRow
	for _, name := range order {
		row := SectionRow{
			Section: name,
			Cells:   make([]entity.PolicySection, len(quotes)),
			Present: make([]bool, len(quotes)),
		}
		seen := false
		for i, q := range quotes {
			if ps, ok := q.Sections[name]; ok {
				row.Cells[i], row.Present[i] = ps, true
				seen = true
			}
		}
		if seen {
			rows = append(rows, row)
		}
	}
	return rows
}

// CellText is the compact included/premium rendering used in tables.
func CellText(ps entity.PolicySection, present bool) string {
	if !present {
		return "-"
	}
	switch {
	case ps.Premium != "":
		return ps.Included + " " + ps.Premium
	default:
		return ps.Included
	}
}
