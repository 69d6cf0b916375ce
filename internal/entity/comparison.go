package entity

import (
	"time"

	"github.com/joseph-ayodele/quote-compare/constants"
)

// Comparison aggregates the quotes uploaded together in one batch.
type Comparison struct {
	ID                string                     `json:"comparison_id"`
	CreatedAt         time.Time                  `json:"created_at"`
	Status            constants.ComparisonStatus `json:"status"`
	FileNames         []string                   `json:"file_names"`
	Quotes            []Quote                    `json:"quotes"`
	TotalPremiums     []string                   `json:"total_premiums"`
	ProcessingTime    time.Duration              `json:"processing_time"`
	LLMEnabled        bool                       `json:"llm_analysis_enabled"`
	ReportGenerated   bool                       `json:"report_generated"`
	ReportFilename    string                     `json:"report_filename,omitempty"`
	ReportGeneratedAt *time.Time                 `json:"report_generated_at,omitempty"`
}

// Clone returns a deep copy.
func (c Comparison) Clone() Comparison {
	out := c
	out.FileNames = append([]string(nil), c.FileNames...)
	out.TotalPremiums = append([]string(nil), c.TotalPremiums...)
	if c.Quotes != nil {
		out.Quotes = make([]Quote, len(c.Quotes))
		for i, q := range c.Quotes {
			out.Quotes[i] = q.Clone()
		}
	}
	if c.ReportGeneratedAt != nil {
		t := *c.ReportGeneratedAt
		out.ReportGeneratedAt = &t
	}
	return out
}

// Summary projects the comparison for listings.
func (c Comparison) Summary() QuoteSummary {
	s := QuoteSummary{
		ComparisonID:    c.ID,
		CreatedAt:       c.CreatedAt,
		Status:          c.Status,
		QuoteCount:      len(c.Quotes),
		FileNames:       append([]string(nil), c.FileNames...),
		TotalPremiums:   append([]string(nil), c.TotalPremiums...),
		ProcessingTime:  c.ProcessingTime.Seconds(),
		LLMEnabled:      c.LLMEnabled,
		ReportGenerated: c.ReportGenerated,
		ReportFilename:  c.ReportFilename,
	}
	if c.ReportGeneratedAt != nil {
		t := *c.ReportGeneratedAt
		s.ReportGeneratedAt = &t
	}
	return s
}

// QuoteSummary is the list view of a comparison.
type QuoteSummary struct {
	ComparisonID  string                     `json:"comparison_id"`
	CreatedAt     time.Time                  `json:"created_at"`
	Status        constants.ComparisonStatus `json:"status"`
	QuoteCount    int                        `json:"quote_count"`
	FileNames     []string                   `json:"file_names"`
	TotalPremiums []string                   `json:"total_premiums"`

	// ProcessingTime is in seconds.
	ProcessingTime    float64    `json:"processing_time"`
	LLMEnabled        bool       `json:"llm_analysis_enabled"`
	ReportGenerated   bool       `json:"report_generated"`
	ReportFilename    string     `json:"report_filename,omitempty"`
	ReportGeneratedAt *time.Time `json:"report_generated_at,omitempty"`
}

// UserStats is derived on read over all comparisons.
type UserStats struct {
	TotalQuotes    int    `json:"total_quotes"`
	Completed      int    `json:"completed"`
	Processing     int    `json:"processing"`
	Failed         int    `json:"failed"`
	AveragePremium string `json:"average_premium"`
}

// ReportInfo describes a rendered report.
type ReportInfo struct {
	ReportID    string    `json:"report_id"`
	Filename    string    `json:"filename"`
	DownloadURL string    `json:"download_url"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Upload is one file received for processing.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}
