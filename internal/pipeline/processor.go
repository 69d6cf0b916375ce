// Package pipeline runs one uploaded document through text extraction and
// field extraction.
package pipeline

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/quote-compare/constants"
	"github.com/joseph-ayodele/quote-compare/internal/entity"
)

// RawTextExcerpt is how much extracted text a quote keeps.
const RawTextExcerpt = 2000

// Processor coordinates text extraction then field extraction.
type Processor struct {
	Logger *slog.Logger
	Text   *TextStage
	Parse  *ParseStage
}

func NewProcessor(logger *slog.Logger, text *TextStage, parse *ParseStage) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Text: text, Parse: parse}
}

// Process always returns a quote for the upload. When a stage fails the
// quote is a placeholder carrying the error, and the error is returned too.
func (p *Processor) Process(ctx context.Context, up entity.Upload) (entity.Quote, error) {
	start := time.Now()

	res, err := p.Text.Run(ctx, up)
	if err != nil {
		p.Logger.Error("pipeline.text.failed", "file", up.Name, "err", err)
		return FailedQuote(up.Name, err), err
	}
	p.Logger.Info("pipeline.text.ok",
		"file", up.Name,
		"method", res.Method,
		"mode", res.Mode,
		"pages", res.Pages,
		"chars", len(res.Text),
	)

	q, err := p.Parse.Run(ctx, up.Name, res.Text)
	if err != nil {
		p.Logger.Error("pipeline.parse.failed", "file", up.Name, "err", err)
		fq := FailedQuote(up.Name, err)
		fq.ExtractionMethod = res.Method
		fq.ExtractionMode = res.Mode
		fq.Pages = res.Pages
		fq.RawText = excerpt(res.Text, RawTextExcerpt)
		return fq, err
	}

	q.FileName = up.Name
	q.ExtractionMethod = res.Method
	q.ExtractionMode = res.Mode
	q.Pages = res.Pages
	q.RawText = excerpt(res.Text, RawTextExcerpt)
	if q.Sections == nil {
		q.Sections = map[string]entity.PolicySection{}
	}

	p.Logger.Info("pipeline.process.ok",
		"file", up.Name,
		"vendor", q.Vendor,
		"total", q.TotalPremium,
		"strategy", q.Strategy,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return q, nil
}

// FailedQuote is the placeholder recorded for a file that could not be processed.
func FailedQuote(fileName string, err error) entity.Quote {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return entity.Quote{
		FileName:     fileName,
		Vendor:       constants.VendorExtractionFailed,
		TotalPremium: constants.Unknown,
		Sections:     map[string]entity.PolicySection{},
		Error:        msg,
	}
}

func excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
