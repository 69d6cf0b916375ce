package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/quote-compare/internal/common"
)

// Cascade tries the hosted backend first and the local extractor second.
// Primary may be nil when the hosted backend is unconfigured.
type Cascade struct {
	primary      TextExtractor
	local        TextExtractor
	minTextChars int
	logger       *slog.Logger
}

func NewCascade(primary, local TextExtractor, minTextChars int, logger *slog.Logger) *Cascade {
	if logger == nil {
		logger = slog.Default()
	}
	if minTextChars <= 0 {
		minTextChars = 100
	}
	return &Cascade{primary: primary, local: local, minTextChars: minTextChars, logger: logger}
}

// HasPrimary reports whether a hosted backend is wired.
func (c *Cascade) HasPrimary() bool { return c.primary != nil }

func (c *Cascade) Extract(ctx context.Context, doc Document) (Result, error) {
	start := time.Now()
	var warns []string

	if c.primary != nil {
		res, err := c.primary.Extract(ctx, doc)
		switch {
		case err == nil && usable(res.Text, c.minTextChars):
			res.Duration = time.Since(start)
			return res, nil
		case err != nil:
			warns = append(warns, fmt.Sprintf("hosted extraction: %v", err))
			c.logger.Warn("extract.cascade.primary_failed", "file", doc.Name, "error", err)
		default:
			warns = append(warns, "hosted extraction returned too little text")
			c.logger.Warn("extract.cascade.primary_thin", "file", doc.Name, "chars", len(res.Text))
		}
		// a cancelled request must not start local work
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{Warnings: warns}, common.NewAppError(common.CodeExtraction, doc.Name, errors.Join(common.ErrExtractionFailed, ctxErr))
		}
	}

	if c.local == nil {
		return Result{Warnings: warns}, common.NewAppError(common.CodeExtraction, "no local extractor configured", common.ErrExtractionFailed)
	}

	res, err := c.local.Extract(ctx, doc)
	res.Warnings = append(warns, res.Warnings...)
	res.Duration = time.Since(start)
	if err != nil {
		c.logger.Error("extract.cascade.local_failed", "file", doc.Name, "error", err)
		return res, common.NewAppError(common.CodeExtraction, "local extraction failed for "+doc.Name, errors.Join(common.ErrExtractionFailed, err))
	}
	if !usable(res.Text, c.minTextChars) {
		c.logger.Warn("extract.cascade.no_usable_text", "file", doc.Name, "chars", len(res.Text))
		return res, common.NewAppError(common.CodeExtraction, "no usable text in "+doc.Name, common.ErrExtractionFailed)
	}
	c.logger.Info("extract.cascade.ok", "file", doc.Name, "method", res.Method, "pages", res.Pages, "elapsed_ms", res.Duration.Milliseconds())
	return res, nil
}
