// Package parse turns extracted document text into a normalized quote.
package parse

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/quote-compare/internal/common"
	"github.com/joseph-ayodele/quote-compare/internal/entity"
	"github.com/joseph-ayodele/quote-compare/internal/ocr"
)

// Input is one document's text plus hints.
type Input struct {
	Text     string
	FileName string
}

// Strategy is one way of reading a quote out of text.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, in Input) (entity.Quote, error)
}

// Extractor runs strategies in order and keeps the first success.
type Extractor struct {
	strategies []Strategy
	logger     *slog.Logger
}

func NewExtractor(logger *slog.Logger, strategies ...Strategy) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{strategies: strategies, logger: logger}
}

// Strategies lists strategy names in order.
func (e *Extractor) Strategies() []string {
	out := make([]string, 0, len(e.strategies))
	for _, s := range e.strategies {
		out = append(out, s.Name())
	}
	return out
}

func (e *Extractor) Extract(ctx context.Context, in Input) (entity.Quote, error) {
	if ocr.UsableChars(strings.TrimSpace(in.Text)) == 0 {
		return entity.Quote{}, common.NewAppError(common.CodeFieldExtraction, "no usable text in "+in.FileName, common.ErrFieldExtractionFailed)
	}

	var errs []error
	for _, s := range e.strategies {
		if err := ctx.Err(); err != nil {
			return entity.Quote{}, err
		}
		q, err := s.Extract(ctx, in)
		if err == nil {
			e.logger.Info("parse.extract.ok", "file", in.FileName, "strategy", q.Strategy,
				"vendor", q.Vendor, "total", q.TotalPremium, "sections", len(q.Sections))
			return q, nil
		}
		e.logger.Warn("parse.extract.strategy_failed", "file", in.FileName, "strategy", s.Name(), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
	}
	return entity.Quote{}, common.NewAppError(common.CodeFieldExtraction, "no strategy produced a quote for "+in.FileName,
		errors.Join(append([]error{common.ErrFieldExtractionFailed}, errs...)...))
}
