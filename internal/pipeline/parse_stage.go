package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/quote-compare/internal/entity"
	"github.com/joseph-ayodele/quote-compare/internal/parse"
)

// FieldExtractor reads a quote out of text; *parse.Extractor satisfies it.
type FieldExtractor interface {
	Extract(ctx context.Context, in parse.Input) (entity.Quote, error)
}

type ParseStage struct {
	Extractor FieldExtractor
	Logger    *slog.Logger
}

func NewParseStage(fe FieldExtractor, logger *slog.Logger) *ParseStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParseStage{Extractor: fe, Logger: logger}
}

func (s *ParseStage) Run(ctx context.Context, fileName, text string) (entity.Quote, error) {
	s.Logger.Debug("pipeline.parse.start", "file", fileName, "text_bytes", len(text))
	return s.Extractor.Extract(ctx, parse.Input{Text: text, FileName: fileName})
}
