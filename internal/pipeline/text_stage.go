package pipeline

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/quote-compare/internal/entity"
	"github.com/joseph-ayodele/quote-compare/internal/extract"
)

// TextStage turns an uploaded PDF into text.
type TextStage struct {
	TextExtractor extract.TextExtractor
	Logger        *slog.Logger
}

func NewTextStage(tx extract.TextExtractor, logger *slog.Logger) *TextStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextStage{TextExtractor: tx, Logger: logger}
}

func (s *TextStage) Run(ctx context.Context, up entity.Upload) (extract.Result, error) {
	res, err := s.TextExtractor.Extract(ctx, extract.Document{
		Name:        up.Name,
		ContentType: up.ContentType,
		Data:        up.Data,
	})
	if err != nil {
		return res, err
	}
	for _, w := range res.Warnings {
		s.Logger.Debug("pipeline.text.warning", "file", up.Name, "warning", w)
	}
	return res, nil
}
