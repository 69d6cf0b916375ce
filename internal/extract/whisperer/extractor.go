// Package whisperer talks to the LLMWhisperer v2 text-extraction API.
package whisperer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/quote-compare/internal/extract"
)

// Extractor walks the configured modes until one yields text.
type Extractor struct {
	c      *client
	logger *slog.Logger
}

var _ extract.TextExtractor = (*Extractor)(nil)

// New returns nil when no API key is configured.
func New(cfg Config, logger *slog.Logger) *Extractor {
	if cfg.APIKey == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()
	return &Extractor{c: &client{cfg: cfg, logger: logger}, logger: logger}
}

func (e *Extractor) Extract(ctx context.Context, doc extract.Document) (extract.Result, error) {
	start := time.Now()
	var errs []error
	for i, mode := range e.c.cfg.Modes {
		text, err := e.tryMode(ctx, doc, mode)
		if err == nil {
			e.logger.Info("whisperer.extract.ok", "file", doc.Name, "mode", mode, "chars", len(text))
			return extract.Result{
				Text:     text,
				Method:   extract.MethodWhisperer,
				Mode:     mode,
				Duration: time.Since(start),
			}, nil
		}
		errs = append(errs, fmt.Errorf("mode %s: %w", mode, err))

		var he *HTTPError
		if errors.As(err, &he) {
			e.logger.Warn("whisperer.extract.mode_failed", "file", doc.Name, "mode", mode, "attempt", i+1, "status", he.StatusCode)
		} else {
			e.logger.Warn("whisperer.extract.mode_failed", "file", doc.Name, "mode", mode, "attempt", i+1, "error", err)
		}
		if ctx.Err() != nil {
			break
		}
	}
	return extract.Result{Duration: time.Since(start)}, fmt.Errorf("all whisperer modes failed: %w", errors.Join(errs...))
}

func (e *Extractor) tryMode(ctx context.Context, doc extract.Document, mode string) (string, error) {
	if e.c.cfg.ModeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.c.cfg.ModeTimeout)
		defer cancel()
	}
	hash, err := e.c.upload(ctx, doc.Name, doc.Data, mode)
	if err != nil {
		return "", err
	}
	if err := e.c.wait(ctx, hash); err != nil {
		return "", err
	}
	text, err := e.c.retrieve(ctx, hash)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", errors.New("no text extracted")
	}
	return text, nil
}
