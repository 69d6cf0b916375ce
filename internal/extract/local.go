package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/quote-compare/internal/ocr"
)

// LocalAdapter runs the on-host pdftotext/tesseract extractor over document bytes.
type LocalAdapter struct {
	e      *ocr.Extractor
	logger *slog.Logger
}

func NewLocalAdapter(e *ocr.Extractor, logger *slog.Logger) *LocalAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalAdapter{e: e, logger: logger}
}

func (a *LocalAdapter) Extract(ctx context.Context, doc Document) (Result, error) {
	dir, err := os.MkdirTemp("", "qc-doc-*")
	if err != nil {
		return Result{}, fmt.Errorf("temp dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			a.logger.Warn("extract.local.cleanup_failed", "dir", dir, "error", err)
		}
	}()

	path := filepath.Join(dir, "document.pdf")
	if err := os.WriteFile(path, doc.Data, 0o600); err != nil {
		return Result{}, fmt.Errorf("write temp pdf: %w", err)
	}

	r, err := a.e.Extract(ctx, path)
	return Result{
		Text:     r.Text,
		Pages:    r.Pages,
		Method:   r.Method,
		Duration: r.Duration,
		Warnings: r.Warnings,
	}, err
}

// usable reports whether text carries at least min letters or digits.
func usable(text string, min int) bool {
	return ocr.UsableChars(strings.TrimSpace(text)) >= min
}
