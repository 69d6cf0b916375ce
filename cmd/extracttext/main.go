package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/quote-compare/constants"
	"github.com/joseph-ayodele/quote-compare/internal/app"
	"github.com/joseph-ayodele/quote-compare/internal/common"
	"github.com/joseph-ayodele/quote-compare/internal/extract"
)

// extracttext runs text extraction on one PDF and prints the text to stdout.
func main() {
	_ = godotenv.Load()
	cfg := common.LoadConfig()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "extracttext <file.pdf>")
		os.Exit(2)
	}
	path := os.Args[1]
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("read file", "path", path, "error", err)
		os.Exit(1)
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		logger.Warn("file does not have a .pdf extension", "path", path)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Upload.ProcessingTimeout)
	defer cancel()

	tx := app.NewTextExtractor(cfg.Extraction, logger)
	start := time.Now()
	res, err := tx.Extract(ctx, extract.Document{
		Name:        filepath.Base(path),
		ContentType: constants.ContentTypePDF,
		Data:        data,
	})
	dur := time.Since(start)
	if err != nil {
		logger.Error("text extraction failed", "error", err, "warnings", res.Warnings, "duration_ms", dur.Milliseconds())
		os.Exit(1)
	}

	logger.Info("text extraction OK",
		"method", res.Method,
		"mode", res.Mode,
		"pages", res.Pages,
		"chars", len(res.Text),
		"warnings", res.Warnings,
		"duration_ms", dur.Milliseconds(),
	)
	fmt.Println(res.Text)
}
