package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/quote-compare/internal/app"
	"github.com/joseph-ayodele/quote-compare/internal/common"
	"github.com/joseph-ayodele/quote-compare/internal/parse"
)

// parsetext reads extracted quote text (a file, or stdin with "-") and prints
// the quote the field extractor builds from it.
func main() {
	_ = godotenv.Load()
	cfg := common.LoadConfig()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "parsetext <file.txt | ->")
		os.Exit(2)
	}
	name := os.Args[1]
	var text []byte
	var err error
	if name == "-" {
		text, err = io.ReadAll(os.Stdin)
		name = "stdin.txt"
	} else {
		text, err = os.ReadFile(name)
	}
	if err != nil {
		logger.Error("read input", "path", name, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pipe, err := app.NewPipeline(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}
	defer pipe.Close()

	start := time.Now()
	q, err := pipe.Fields.Extract(ctx, parse.Input{Text: string(text), FileName: filepath.Base(name)})
	if err != nil {
		logger.Error("field extraction failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}
	logger.Info("field extraction OK", "strategy", q.Strategy, "sections", len(q.Sections), "duration_ms", time.Since(start).Milliseconds())

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(q); err != nil {
		logger.Error("encode quote", "error", err)
		os.Exit(1)
	}
}
