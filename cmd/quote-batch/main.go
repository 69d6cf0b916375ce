package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/quote-compare/internal/app"
	"github.com/joseph-ayodele/quote-compare/internal/common"
	"github.com/joseph-ayodele/quote-compare/internal/compare"
	"github.com/joseph-ayodele/quote-compare/internal/entity"
	"github.com/joseph-ayodele/quote-compare/internal/ingest"
	repo "github.com/joseph-ayodele/quote-compare/internal/repository"
	"github.com/joseph-ayodele/quote-compare/internal/storage"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

type runSummary struct {
	ComparisonID string            `json:"comparison_id"`
	Status       string            `json:"status"`
	Quotes       []quoteLine       `json:"quotes"`
	Reports      map[string]string `json:"reports"`
	Skipped      []string          `json:"skipped,omitempty"`
}

type quoteLine struct {
	File         string `json:"file"`
	Vendor       string `json:"vendor"`
	TotalPremium string `json:"total_premium"`
	Strategy     string `json:"strategy,omitempty"`
	Error        string `json:"error,omitempty"`
}

func main() {
	var (
		dir       = flag.String("dir", "", "directory of quote PDFs to compare (required)")
		out       = flag.String("out", "", "directory for reports (defaults to <dir>/reports)")
		format    = flag.String("format", "pdf", "report format: pdf, xlsx or both")
		sqlite    = flag.String("sqlite", "", "sqlite file to keep comparisons in (default in-memory)")
		watch     = flag.Bool("watch", false, "keep running and re-compare whenever PDFs change")
		recursive = flag.Bool("recursive", false, "include subdirectories")
		maxFiles  = flag.Int("max-files", 50, "maximum PDFs per comparison")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	var formats []string
	switch *format {
	case "pdf", "xlsx":
		formats = []string{*format}
	case "both":
		formats = []string{"pdf", "xlsx"}
	default:
		printError("Error: --format must be pdf, xlsx or both\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(*dir, "reports")
	}

	_ = godotenv.Load()
	cfg := common.LoadConfig()
	cfg.Upload.MaxFiles = *maxFiles

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repo.Open(ctx, repo.Config{SQLitePath: *sqlite}, logger)
	if err != nil {
		logger.Error("failed to open comparison store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	reports, err := storage.NewLocalStorage(*out)
	if err != nil {
		logger.Error("failed to prepare output directory", "out", *out, "error", err)
		os.Exit(1)
	}

	pipe, err := app.NewPipeline(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build extraction pipeline", "error", err)
		os.Exit(1)
	}
	defer pipe.Close()

	svc := app.NewService(store, pipe, reports, cfg, logger)
	run := func() error {
		sum, err := compareDirectory(ctx, svc, *dir, *out, formats, *recursive, cfg.Upload.MaxFileSize, logger)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}

	if err := run(); err != nil && !*watch {
		logger.Error("batch failed", "error", err)
		os.Exit(1)
	}
	if !*watch {
		return
	}

	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:    []string{*dir},
		Debounce: 2 * time.Second,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("failed to watch directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	logger.Info("batch.watch", "dir", *dir)

	// one re-run per burst of events
	quiet := time.NewTimer(time.Hour)
	quiet.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-events:
			if !ok {
				return
			}
			if isUnder(p, *out) {
				continue
			}
			logger.Info("batch.watch.change", "path", p)
			quiet.Reset(500 * time.Millisecond)
		case err, ok := <-errs:
			if ok {
				logger.Warn("batch.watch.error", "error", err)
			}
		case <-quiet.C:
			if err := run(); err != nil {
				logger.Error("batch failed", "error", err)
			}
		}
	}
}

func compareDirectory(ctx context.Context, svc *compare.Service, dir, out string, formats []string, recursive bool, maxSize int64, logger *slog.Logger) (runSummary, error) {
	b, err := ingest.CollectDirectory(ctx, dir, ingest.DirOptions{
		SkipHidden:  true,
		Recursive:   recursive,
		MaxFileSize: maxSize,
		Logger:      logger,
	})
	if err != nil {
		return runSummary{}, err
	}
	var skipped []string
	for _, r := range b.Results {
		if r.Err != "" {
			skipped = append(skipped, fmt.Sprintf("%s: %s", r.Path, r.Err))
		}
	}
	if len(b.Uploads) == 0 {
		return runSummary{Skipped: skipped}, errors.New("no PDF files found in " + dir)
	}

	c, err := svc.Upload(ctx, b.Uploads)
	if err != nil {
		return runSummary{}, err
	}
	sum := runSummary{
		ComparisonID: c.ID,
		Status:       string(c.Status),
		Quotes:       quoteLines(c.Quotes),
		Reports:      map[string]string{},
		Skipped:      skipped,
	}
	for _, f := range formats {
		info, err := svc.GenerateReport(ctx, c.ID, f)
		if err != nil {
			// a failed comparison has no report; the summary still prints
			logger.Warn("batch.report.skipped", "format", f, "error", err)
			continue
		}
		sum.Reports[f] = filepath.Join(out, info.Filename)
	}
	return sum, nil
}

func quoteLines(qs []entity.Quote) []quoteLine {
	out := make([]quoteLine, 0, len(qs))
	for _, q := range qs {
		out = append(out, quoteLine{
			File:         q.FileName,
			Vendor:       q.Vendor,
			TotalPremium: q.TotalPremium,
			Strategy:     q.Strategy,
			Error:        q.Error,
		})
	}
	return out
}

func isUnder(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && !strings.HasPrefix(rel, "..")
}
