// Package app wires configuration into the extraction pipeline and the
// comparison service shared by the binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/quote-compare/internal/common"
	"github.com/joseph-ayodele/quote-compare/internal/compare"
	"github.com/joseph-ayodele/quote-compare/internal/export"
	"github.com/joseph-ayodele/quote-compare/internal/extract"
	"github.com/joseph-ayodele/quote-compare/internal/extract/whisperer"
	"github.com/joseph-ayodele/quote-compare/internal/llm"
	"github.com/joseph-ayodele/quote-compare/internal/llm/anthropic"
	"github.com/joseph-ayodele/quote-compare/internal/llm/gemini"
	"github.com/joseph-ayodele/quote-compare/internal/llm/openai"
	"github.com/joseph-ayodele/quote-compare/internal/ocr"
	"github.com/joseph-ayodele/quote-compare/internal/parse"
	"github.com/joseph-ayodele/quote-compare/internal/pipeline"
	"github.com/joseph-ayodele/quote-compare/internal/report"
	"github.com/joseph-ayodele/quote-compare/internal/repository"
	"github.com/joseph-ayodele/quote-compare/internal/storage"
)

// Pipeline is the document-to-quote path built from configuration.
type Pipeline struct {
	Text      *extract.Cascade
	LLM       *llm.Chain
	Fields    *parse.Extractor
	Processor *pipeline.Processor

	closers []func() error
}

// NewTextExtractor builds the hosted-then-local extraction cascade.
func NewTextExtractor(cfg common.ExtractionConfig, logger *slog.Logger) *extract.Cascade {
	local := extract.NewLocalAdapter(ocr.NewExtractor(ocr.Config{
		Pdftotext:    cfg.Pdftotext,
		Pdftoppm:     cfg.Pdftoppm,
		Tesseract:    cfg.Tesseract,
		TessdataDir:  cfg.TessdataDir,
		MaxPages:     cfg.MaxPages,
		MinTextChars: cfg.MinTextChars,
		PSM:          6,
	}, logger), logger)

	var primary extract.TextExtractor
	if !cfg.LocalOnly {
		if w := whisperer.New(whisperer.Config{
			APIKey:       cfg.WhispererAPIKey,
			BaseURL:      cfg.WhispererBaseURL,
			Modes:        cfg.Modes,
			PollInterval: cfg.PollInterval,
			MaxPolls:     cfg.MaxPolls,
			ModeTimeout:  cfg.ModeTimeout,
		}, logger); w != nil {
			primary = w
		}
	}
	if primary == nil {
		logger.Info("app.extract.local_only")
	}
	return extract.NewCascade(primary, local, cfg.MinTextChars, logger)
}

// NewLLMChain builds the providers in fallback order. A provider that cannot
// be constructed is logged and skipped.
func NewLLMChain(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*llm.Chain, []func() error) {
	var providers []llm.Provider
	var closers []func() error
	for _, name := range cfg.LLMProviders() {
		switch name {
		case "openai":
			providers = append(providers, openai.NewClient(openai.Config{
				APIKey:      cfg.LLM.OpenAIAPIKey,
				BaseURL:     cfg.LLM.OpenAIBaseURL,
				Model:       cfg.LLM.OpenAIModel,
				Temperature: cfg.LLM.Temperature,
				Timeout:     cfg.LLM.Timeout,
				MaxChars:    cfg.LLM.MaxPromptChars,
			}, logger))
		case "anthropic":
			providers = append(providers, anthropic.NewClient(anthropic.Config{
				APIKey:      cfg.LLM.AnthropicAPIKey,
				Model:       cfg.LLM.AnthropicModel,
				Temperature: cfg.LLM.Temperature,
				Timeout:     cfg.LLM.Timeout,
				MaxChars:    cfg.LLM.MaxPromptChars,
			}, logger))
		case "gemini":
			gc, err := gemini.NewClient(ctx, gemini.Config{
				APIKey:      cfg.LLM.GeminiAPIKey,
				Model:       cfg.LLM.GeminiModel,
				Temperature: cfg.LLM.Temperature,
				MaxChars:    cfg.LLM.MaxPromptChars,
			}, logger)
			if err != nil {
				logger.Warn("app.llm.provider_skipped", "provider", name, "error", err)
				continue
			}
			providers = append(providers, gc)
			closers = append(closers, gc.Close)
		}
	}
	return llm.NewChain(providers, cfg.LLM.Timeout, logger), closers
}

// NewPipeline builds text extraction, field extraction and the per-file processor.
func NewPipeline(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*Pipeline, error) {
	rules, err := parse.LoadRules(cfg.Heuristics.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("heuristics rules: %w", err)
	}

	p := &Pipeline{Text: NewTextExtractor(cfg.Extraction, logger)}

	var strategies []parse.Strategy
	chain, closers := NewLLMChain(ctx, cfg, logger)
	p.closers = closers
	if chain.Len() > 0 {
		p.LLM = chain
		strategies = append(strategies, parse.NewLLMStrategy(chain, cfg.LLM.MaxPromptChars, logger))
	}
	strategies = append(strategies, parse.NewPatternStrategy(rules, logger))
	p.Fields = parse.NewExtractor(logger, strategies...)

	p.Processor = pipeline.NewProcessor(logger,
		pipeline.NewTextStage(p.Text, logger),
		pipeline.NewParseStage(p.Fields, logger),
	)
	logger.Info("app.pipeline.ready",
		"hosted_extraction", p.Text.HasPrimary(),
		"strategies", p.Fields.Strategies(),
	)
	return p, nil
}

// LLMEnabled reports whether any hosted model is in the chain.
func (p *Pipeline) LLMEnabled() bool { return p.LLM != nil }

func (p *Pipeline) Close() error {
	var errs []error
	for _, c := range p.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// StoreConfig maps database settings onto the repository.
func StoreConfig(c common.DatabaseConfig) repository.Config {
	return repository.Config{
		DSN:              c.DSN,
		SQLitePath:       c.SQLitePath,
		MaxConns:         c.MaxConns,
		MinConns:         c.MinConns,
		MaxConnLifetime:  c.MaxConnLifetime,
		MaxConnIdleTime:  c.MaxConnIdleTime,
		DialTimeout:      c.DialTimeout,
		StatementTimeout: c.StatementTimeout,
	}
}

// NewService builds the comparison service over the pipeline's processor with
// both report renderers.
func NewService(store repository.ComparisonStore, pipe *Pipeline, st storage.Storage, cfg *common.Config, logger *slog.Logger) *compare.Service {
	return compare.NewService(store, pipe.Processor, st, compare.Config{
		MaxFileSize:       cfg.Upload.MaxFileSize,
		MaxFiles:          cfg.Upload.MaxFiles,
		Concurrency:       cfg.Upload.Concurrency,
		ProcessingTimeout: cfg.Upload.ProcessingTimeout,
		PublicBaseURL:     cfg.Report.PublicBaseURL,
		LLMEnabled:        pipe.LLMEnabled(),
	}, logger, compare.WithRenderers(
		report.NewPDFRenderer(cfg.Report.PublicBaseURL, logger),
		export.NewWorkbook(logger),
	))
}
