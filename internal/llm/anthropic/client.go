// Package anthropic extracts quote fields through the Anthropic Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/joseph-ayodele/quote-compare/internal/llm"
)

const apiVersion = "2023-06-01"

type Config struct {
	APIKey      string
	BaseURL     string // default https://api.anthropic.com/v1
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	MaxChars    int
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

var _ llm.Provider = (*Client)(nil)

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-haiku-latest"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}, logger: logger}
}

func (c *Client) Name() string { return "anthropic" }

func (c *Client) ExtractQuote(ctx context.Context, req llm.ExtractRequest) (llm.QuoteFields, []byte, error) {
	start := time.Now()
	if req.MaxChars <= 0 {
		req.MaxChars = c.cfg.MaxChars
	}

	body := map[string]any{
		"model":       c.cfg.Model,
		"max_tokens":  c.cfg.MaxTokens,
		"temperature": c.cfg.Temperature,
		"system":      llm.BuildSystemPrompt(req) + "\n\n" + llm.SchemaPrompt(),
		"messages": []map[string]any{
			{"role": "user", "content": llm.BuildUserPrompt(req)},
		},
	}
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/messages"
	raw, err := llm.SendJSON(ctx, c.http, c.Name(), endpoint, body, map[string]string{
		"x-api-key":         c.cfg.APIKey,
		"anthropic-version": apiVersion,
	}, c.logger)
	if err != nil {
		return llm.QuoteFields{}, nil, err
	}

	var mr struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &mr); err != nil {
		return llm.QuoteFields{}, raw, fmt.Errorf("decode anthropic response: %w", err)
	}
	var text strings.Builder
	for _, block := range mr.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return llm.QuoteFields{}, raw, fmt.Errorf("no text content in anthropic response")
	}

	out, doc, err := llm.DecodeQuote(text.String(), c.logger)
	if err != nil {
		return llm.QuoteFields{}, doc, err
	}
	c.logger.Info("llm.extract.ok", "provider", c.Name(), "vendor", out.Vendor, "total", out.TotalPremium,
		"elapsed_ms", time.Since(start).Milliseconds())
	return out, doc, nil
}
