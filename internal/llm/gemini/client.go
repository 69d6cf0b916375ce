// Package gemini extracts quote fields with Google's Gemini models.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/joseph-ayodele/quote-compare/internal/llm"
)

type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxChars    int
	// Endpoint overrides the API host.
	Endpoint string
}

type Client struct {
	cfg    Config
	client *genai.Client
	logger *slog.Logger
}

var _ llm.Provider = (*Client)(nil)

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	if logger == nil {
		logger = slog.Default()
	}
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	gc, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{cfg: cfg, client: gc, logger: logger}, nil
}

func (c *Client) Name() string { return "gemini" }

func (c *Client) Close() error { return c.client.Close() }

func (c *Client) ExtractQuote(ctx context.Context, req llm.ExtractRequest) (llm.QuoteFields, []byte, error) {
	start := time.Now()
	if req.MaxChars <= 0 {
		req.MaxChars = c.cfg.MaxChars
	}

	model := c.client.GenerativeModel(c.cfg.Model)
	model.SetTemperature(c.cfg.Temperature)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(llm.BuildSystemPrompt(req) + "\n\n" + llm.SchemaPrompt())},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(llm.BuildUserPrompt(req)))
	if err != nil {
		c.logger.Error("llm.extract.http_error", "provider", c.Name(), "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return llm.QuoteFields{}, nil, fmt.Errorf("gemini generate: %w", err)
	}

	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
		break
	}
	if text.Len() == 0 {
		return llm.QuoteFields{}, nil, errors.New("no text in gemini response")
	}

	out, doc, err := llm.DecodeQuote(text.String(), c.logger)
	if err != nil {
		return llm.QuoteFields{}, doc, err
	}
	c.logger.Info("llm.extract.ok", "provider", c.Name(), "vendor", out.Vendor, "total", out.TotalPremium,
		"elapsed_ms", time.Since(start).Milliseconds())
	return out, doc, nil
}
