package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/quote-compare/internal/llm"
)

var _ llm.Provider = (*Client)(nil)

func (c *Client) Name() string { return "openai" }

// ExtractQuote implements llm.Provider using chat/completions in JSON mode.
func (c *Client) ExtractQuote(ctx context.Context, req llm.ExtractRequest) (llm.QuoteFields, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()
	if req.MaxChars <= 0 {
		req.MaxChars = c.cfg.MaxChars
	}

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"provider", c.Name(),
		"model", c.cfg.Model,
		"text_len", len(req.Text),
		"file", req.FilenameHint,
	)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt(req)},
			{"role": "system", "content": llm.SchemaPrompt()},
			{"role": "user", "content": llm.BuildUserPrompt(req) + "\n\nReturn ONLY JSON that matches the provided schema."},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := llm.SendJSON(ctx, c.http, c.Name(), endpoint, body, map[string]string{
		"Authorization": "Bearer " + c.cfg.APIKey,
	}, c.logger)
	if err != nil {
		c.logger.Error("llm.extract.http_error", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return llm.QuoteFields{}, nil, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return llm.QuoteFields{}, raw, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return llm.QuoteFields{}, raw, fmt.Errorf("no choices in openai response")
	}

	out, doc, err := llm.DecodeQuote(cc.Choices[0].Message.Content, c.logger)
	if err != nil {
		c.logger.Error("llm.extract.schema_validation_failed", "req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return llm.QuoteFields{}, doc, err
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"provider", c.Name(),
		"vendor", out.Vendor,
		"total", out.TotalPremium,
		"sections", len(out.Sections),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, doc, nil
}
