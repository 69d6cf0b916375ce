package whisperer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Status values reported by /whisper-status.
const (
	StatusProcessed  = "processed"
	StatusProcessing = "processing"
	StatusQueued     = "queued"
	StatusAccepted   = "accepted"
	StatusError      = "error"
	StatusFailed     = "failed"
)

// HTTPError is a non-2xx answer from the API.
type HTTPError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("whisperer %s: HTTP %d", e.Op, e.StatusCode)
}

type client struct {
	cfg    Config
	logger *slog.Logger
}

type whisperResponse struct {
	WhisperHash string `json:"whisper_hash"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

type statusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

type retrieveResponse struct {
	ResultText string `json:"result_text"`
	Extraction struct {
		ResultText string `json:"result_text"`
	} `json:"extraction"`
}

func (c *client) upload(ctx context.Context, name string, data []byte, mode string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("multipart: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("multipart: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("multipart: %w", err)
	}

	q := url.Values{}
	q.Set("mode", mode)
	q.Set("output_mode", c.cfg.OutputMode)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/whisper", q), &body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out whisperResponse
	if err := c.do(req, "whisper", &out); err != nil {
		return "", err
	}
	if out.WhisperHash == "" {
		return "", fmt.Errorf("whisperer: no whisper_hash in response")
	}
	c.logger.Info("whisperer.upload.ok", "mode", mode, "hash", out.WhisperHash, "status", out.Status)
	return out.WhisperHash, nil
}

// wait polls until the job is processed, fails or runs out of polls.
func (c *client) wait(ctx context.Context, hash string) error {
	q := url.Values{}
	q.Set("whisper_hash", hash)
	t := time.NewTicker(c.cfg.PollInterval)
	defer t.Stop()

	for attempt := 1; attempt <= c.cfg.MaxPolls; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/whisper-status", q), nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		var st statusResponse
		if err := c.do(req, "whisper-status", &st); err != nil {
			return err
		}
		if attempt == 1 || attempt%5 == 0 {
			c.logger.Debug("whisperer.poll", "hash", hash, "attempt", attempt, "status", st.Status)
		}
		switch st.Status {
		case StatusProcessed:
			return nil
		case StatusError, StatusFailed:
			msg := st.Error
			if msg == "" {
				msg = "unknown error"
			}
			return fmt.Errorf("whisperer processing failed: %s", msg)
		case StatusProcessing, StatusQueued, StatusAccepted:
		default:
			return fmt.Errorf("whisperer: unexpected status %q", st.Status)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return fmt.Errorf("whisperer: not processed after %d polls", c.cfg.MaxPolls)
}

func (c *client) retrieve(ctx context.Context, hash string) (string, error) {
	q := url.Values{}
	q.Set("whisper_hash", hash)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/whisper-retrieve", q), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	var out retrieveResponse
	if err := c.do(req, "whisper-retrieve", &out); err != nil {
		return "", err
	}
	if out.ResultText == "" {
		return out.Extraction.ResultText, nil
	}
	return out.ResultText, nil
}

func (c *client) endpoint(path string, q url.Values) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path + "?" + q.Encode()
}

func (c *client) do(req *http.Request, op string, out any) error {
	req.Header.Set("unstract-key", c.cfg.APIKey)
	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("whisperer %s: %w", op, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("whisperer.response_body_close_error", "op", op, "error", err)
		}
	}()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if resp.StatusCode/100 != 2 {
		return &HTTPError{Op: op, StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("whisperer %s: decode: %w", op, err)
	}
	return nil
}
