package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joseph-ayodele/quote-compare/internal/common"
	"github.com/joseph-ayodele/quote-compare/internal/llm"
)

func newTestClient(t *testing.T, content string, status int) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if rf, _ := body["response_format"].(map[string]any); rf["type"] != "json_object" {
			t.Errorf("response_format = %v", body["response_format"])
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": content}}},
		})
	}))
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExtractQuote(t *testing.T) {
	c := newTestClient(t, `{"vendor":"OUTsurance","total_premium":"R1,200.00"}`, http.StatusOK)
	got, _, err := c.ExtractQuote(context.Background(), llm.ExtractRequest{Text: "quote", FilenameHint: "a.pdf"})
	if err != nil {
		t.Fatalf("ExtractQuote: %v", err)
	}
	if got.Vendor != "OUTsurance" || got.TotalPremium != "R1,200.00" {
		t.Fatalf("got %+v", got)
	}
}

func TestExtractQuoteSchemaFailure(t *testing.T) {
	c := newTestClient(t, `{"summary":"nothing useful"}`, http.StatusOK)
	_, _, err := c.ExtractQuote(context.Background(), llm.ExtractRequest{Text: "quote"})
	if !errors.Is(err, common.ErrSchemaValidation) {
		t.Fatalf("err = %v, want ErrSchemaValidation", err)
	}
}

func TestExtractQuoteHTTPError(t *testing.T) {
	c := newTestClient(t, "", http.StatusTooManyRequests)
	_, _, err := c.ExtractQuote(context.Background(), llm.ExtractRequest{Text: "quote"})
	var se *llm.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("err = %v, want StatusError 429", err)
	}
}
