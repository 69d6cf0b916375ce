package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/joseph-ayodele/quote-compare/internal/common"
)

type stubProvider struct {
	name   string
	fields QuoteFields
	err    error
	calls  int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) ExtractQuote(context.Context, ExtractRequest) (QuoteFields, []byte, error) {
	s.calls++
	return s.fields, []byte(`{}`), s.err
}

func TestChainShortCircuits(t *testing.T) {
	a := &stubProvider{name: "a", err: common.ErrSchemaValidation, fields: QuoteFields{Vendor: "partial"}}
	b := &stubProvider{name: "b", fields: QuoteFields{Vendor: "Santam", TotalPremium: "R100.00"}}
	c := &stubProvider{name: "c", fields: QuoteFields{Vendor: "never"}}

	got, provider, _, err := NewChain([]Provider{a, b, c}, 0, quiet).Extract(context.Background(), ExtractRequest{Text: "x"})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if provider != "b" || got.Vendor != "Santam" {
		t.Fatalf("got %q from %q", got.Vendor, provider)
	}
	if c.calls != 0 {
		t.Fatalf("provider after the winner was called")
	}
}

func TestChainAllFail(t *testing.T) {
	a := &stubProvider{name: "a", err: errors.New("HTTP 500")}
	b := &stubProvider{name: "b", err: common.ErrSchemaValidation}
	_, _, _, err := NewChain([]Provider{a, b}, 0, quiet).Extract(context.Background(), ExtractRequest{})
	if err == nil || !errors.Is(err, common.ErrSchemaValidation) {
		t.Fatalf("err = %v", err)
	}
}

func TestChainEmpty(t *testing.T) {
	if _, _, _, err := NewChain(nil, 0, quiet).Extract(context.Background(), ExtractRequest{}); err == nil {
		t.Fatal("expected error from empty chain")
	}
}
