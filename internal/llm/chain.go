package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Chain tries providers in order and returns the first valid result.
// A result always comes from exactly one provider.
type Chain struct {
	providers []Provider
	timeout   time.Duration
	logger    *slog.Logger
}

func NewChain(providers []Provider, timeout time.Duration, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{providers: providers, timeout: timeout, logger: logger}
}

func (c *Chain) Len() int { return len(c.providers) }

// Names lists the providers in fallback order.
func (c *Chain) Names() []string {
	out := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		out = append(out, p.Name())
	}
	return out
}

// Extract returns the fields, the name of the provider that produced them, and its raw JSON.
func (c *Chain) Extract(ctx context.Context, req ExtractRequest) (QuoteFields, string, []byte, error) {
	if len(c.providers) == 0 {
		return QuoteFields{}, "", nil, errors.New("no llm providers configured")
	}
	var errs []error
	for _, p := range c.providers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		fields, raw, err := c.try(ctx, p, req)
		if err == nil {
			return fields, p.Name(), raw, nil
		}
		c.logger.Warn("llm.chain.provider_failed", "provider", p.Name(), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	return QuoteFields{}, "", nil, errors.Join(errs...)
}

func (c *Chain) try(ctx context.Context, p Provider, req ExtractRequest) (QuoteFields, []byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return p.ExtractQuote(ctx, req)
}
