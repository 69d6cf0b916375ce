package parse

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/quote-compare/constants"
	"github.com/joseph-ayodele/quote-compare/internal/entity"
	"github.com/joseph-ayodele/quote-compare/internal/money"
)

// PatternStrategy reads a quote with regex and proximity heuristics. It never
// fails on non-empty text; fields it cannot find stay empty or "unknown".
type PatternStrategy struct {
	rules  Rules
	logger *slog.Logger
}

func NewPatternStrategy(rules Rules, logger *slog.Logger) *PatternStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &PatternStrategy{rules: rules, logger: logger}
}

func (p *PatternStrategy) Name() string { return constants.StrategyPattern }

func (p *PatternStrategy) Extract(ctx context.Context, in Input) (entity.Quote, error) {
	if err := ctx.Err(); err != nil {
		return entity.Quote{}, err
	}
	text := in.Text

	total, haveTotal := extractTotal(text, p.rules)
	sections := extractSections(text, p.rules, total)

	totalPremium := constants.Unknown
	switch {
	case haveTotal:
		totalPremium = money.Format(total)
	default:
		if sum, ok := sumSectionPremiums(sections, p.rules); ok {
			totalPremium = money.Format(sum)
			p.logger.Debug("parse.pattern.total_from_sections", "file", in.FileName, "total", totalPremium)
		}
	}

	return entity.Quote{
		FileName:       in.FileName,
		Vendor:         extractVendor(text),
		TotalPremium:   totalPremium,
		PaymentTerms:   extractPaymentTerms(text),
		ContactPhone:   extractPhone(text),
		ContactEmail:   extractEmail(text),
		RiskAddress:    extractAddress(text),
		ClientDetails:  extractClient(text),
		QuoteReference: extractReference(text),
		QuoteDate:      extractQuoteDate(text),
		Sections:       sections,
		Strategy:       p.Name(),
	}, nil
}
