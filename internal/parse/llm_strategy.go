package parse

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/joseph-ayodele/quote-compare/constants"
	"github.com/joseph-ayodele/quote-compare/internal/entity"
	"github.com/joseph-ayodele/quote-compare/internal/llm"
	"github.com/joseph-ayodele/quote-compare/internal/money"
)

// Chain is the structured-extraction provider chain.
type Chain interface {
	Extract(ctx context.Context, req llm.ExtractRequest) (llm.QuoteFields, string, []byte, error)
}

// LLMStrategy asks hosted models for schema-shaped JSON.
type LLMStrategy struct {
	chain    Chain
	maxChars int
	logger   *slog.Logger
}

func NewLLMStrategy(chain Chain, maxChars int, logger *slog.Logger) *LLMStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &LLMStrategy{chain: chain, maxChars: maxChars, logger: logger}
}

func (s *LLMStrategy) Name() string { return "llm" }

func (s *LLMStrategy) Extract(ctx context.Context, in Input) (entity.Quote, error) {
	fields, provider, _, err := s.chain.Extract(ctx, llm.ExtractRequest{
		Text:         in.Text,
		FilenameHint: in.FileName,
		Sections:     constants.SectionsAsStrings(),
		MaxChars:     s.maxChars,
	})
	if err != nil {
		return entity.Quote{}, err
	}
	q := toQuote(fields, in.FileName)
	q.Strategy = provider
	return q, nil
}

// toQuote normalizes provider fields. Section names outside the taxonomy are
// merged under constants.SectionOther with their original label kept as a sub-section.
func toQuote(f llm.QuoteFields, fileName string) entity.Quote {
	q := entity.Quote{
		FileName:       fileName,
		Vendor:         strings.TrimSpace(f.Vendor),
		TotalPremium:   money.Normalize(f.TotalPremium),
		PaymentTerms:   strings.TrimSpace(f.PaymentTerms),
		ContactPhone:   f.ContactPhone,
		ContactEmail:   strings.ToLower(f.ContactEmail),
		RiskAddress:    f.RiskAddress,
		ClientDetails:  f.ClientDetails,
		QuoteReference: f.QuoteReference,
		QuoteDate:      f.QuoteDate,
		Sections:       make(map[string]entity.PolicySection, len(f.Sections)),
	}
	if q.Vendor == "" {
		q.Vendor = constants.VendorUnknown
	}
	if q.PaymentTerms == "" {
		q.PaymentTerms = constants.DefaultPaymentTerms
	}

	var other *entity.PolicySection
	var otherSum float64
	otherPriced := false
	exact := make(map[string]bool, len(f.Sections))
	for _, label := range slices.Sorted(maps.Keys(f.Sections)) {
		sf := f.Sections[label]
		ps := entity.PolicySection{
			Included:    normalizeIncluded(sf.Included),
			Premium:     sf.Premium,
			SumInsured:  sf.SumInsured,
			SubSections: sf.SubSections,
			Excess:      sf.Excess,
		}
		if ps.Included == constants.IncludedUnknown && ps.Premium != "" {
			ps.Included = constants.IncludedYes
		}
		sec, ok := constants.Canonicalize(label)
		if ok {
			name := string(sec)
			isExact := constants.SectionKey(label) == constants.SectionKey(name)
			if prev, dup := q.Sections[name]; dup && !replaces(ps, isExact, prev, exact[name]) {
				continue
			}
			q.Sections[name] = ps
			exact[name] = isExact
			continue
		}
		if other == nil {
			other = &entity.PolicySection{Included: constants.IncludedUnknown}
		}
		other.SubSections = append(other.SubSections, strings.TrimSpace(label))
		if ps.Included == constants.IncludedYes {
			other.Included = constants.IncludedYes
		}
		if v, ok := money.Parse(ps.Premium); ok {
			otherSum += v
			otherPriced = true
		}
	}
	if other != nil {
		if otherPriced {
			other.Premium = money.Format(otherSum)
		}
		slices.Sort(other.SubSections)
		q.Sections[string(constants.SectionOther)] = *other
	}
	return q
}

// replaces decides between two labels for the same section: the taxonomy name
// beats a synonym, then a priced entry beats an unpriced one. Otherwise the
// earlier label in sorted order stays.
func replaces(next entity.PolicySection, nextExact bool, prev entity.PolicySection, prevExact bool) bool {
	if nextExact != prevExact {
		return nextExact
	}
	return prev.Premium == "" && next.Premium != ""
}

func normalizeIncluded(s string) string {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "Y":
		return constants.IncludedYes
	case "N":
		return constants.IncludedNo
	}
	return constants.IncludedUnknown
}
