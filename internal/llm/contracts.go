package llm

import "context"

// QuoteFields is the normalized shape we want from a provider.
type QuoteFields struct {
	Vendor         string                   `json:"vendor"`
	TotalPremium   string                   `json:"total_premium"` // R1,234.56 or "unknown"
	PaymentTerms   string                   `json:"payment_terms,omitempty"`
	ContactPhone   string                   `json:"contact_phone,omitempty"`
	ContactEmail   string                   `json:"contact_email,omitempty"`
	RiskAddress    string                   `json:"risk_address,omitempty"`
	ClientDetails  string                   `json:"client_details,omitempty"`
	QuoteReference string                   `json:"quote_reference,omitempty"`
	QuoteDate      string                   `json:"quote_date,omitempty"`
	Sections       map[string]SectionFields `json:"policy_sections,omitempty"`
}

type SectionFields struct {
	Included    string   `json:"included,omitempty"` // Y | N | unknown
	Premium     string   `json:"premium,omitempty"`
	SumInsured  string   `json:"sum_insured,omitempty"`
	SubSections []string `json:"sub_sections,omitempty"`
	Excess      string   `json:"excess,omitempty"`
}

type ExtractRequest struct {
	Text         string
	FilenameHint string
	Sections     []string // canonical taxonomy, used in the prompt
	MaxChars     int      // prompt text budget; 0 means 4000
}

// Provider is one hosted structured-extraction backend.
type Provider interface {
	Name() string
	ExtractQuote(ctx context.Context, req ExtractRequest) (QuoteFields, []byte /*rawJSON*/, error)
}
