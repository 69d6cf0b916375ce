package entity

// PolicySection is one coverage area within a quote.
type PolicySection struct {
	Included    string   `json:"included"` // "Y" | "N" | "unknown"
	Premium     string   `json:"premium,omitempty"`
	SumInsured  string   `json:"sum_insured,omitempty"`
	SubSections []string `json:"sub_sections,omitempty"`
	Excess      string   `json:"excess,omitempty"`
}

// Quote is one insurer's extracted offer for one uploaded document.
type Quote struct {
	FileName       string                   `json:"file_name"`
	Vendor         string                   `json:"vendor"`
	TotalPremium   string                   `json:"total_premium"`
	PaymentTerms   string                   `json:"payment_terms,omitempty"`
	ContactPhone   string                   `json:"contact_phone,omitempty"`
	ContactEmail   string                   `json:"contact_email,omitempty"`
	RiskAddress    string                   `json:"risk_address,omitempty"`
	ClientDetails  string                   `json:"client_details,omitempty"`
	QuoteReference string                   `json:"quote_reference,omitempty"`
	QuoteDate      string                   `json:"quote_date,omitempty"`
	Sections       map[string]PolicySection `json:"policy_sections"`

	// Extraction bookkeeping.
	ExtractionMethod string `json:"extraction_method,omitempty"` // "whisperer" | "pdf-text" | "pdf-ocr"
	ExtractionMode   string `json:"extraction_mode,omitempty"`
	Strategy         string `json:"strategy,omitempty"` // llm provider name or "pattern"
	Pages            int    `json:"pages,omitempty"`
	Error            string `json:"error,omitempty"`
	RawText          string `json:"raw_text,omitempty"`
}

// Failed reports whether the file behind this quote could not be processed.
func (q Quote) Failed() bool { return q.Error != "" }

// Clone returns a deep copy so stored quotes are never aliased by callers.
func (q Quote) Clone() Quote {
	out := q
	if q.Sections != nil {
		out.Sections = make(map[string]PolicySection, len(q.Sections))
		for k, v := range q.Sections {
			if v.SubSections != nil {
				v.SubSections = append([]string(nil), v.SubSections...)
			}
			out.Sections[k] = v
		}
	}
	return out
}
