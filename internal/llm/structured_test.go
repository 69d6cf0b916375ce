package llm

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/quote-compare/internal/common"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestDecodeQuoteStrict(t *testing.T) {
	content := `{"vendor":"Hollard","total_premium":"R2,963.68","policy_sections":{"Fire":{"included":"Y","premium":"R450.00"}}}`
	got, _, err := DecodeQuote(content, quiet)
	if err != nil {
		t.Fatalf("DecodeQuote: %v", err)
	}
	want := QuoteFields{
		Vendor:       "Hollard",
		TotalPremium: "R2,963.68",
		Sections:     map[string]SectionFields{"Fire": {Included: "Y", Premium: "R450.00"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeQuoteSanitizesWrappedReply(t *testing.T) {
	content := "Here is the analysis:\n```json\n" + `{
  "company_name": "Bryte Insurance",
  "total_premium": "R 3 891.50",
  "policy_type": "Commercial",
  "contact_info": {"phone": "0860 444 444", "email": "business@bytes.co.za", "address": "N/A"},
  "policy_sections": {
    "Public liability": {"premium": 420.15, "sum_insured": "R3,000,000", "coverage_details": ["Spread of fire"], "deductibles": "R2,500", "included": true},
    "SASRIA": {"premium": "N/A", "included": "No"}
  }
}` + "\n```"
	got, _, err := DecodeQuote(content, quiet)
	if err != nil {
		t.Fatalf("DecodeQuote: %v", err)
	}
	want := QuoteFields{
		Vendor:       "Bryte Insurance",
		TotalPremium: "R3,891.50",
		ContactPhone: "0860 444 444",
		ContactEmail: "business@bytes.co.za",
		Sections: map[string]SectionFields{
			"Public liability": {Included: "Y", Premium: "R420.15", SumInsured: "R3,000,000.00", SubSections: []string{"Spread of fire"}, Excess: "R2,500"},
			"SASRIA":           {Included: "N"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeQuoteRejectsUnusable(t *testing.T) {
	for name, content := range map[string]string{
		"no json":     "I could not read the document.",
		"no vendor":   `{"total_premium":"R100.00"}`,
		"broken json": `{"vendor": "x", `,
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := DecodeQuote(content, quiet)
			if !errors.Is(err, common.ErrSchemaValidation) {
				t.Fatalf("err = %v, want ErrSchemaValidation", err)
			}
		})
	}
}

func TestBuildUserPromptTruncates(t *testing.T) {
	req := ExtractRequest{Text: "ééééé", MaxChars: 3}
	got := BuildUserPrompt(req)
	if want := "\nINSURANCE QUOTE TEXT:\né"; got != want {
		t.Fatalf("prompt = %q, want %q", got, want)
	}
}
