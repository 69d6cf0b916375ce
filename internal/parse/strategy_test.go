package parse

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/quote-compare/internal/common"
	"github.com/joseph-ayodele/quote-compare/internal/llm"
)

type stubChain struct {
	fields   llm.QuoteFields
	provider string
	err      error
}

func (s stubChain) Extract(context.Context, llm.ExtractRequest) (llm.QuoteFields, string, []byte, error) {
	return s.fields, s.provider, nil, s.err
}

func TestExtractorEmptyText(t *testing.T) {
	e := NewExtractor(quiet, NewPatternStrategy(DefaultRules(), quiet))
	for _, text := range []string{"", "   \n\f\t", "---- ||| ...."} {
		_, err := e.Extract(context.Background(), Input{Text: text, FileName: "blank.pdf"})
		if !errors.Is(err, common.ErrFieldExtractionFailed) {
			t.Fatalf("text %q: err = %v, want ErrFieldExtractionFailed", text, err)
		}
	}
}

func TestExtractorFallsBackToPattern(t *testing.T) {
	failing := NewLLMStrategy(stubChain{err: common.ErrSchemaValidation}, 0, quiet)
	e := NewExtractor(quiet, failing, NewPatternStrategy(DefaultRules(), quiet))

	q, err := e.Extract(context.Background(), Input{Text: scheduleText})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if q.Strategy != "pattern" || q.Vendor != "Hollard" {
		t.Fatalf("strategy %q vendor %q", q.Strategy, q.Vendor)
	}
}

func TestExtractorUsesLLMFirst(t *testing.T) {
	chain := stubChain{provider: "openai", fields: llm.QuoteFields{Vendor: "Santam", TotalPremium: "R1 500"}}
	e := NewExtractor(quiet, NewLLMStrategy(chain, 0, quiet), NewPatternStrategy(DefaultRules(), quiet))

	q, err := e.Extract(context.Background(), Input{Text: scheduleText})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if q.Strategy != "openai" || q.Vendor != "Santam" || q.TotalPremium != "R1,500.00" {
		t.Fatalf("got %+v", q)
	}
	if q.PaymentTerms != "Monthly" {
		t.Errorf("payment terms = %q", q.PaymentTerms)
	}
}

func TestLLMSectionsCanonicalized(t *testing.T) {
	q := toQuote(llm.QuoteFields{
		Vendor:       "Bryte",
		TotalPremium: "unknown",
		Sections: map[string]llm.SectionFields{
			"BUILDINGS COMBINED:":    {Included: "Y", Premium: "R971.45"},
			"Goods in transit cover": {Included: "N"},
			"Key person":             {Included: "Y", Premium: "R50.00"},
			"Crop hail":              {},
		},
	}, "b.pdf")

	if _, ok := q.Sections["Buildings combined"]; !ok {
		t.Errorf("missing canonical Buildings combined: %v", q.Sections)
	}
	if q.Sections["Goods in transit"].Included != "N" {
		t.Errorf("goods in transit = %+v", q.Sections["Goods in transit"])
	}
	other := q.Sections["Other"]
	if other.Included != "Y" || other.Premium != "R50.00" || len(other.SubSections) != 2 || other.SubSections[0] != "Crop hail" {
		t.Errorf("other = %+v", other)
	}
	if q.TotalPremium != "unknown" {
		t.Errorf("total = %q", q.TotalPremium)
	}
}

func TestLoadRulesOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	if err := os.WriteFile(path, []byte(`{"premiums":{"Fire":{"min":10,"max":99}},"proximity_chars":80}`), 0o600); err != nil {
		t.Fatal(err)
	}
	r, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules: %v", err)
	}
	if got := r.PremiumRange("Fire"); got != (Range{Min: 10, Max: 99}) {
		t.Errorf("fire range = %+v", got)
	}
	if got := r.PremiumRange("SASRIA"); got != (Range{Min: 20, Max: 2000}) {
		t.Errorf("sasria range = %+v", got)
	}
	if r.ProximityChars != 80 || r.BlockChars != 1200 {
		t.Errorf("proximity %d block %d", r.ProximityChars, r.BlockChars)
	}
}

func TestLoadRulesRejectsInvertedRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	_ = os.WriteFile(path, []byte(`{"total_premium":{"min":500,"max":100}}`), 0o600)
	if _, err := LoadRules(path); err == nil {
		t.Fatal("expected error for inverted range")
	}
}

func TestLLMDuplicateSectionLabelsAreStable(t *testing.T) {
	fields := llm.QuoteFields{
		Vendor: "Santam",
		Sections: map[string]llm.SectionFields{
			"Buildings":          {Included: "Y", Premium: "R100.00"},
			"Buildings Combined": {Included: "Y", Premium: "R971.45"},
			"Building combined":  {Included: "Y", Premium: "R200.00"},
		},
	}
	for range 50 {
		got := toQuote(fields, "s.pdf").Sections["Buildings combined"].Premium
		if got != "R971.45" {
			t.Fatalf("buildings combined premium = %q, want the exact taxonomy label's R971.45", got)
		}
	}

	synonymsOnly := llm.QuoteFields{Sections: map[string]llm.SectionFields{
		"Buildings":         {Included: "Y", Premium: "R100.00"},
		"Building combined": {Included: "Y", Premium: "R200.00"},
		"buildings cover":   {Included: "Y"},
	}}
	for range 50 {
		got := toQuote(synonymsOnly, "s.pdf").Sections["Buildings combined"].Premium
		if got != "R200.00" {
			t.Fatalf("buildings combined premium = %q, want first sorted priced label R200.00", got)
		}
	}
}
