package parse

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joseph-ayodele/quote-compare/internal/common"
)

// Range is an inclusive plausibility band for an amount.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// Rules are the plausibility heuristics used by the pattern strategy. They
// reject obviously wrong matches; they are not business rules.
type Rules struct {
	TotalPremium         Range              `json:"total_premium"`
	SectionSum           Range              `json:"section_sum"` // premiums summed when no total line exists
	DefaultPremium       Range              `json:"default_premium"`
	Premiums             map[string]Range   `json:"premiums"`
	DefaultMinSumInsured float64            `json:"default_min_sum_insured"`
	MinSumInsured        map[string]float64 `json:"min_sum_insured"`
	ProximityChars       int                `json:"proximity_chars"` // look-ahead when the label line has no amount
	BlockChars           int                `json:"block_chars"`     // cap on a section's text block
}

func DefaultRules() Rules {
	return Rules{
		TotalPremium:   Range{Min: 200, Max: 100000},
		SectionSum:     Range{Min: 10, Max: 20000},
		DefaultPremium: Range{Min: 20, Max: 50000},
		Premiums: map[string]Range{
			"Fire":                   {50, 15000},
			"Buildings combined":     {100, 20000},
			"Motor General":          {500, 25000},
			"Public liability":       {80, 8000},
			"Professional Indemnity": {200, 12000},
			"Cyber":                  {150, 10000},
			"Machinery Breakdown":    {50, 5000},
			"Electronic equipment":   {30, 3000},
			"SASRIA":                 {20, 2000},
			"Office contents":        {40, 4000},
			"Business interruption":  {100, 8000},
			"Theft":                  {30, 3000},
			"Glass":                  {20, 1000},
			"Money":                  {30, 2000},
		},
		DefaultMinSumInsured: 10000,
		MinSumInsured: map[string]float64{
			"Fire":                   100000,
			"Buildings combined":     200000,
			"Motor General":          50000,
			"Public liability":       100000,
			"Professional Indemnity": 500000,
			"Cyber":                  100000,
			"Machinery Breakdown":    50000,
			"Electronic equipment":   10000,
			"Office contents":        20000,
			"Business interruption":  50000,
			"Personal, All Risks":    5000,
			"Watercraft":             50000,
		},
		ProximityChars: 160,
		BlockChars:     1200,
	}
}

// LoadRules overlays a JSON file on the defaults. Map entries merge per section.
// An empty path returns the defaults.
func LoadRules(path string) (Rules, error) {
	r := DefaultRules()
	if path == "" {
		return r, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return r, common.NewAppError(common.CodeConfig, "read heuristics rules", err)
	}
	var over Rules
	if err := json.Unmarshal(b, &over); err != nil {
		return r, common.NewAppError(common.CodeConfig, "decode heuristics rules "+path, err)
	}
	r.merge(over)
	if err := r.Validate(); err != nil {
		return r, err
	}
	return r, nil
}

func (r *Rules) merge(o Rules) {
	if o.TotalPremium != (Range{}) {
		r.TotalPremium = o.TotalPremium
	}
	if o.SectionSum != (Range{}) {
		r.SectionSum = o.SectionSum
	}
	if o.DefaultPremium != (Range{}) {
		r.DefaultPremium = o.DefaultPremium
	}
	for k, v := range o.Premiums {
		r.Premiums[k] = v
	}
	if o.DefaultMinSumInsured > 0 {
		r.DefaultMinSumInsured = o.DefaultMinSumInsured
	}
	for k, v := range o.MinSumInsured {
		r.MinSumInsured[k] = v
	}
	if o.ProximityChars > 0 {
		r.ProximityChars = o.ProximityChars
	}
	if o.BlockChars > 0 {
		r.BlockChars = o.BlockChars
	}
}

func (r Rules) Validate() error {
	check := func(name string, rg Range) error {
		if rg.Min < 0 || rg.Max < rg.Min {
			return common.NewAppError(common.CodeConfig, fmt.Sprintf("heuristics: invalid range for %s: %v..%v", name, rg.Min, rg.Max), common.ErrInvalidInput)
		}
		return nil
	}
	if err := check("total_premium", r.TotalPremium); err != nil {
		return err
	}
	if err := check("section_sum", r.SectionSum); err != nil {
		return err
	}
	if err := check("default_premium", r.DefaultPremium); err != nil {
		return err
	}
	for k, v := range r.Premiums {
		if err := check(k, v); err != nil {
			return err
		}
	}
	return nil
}

func (r Rules) PremiumRange(section string) Range {
	if rg, ok := r.Premiums[section]; ok {
		return rg
	}
	return r.DefaultPremium
}

func (r Rules) MinSumInsuredFor(section string) float64 {
	if v, ok := r.MinSumInsured[section]; ok {
		return v
	}
	return r.DefaultMinSumInsured
}
