// Package money parses and formats rand amounts as they appear in insurer quotes.
package money

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joseph-ayodele/quote-compare/constants"
)

var (
	printer = message.NewPrinter(language.English)
	// grouped thousands ("1,234,567.89", "1 234.50") or a plain number ("980", "980.5");
	// a group must end on a word boundary so "971 2024" reads as 971
	reAmount  = regexp.MustCompile(`\d{1,3}(?:[ ,\x{00A0}]\d{3})+(?:\.\d{1,2})?\b|\d+(?:\.\d{1,2})?`)
	reNumeric = regexp.MustCompile(`^\d[\d ,\x{00A0}]*(?:\.\d+)?$`)
	reGroupSp = regexp.MustCompile(`[ ,\x{00A0}]`)
)

// Parse reads values such as "R1,234.56", "R 1 234.56", "ZAR 980", "1234".
// It returns false for sentinels ("unknown", "N/A") and non-numeric text.
func Parse(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, constants.Unknown) || strings.EqualFold(s, "n/a") {
		return 0, false
	}
	upper := strings.ToUpper(s)
	switch {
	case strings.HasPrefix(upper, "ZAR"):
		s = s[3:]
	case strings.HasPrefix(upper, "R"):
		s = s[1:]
	}
	s = strings.TrimSpace(s)
	if !reNumeric.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(reGroupSp.ReplaceAllString(s, ""), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseLoose takes the first amount token from a regex capture, so layout
// text like "1,250.00    350.00" yields 1250.
func ParseLoose(s string) (float64, bool) {
	tok := reAmount.FindString(s)
	if tok == "" {
		return 0, false
	}
	return Parse(tok)
}

// Format renders v as "R1,234.56".
func Format(v float64) string {
	return printer.Sprintf("R%.2f", round2(v))
}

// FormatWhole renders v without cents, e.g. sums insured "R2,500,000".
func FormatWhole(v float64) string {
	return printer.Sprintf("R%.0f", math.Round(v))
}

// Normalize re-renders a currency string in canonical form, leaving
// unparseable input as the "unknown" sentinel.
func Normalize(s string) string {
	if v, ok := Parse(s); ok {
		return Format(v)
	}
	return constants.Unknown
}

// Average formats the mean of the parseable values, or "N/A" when none parse.
func Average(values []string) string {
	var sum float64
	var n int
	for _, s := range values {
		if v, ok := Parse(s); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return "N/A"
	}
	return Format(sum / float64(n))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
