package parse

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/joseph-ayodele/quote-compare/constants"
	"github.com/joseph-ayodele/quote-compare/internal/money"
)

var titleCaser = cases.Title(language.English)

var knownInsurers = []string{
	"Hollard", "Bryte", "Sanlam", "OUTsurance", "Discovery", "Momentum", "King Price", "Santam",
	"Mutual & Federal", "Old Mutual", "Auto & General", "Budget Insurance", "1st for Women",
	"Miway", "Dial Direct", "Absa", "Standard Bank", "FNB", "Nedbank",
}

var (
	reKnownInsurer = func() *regexp.Regexp {
		alts := make([]string, len(knownInsurers))
		for i, n := range knownInsurers {
			alts[i] = regexp.QuoteMeta(n)
		}
		return regexp.MustCompile(`(?i)\b(` + strings.Join(alts, "|") + `)\b`)
	}()

	reVendorGeneric = []*regexp.Regexp{
		regexp.MustCompile(`(?im)(?:Insurance\s+Company|Insurer)[: \t]*([A-Za-z][A-Za-z \t&]+?)(?:\n|$|Limited|Ltd|\(Pty\))`),
		regexp.MustCompile(`(?im)(?:Provider|Underwriter)[: \t]*([A-Za-z][A-Za-z \t&]+?)(?:\n|$|Limited|Ltd|\(Pty\))`),
		regexp.MustCompile(`(?im)Quote\s+from[: \t]*([A-Za-z][A-Za-z \t&]+?)(?:\n|$|Limited|Ltd|\(Pty\))`),
		regexp.MustCompile(`(?im)^[ \t]*([A-Z][A-Za-z \t&]+?)[ \t]+(?:Insurance|Assurance)\b`),
		regexp.MustCompile(`(?m)([A-Z][A-Za-z \t&]{5,30}?)[ \t]*(?:LIMITED|LTD|\(PTY\)[ \t]*LTD)`),
	}
	vendorStopWords = []string{"policy", "quote", "quotation", "premium", "section", "cover", "claim", "telephone", "email", "address"}
	genericWords    = map[string]bool{"commercial": true, "business": true, "general": true, "personal": true, "motor": true, "short": true, "term": true, "the": true}

	reTotal = func() []*regexp.Regexp {
		pats := []string{
			`(?i)(?:Total|Final|Monthly|Debit\s+Order)\s+(?:Premium|Amount|Cost)\s*[:\-]?\s*`,
			`(?i)TOTAL\s+(?:PREMIUM|MONTHLY|COST)(?:\s+PREMIUM)?\s*[:\-]?\s*`,
			`(?i)(?:Monthly|Per\s+month)\s+(?:premium|payment|cost|total)\s*[:\-]?\s*`,
			`(?i)(?:Debit\s+order|DD)\s+amount\s*[:\-]?\s*`,
			`(?i)Grand\s+Total\s*[:\-]?\s*`,
			`(?i)Total\s+(?:cost|amount)\s+(?:per\s+month|monthly)\s*[:\-]?\s*`,
			`(?i)\bTOTAL\s*[:\-]?\s*`,
		}
		out := make([]*regexp.Regexp, len(pats))
		for i, p := range pats {
			out[i] = regexp.MustCompile(p + amountExpr)
		}
		return out
	}()

	rePhone = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:Tel|Phone|Telephone|Call|Cell|Mobile|Contact)[:\s]*(\+?27[\d \-]{8,14})`),
		regexp.MustCompile(`(?i)(?:Tel|Phone|Telephone|Call|Contact)[:\s]*(0[\d \-]{8,12})`),
		regexp.MustCompile(`(\+27[\d \-]{8,14})`),
		regexp.MustCompile(`\b(0\d{2}[\d \-]{6,10})`),
	}
	reEmail  = regexp.MustCompile(`(?i)\b([a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,})\b`)
	reDigits = regexp.MustCompile(`\d`)
	reSpaces = regexp.MustCompile(`\s+`)

	reAddress = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:Risk|Property|Business|Premises)\s+Address[: \t]*([A-Z0-9][^\n]{15,100})`),
		regexp.MustCompile(`(?i)(?:Situated|Located)\s+at[: \t]*([A-Z0-9][^\n]{15,100})`),
		regexp.MustCompile(`(?i)Address[: \t]*([0-9]+[^\n]{15,100})`),
		regexp.MustCompile(`(\d+\s+[A-Z][a-z]+\s+(?:Street|Road|Avenue|Drive|Lane)[^\n]{0,50})`),
		regexp.MustCompile(`([A-Z][a-z]+\s+(?:Industrial|Business|Commercial)\s+(?:Park|Estate|Area)[^\n]{0,50})`),
	}
	reAddressTail = regexp.MustCompile(`(?i)\s*(?:and\s+telephone|telephone|number|email|contact|phone|tel|fax)\b.*$`)
	addressReject = []string{"telephone", "email", "contact", "number", "insurance"}
	reClient      = []*regexp.Regexp{
		regexp.MustCompile(`(?m)(?:Client|Business Name|Company|Policyholder|Policy Holder|POLICY HOLDER|Insured)[: \t]*([A-Z][^\n]{7,100})`),
		regexp.MustCompile(`([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+)*[ \t]+(?:\(Pty\)[ \t]*Ltd|CC|Ltd|Limited))`),
		regexp.MustCompile(`([A-Z][a-z]+[ \t]+(?:Manufacturing|Trading|Services|Holdings|Properties|Owner|Owners|Association)(?:[ \t]+\(Pty\)[ \t]*Ltd)?)`),
	}
	clientReject = []string{"policy", "agrees", "renew", "telephone", "premium", "sum insured", "address", "email", "contact", "number"}

	reReference = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:Quote|Quotation|Reference|Policy)\s+(?:No|Number|Ref)\.?[:\s]*([A-Z0-9][A-Z0-9\-/]{2,})`),
		regexp.MustCompile(`\b([A-Z]{2,}\d{4,})\b`),
	}
	reDate = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:Date|Quoted\s+on)[:\s]*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{4}|\d{4}-\d{2}-\d{2})`),
		regexp.MustCompile(`(?i)\b(\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{4})\b`),
	}
	rePaymentTerms = regexp.MustCompile(`(?i)\b(monthly|annually|annual|per month|per year|quarterly)\b`)
)

func extractVendor(text string) string {
	if m := reKnownInsurer.FindStringSubmatch(text); m != nil {
		for _, n := range knownInsurers {
			if strings.EqualFold(n, m[1]) {
				return n
			}
		}
	}
	for _, re := range reVendorGeneric {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if v, ok := cleanVendor(m[1]); ok {
				return v
			}
		}
	}
	return constants.VendorUnknown
}

func cleanVendor(s string) (string, bool) {
	s = strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
	if len(s) < 4 {
		return "", false
	}
	lower := strings.ToLower(s)
	for _, w := range vendorStopWords {
		if strings.Contains(lower, w) {
			return "", false
		}
	}
	words := strings.Fields(lower)
	if len(words) > 4 {
		return "", false
	}
	generic := true
	for _, w := range words {
		if !genericWords[w] && w != "&" {
			generic = false
			break
		}
	}
	if generic {
		return "", false
	}
	return titleCaser.String(s), true
}

// extractTotal returns the highest plausible total-line amount.
func extractTotal(text string, r Rules) (float64, bool) {
	var best float64
	found := false
	for _, re := range reTotal {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			v, ok := money.Parse(m[len(m)-1])
			if !ok || !r.TotalPremium.Contains(v) {
				continue
			}
			if v > best {
				best, found = v, true
			}
		}
	}
	return best, found
}

func extractPhone(text string) string {
	for _, re := range rePhone {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			p := strings.TrimSpace(reSpaces.ReplaceAllString(strings.ReplaceAll(m[1], "-", " "), " "))
			if len(reDigits.FindAllString(p, -1)) >= 9 {
				return p
			}
		}
	}
	return ""
}

func extractEmail(text string) string {
	if m := reEmail.FindStringSubmatch(text); m != nil {
		return strings.ToLower(m[1])
	}
	return ""
}

func extractAddress(text string) string {
	for _, re := range reAddress {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			a := reSpaces.ReplaceAllString(strings.TrimSpace(m[1]), " ")
			a = strings.TrimSpace(reAddressTail.ReplaceAllString(a, ""))
			if len(a) <= 15 || containsAny(strings.ToLower(a), addressReject) {
				continue
			}
			return a
		}
	}
	return ""
}

func extractClient(text string) string {
	for _, re := range reClient {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			c := reSpaces.ReplaceAllString(strings.TrimSpace(m[1]), " ")
			if len(c) <= 8 || containsAny(strings.ToLower(c), clientReject) {
				continue
			}
			return c
		}
	}
	return ""
}

func extractReference(text string) string {
	for _, re := range reReference {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func extractQuoteDate(text string) string {
	for _, re := range reDate {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func extractPaymentTerms(text string) string {
	m := rePaymentTerms.FindStringSubmatch(text)
	if m == nil {
		return constants.DefaultPaymentTerms
	}
	switch strings.ToLower(m[1]) {
	case "monthly", "per month":
		return "Monthly"
	case "annually", "annual", "per year":
		return "Annually"
	default:
		return titleCaser.String(strings.ToLower(m[1]))
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
