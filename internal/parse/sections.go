package parse

import (
	"regexp"
	"sort"
	"strings"

	"github.com/joseph-ayodele/quote-compare/constants"
	"github.com/joseph-ayodele/quote-compare/internal/entity"
	"github.com/joseph-ayodele/quote-compare/internal/money"
)

type sectionMatcher struct {
	section constants.Section
	label   *regexp.Regexp
	// single-word labels ("Fire", "Money") only count at the start of a line
	lineStart bool
	subs      []*subMatcher
}

type subMatcher struct {
	name string
	re   *regexp.Regexp
}

var (
	reIncludedKw = regexp.MustCompile(`(?i)^[\s:\-|]*(?:yes|y|included|covered|available|applicable|✓)(?:\b|\s|$)`)
	reExcludedKw = regexp.MustCompile(`(?i)^[\s:\-|]*(?:not\s+included|not\s+covered|not\s+applicable|excluded|no|n/a|n|✗)(?:\b|\s|$)`)
	reExcludedIn = regexp.MustCompile(`(?i)\b(?:excluded|not\s+covered|not\s+included)\b`)
	reSumKeyword = regexp.MustCompile(`(?i)\b(?:sum\s+insured|limit(?:\s+of\s+indemnity)?|value|cover|buildings?|contents?|property|structure)\b[\s:\-]*` + amountExpr)
	reSumTrail   = regexp.MustCompile(amountExpr + `\s*(?i:limit|cover|sum\s+insured|indemnity)`)
	reExcess     = regexp.MustCompile(`(?i)\b(?:excess|deductible)\b[^\n]{0,40}?(?:(\d+(?:\.\d+)?)\s*%\s*of\s*(?:the\s+)?claim|` + amountExpr + `)`)
	// bullets, numbering and "SECTION 1 -" style headings before a label
	reLinePrefix = regexp.MustCompile(`(?i)^[\s\d.)(\-*•|]*(?:section\s*[0-9a-z]{0,3}\s*[:\-–.]?\s*)?$`)
)

var matchers = buildMatchers()

func buildMatchers() []sectionMatcher {
	secs := constants.Sections()
	out := make([]sectionMatcher, 0, len(secs))
	for _, s := range secs {
		words := strings.Fields(string(s))
		out = append(out, sectionMatcher{
			section:   s,
			label:     regexp.MustCompile(`(?i)\b` + flexiblePhrase(string(s))),
			lineStart: len(words) == 1,
			subs:      buildSubMatchers(constants.SubSections[s]),
		})
	}
	return out
}

func buildSubMatchers(names []string) []*subMatcher {
	out := make([]*subMatcher, 0, len(names))
	for _, n := range names {
		out = append(out, &subMatcher{name: n, re: regexp.MustCompile(`(?i)\b` + flexiblePhrase(n) + `\b`)})
	}
	return out
}

// flexiblePhrase quotes a label, letting whitespace vary and apostrophes be optional.
func flexiblePhrase(label string) string {
	words := strings.Fields(label)
	parts := make([]string, len(words))
	for i, w := range words {
		q := regexp.QuoteMeta(w)
		q = strings.ReplaceAll(q, "'", `['’]?`)
		parts[i] = q
	}
	return strings.Join(parts, `\s*`)
}

// hit is one occurrence of a section label.
type hit struct {
	m          *sectionMatcher
	start, end int
}

func findHits(text string) []hit {
	var hits []hit
	for i := range matchers {
		m := &matchers[i]
		for _, loc := range m.label.FindAllStringIndex(text, -1) {
			if m.lineStart && !atLineStart(text, loc[0]) {
				continue
			}
			hits = append(hits, hit{m: m, start: loc[0], end: loc[1]})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].start < hits[j].start })
	return hits
}

func atLineStart(text string, pos int) bool {
	lineStart := strings.LastIndexByte(text[:pos], '\n') + 1
	return reLinePrefix.MatchString(text[lineStart:pos])
}

// extractSections analyses every taxonomy section the text mentions. total is
// the document total premium, or 0 when unknown.
func extractSections(text string, r Rules, total float64) map[string]entity.PolicySection {
	hits := findHits(text)
	out := make(map[string]entity.PolicySection)
	for i, h := range hits {
		name := string(h.m.section)
		blockEnd := len(text)
		for _, next := range hits[i+1:] {
			if next.m != h.m && next.start >= h.end {
				blockEnd = next.start
				break
			}
		}
		if limit := h.start + r.BlockChars; limit < blockEnd {
			blockEnd = max(limit, h.end)
		}
		ps := analyse(text, h, blockEnd, r, total)
		if prev, seen := out[name]; seen && !better(ps, prev) {
			continue
		}
		out[name] = ps
	}
	return out
}

// better prefers an occurrence that carries a premium, then one with a decided flag.
func better(a, b entity.PolicySection) bool {
	if (a.Premium != "") != (b.Premium != "") {
		return a.Premium != ""
	}
	if a.Premium != "" {
		return false
	}
	return b.Included == constants.IncludedUnknown && a.Included != constants.IncludedUnknown
}

func analyse(text string, h hit, blockEnd int, r Rules, total float64) entity.PolicySection {
	name := string(h.m.section)
	lineEnd := blockEnd
	if nl := strings.IndexByte(text[h.end:blockEnd], '\n'); nl >= 0 {
		lineEnd = h.end + nl
	}
	line := text[h.end:lineEnd]
	window := line
	if len(findAmounts(line)) == 0 {
		window = text[h.end:min(h.end+r.ProximityChars, blockEnd)]
	}

	ps := entity.PolicySection{Included: constants.IncludedUnknown}

	excluded := reExcludedKw.MatchString(line) || reExcludedIn.MatchString(line)
	if excluded {
		ps.Included = constants.IncludedNo
	} else if reIncludedKw.MatchString(line) {
		ps.Included = constants.IncludedYes
	}

	rg := r.PremiumRange(name)
	minSum := r.MinSumInsuredFor(name)
	premium := -1
	for i, a := range findAmounts(window) {
		if !rg.Contains(a.value) || (total > 0 && a.value >= total) {
			continue
		}
		ps.Premium = money.Format(a.value)
		premium = i
		break
	}

	ps.SumInsured = findSumInsured(window, minSum)
	if ps.SumInsured == "" && premium >= 0 && window == line {
		ps.SumInsured = trailingSumInsured(line, premium, minSum)
	}

	block := text[h.start:blockEnd]
	if m := reExcess.FindStringSubmatch(block); m != nil {
		if m[1] != "" {
			ps.Excess = m[1] + "% of claim"
		} else if v, ok := money.Parse(m[len(m)-1]); ok {
			ps.Excess = money.Format(v)
		}
	}

	for _, s := range h.m.subs {
		if s.re.MatchString(block) {
			ps.SubSections = append(ps.SubSections, s.name)
		}
	}

	if !excluded && (ps.Premium != "" || ps.SumInsured != "") {
		ps.Included = constants.IncludedYes
	}
	return ps
}

func findSumInsured(window string, minSum float64) string {
	for _, re := range []*regexp.Regexp{reSumKeyword, reSumTrail} {
		for _, m := range re.FindAllStringSubmatch(window, -1) {
			if v, ok := money.Parse(m[len(m)-1]); ok && v >= minSum {
				return money.Format(v)
			}
		}
	}
	return ""
}

// trailingSumInsured reads table rows such as "Fire  Yes  R 450.00  R 1 200 000",
// where "Sum Insured" is only a column header: the largest amount after the
// premium that meets the section minimum, skipping any excess amount.
func trailingSumInsured(line string, premium int, minSum float64) string {
	excess := reExcess.FindStringIndex(line)
	var best float64
	for _, a := range findAmounts(line)[premium+1:] {
		if excess != nil && a.start < excess[1] && a.end > excess[0] {
			continue
		}
		if a.value >= minSum && a.value > best {
			best = a.value
		}
	}
	if best == 0 {
		return ""
	}
	return money.Format(best)
}

// sumSectionPremiums totals the distinct plausible section premiums.
func sumSectionPremiums(sections map[string]entity.PolicySection, r Rules) (float64, bool) {
	seen := map[float64]bool{}
	var sum float64
	for _, ps := range sections {
		v, ok := money.Parse(ps.Premium)
		if !ok || seen[v] || !r.SectionSum.Contains(v) {
			continue
		}
		seen[v] = true
		sum += v
	}
	return sum, sum > 0
}
