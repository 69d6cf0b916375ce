package parse

import (
	"regexp"

	"github.com/joseph-ayodele/quote-compare/internal/money"
)

// amountExpr matches a rand amount; the number is the last capture group.
const amountExpr = `(?:\bR|\bZAR)\s?(\d{1,3}(?:[ ,]\d{3})+(?:\.\d{1,2})?\b|\d+(?:\.\d{1,2})?)`

var reRandAmount = regexp.MustCompile(amountExpr)

type amount struct {
	value      float64
	start, end int // byte offsets of the whole match
}

// findAmounts lists every rand amount in s in order of appearance.
func findAmounts(s string) []amount {
	var out []amount
	for _, m := range reRandAmount.FindAllStringSubmatchIndex(s, -1) {
		v, ok := money.Parse(s[m[2]:m[3]])
		if !ok {
			continue
		}
		out = append(out, amount{value: v, start: m[0], end: m[1]})
	}
	return out
}
