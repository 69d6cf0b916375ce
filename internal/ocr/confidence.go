package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate   = regexp.MustCompile(`\b\d{1,2}[/\-. ](\d{1,2}|[a-z]{3,9})[/\-. ]\d{4}\b`)
	reCurr   = regexp.MustCompile(`\bzar\b|\br\s?\d`)
	reAmount = regexp.MustCompile(`\b\d{1,3}([, ]\d{3})*(\.\d{2})\b`)
	reInsure = regexp.MustCompile(`premium|sum insured|excess|policy|insur`)
)

// heuristicConfidence scores decoded text by the quote artifacts it contains.
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if reDate.MatchString(txtL) {
		score += 0.15
	}
	if reCurr.MatchString(txtL) {
		score += 0.15
	}
	if reAmount.MatchString(txtL) {
		score += 0.15
	}
	if reInsure.MatchString(txtL) {
		score += 0.2
	}
	if len(txt) > 500 {
		score += 0.15
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
