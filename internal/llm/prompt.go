package llm

import (
	"encoding/json"
	"strings"
)

const defaultMaxChars = 4000

// BuildSystemPrompt states the output contract and the section taxonomy.
func BuildSystemPrompt(req ExtractRequest) string {
	parts := []string{
		"You are an expert insurance analyst reading South African commercial insurance quotes.",
		"Return ONLY JSON that matches the provided JSON Schema. No prose, no code fences.",
		"Extract ONLY information that is clearly present in the text. Never invent values; omit fields that are not present.",
		"Money values use rand with thousands separators and two decimals, e.g. R1,234.56.",
		"If no total premium is visible, set total_premium to \"unknown\".",
		"'vendor' is the insurer or underwriter, not the broker or the client.",
		"For each policy section write included as Y, N or unknown; put covered items under sub_sections and deductibles under excess.",
	}
	if len(req.Sections) > 0 {
		parts = append(parts, "Use these section names for policy_sections keys where they apply: "+strings.Join(req.Sections, ", ")+".")
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the filename hint and the (truncated) document text.
func BuildUserPrompt(req ExtractRequest) string {
	limit := req.MaxChars
	if limit <= 0 {
		limit = defaultMaxChars
	}
	text := req.Text
	if len(text) > limit {
		text = truncateUTF8(text, limit)
	}

	var b strings.Builder
	if f := strings.TrimSpace(req.FilenameHint); f != "" {
		b.WriteString("Filename: ")
		b.WriteString(f)
		b.WriteString("\n")
	}
	b.WriteString("\nINSURANCE QUOTE TEXT:\n")
	b.WriteString(text)
	return b.String()
}

// SchemaPrompt renders the quote schema for inclusion in a message.
func SchemaPrompt() string {
	b, _ := json.MarshalIndent(BuildQuoteJSONSchema(), "", "  ")
	return "JSON Schema:\n" + string(b)
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	for n > 0 && n < len(s) && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
