package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// DecodeQuote turns a provider reply into QuoteFields. The recovered JSON is
// validated strictly first; on failure it is sanitized and validated again.
// Errors wrap common.ErrSchemaValidation.
func DecodeQuote(content string, logger *slog.Logger) (QuoteFields, []byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schema := BuildQuoteJSONSchema()

	doc, err := ExtractJSONObject(content)
	if err != nil {
		return QuoteFields{}, nil, err
	}

	if err := ValidateJSONAgainstSchema(schema, doc); err != nil {
		cleaned, dropped, sErr := NormalizeAndSanitizeJSON(doc, logger)
		if sErr != nil {
			return QuoteFields{}, doc, fmt.Errorf("%w (sanitize failed: %v)", err, sErr)
		}
		if vErr := ValidateJSONAgainstSchema(schema, cleaned); vErr != nil {
			return QuoteFields{}, cleaned, vErr
		}
		logger.Warn("llm.extract.lenient_sanitize_applied", "dropped", dropped)
		doc = cleaned
	}

	var out QuoteFields
	if err := json.Unmarshal(doc, &out); err != nil {
		return QuoteFields{}, doc, fmt.Errorf("unmarshal fields: %w", err)
	}
	return out, doc, nil
}
