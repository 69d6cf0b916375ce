package llm

// BuildQuoteJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// It goes into the prompt and is used locally to validate responses. Section keys are
// left open; unknown names are re-keyed by the caller.
func BuildQuoteJSONSchema() map[string]any {
	section := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"included":     map[string]any{"type": "string", "enum": []string{"Y", "N", "unknown"}},
			"premium":      moneyProp(),
			"sum_insured":  moneyProp(),
			"excess":       map[string]any{"type": "string"},
			"sub_sections": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
	}

	props := map[string]any{
		"vendor":          map[string]any{"type": "string", "minLength": 1},
		"total_premium":   map[string]any{"type": "string", "pattern": `^(R\d{1,3}(,\d{3})*\.\d{2}|unknown)$`},
		"payment_terms":   map[string]any{"type": "string"},
		"contact_phone":   map[string]any{"type": "string"},
		"contact_email":   map[string]any{"type": "string"},
		"risk_address":    map[string]any{"type": "string"},
		"client_details":  map[string]any{"type": "string"},
		"quote_reference": map[string]any{"type": "string"},
		"quote_date":      map[string]any{"type": "string"},
		"policy_sections": map[string]any{
			"type":                 "object",
			"additionalProperties": section,
		},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"vendor", "total_premium"},
	}
}

func moneyProp() map[string]any {
	return map[string]any{
		"type":    "string",
		"pattern": `^R\d{1,3}(,\d{3})*\.\d{2}$`,
	}
}
