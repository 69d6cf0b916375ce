package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/joseph-ayodele/quote-compare/constants"
	"github.com/joseph-ayodele/quote-compare/internal/common"
	"github.com/joseph-ayodele/quote-compare/internal/money"
)

// ExtractJSONObject returns the outermost {...} block of a provider reply.
// Providers sometimes wrap JSON in prose or code fences.
func ExtractJSONObject(content string) ([]byte, error) {
	s := strings.TrimSpace(content)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in response", common.ErrSchemaValidation)
	}
	return []byte(s[start : end+1]), nil
}

var (
	topLevelKeys = map[string]struct{}{
		"vendor": {}, "total_premium": {}, "payment_terms": {}, "contact_phone": {},
		"contact_email": {}, "risk_address": {}, "client_details": {}, "quote_reference": {},
		"quote_date": {}, "policy_sections": {},
	}
	sectionKeys = map[string]struct{}{
		"included": {}, "premium": {}, "sum_insured": {}, "sub_sections": {}, "excess": {},
	}
)

// NormalizeAndSanitizeJSON
// - Renames known synonyms (company_name -> vendor, coverage_details -> sub_sections)
// - Flattens contact_info into contact_phone/contact_email
// - Drops null / empty / "N/A" values
// - Coerces money fields to R1,234.56
// - Removes unknown keys (strict additionalProperties = false friendliness)
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	dropped := make([]string, 0, 8)
	rename := func(obj map[string]any, from, to string) {
		if v, ok := obj[from]; ok {
			if _, exists := obj[to]; !exists {
				obj[to] = v
			}
			delete(obj, from)
			dropped = append(dropped, from+"->"+to)
		}
	}

	// 1) synonyms
	for _, k := range []string{"company_name", "insurer", "provider", "insurer_name"} {
		rename(m, k, "vendor")
	}
	for _, k := range []string{"premium", "monthly_premium", "total"} {
		rename(m, k, "total_premium")
	}
	for _, k := range []string{"policy_number", "quote_number", "reference"} {
		rename(m, k, "quote_reference")
	}
	rename(m, "sections", "policy_sections")
	rename(m, "coverage_sections", "policy_sections")
	rename(m, "client_name", "client_details")
	rename(m, "address", "risk_address")
	if ci, ok := m["contact_info"].(map[string]any); ok {
		if _, has := m["contact_phone"]; !has && ci["phone"] != nil {
			m["contact_phone"] = ci["phone"]
		}
		if _, has := m["contact_email"]; !has && ci["email"] != nil {
			m["contact_email"] = ci["email"]
		}
		dropped = append(dropped, "contact_info(flattened)")
	}

	// 2) top-level strings
	for k := range topLevelKeys {
		if k == "policy_sections" || k == "total_premium" {
			continue
		}
		cleanString(m, k, &dropped)
	}
	if v, ok := m["total_premium"]; ok {
		if s, ok := coerceMoney(v); ok {
			m["total_premium"] = s
		} else {
			m["total_premium"] = constants.Unknown
		}
	}

	// 3) sections
	if v, ok := m["policy_sections"]; ok {
		secs, isObj := v.(map[string]any)
		if !isObj {
			delete(m, "policy_sections")
			dropped = append(dropped, "policy_sections(type)")
		} else {
			for name, raw := range secs {
				sec, ok := raw.(map[string]any)
				if !ok {
					delete(secs, name)
					dropped = append(dropped, name+"(type)")
					continue
				}
				sanitizeSection(sec, name, rename, &dropped)
			}
		}
	}

	// 4) unknown keys
	for k := range maps.Clone(m) {
		if _, ok := topLevelKeys[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

func sanitizeSection(sec map[string]any, name string, rename func(map[string]any, string, string), dropped *[]string) {
	rename(sec, "coverage_details", "sub_sections")
	rename(sec, "details", "sub_sections")
	rename(sec, "deductibles", "excess")
	rename(sec, "deductible", "excess")

	if v, ok := sec["included"]; ok {
		sec["included"] = coerceIncluded(v)
	}
	for _, k := range []string{"premium", "sum_insured"} {
		v, ok := sec[k]
		if !ok {
			continue
		}
		if s, ok := coerceMoney(v); ok {
			sec[k] = s
		} else {
			delete(sec, k)
			*dropped = append(*dropped, name+"."+k+"(unparseable)")
		}
	}
	switch v := sec["excess"].(type) {
	case nil:
		delete(sec, "excess")
	case float64:
		sec["excess"] = money.Format(v)
	case string:
		if isEmptyValue(v) {
			delete(sec, "excess")
		} else {
			sec["excess"] = strings.TrimSpace(v)
		}
	default:
		delete(sec, "excess")
		*dropped = append(*dropped, name+".excess(type)")
	}
	if v, ok := sec["sub_sections"]; ok {
		sec["sub_sections"] = coerceStringList(v)
	}
	for k := range maps.Clone(sec) {
		if _, ok := sectionKeys[k]; !ok {
			delete(sec, k)
			*dropped = append(*dropped, name+"."+k+"(unknown)")
		}
	}
}

func cleanString(m map[string]any, k string, dropped *[]string) {
	v, ok := m[k]
	if !ok {
		return
	}
	s, isStr := v.(string)
	if !isStr || isEmptyValue(s) {
		delete(m, k)
		*dropped = append(*dropped, k+"(empty)")
		return
	}
	m[k] = strings.TrimSpace(s)
}

func isEmptyValue(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, "n/a") || strings.EqualFold(s, "null")
}

func coerceMoney(v any) (string, bool) {
	switch t := v.(type) {
	case float64:
		return money.Format(t), true
	case string:
		if f, ok := money.Parse(t); ok {
			return money.Format(f), true
		}
		if f, ok := money.ParseLoose(t); ok {
			return money.Format(f), true
		}
	}
	return "", false
}

func coerceIncluded(v any) string {
	switch t := v.(type) {
	case bool:
		if t {
			return constants.IncludedYes
		}
		return constants.IncludedNo
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "y", "yes", "true", "included", "covered":
			return constants.IncludedYes
		case "n", "no", "false", "excluded", "not included", "not covered":
			return constants.IncludedNo
		}
	}
	return constants.IncludedUnknown
}

func coerceStringList(v any) []string {
	var out []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && !isEmptyValue(s) {
				out = append(out, strings.TrimSpace(s))
			}
		}
	case string:
		for _, s := range strings.Split(t, ",") {
			if !isEmptyValue(s) {
				out = append(out, strings.TrimSpace(s))
			}
		}
	}
	if out == nil {
		out = []string{}
	}
	return out
}
