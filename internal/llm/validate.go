package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/quote-compare/internal/common"
)

// ValidateJSONAgainstSchema validates "data" against "schemaMap". Mismatches wrap
// common.ErrSchemaValidation.
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("quote.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("quote.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: unmarshal data: %v", common.ErrSchemaValidation, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", common.ErrSchemaValidation, err)
	}
	return nil
}
