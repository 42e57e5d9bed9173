package llm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildInvoiceJSONSchema returns a JSON-Schema (draft 2020-12 subset) for the
// extraction output, as a generic map. Money fields accept numbers or
// formatted strings; the normalizer coerces either.
func BuildInvoiceJSONSchema() map[string]any {
	item := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{"type": "string"},
			"quantity":    numberProp(),
			"unit_price":  numberProp(),
			"amount":      numberProp(),
		},
		"required": []string{"description", "quantity", "unit_price"},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"po_number":        map[string]any{"type": "string"},
			"date":             map[string]any{"type": "string"},
			"customer_name":    map[string]any{"type": "string", "minLength": 1},
			"customer_address": map[string]any{"type": "string"},
			"customer_contact": map[string]any{"type": "string"},
			"items":            map[string]any{"type": "array", "items": item},
			"subtotal":         numberProp(),
			"vat":              numberProp(),
			"total":            numberProp(),
			"currency":         map[string]any{"type": "string"},
			"payment_terms":    map[string]any{"type": "string"},
			"delivery_date":    map[string]any{"type": "string"},
			"notes":            map[string]any{"type": "string"},
		},
		"required": []string{"customer_name", "items", "total"},
	}
}

func numberProp() map[string]any {
	return map[string]any{"type": []string{"number", "string"}}
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
