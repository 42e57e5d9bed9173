package llm

import (
	"encoding/json"
	"strings"

	"github.com/suh004757/AI-Invoice-Generator/internal/invoice"
)

// ParseJSONResponse extracts a structured value from raw backend output.
// Backends routinely wrap JSON in prose or code fences despite instructions
// not to; this strips a ```json fence first, then any fence, then falls back
// to the whole trimmed text. It never fails with an error: unparsable input
// yields (nil, false).
func ParseJSONResponse(raw string) (any, bool) {
	text := strings.TrimSpace(raw)

	if i := strings.Index(text, "```json"); i >= 0 {
		text = text[i+len("```json"):]
		if j := strings.Index(text, "```"); j >= 0 {
			text = text[:j]
		}
	} else if i := strings.Index(text, "```"); i >= 0 {
		text = text[i+len("```"):]
		if j := strings.Index(text, "```"); j >= 0 {
			text = text[:j]
		}
	}
	text = strings.TrimSpace(text)

	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, false
	}
	return v, true
}

// DecodeRecord converts an untyped value tree into an ExtractedRecord,
// field by field. Backends sometimes return numbers as formatted strings
// ("1,500,000") and omit or null fields freely, so every conversion is
// tolerant; nothing here trusts the shape blindly.
func DecodeRecord(v any) *invoice.ExtractedRecord {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}

	rec := &invoice.ExtractedRecord{
		PONumber:        asString(m["po_number"]),
		Date:            asString(m["date"]),
		CustomerName:    asString(m["customer_name"]),
		CustomerAddress: asString(m["customer_address"]),
		CustomerContact: asString(m["customer_contact"]),
		Currency:        strings.ToUpper(asString(m["currency"])),
		PaymentTerms:    asString(m["payment_terms"]),
		DeliveryDate:    asString(m["delivery_date"]),
		Notes:           asString(m["notes"]),
		Subtotal:        asOptFloat(m["subtotal"]),
		VAT:             asOptFloat(m["vat"]),
		Total:           asOptFloat(m["total"]),
	}

	if items, ok := m["items"].([]any); ok {
		for _, raw := range items {
			im, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			rec.Items = append(rec.Items, invoice.LineItem{
				Description: asString(im["description"]),
				Quantity:    asFloat(im["quantity"]),
				UnitPrice:   asFloat(im["unit_price"]),
				Amount:      asFloat(im["amount"]),
			})
		}
	}

	return rec
}

// HasField reports whether the untyped tree carries a non-empty value for key.
// Empty strings, nulls, empty collections, zero and false all count as
// missing, so a backend claiming "total": 0 scores the same as one omitting
// the field entirely.
func HasField(v any, key string) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	val, ok := m[key]
	if !ok || val == nil {
		return false
	}
	switch t := val.(type) {
	case string:
		return strings.TrimSpace(t) != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	case float64:
		return t != 0
	case bool:
		return t
	default:
		return true
	}
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		if f, err := invoice.ParseAmount(t); err == nil {
			return f
		}
	}
	return 0
}

func asOptFloat(v any) *float64 {
	switch t := v.(type) {
	case float64:
		f := t
		return &f
	case string:
		if f, err := invoice.ParseAmount(t); err == nil {
			return &f
		}
	}
	return nil
}
