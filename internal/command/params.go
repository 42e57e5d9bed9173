package command

import (
	"fmt"

	"github.com/suh004757/AI-Invoice-Generator/internal/invoice"
)

// Every logical parameter is addressable under a declared list of
// language-tagged aliases, resolved in order: the Korean key first, then the
// English key(s). The first present key wins.
var paramAliases = map[string][]string{
	"customer":  {"고객", "customer"},
	"total":     {"총액", "total", "amount"},
	"month":     {"월", "month"},
	"type":      {"타입", "type"},
	"date_from": {"시작일", "date_from"},
	"date_to":   {"종료일", "date_to"},
	"number":    {"번호", "number", "no"},
	"currency":  {"통화", "currency"},
}

// lookup resolves a logical parameter against the alias table.
func lookup(params map[string]any, logical string) (any, bool) {
	for _, alias := range paramAliases[logical] {
		if v, ok := params[alias]; ok {
			return v, true
		}
	}
	return nil, false
}

// lookupString resolves a logical parameter and renders it as text. Numeric
// values are formatted; invoice numbers in particular may coerce to integers
// during parsing.
func lookupString(params map[string]any, logical string) (string, bool) {
	v, ok := lookup(params, logical)
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case int64:
		return fmt.Sprintf("%d", t), true
	case float64:
		return fmt.Sprintf("%v", t), true
	default:
		return fmt.Sprintf("%v", t), true
	}
}

// lookupAmount resolves a logical parameter as a monetary amount, accepting
// numeric values and formatted strings ("3,000,000", "300만원").
func lookupAmount(params map[string]any, logical string) (float64, bool) {
	v, ok := lookup(params, logical)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case string:
		if f, err := invoice.ParseAmount(t); err == nil {
			return f, true
		}
	}
	return 0, false
}
