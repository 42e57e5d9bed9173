package invoice

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseAmount parses an amount string in Korean or English formats:
// "3,000,000", "3000000", "1200.50", "300만" / "300만원" (만 = 10,000).
func ParseAmount(s string) (float64, error) {
	clean := strings.ReplaceAll(s, ",", "")
	clean = strings.ReplaceAll(clean, " ", "")
	if clean == "" {
		return 0, fmt.Errorf("empty amount")
	}

	if strings.Contains(clean, "만") {
		clean = strings.TrimSuffix(clean, "원")
		clean = strings.TrimSuffix(clean, "만")
		v, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return 0, fmt.Errorf("parse amount %q: %w", s, err)
		}
		return v * 10000, nil
	}
	clean = strings.TrimSuffix(clean, "원")

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return v, nil
}

// FormatCurrency renders an amount for display. KRW drops decimals; USD and
// EUR take symbols; anything else keeps the code as a suffix.
func FormatCurrency(amount float64, currency string) string {
	switch currency {
	case "KRW":
		return groupThousands(fmt.Sprintf("%.0f", amount))
	case "USD":
		return "$" + groupThousands(fmt.Sprintf("%.2f", amount))
	case "EUR":
		return "€" + groupThousands(fmt.Sprintf("%.2f", amount))
	default:
		return groupThousands(fmt.Sprintf("%.2f", amount)) + " " + currency
	}
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}
