package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"3,000,000", 3000000},
		{"3000000", 3000000},
		{"1200.50", 1200.50},
		{"300만", 3000000},
		{"300만원", 3000000},
		{"1.5만", 15000},
		{"5000원", 5000},
		{" 1,234 ", 1234},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseAmount(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseAmountRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "abc", "12abc", "만원"} {
		_, err := ParseAmount(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "3,300,000", FormatCurrency(3300000, "KRW"))
	assert.Equal(t, "$1,234.50", FormatCurrency(1234.5, "USD"))
	assert.Equal(t, "€99.00", FormatCurrency(99, "EUR"))
	assert.Equal(t, "1,000.00 JPY", FormatCurrency(1000, "JPY"))
	assert.Equal(t, "-1,234", FormatCurrency(-1234, "KRW"))
}
