package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIdentifiesVerbs(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{"new tax invoice", CmdNewTax},
		{"New Tax Invoice", CmdNewTax},
		{"new normal invoice 고객=\"X\"", CmdNewNormal},
		{"search invoice 월=2025-01", CmdSearch},
		{"open invoice 번호=\"2025-001\"", CmdOpen},
		{"duplicate invoice no=2025-001", CmdDuplicate},
		{"make me an invoice", CmdUnknown},
		{"", CmdUnknown},
		{"invoice new tax", CmdUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Parse(tc.in).Type)
		})
	}
}

func TestParseUnknownCarriesHelp(t *testing.T) {
	parsed := Parse("what can you do?")

	assert.Equal(t, CmdUnknown, parsed.Type)
	assert.Contains(t, parsed.Help, "new tax invoice")
	assert.NotNil(t, parsed.Params)
	assert.Empty(t, parsed.Params)
	assert.Equal(t, "what can you do?", parsed.Raw)
}

func TestParseParams(t *testing.T) {
	parsed := Parse(`new tax invoice customer="ABC Corp" total=3300000`)

	require.Equal(t, CmdNewTax, parsed.Type)
	assert.Equal(t, "ABC Corp", parsed.Params["customer"])
	assert.Equal(t, int64(3300000), parsed.Params["total"])
}

func TestParseKoreanKeys(t *testing.T) {
	parsed := Parse(`new tax invoice 고객="주식회사 가나다" 총액=500만원`)

	require.Equal(t, CmdNewTax, parsed.Type)
	assert.Equal(t, "주식회사 가나다", parsed.Params["고객"])
	assert.Equal(t, "500만원", parsed.Params["총액"])
}

func TestParseCoercion(t *testing.T) {
	parsed := Parse(`search invoice a=42 b=3.14 c="42" d=2025-001 e=1,000`)

	assert.Equal(t, int64(42), parsed.Params["a"])
	assert.Equal(t, 3.14, parsed.Params["b"])
	// Quoted values still coerce when numeric-looking; quoting governs
	// tokenization, not type.
	assert.Equal(t, int64(42), parsed.Params["c"])
	// Not a plain integer and has no dot: stays text.
	assert.Equal(t, "2025-001", parsed.Params["d"])
	assert.Equal(t, "1,000", parsed.Params["e"])
}

func TestParseQuotedValuesKeepSpaces(t *testing.T) {
	parsed := Parse(`open invoice number="2025-001"`)
	assert.Equal(t, "2025-001", parsed.Params["number"])

	parsed = Parse(`search invoice customer="Big Name Corp" month=2025-02`)
	assert.Equal(t, "Big Name Corp", parsed.Params["customer"])
	assert.Equal(t, "2025-02", parsed.Params["month"])
}

func TestSuggest(t *testing.T) {
	t.Run("empty returns all", func(t *testing.T) {
		assert.Len(t, Suggest(""), 5)
	})

	t.Run("prefix match", func(t *testing.T) {
		got := Suggest("new tax")
		require.Len(t, got, 1)
		assert.Contains(t, got[0], "new tax invoice")
	})

	t.Run("keyword overlap", func(t *testing.T) {
		got := Suggest("duplicate")
		require.NotEmpty(t, got)
		assert.Contains(t, got[0], "duplicate invoice")
	})

	t.Run("no match falls back to all", func(t *testing.T) {
		assert.Len(t, Suggest("zzzzz"), 5)
	})

	t.Run("never empty", func(t *testing.T) {
		for _, partial := range []string{"", "new", "open", "검색", "xyz"} {
			assert.NotEmpty(t, Suggest(partial), "partial %q", partial)
		}
	})
}

func TestLookupAliases(t *testing.T) {
	params := Parse(`search invoice 고객="가나다" customer="ignored" month=2025-01`).Params

	// Korean alias wins over the English one.
	v, ok := lookupString(params, "customer")
	require.True(t, ok)
	assert.Equal(t, "가나다", v)

	v, ok = lookupString(params, "month")
	require.True(t, ok)
	assert.Equal(t, "2025-01", v)

	_, ok = lookup(params, "number")
	assert.False(t, ok)
}

func TestLookupAmount(t *testing.T) {
	params := map[string]any{"총액": "300만원"}
	got, ok := lookupAmount(params, "total")
	require.True(t, ok)
	assert.Equal(t, 3000000.0, got)

	params = map[string]any{"total": int64(3300000)}
	got, ok = lookupAmount(params, "total")
	require.True(t, ok)
	assert.Equal(t, 3300000.0, got)

	params = map[string]any{"amount": "notanumber"}
	_, ok = lookupAmount(params, "total")
	assert.False(t, ok)
}

func TestLookupStringFormatsNumbers(t *testing.T) {
	// Invoice numbers that coerced to integers come back as digits.
	params := map[string]any{"번호": int64(2025)}
	v, ok := lookupString(params, "number")
	require.True(t, ok)
	assert.Equal(t, "2025", v)
}
