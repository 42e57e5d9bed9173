package invoice

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suh004757/AI-Invoice-Generator/constants"
	"github.com/suh004757/AI-Invoice-Generator/internal/common"
)

func TestCalculateTotalsTaxInvoice(t *testing.T) {
	inv := New(constants.TypeTax, "KRW")
	require.NoError(t, inv.AddItem("Widget A", 5, 1200.00))
	require.NoError(t, inv.AddItem("Widget B", 10, 25.00))
	inv.CalculateTotals()

	assert.Equal(t, 6250.00, inv.Subtotal)
	assert.Equal(t, 625.00, inv.VAT)
	assert.Equal(t, 6875.00, inv.Total)
}

func TestCalculateTotalsNormalInvoice(t *testing.T) {
	inv := New(constants.TypeNormal, "KRW")
	require.NoError(t, inv.AddItem("Consulting", 1, 500000))
	inv.CalculateTotals()

	assert.Equal(t, 500000.0, inv.Subtotal)
	assert.Equal(t, 0.0, inv.VAT)
	assert.Equal(t, 500000.0, inv.Total)
}

func TestCalculateFromTotalRoundTrips(t *testing.T) {
	// Deriving subtotal/vat from a total and recomputing the total must land
	// within a cent of the original.
	for _, total := range []float64{3300000, 110, 1.1, 999999.99, 12345.67} {
		inv := New(constants.TypeTax, "KRW")
		inv.CalculateFromTotal(total)

		assert.InDelta(t, total, inv.Subtotal+inv.VAT, 0.01, "total %v", total)
		assert.Equal(t, total, inv.Total)
	}
}

func TestCalculateFromTotalNormal(t *testing.T) {
	inv := New(constants.TypeNormal, "KRW")
	inv.CalculateFromTotal(3300000)

	assert.Equal(t, 3300000.0, inv.Subtotal)
	assert.Equal(t, 0.0, inv.VAT)
	assert.Equal(t, 3300000.0, inv.Total)
}

func TestAddItemBounds(t *testing.T) {
	inv := New(constants.TypeTax, "KRW")

	tests := []struct {
		name      string
		qty       float64
		unitPrice float64
		wantErr   bool
	}{
		{"valid", 1, 100, false},
		{"zero quantity", 0, 100, true},
		{"negative quantity", -1, 100, true},
		{"quantity over cap", 1_000_001, 100, true},
		{"quantity at cap", 1_000_000, 100, false},
		{"negative price", 1, -0.01, true},
		{"zero price", 1, 0, false},
		{"price over cap", 1, 1_000_000_000_000, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := inv.AddItem("item", tc.qty, tc.unitPrice)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, common.ErrValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Invoice {
		inv := New(constants.TypeTax, "KRW")
		inv.InvoiceNo = "2025-001"
		inv.CustomerName = "ABC Corp"
		_ = inv.AddItem("Widget", 1, 100)
		inv.CalculateTotals()
		return inv
	}

	ok, err := valid().Validate()
	require.NoError(t, err)
	assert.True(t, ok)

	t.Run("empty customer", func(t *testing.T) {
		inv := valid()
		inv.CustomerName = ""
		ok, err := inv.Validate()
		assert.False(t, ok)
		assert.True(t, errors.Is(err, common.ErrValidation))
	})

	t.Run("no items", func(t *testing.T) {
		inv := valid()
		inv.ClearItems()
		ok, _ := inv.Validate()
		assert.False(t, ok)
	})

	t.Run("date before 2000", func(t *testing.T) {
		inv := valid()
		inv.Date = time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC)
		ok, _ := inv.Validate()
		assert.False(t, ok)
	})

	t.Run("date after 2100", func(t *testing.T) {
		inv := valid()
		inv.Date = time.Date(2101, 1, 1, 0, 0, 0, 0, time.UTC)
		ok, _ := inv.Validate()
		assert.False(t, ok)
	})

	t.Run("invoice number too long", func(t *testing.T) {
		inv := valid()
		inv.InvoiceNo = string(make([]byte, 51))
		ok, _ := inv.Validate()
		assert.False(t, ok)
	})
}

func TestDuplicateIsolatesItems(t *testing.T) {
	orig := New(constants.TypeTax, "USD")
	orig.InvoiceNo = "2025-001"
	orig.CustomerName = "ABC Corp"
	customerID := int64(7)
	orig.CustomerID = &customerID
	conf := 0.9
	orig.ExtractionConfidence = &conf
	orig.FilePath = "/tmp/2025-001.xlsx"
	orig.Metadata["po_number"] = "PO-42"
	require.NoError(t, orig.AddItem("Widget", 5, 1200))
	orig.CalculateTotals()

	newDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	dup := orig.Duplicate("2025-002", newDate)

	assert.Equal(t, "2025-002", dup.InvoiceNo)
	assert.Equal(t, newDate, dup.Date)
	assert.Equal(t, orig.Type, dup.Type)
	assert.Equal(t, orig.Currency, dup.Currency)
	assert.Equal(t, orig.CustomerName, dup.CustomerName)
	assert.Equal(t, orig.CustomerID, dup.CustomerID)
	assert.Equal(t, orig.Total, dup.Total)

	// Provenance does not carry over.
	assert.Nil(t, dup.ExtractionConfidence)
	assert.Empty(t, dup.FilePath)
	assert.Empty(t, dup.Metadata)
	assert.Zero(t, dup.ID)

	// Items are value copies: mutating the duplicate leaves the original alone.
	dup.Items[0].Description = "changed"
	assert.Equal(t, "Widget", orig.Items[0].Description)
}

func TestFromExtractedRecordSkipsInvalidItems(t *testing.T) {
	rec := &ExtractedRecord{
		CustomerName: "ABC Corp",
		Items: []LineItem{
			{Description: "good", Quantity: 2, UnitPrice: 100},
			{Description: "bad qty", Quantity: 0, UnitPrice: 100},
			{Description: "bad price", Quantity: 1, UnitPrice: -5},
		},
	}

	inv := FromExtractedRecord(rec, constants.TypeTax, nil, nil)

	require.Len(t, inv.Items, 1)
	assert.Equal(t, "good", inv.Items[0].Description)
	assert.Equal(t, 200.0, inv.Subtotal)
	assert.Equal(t, 20.0, inv.VAT)
	assert.Equal(t, 220.0, inv.Total)
}

func TestFromExtractedRecordOverridesClaimedVAT(t *testing.T) {
	subtotal := 1000.0
	wrongVAT := 37.0
	wrongTotal := 1037.0
	rec := &ExtractedRecord{
		CustomerName: "ABC Corp",
		Items:        []LineItem{{Description: "svc", Quantity: 1, UnitPrice: 1000}},
		Subtotal:     &subtotal,
		VAT:          &wrongVAT,
		Total:        &wrongTotal,
	}

	inv := FromExtractedRecord(rec, constants.TypeTax, nil, nil)
	assert.Equal(t, 100.0, inv.VAT)
	assert.Equal(t, 1100.0, inv.Total)

	inv = FromExtractedRecord(rec, constants.TypeNormal, nil, nil)
	assert.Equal(t, 0.0, inv.VAT)
	assert.Equal(t, 1000.0, inv.Total)
}

func TestFromExtractedRecordMetadata(t *testing.T) {
	rec := &ExtractedRecord{
		PONumber:     "PO-2025-117",
		Date:         "2025-03-15",
		CustomerName: "ABC Corp",
		PaymentTerms: "Net 30",
		Notes:        "rush order",
		Items:        []LineItem{{Description: "svc", Quantity: 1, UnitPrice: 100}},
	}
	poID := int64(3)
	conf := 0.8

	inv := FromExtractedRecord(rec, constants.TypeTax, &poID, &conf)

	assert.Equal(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), inv.Date)
	assert.Equal(t, "PO-2025-117", inv.Metadata["po_number"])
	assert.Equal(t, "Net 30", inv.Metadata["payment_terms"])
	assert.Equal(t, "rush order", inv.Notes)
	assert.Equal(t, &poID, inv.POID)
	assert.Equal(t, &conf, inv.ExtractionConfidence)
}
