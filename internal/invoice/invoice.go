package invoice

import (
	"fmt"
	"math"
	"time"

	"github.com/suh004757/AI-Invoice-Generator/constants"
	"github.com/suh004757/AI-Invoice-Generator/internal/common"
)

// Invoice is the durable financial record. Subtotal, VAT and total are
// derived fields: whenever items are authoritative they follow
// subtotal = sum(amounts), vat = round(subtotal*rate, 2), total = subtotal+vat.
type Invoice struct {
	ID                   int64
	InvoiceNo            string
	Date                 time.Time
	Type                 constants.InvoiceType
	CustomerID           *int64
	CustomerName         string
	Currency             string
	Items                []LineItem
	Subtotal             float64
	VAT                  float64
	Total                float64
	POID                 *int64
	ExtractionConfidence *float64
	Metadata             map[string]string
	FilePath             string
	Notes                string
}

// New creates an empty invoice of the given type, dated today.
func New(invoiceType constants.InvoiceType, currency string) *Invoice {
	if currency == "" {
		currency = constants.DefaultCurrency
	}
	return &Invoice{
		Date:     time.Now(),
		Type:     invoiceType,
		Currency: currency,
		Metadata: map[string]string{},
	}
}

// VATRate returns the rate fixed by the invoice type.
func (inv *Invoice) VATRate() float64 {
	if inv.Type == constants.TypeTax {
		return constants.TaxVATRate
	}
	return 0.0
}

// AddItem validates and appends a line item with amount = quantity x unit price.
func (inv *Invoice) AddItem(description string, quantity, unitPrice float64) error {
	if quantity <= 0 {
		return common.NewValidationError("quantity", quantity, "must be greater than 0")
	}
	if quantity > constants.MaxItemQuantity {
		return common.NewValidationError("quantity", quantity, "exceeds maximum allowed value")
	}
	if unitPrice < 0 {
		return common.NewValidationError("unit_price", unitPrice, "cannot be negative")
	}
	if unitPrice > constants.MaxAmount {
		return common.NewValidationError("unit_price", unitPrice, "exceeds maximum allowed value")
	}

	inv.Items = append(inv.Items, LineItem{
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      quantity * unitPrice,
	})
	return nil
}

// RemoveItem removes the item at index; out-of-range indexes are ignored.
func (inv *Invoice) RemoveItem(index int) {
	if index < 0 || index >= len(inv.Items) {
		return
	}
	inv.Items = append(inv.Items[:index], inv.Items[index+1:]...)
}

// ClearItems drops all line items.
func (inv *Invoice) ClearItems() {
	inv.Items = nil
}

// CalculateTotals recomputes subtotal, VAT and total from the current items.
func (inv *Invoice) CalculateTotals() {
	var subtotal float64
	for _, it := range inv.Items {
		subtotal += it.Amount
	}
	inv.Subtotal = subtotal
	inv.VAT = inv.CalculateVAT(subtotal)
	inv.Total = round2(subtotal + inv.VAT)
}

// CalculateVAT returns the VAT for the given amount under this invoice's type.
func (inv *Invoice) CalculateVAT(amount float64) float64 {
	return round2(amount * inv.VATRate())
}

// CalculateFromTotal derives subtotal and VAT from a VAT-inclusive grand
// total. Used when an operator supplies only the total.
func (inv *Invoice) CalculateFromTotal(totalAmount float64) {
	if inv.Type == constants.TypeTax {
		// total = subtotal * 1.1
		inv.Subtotal = round2(totalAmount / 1.1)
		inv.VAT = round2(totalAmount - inv.Subtotal)
	} else {
		inv.Subtotal = totalAmount
		inv.VAT = 0.0
	}
	inv.Total = totalAmount
}

// Validate checks the invoice-level persistence rules.
func (inv *Invoice) Validate() (bool, error) {
	if inv.InvoiceNo != "" && len(inv.InvoiceNo) > constants.MaxInvoiceNoLen {
		return false, common.NewValidationError("invoice_no", inv.InvoiceNo,
			fmt.Sprintf("too long (max %d characters)", constants.MaxInvoiceNoLen))
	}
	if inv.Date.Year() < constants.MinInvoiceYear {
		return false, common.NewValidationError("date", inv.Date, "cannot be before year 2000")
	}
	if inv.Date.Year() > constants.MaxInvoiceYear {
		return false, common.NewValidationError("date", inv.Date, "cannot be after year 2100")
	}
	if inv.CustomerName == "" {
		return false, common.NewValidationError("customer_name", inv.CustomerName, "cannot be empty")
	}
	if len(inv.CustomerName) > constants.MaxCustomerLen {
		return false, common.NewValidationError("customer_name", inv.CustomerName,
			fmt.Sprintf("too long (max %d characters)", constants.MaxCustomerLen))
	}
	if len(inv.Items) == 0 {
		return false, common.NewValidationError("items", nil, "invoice must have at least one item")
	}
	if inv.Total < 0 || inv.Total > constants.MaxAmount {
		return false, common.NewValidationError("total", inv.Total, "outside allowed range")
	}
	return true, nil
}

// Duplicate produces a new invoice with the supplied identity and date,
// copied customer linkage and a value-copy of all line items. Financial
// fields are recomputed, never copied; confidence, metadata, file path and
// persisted identity do not carry over.
func (inv *Invoice) Duplicate(newInvoiceNo string, newDate time.Time) *Invoice {
	if newDate.IsZero() {
		newDate = time.Now()
	}
	dup := New(inv.Type, inv.Currency)
	dup.InvoiceNo = newInvoiceNo
	dup.Date = newDate
	dup.CustomerID = inv.CustomerID
	dup.CustomerName = inv.CustomerName
	dup.Items = make([]LineItem, len(inv.Items))
	copy(dup.Items, inv.Items)
	dup.CalculateTotals()
	return dup
}

// FromExtractedRecord maps a backend record onto a new invoice. Items that
// fail their own validation are skipped rather than failing the whole
// invoice; one bad line must not block the rest. Fields with no first-class
// column land in Metadata. The VAT invariant is enforced last, overriding the
// record's claimed vat/total.
func FromExtractedRecord(rec *ExtractedRecord, invoiceType constants.InvoiceType, poID *int64, confidence *float64) *Invoice {
	currency := rec.Currency
	if currency == "" {
		currency = constants.DefaultCurrency
	}

	inv := New(invoiceType, currency)
	inv.CustomerName = rec.CustomerName
	inv.POID = poID
	inv.ExtractionConfidence = confidence

	if rec.Date != "" {
		if d, err := time.Parse("2006-01-02", rec.Date); err == nil {
			inv.Date = d
		}
	}

	for _, it := range rec.Items {
		_ = inv.AddItem(it.Description, it.Quantity, it.UnitPrice)
	}

	if rec.Subtotal != nil {
		inv.Subtotal = *rec.Subtotal
	} else {
		var sum float64
		for _, it := range inv.Items {
			sum += it.Amount
		}
		inv.Subtotal = sum
	}

	// VAT and total follow the type rule regardless of what was claimed.
	inv.VAT = inv.CalculateVAT(inv.Subtotal)
	inv.Total = round2(inv.Subtotal + inv.VAT)

	meta := map[string]string{}
	if rec.PONumber != "" {
		meta["po_number"] = rec.PONumber
	}
	if rec.CustomerAddress != "" {
		meta["customer_address"] = rec.CustomerAddress
	}
	if rec.CustomerContact != "" {
		meta["customer_contact"] = rec.CustomerContact
	}
	if rec.PaymentTerms != "" {
		meta["payment_terms"] = rec.PaymentTerms
	}
	if rec.DeliveryDate != "" {
		meta["delivery_date"] = rec.DeliveryDate
	}
	if rec.Notes != "" {
		meta["notes"] = rec.Notes
		inv.Notes = rec.Notes
	}
	inv.Metadata = meta

	return inv
}

func (inv *Invoice) String() string {
	return fmt.Sprintf("Invoice(%s, %s, %s, %v)", inv.InvoiceNo, inv.Type, inv.CustomerName, inv.Total)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
