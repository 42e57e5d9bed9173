package constants

import "strings"

// InvoiceType is the closed set of invoice kinds. Stable values (store these
// exact strings in DB).
type InvoiceType string

const (
	TypeTax    InvoiceType = "Tax"    // VAT = 10% of subtotal
	TypeNormal InvoiceType = "Normal" // VAT = 0
)

// TaxVATRate is the statutory VAT rate applied to Tax invoices.
const TaxVATRate = 0.10

// ParseInvoiceType canonicalizes free-form type strings ("tax", "TAX", ...).
// Anything that is not recognizably a tax invoice is Normal only when it says
// so; unknown input defaults to Tax, matching the product default.
func ParseInvoiceType(input string) InvoiceType {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "normal":
		return TypeNormal
	default:
		return TypeTax
	}
}

// Validation bounds shared by the financial model and the dispatcher.
const (
	MaxItemQuantity = 1_000_000
	MaxAmount       = 999_999_999_999
	MaxInvoiceNoLen = 50
	MaxCustomerLen  = 200
	MinInvoiceYear  = 2000
	MaxInvoiceYear  = 2100
	DefaultCurrency = "KRW"
)
