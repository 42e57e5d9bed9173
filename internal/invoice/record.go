package invoice

// ExtractedRecord is the backend's claimed structured output for a purchase
// order. It is transient and untrusted: nothing in it is authoritative until
// it has been folded into an Invoice and the VAT invariant enforced.
type ExtractedRecord struct {
	PONumber        string     `json:"po_number,omitempty"`
	Date            string     `json:"date,omitempty"` // YYYY-MM-DD
	CustomerName    string     `json:"customer_name"`
	CustomerAddress string     `json:"customer_address,omitempty"`
	CustomerContact string     `json:"customer_contact,omitempty"`
	Items           []LineItem `json:"items"`
	Subtotal        *float64   `json:"subtotal,omitempty"`
	VAT             *float64   `json:"vat,omitempty"`
	Total           *float64   `json:"total,omitempty"`
	Currency        string     `json:"currency,omitempty"`
	PaymentTerms    string     `json:"payment_terms,omitempty"`
	DeliveryDate    string     `json:"delivery_date,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

// LineItem is a single invoice line. Amount is always recomputed as
// quantity x unit price; the backend's claimed amount only feeds the
// confidence score.
type LineItem struct {
	ItemID      *int64  `json:"item_id,omitempty"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Amount      float64 `json:"amount"`
}

// SumAmounts returns the sum of the record's claimed line amounts.
func (r *ExtractedRecord) SumAmounts() float64 {
	var sum float64
	for _, it := range r.Items {
		sum += it.Amount
	}
	return sum
}
