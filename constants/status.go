package constants

// POStatus is the canonical status for rows in purchase_orders.
type POStatus string

// Stable values (store these exact strings in DB).
const (
	POStatusUploaded  POStatus = "uploaded"  // text acquired, not yet extracted
	POStatusExtracted POStatus = "extracted" // extraction completed
	POStatusInvoiced  POStatus = "invoiced"  // folded into an invoice
	POStatusFailed    POStatus = "failed"    // terminal extraction failure
)

// Dispatcher observer event names.
const (
	EventInvoiceCreated = "invoice_created"
	EventInvoiceLoaded  = "invoice_loaded"
	EventSearchResults  = "search_results"
)
