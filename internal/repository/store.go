package repository

import (
	"context"

	"github.com/suh004757/AI-Invoice-Generator/internal/invoice"
)

// Customer is a stored customer record.
type Customer struct {
	ID            int64
	Name          string
	ContactPerson string
	Address       string
	Email         string
	Phone         string
}

// PurchaseOrder is a stored source document row. The text is already
// acquired; how it was produced (PDF, image, OCR) is not this layer's
// concern.
type PurchaseOrder struct {
	ID               int64
	OriginalFilename string
	FilePath         string
	FileType         string
	ExtractedText    string
	ContentHash      string // sha256 of the raw file, hex encoded
	Status           string
	UploadDate       string
}

// ExtractionLog is one audit row per backend extraction attempt.
type ExtractionLog struct {
	POID          int64
	Provider      string
	Confidence    float64
	ExtractedJSON string
	Prompt        string
	Timestamp     string
}

// Filters narrows an invoice search. Zero values mean "not filtered".
type Filters struct {
	Customer string // partial match
	Month    string // YYYY-MM
	Type     string // Tax / Normal
	DateFrom string // YYYY-MM-DD inclusive
	DateTo   string // YYYY-MM-DD inclusive
}

// Store is the storage contract the dispatcher consumes. Implementations
// serialize their own writes; callers hold one store per dispatcher.
type Store interface {
	NextInvoiceNumber(ctx context.Context, year int) (string, error)
	GetCustomerByName(ctx context.Context, name string) (*Customer, error)
	GetInvoiceByNumber(ctx context.Context, number string) (*invoice.Invoice, error)
	SearchInvoices(ctx context.Context, filters Filters) ([]*invoice.Invoice, error)
	AddInvoice(ctx context.Context, inv *invoice.Invoice) (int64, error)
	UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error
	AddCustomer(ctx context.Context, c *Customer) (int64, error)
	AddPurchaseOrder(ctx context.Context, po *PurchaseOrder) (int64, error)
	GetPurchaseOrderByHash(ctx context.Context, hash string) (*PurchaseOrder, error)
	GetPurchaseOrderByID(ctx context.Context, poID int64) (*PurchaseOrder, error)
	UpdatePOStatus(ctx context.Context, poID int64, status string) error
	LogExtraction(ctx context.Context, entry *ExtractionLog) error
	Close() error
}
