package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver
	_ "modernc.org/sqlite"             // sqlite driver

	"github.com/suh004757/AI-Invoice-Generator/constants"
	"github.com/suh004757/AI-Invoice-Generator/internal/invoice"
)

const dateLayout = "2006-01-02"

// SQLStore implements Store over database/sql. The driver is picked from the
// DSN: postgres:// DSNs go through pgx, everything else through the embedded
// sqlite driver.
type SQLStore struct {
	db     *sql.DB
	pg     bool
	logger *slog.Logger
}

// Open connects to the database behind dsn and, for sqlite, bootstraps the
// schema.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	driver := "sqlite"
	pg := strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
	if pg {
		driver = "pgx"
	}

	logger.Info("repository.open", "driver", driver)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLStore{db: db, pg: pg, logger: logger}

	if !pg {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
		if err := s.bootstrap(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	logger.Info("repository.open.ok", "driver", driver)
	return s, nil
}

func (s *SQLStore) bootstrap(ctx context.Context) error {
	for _, ddl := range createTables {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	for _, ddl := range createIndexes {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// Close closes the underlying connection.
func (s *SQLStore) Close() error {
	s.logger.Info("repository.close")
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for the postgres driver.
func (s *SQLStore) rebind(query string) string {
	if !s.pg {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NextInvoiceNumber allocates the next number in the per-year sequence,
// formatted YYYY-NNN. Numbers are zero padded so lexical DESC ordering
// matches numeric ordering.
func (s *SQLStore) NextInvoiceNumber(ctx context.Context, year int) (string, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT invoice_no FROM invoices WHERE invoice_no LIKE ? ORDER BY invoice_no DESC LIMIT 1`),
		fmt.Sprintf("%d-%%", year))

	var last string
	num := 1
	switch err := row.Scan(&last); err {
	case nil:
		parts := strings.SplitN(last, "-", 2)
		if len(parts) == 2 {
			if n, err := strconv.Atoi(parts[1]); err == nil {
				num = n + 1
			}
		}
	case sql.ErrNoRows:
		// first invoice of the year
	default:
		return "", fmt.Errorf("query last invoice number: %w", err)
	}

	return fmt.Sprintf("%d-%03d", year, num), nil
}

// GetCustomerByName finds a customer by exact name; (nil, nil) when absent.
func (s *SQLStore) GetCustomerByName(ctx context.Context, name string) (*Customer, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, name, COALESCE(contact_person,''), COALESCE(address,''), COALESCE(email,''), COALESCE(phone,'')
		 FROM customers WHERE name = ?`), name)

	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.ContactPerson, &c.Address, &c.Email, &c.Phone)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query customer: %w", err)
	}
	return &c, nil
}

// AddCustomer inserts a customer and returns its id.
func (s *SQLStore) AddCustomer(ctx context.Context, c *Customer) (int64, error) {
	now := time.Now().Format(time.RFC3339)
	row := s.db.QueryRowContext(ctx, s.rebind(
		`INSERT INTO customers (name, contact_person, address, email, phone, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		c.Name, c.ContactPerson, c.Address, c.Email, c.Phone, now, now)

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("insert customer: %w", err)
	}
	c.ID = id
	return id, nil
}

const invoiceColumns = `id, invoice_no, date, type, customer_id, customer_name,
	COALESCE(currency,'KRW'), subtotal, vat, total, po_id, extraction_confidence,
	metadata, COALESCE(file_path,''), COALESCE(notes,'')`

// GetInvoiceByNumber loads an invoice and its ordered items; (nil, nil) when
// absent.
func (s *SQLStore) GetInvoiceByNumber(ctx context.Context, number string) (*invoice.Invoice, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+invoiceColumns+` FROM invoices WHERE invoice_no = ?`), number)

	inv, err := scanInvoice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query invoice: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(
		`SELECT item_id, description, quantity, unit_price, amount
		 FROM invoice_items WHERE invoice_id = ? ORDER BY line_order`), inv.ID)
	if err != nil {
		return nil, fmt.Errorf("query invoice items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it invoice.LineItem
		var itemID sql.NullInt64
		if err := rows.Scan(&itemID, &it.Description, &it.Quantity, &it.UnitPrice, &it.Amount); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		if itemID.Valid {
			it.ItemID = &itemID.Int64
		}
		inv.Items = append(inv.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoice items: %w", err)
	}

	return inv, nil
}

// SearchInvoices filters invoices; items are not loaded for result lists.
func (s *SQLStore) SearchInvoices(ctx context.Context, filters Filters) ([]*invoice.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE 1=1`
	var args []any

	if filters.Customer != "" {
		query += " AND customer_name LIKE ?"
		args = append(args, "%"+filters.Customer+"%")
	}
	if filters.Type != "" {
		query += " AND type = ?"
		args = append(args, filters.Type)
	}
	if filters.DateFrom != "" {
		query += " AND date >= ?"
		args = append(args, filters.DateFrom)
	}
	if filters.DateTo != "" {
		query += " AND date <= ?"
		args = append(args, filters.DateTo)
	}
	if filters.Month != "" {
		query += " AND date LIKE ?"
		args = append(args, filters.Month+"%")
	}
	query += " ORDER BY date DESC, invoice_no DESC"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("search invoices: %w", err)
	}
	defer rows.Close()

	var results []*invoice.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		results = append(results, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}
	return results, nil
}

// AddInvoice persists an invoice with its items in one transaction and
// returns the new id.
func (s *SQLStore) AddInvoice(ctx context.Context, inv *invoice.Invoice) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().Format(time.RFC3339)
	row := tx.QueryRowContext(ctx, s.rebind(
		`INSERT INTO invoices (invoice_no, date, type, customer_id, customer_name, currency,
			subtotal, vat, total, po_id, extraction_confidence, metadata, file_path, notes,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		inv.InvoiceNo, inv.Date.Format(dateLayout), string(inv.Type), inv.CustomerID,
		inv.CustomerName, inv.Currency, inv.Subtotal, inv.VAT, inv.Total, inv.POID,
		inv.ExtractionConfidence, marshalMetadata(inv.Metadata), inv.FilePath, inv.Notes,
		now, now)

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("insert invoice: %w", err)
	}

	if err := s.insertItems(ctx, tx, id, inv.Items); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	inv.ID = id
	s.logger.Info("repository.invoice.added", "invoice_no", inv.InvoiceNo, "id", id, "items", len(inv.Items))
	return id, nil
}

// UpdateInvoice rewrites the invoice row and replaces all its items.
func (s *SQLStore) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	if inv.ID == 0 {
		return fmt.Errorf("update invoice: missing id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().Format(time.RFC3339)
	_, err = tx.ExecContext(ctx, s.rebind(
		`UPDATE invoices SET invoice_no = ?, date = ?, type = ?, customer_id = ?,
			customer_name = ?, currency = ?, subtotal = ?, vat = ?, total = ?,
			po_id = ?, extraction_confidence = ?, metadata = ?, file_path = ?,
			notes = ?, updated_at = ?
		 WHERE id = ?`),
		inv.InvoiceNo, inv.Date.Format(dateLayout), string(inv.Type), inv.CustomerID,
		inv.CustomerName, inv.Currency, inv.Subtotal, inv.VAT, inv.Total, inv.POID,
		inv.ExtractionConfidence, marshalMetadata(inv.Metadata), inv.FilePath, inv.Notes,
		now, inv.ID)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}

	if _, err := tx.ExecContext(ctx, s.rebind(
		`DELETE FROM invoice_items WHERE invoice_id = ?`), inv.ID); err != nil {
		return fmt.Errorf("delete invoice items: %w", err)
	}
	if err := s.insertItems(ctx, tx, inv.ID, inv.Items); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.logger.Info("repository.invoice.updated", "invoice_no", inv.InvoiceNo, "id", inv.ID)
	return nil
}

// AddPurchaseOrder inserts a source-document row and returns its id.
func (s *SQLStore) AddPurchaseOrder(ctx context.Context, po *PurchaseOrder) (int64, error) {
	if po.Status == "" {
		po.Status = string(constants.POStatusUploaded)
	}
	if po.UploadDate == "" {
		po.UploadDate = time.Now().Format(time.RFC3339)
	}

	row := s.db.QueryRowContext(ctx, s.rebind(
		`INSERT INTO purchase_orders (original_filename, file_path, file_type, extracted_text, content_hash, status, upload_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		po.OriginalFilename, po.FilePath, po.FileType, po.ExtractedText, po.ContentHash, po.Status, po.UploadDate)

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("insert purchase order: %w", err)
	}
	po.ID = id
	return id, nil
}

// GetPurchaseOrderByHash finds an already-ingested document by content hash;
// (nil, nil) when absent.
func (s *SQLStore) GetPurchaseOrderByHash(ctx context.Context, hash string) (*PurchaseOrder, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, original_filename, file_path, file_type, COALESCE(extracted_text,''),
			COALESCE(content_hash,''), COALESCE(status,''), upload_date
		 FROM purchase_orders WHERE content_hash = ?`), hash)

	var po PurchaseOrder
	err := row.Scan(&po.ID, &po.OriginalFilename, &po.FilePath, &po.FileType,
		&po.ExtractedText, &po.ContentHash, &po.Status, &po.UploadDate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query purchase order: %w", err)
	}
	return &po, nil
}

// GetPurchaseOrderByID loads one source document; (nil, nil) when absent.
func (s *SQLStore) GetPurchaseOrderByID(ctx context.Context, poID int64) (*PurchaseOrder, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, original_filename, file_path, file_type, COALESCE(extracted_text,''),
			COALESCE(content_hash,''), COALESCE(status,''), upload_date
		 FROM purchase_orders WHERE id = ?`), poID)

	var po PurchaseOrder
	err := row.Scan(&po.ID, &po.OriginalFilename, &po.FilePath, &po.FileType,
		&po.ExtractedText, &po.ContentHash, &po.Status, &po.UploadDate)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query purchase order: %w", err)
	}
	return &po, nil
}

// UpdatePOStatus moves a source document through its lifecycle.
func (s *SQLStore) UpdatePOStatus(ctx context.Context, poID int64, status string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE purchase_orders SET status = ? WHERE id = ?`), status, poID)
	if err != nil {
		return fmt.Errorf("update purchase order status: %w", err)
	}
	return nil
}

// LogExtraction appends one extraction audit row.
func (s *SQLStore) LogExtraction(ctx context.Context, entry *ExtractionLog) error {
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO extraction_logs (po_id, llm_provider, confidence_score, extracted_data, prompt_used, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`),
		entry.POID, entry.Provider, entry.Confidence, entry.ExtractedJSON, entry.Prompt, entry.Timestamp)
	if err != nil {
		return fmt.Errorf("insert extraction log: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*invoice.Invoice, error) {
	var (
		inv        invoice.Invoice
		dateStr    string
		typeStr    string
		customerID sql.NullInt64
		poID       sql.NullInt64
		confidence sql.NullFloat64
		metadata   sql.NullString
	)

	err := row.Scan(&inv.ID, &inv.InvoiceNo, &dateStr, &typeStr, &customerID,
		&inv.CustomerName, &inv.Currency, &inv.Subtotal, &inv.VAT, &inv.Total,
		&poID, &confidence, &metadata, &inv.FilePath, &inv.Notes)
	if err != nil {
		return nil, err
	}

	inv.Type = constants.InvoiceType(typeStr)
	if d, err := time.Parse(dateLayout, dateStr); err == nil {
		inv.Date = d
	}
	if customerID.Valid {
		inv.CustomerID = &customerID.Int64
	}
	if poID.Valid {
		inv.POID = &poID.Int64
	}
	if confidence.Valid {
		inv.ExtractionConfidence = &confidence.Float64
	}
	inv.Metadata = map[string]string{}
	if metadata.Valid && metadata.String != "" {
		_ = json.Unmarshal([]byte(metadata.String), &inv.Metadata)
	}

	return &inv, nil
}

func (s *SQLStore) insertItems(ctx context.Context, tx *sql.Tx, invoiceID int64, items []invoice.LineItem) error {
	for idx, it := range items {
		_, err := tx.ExecContext(ctx, s.rebind(
			`INSERT INTO invoice_items (invoice_id, item_id, description, quantity, unit_price, amount, line_order)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`),
			invoiceID, it.ItemID, it.Description, it.Quantity, it.UnitPrice, it.Amount, idx)
		if err != nil {
			return fmt.Errorf("insert invoice item: %w", err)
		}
	}
	return nil
}

func marshalMetadata(m map[string]string) any {
	if len(m) == 0 {
		return nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return string(b)
}
