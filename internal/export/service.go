package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"

	"github.com/suh004757/AI-Invoice-Generator/constants"
	"github.com/suh004757/AI-Invoice-Generator/internal/invoice"
)

// Service renders invoices to XLSX workbooks on disk.
type Service struct {
	outputDir string
	logger    *slog.Logger
}

func NewService(outputDir string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{outputDir: outputDir, logger: logger}
}

// ExportInvoiceXLSX writes the invoice as an XLSX workbook under the output
// directory and returns the file path.
func (s *Service) ExportInvoiceXLSX(inv *invoice.Invoice) (string, error) {
	start := time.Now()

	buf, err := s.RenderXLSX(inv)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(s.outputDir, Filename(inv))
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return "", fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"invoice_no", inv.InvoiceNo,
		"path", path,
		"items", len(inv.Items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return path, nil
}

// RenderXLSX returns the workbook as bytes without touching disk.
func (s *Service) RenderXLSX(inv *invoice.Invoice) ([]byte, error) {
	f := excelize.NewFile()
	const sheet = "Invoice"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	_ = f.DeleteSheet("Sheet1")

	write := func(col, row int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}

	title := "INVOICE"
	if inv.Type == constants.TypeTax {
		title = "TAX INVOICE"
	}
	write(1, 1, title)
	write(1, 2, "Invoice No")
	write(2, 2, inv.InvoiceNo)
	write(1, 3, "Date")
	write(2, 3, inv.Date.Format("2006-01-02"))
	write(1, 4, "Customer")
	write(2, 4, inv.CustomerName)
	write(1, 5, "Currency")
	write(2, 5, inv.Currency)

	headers := []string{"No", "Description", "Quantity", "Unit Price", "Amount"}
	const headerRow = 7
	for i, h := range headers {
		write(i+1, headerRow, h)
	}

	row := headerRow + 1
	for i, it := range inv.Items {
		write(1, row, i+1)
		write(2, row, truncate(it.Description, 140))
		write(3, row, it.Quantity)
		write(4, row, it.UnitPrice)
		write(5, row, it.Amount)
		row++
	}

	row++
	write(4, row, "Subtotal")
	write(5, row, inv.Subtotal)
	row++
	if inv.Type == constants.TypeTax {
		write(4, row, "VAT (10%)")
		write(5, row, inv.VAT)
		row++
	}
	write(4, row, "Total")
	write(5, row, inv.Total)

	if inv.Notes != "" {
		row += 2
		write(1, row, "Notes")
		write(2, row, truncate(inv.Notes, 300))
	}

	_ = f.SetColWidth(sheet, "A", "A", 6)
	_ = f.SetColWidth(sheet, "B", "B", 42)
	_ = f.SetColWidth(sheet, "C", "C", 10)
	_ = f.SetColWidth(sheet, "D", "E", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename builds the export filename: YYYYMMDD_<no>_<customer>_<type>.xlsx.
func Filename(inv *invoice.Invoice) string {
	return fmt.Sprintf("%s_%s_%s_%s.xlsx",
		inv.Date.Format("20060102"),
		inv.InvoiceNo,
		sanitize(inv.CustomerName),
		string(inv.Type))
}

// sanitize keeps letters, digits, spaces, hyphens and underscores, converts
// spaces to underscores, and caps the length so paths stay manageable.
func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	out := b.String()
	if out == "" {
		out = "customer"
	}
	if runes := []rune(out); len(runes) > 30 {
		out = string(runes[:30])
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
