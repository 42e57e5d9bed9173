package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/suh004757/AI-Invoice-Generator/constants"
	"github.com/suh004757/AI-Invoice-Generator/internal/export"
	"github.com/suh004757/AI-Invoice-Generator/internal/extract"
	"github.com/suh004757/AI-Invoice-Generator/internal/ingest"
	"github.com/suh004757/AI-Invoice-Generator/internal/invoice"
	"github.com/suh004757/AI-Invoice-Generator/internal/repository"
)

// Config tunes a processing run.
type Config struct {
	InvoiceType     constants.InvoiceType
	DefaultCurrency string
	Provider        string // recorded in extraction logs
	SelfCheck       bool   // ask the backend to review its own extraction
}

// Processor drives one purchase-order file through the full chain: ingest,
// extraction, invoice construction, persistence and export. Both the
// interactive binary and the batch binary sit on top of it.
type Processor struct {
	store     repository.Store
	ingestor  *ingest.Ingestor
	extractor *extract.Extractor
	exporter  *export.Service
	cfg       Config
	logger    *slog.Logger
}

func NewProcessor(store repository.Store, ingestor *ingest.Ingestor, extractor *extract.Extractor,
	exporter *export.Service, cfg Config, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = constants.DefaultCurrency
	}
	return &Processor{
		store:     store,
		ingestor:  ingestor,
		extractor: extractor,
		exporter:  exporter,
		cfg:       cfg,
		logger:    logger,
	}
}

// ProcessFile runs the chain for one file. A document already seen and
// already invoiced is skipped with a nil invoice; callers treat that as a
// no-op, not an error.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*invoice.Invoice, error) {
	start := time.Now()

	res, err := p.ingestor.IngestPath(ctx, path)
	if err != nil {
		return nil, err
	}

	po, err := p.store.GetPurchaseOrderByHash(ctx, res.HashHex)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, fmt.Errorf("purchase order vanished after ingest: %s", path)
	}
	if res.Deduplicated && po.Status == string(constants.POStatusInvoiced) {
		p.logger.Info("pipeline.skip.already_invoiced", "path", path, "po_id", po.ID)
		return nil, nil
	}

	rec, confidence, err := p.extractor.Extract(ctx, po.ExtractedText, p.cfg.InvoiceType)

	logEntry := &repository.ExtractionLog{
		POID:       po.ID,
		Provider:   p.cfg.Provider,
		Confidence: confidence,
	}
	if rec != nil {
		if b, merr := json.Marshal(rec); merr == nil {
			logEntry.ExtractedJSON = string(b)
		}
	}
	if logErr := p.store.LogExtraction(ctx, logEntry); logErr != nil {
		p.logger.Warn("pipeline.log_extraction", "po_id", po.ID, "error", logErr)
	}

	if err != nil {
		_ = p.store.UpdatePOStatus(ctx, po.ID, string(constants.POStatusFailed))
		return nil, err
	}
	if err := p.store.UpdatePOStatus(ctx, po.ID, string(constants.POStatusExtracted)); err != nil {
		return nil, err
	}

	if p.cfg.SelfCheck {
		verdict := p.extractor.Validate(ctx, rec, po.ExtractedText)
		for _, w := range verdict.Warnings {
			p.logger.Warn("pipeline.review.warning", "po_id", po.ID, "warning", w)
		}
		for _, e := range verdict.Errors {
			p.logger.Warn("pipeline.review.error", "po_id", po.ID, "error", e)
		}
	}

	inv := invoice.FromExtractedRecord(rec, p.cfg.InvoiceType, &po.ID, &confidence)
	if rec.Currency == "" {
		inv.Currency = p.cfg.DefaultCurrency
	}

	number, err := p.store.NextInvoiceNumber(ctx, inv.Date.Year())
	if err != nil {
		return nil, err
	}
	inv.InvoiceNo = number

	if rec.CustomerName != "" {
		if c, cerr := p.store.GetCustomerByName(ctx, rec.CustomerName); cerr == nil && c != nil {
			inv.CustomerID = &c.ID
		}
	}

	if ok, verr := inv.Validate(); !ok {
		_ = p.store.UpdatePOStatus(ctx, po.ID, string(constants.POStatusFailed))
		return nil, verr
	}
	if _, err := p.store.AddInvoice(ctx, inv); err != nil {
		return nil, err
	}

	xlsxPath, err := p.exporter.ExportInvoiceXLSX(inv)
	if err != nil {
		return nil, err
	}
	inv.FilePath = xlsxPath
	if err := p.store.UpdateInvoice(ctx, inv); err != nil {
		return nil, err
	}
	if err := p.store.UpdatePOStatus(ctx, po.ID, string(constants.POStatusInvoiced)); err != nil {
		return nil, err
	}

	p.logger.Info("pipeline.ok",
		"path", path,
		"po_id", po.ID,
		"invoice_no", inv.InvoiceNo,
		"confidence", confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return inv, nil
}
