package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/suh004757/AI-Invoice-Generator/constants"
	"github.com/suh004757/AI-Invoice-Generator/internal/invoice"
	"github.com/suh004757/AI-Invoice-Generator/internal/llm"
)

// Extractor composes prompt building, the backend call and response
// normalization into the extraction pipeline. The backend is an untrusted
// oracle: the extractor stays correct when it is absent, slow or wrong, and
// never lets a raw fault reach its caller.
type Extractor struct {
	client llm.Client
	logger *slog.Logger
}

// NewExtractor wires an extractor over the given backend client.
func NewExtractor(client llm.Client, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{client: client, logger: logger}
}

// Extract turns PO text into a candidate invoice record. The returned error
// is a value describing the failure, not a fault in flight: callers get
// (nil, 0.0, err) on any backend or parse problem. On success the record's
// subtotal/vat/total already satisfy the invoice-type invariant regardless
// of what the backend claimed.
func (e *Extractor) Extract(ctx context.Context, poText string, invoiceType constants.InvoiceType) (*invoice.ExtractedRecord, float64, error) {
	rid := uuid.New().String()
	start := time.Now()

	e.logger.Info("extract.start", "req_id", rid, "type", invoiceType, "text_len", len(poText))

	system, user := llm.BuildExtractionPrompt(poText, invoiceType)

	response, err := e.client.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: user},
	})
	if err != nil {
		e.logger.Error("extract.backend_error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, 0.0, fmt.Errorf("extraction error: %w", err)
	}

	tree, ok := llm.ParseJSONResponse(response)
	if !ok {
		e.logger.Error("extract.parse_failure", "req_id", rid, "response_len", len(response),
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, 0.0, fmt.Errorf("failed to parse JSON from LLM response")
	}

	// Schema mismatch is a diagnostic, not a failure; the confidence score
	// and field-by-field decode carry the real tolerance.
	if raw, err := json.Marshal(tree); err == nil {
		if err := llm.ValidateJSONAgainstSchema(llm.BuildInvoiceJSONSchema(), raw); err != nil {
			e.logger.Warn("extract.schema_mismatch", "req_id", rid, "error", err)
		}
	}

	confidence := computeConfidence(tree)

	rec := llm.DecodeRecord(tree)
	if rec == nil {
		e.logger.Error("extract.not_an_object", "req_id", rid,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, 0.0, fmt.Errorf("failed to parse JSON from LLM response")
	}

	enforceVATInvariant(rec, invoiceType)

	e.logger.Info("extract.ok",
		"req_id", rid,
		"customer", rec.CustomerName,
		"items", len(rec.Items),
		"total", rec.Total,
		"confidence", confidence,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, confidence, nil
}

// Confidence penalties. Heuristic, preserved exactly for compatibility with
// historical scores; a policy knob, not a law.
const (
	penaltyMissingField   = 0.2
	penaltyNoItems        = 0.3
	penaltyItemIncomplete = 0.1
	penaltySubtotalDrift  = 0.1
	penaltyVATDrift       = 0.1
	arithmeticTolerance   = 0.01
)

// computeConfidence scores the raw (pre fix-up) value tree on completeness
// and arithmetic self-consistency. Always in [0, 1].
func computeConfidence(tree any) float64 {
	confidence := 1.0

	for _, field := range []string{"customer_name", "items", "total"} {
		if !llm.HasField(tree, field) {
			confidence -= penaltyMissingField
		}
	}

	m, _ := tree.(map[string]any)
	items, _ := m["items"].([]any)

	if len(items) > 0 {
		for _, raw := range items {
			im, ok := raw.(map[string]any)
			if !ok {
				confidence -= penaltyItemIncomplete
				continue
			}
			for _, k := range []string{"description", "quantity", "unit_price", "amount"} {
				if _, present := im[k]; !present {
					confidence -= penaltyItemIncomplete
					break
				}
			}
		}
	} else {
		confidence -= penaltyNoItems
	}

	if len(items) > 0 {
		var calculated float64
		for _, raw := range items {
			if im, ok := raw.(map[string]any); ok {
				calculated += numberAt(im, "amount")
			}
		}
		claimed := numberAt(m, "subtotal")
		if math.Abs(calculated-claimed) > arithmeticTolerance {
			confidence -= penaltySubtotalDrift
		}
	}

	if _, hasSub := m["subtotal"]; hasSub {
		if _, hasVAT := m["vat"]; hasVAT {
			expected := numberAt(m, "subtotal") * constants.TaxVATRate
			actual := numberAt(m, "vat")
			if math.Abs(expected-actual) > arithmeticTolerance && actual != 0 {
				confidence -= penaltyVATDrift
			}
		}
	}

	return math.Max(0.0, math.Min(1.0, confidence))
}

// enforceVATInvariant derives a missing subtotal from item amounts, then
// unconditionally overwrites vat and total under the invoice-type rule. The
// backend's claimed vat/total only ever feed the confidence score.
func enforceVATInvariant(rec *invoice.ExtractedRecord, invoiceType constants.InvoiceType) {
	if rec.Subtotal == nil {
		sum := rec.SumAmounts()
		rec.Subtotal = &sum
	}
	subtotal := *rec.Subtotal

	var vat, total float64
	if invoiceType == constants.TypeTax {
		vat = round2(subtotal * constants.TaxVATRate)
		total = round2(subtotal + vat)
	} else {
		vat = 0
		total = subtotal
	}
	rec.VAT = &vat
	rec.Total = &total
}

func numberAt(m map[string]any, key string) float64 {
	if f, ok := m[key].(float64); ok {
		return f
	}
	return 0
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
