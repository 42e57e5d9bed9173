package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suh004757/AI-Invoice-Generator/constants"
	"github.com/suh004757/AI-Invoice-Generator/internal/llm"
)

// stubClient replays a canned response (or error) for every chat call.
type stubClient struct {
	response string
	err      error
	calls    int
	lastMsgs []llm.Message
}

func (s *stubClient) Chat(_ context.Context, messages []llm.Message) (string, error) {
	s.calls++
	s.lastMsgs = messages
	return s.response, s.err
}

func (s *stubClient) TestConnection(context.Context) bool { return s.err == nil }

const completeResponse = `{
	"po_number": "PO-2025-001",
	"date": "2025-12-10",
	"customer_name": "ABC Corporation",
	"items": [
		{"description": "Laptop Computer", "quantity": 5, "unit_price": 1200.00, "amount": 6000.00},
		{"description": "Wireless Mouse", "quantity": 10, "unit_price": 25.00, "amount": 250.00}
	],
	"subtotal": 6250.00,
	"vat": 625.00,
	"total": 6875.00,
	"currency": "USD"
}`

func TestExtractCompleteRecord(t *testing.T) {
	client := &stubClient{response: "```json\n" + completeResponse + "\n```"}
	e := NewExtractor(client, nil)

	rec, confidence, err := e.Extract(context.Background(), "PO text", constants.TypeTax)

	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, 1.0, confidence)
	assert.Equal(t, "ABC Corporation", rec.CustomerName)
	require.Len(t, rec.Items, 2)

	require.NotNil(t, rec.Subtotal)
	assert.Equal(t, 6250.00, *rec.Subtotal)
	require.NotNil(t, rec.VAT)
	assert.Equal(t, 625.00, *rec.VAT)
	require.NotNil(t, rec.Total)
	assert.Equal(t, 6875.00, *rec.Total)
}

func TestExtractSendsTypedPrompt(t *testing.T) {
	client := &stubClient{response: completeResponse}
	e := NewExtractor(client, nil)

	_, _, err := e.Extract(context.Background(), "some PO body", constants.TypeNormal)
	require.NoError(t, err)

	require.Len(t, client.lastMsgs, 2)
	assert.Equal(t, llm.RoleSystem, client.lastMsgs[0].Role)
	assert.Equal(t, llm.RoleUser, client.lastMsgs[1].Role)
	assert.Contains(t, client.lastMsgs[1].Content, "some PO body")
	assert.Contains(t, client.lastMsgs[1].Content, "VAT must be 0")
}

func TestExtractBackendError(t *testing.T) {
	client := &stubClient{err: errors.New("connection refused")}
	e := NewExtractor(client, nil)

	rec, confidence, err := e.Extract(context.Background(), "PO text", constants.TypeTax)

	require.Error(t, err)
	assert.Nil(t, rec)
	assert.Equal(t, 0.0, confidence)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestExtractUnparsableResponse(t *testing.T) {
	client := &stubClient{response: "I'm sorry, I can't produce structured output for that."}
	e := NewExtractor(client, nil)

	rec, confidence, err := e.Extract(context.Background(), "PO text", constants.TypeTax)

	require.Error(t, err)
	assert.Nil(t, rec)
	assert.Equal(t, 0.0, confidence)
	assert.Contains(t, err.Error(), "failed to parse JSON")
}

func TestExtractOverridesClaimedVAT(t *testing.T) {
	client := &stubClient{response: `{
		"customer_name": "ABC Corp",
		"items": [{"description": "svc", "quantity": 1, "unit_price": 1000, "amount": 1000}],
		"subtotal": 1000,
		"vat": 37,
		"total": 2000
	}`}
	e := NewExtractor(client, nil)

	rec, _, err := e.Extract(context.Background(), "PO", constants.TypeTax)
	require.NoError(t, err)
	assert.Equal(t, 100.0, *rec.VAT)
	assert.Equal(t, 1100.0, *rec.Total)

	rec, _, err = e.Extract(context.Background(), "PO", constants.TypeNormal)
	require.NoError(t, err)
	assert.Equal(t, 0.0, *rec.VAT)
	assert.Equal(t, 1000.0, *rec.Total)
}

func TestExtractDerivesMissingSubtotal(t *testing.T) {
	client := &stubClient{response: `{
		"customer_name": "ABC Corp",
		"items": [
			{"description": "a", "quantity": 2, "unit_price": 50, "amount": 100},
			{"description": "b", "quantity": 1, "unit_price": 400, "amount": 400}
		],
		"total": 550
	}`}
	e := NewExtractor(client, nil)

	rec, _, err := e.Extract(context.Background(), "PO", constants.TypeTax)
	require.NoError(t, err)
	require.NotNil(t, rec.Subtotal)
	assert.Equal(t, 500.0, *rec.Subtotal)
	assert.Equal(t, 50.0, *rec.VAT)
	assert.Equal(t, 550.0, *rec.Total)
}

func TestComputeConfidence(t *testing.T) {
	parse := func(t *testing.T, raw string) any {
		t.Helper()
		v, ok := llm.ParseJSONResponse(raw)
		require.True(t, ok)
		return v
	}

	t.Run("complete and consistent", func(t *testing.T) {
		assert.Equal(t, 1.0, computeConfidence(parse(t, completeResponse)))
	})

	t.Run("empty object floors near zero", func(t *testing.T) {
		// Three missing top-level fields plus no items: 1.0 - 0.6 - 0.3.
		assert.InDelta(t, 0.1, computeConfidence(parse(t, `{}`)), 1e-9)
	})

	t.Run("missing customer", func(t *testing.T) {
		score := computeConfidence(parse(t, `{
			"items": [{"description": "x", "quantity": 1, "unit_price": 100, "amount": 100}],
			"subtotal": 100,
			"total": 100
		}`))
		assert.InDelta(t, 0.8, score, 1e-9)
	})

	t.Run("incomplete item", func(t *testing.T) {
		score := computeConfidence(parse(t, `{
			"customer_name": "ABC",
			"items": [{"description": "x", "quantity": 1}],
			"total": 100
		}`))
		assert.InDelta(t, 0.9, score, 1e-9)
	})

	t.Run("subtotal drift", func(t *testing.T) {
		score := computeConfidence(parse(t, `{
			"customer_name": "ABC",
			"items": [{"description": "x", "quantity": 1, "unit_price": 100, "amount": 100}],
			"subtotal": 150,
			"total": 150
		}`))
		assert.InDelta(t, 0.9, score, 1e-9)
	})

	t.Run("vat drift", func(t *testing.T) {
		score := computeConfidence(parse(t, `{
			"customer_name": "ABC",
			"items": [{"description": "x", "quantity": 1, "unit_price": 100, "amount": 100}],
			"subtotal": 100,
			"vat": 37,
			"total": 137
		}`))
		assert.InDelta(t, 0.9, score, 1e-9)
	})

	t.Run("zero vat is not drift", func(t *testing.T) {
		score := computeConfidence(parse(t, `{
			"customer_name": "ABC",
			"items": [{"description": "x", "quantity": 1, "unit_price": 100, "amount": 100}],
			"subtotal": 100,
			"vat": 0,
			"total": 100
		}`))
		assert.InDelta(t, 1.0, score, 1e-9)
	})

	t.Run("zero total counts as missing", func(t *testing.T) {
		score := computeConfidence(parse(t, `{
			"customer_name": "ABC",
			"items": [{"description": "x", "quantity": 1, "unit_price": 100, "amount": 100}],
			"subtotal": 100,
			"total": 0
		}`))
		assert.InDelta(t, 0.8, score, 1e-9)
	})

	t.Run("never below zero", func(t *testing.T) {
		score := computeConfidence(parse(t, `[1, 2, 3]`))
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 1.0)
	})
}
