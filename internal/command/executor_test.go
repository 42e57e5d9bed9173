package command

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suh004757/AI-Invoice-Generator/constants"
	"github.com/suh004757/AI-Invoice-Generator/internal/invoice"
	"github.com/suh004757/AI-Invoice-Generator/internal/repository"
)

// fakeStore is an in-memory Store for dispatcher tests.
type fakeStore struct {
	customers map[string]*repository.Customer
	invoices  map[string]*invoice.Invoice
	seq       int
	failWith  error
	searched  repository.Filters
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		customers: map[string]*repository.Customer{},
		invoices:  map[string]*invoice.Invoice{},
	}
}

func (f *fakeStore) NextInvoiceNumber(_ context.Context, year int) (string, error) {
	if f.failWith != nil {
		return "", f.failWith
	}
	f.seq++
	return fmt.Sprintf("%d-%03d", year, f.seq), nil
}

func (f *fakeStore) GetCustomerByName(_ context.Context, name string) (*repository.Customer, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.customers[name], nil
}

func (f *fakeStore) GetInvoiceByNumber(_ context.Context, number string) (*invoice.Invoice, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.invoices[number], nil
}

func (f *fakeStore) SearchInvoices(_ context.Context, filters repository.Filters) ([]*invoice.Invoice, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.searched = filters
	var out []*invoice.Invoice
	for _, inv := range f.invoices {
		out = append(out, inv)
	}
	return out, nil
}

func (f *fakeStore) AddInvoice(_ context.Context, inv *invoice.Invoice) (int64, error) {
	f.invoices[inv.InvoiceNo] = inv
	return int64(len(f.invoices)), nil
}

func (f *fakeStore) UpdateInvoice(context.Context, *invoice.Invoice) error { return nil }

func (f *fakeStore) AddCustomer(_ context.Context, c *repository.Customer) (int64, error) {
	f.customers[c.Name] = c
	return c.ID, nil
}

func (f *fakeStore) AddPurchaseOrder(context.Context, *repository.PurchaseOrder) (int64, error) {
	return 1, nil
}

func (f *fakeStore) GetPurchaseOrderByHash(context.Context, string) (*repository.PurchaseOrder, error) {
	return nil, nil
}

func (f *fakeStore) GetPurchaseOrderByID(context.Context, int64) (*repository.PurchaseOrder, error) {
	return nil, nil
}

func (f *fakeStore) UpdatePOStatus(context.Context, int64, string) error { return nil }

func (f *fakeStore) LogExtraction(context.Context, *repository.ExtractionLog) error { return nil }

func (f *fakeStore) Close() error { return nil }

func TestExecuteNewTaxInvoice(t *testing.T) {
	store := newFakeStore()
	store.customers["ABC Corp"] = &repository.Customer{ID: 7, Name: "ABC Corp"}
	e := NewExecutor(store, "KRW", nil)

	result := e.Execute(context.Background(), Parse(`new tax invoice customer="ABC Corp" total=3300000`))

	require.True(t, result.Success)
	assert.Contains(t, result.Message, "Created new Tax invoice")

	inv, ok := result.Data.(*invoice.Invoice)
	require.True(t, ok)
	assert.Equal(t, constants.TypeTax, inv.Type)
	assert.Equal(t, "ABC Corp", inv.CustomerName)
	require.NotNil(t, inv.CustomerID)
	assert.Equal(t, int64(7), *inv.CustomerID)
	assert.Equal(t, fmt.Sprintf("%d-001", time.Now().Year()), inv.InvoiceNo)

	// Total decomposes under the tax rule.
	assert.Equal(t, 3300000.0, inv.Total)
	assert.Equal(t, 3000000.0, inv.Subtotal)
	assert.Equal(t, 300000.0, inv.VAT)
}

func TestExecuteNewInvoiceKoreanParams(t *testing.T) {
	e := NewExecutor(newFakeStore(), "KRW", nil)

	result := e.Execute(context.Background(), Parse(`new normal invoice 고객="주식회사 가나다" 총액=300만원`))

	require.True(t, result.Success)
	inv := result.Data.(*invoice.Invoice)
	assert.Equal(t, constants.TypeNormal, inv.Type)
	assert.Equal(t, "주식회사 가나다", inv.CustomerName)
	assert.Nil(t, inv.CustomerID)
	assert.Equal(t, 3000000.0, inv.Total)
	assert.Equal(t, 0.0, inv.VAT)
}

func TestExecuteNewInvoiceCurrencyDefault(t *testing.T) {
	e := NewExecutor(newFakeStore(), "KRW", nil)

	inv := e.Execute(context.Background(), Parse(`new tax invoice`)).Data.(*invoice.Invoice)
	assert.Equal(t, "KRW", inv.Currency)

	inv = e.Execute(context.Background(), Parse(`new tax invoice 통화="USD"`)).Data.(*invoice.Invoice)
	assert.Equal(t, "USD", inv.Currency)
}

func TestExecuteSearchBuildsFilters(t *testing.T) {
	store := newFakeStore()
	store.invoices["2025-001"] = invoice.New(constants.TypeTax, "KRW")
	e := NewExecutor(store, "KRW", nil)

	result := e.Execute(context.Background(), Parse(`search invoice 고객="ABC" 월=2025-01 타입=Tax`))

	require.True(t, result.Success)
	assert.Equal(t, "Found 1 invoice(s)", result.Message)
	assert.Equal(t, "ABC", store.searched.Customer)
	assert.Equal(t, "2025-01", store.searched.Month)
	assert.Equal(t, "Tax", store.searched.Type)
}

func TestExecuteOpen(t *testing.T) {
	store := newFakeStore()
	stored := invoice.New(constants.TypeTax, "KRW")
	stored.InvoiceNo = "2025-001"
	store.invoices["2025-001"] = stored
	e := NewExecutor(store, "KRW", nil)

	t.Run("found", func(t *testing.T) {
		result := e.Execute(context.Background(), Parse(`open invoice 번호="2025-001"`))
		require.True(t, result.Success)
		assert.Same(t, stored, result.Data)
	})

	t.Run("not found", func(t *testing.T) {
		result := e.Execute(context.Background(), Parse(`open invoice 번호="2099-999"`))
		assert.False(t, result.Success)
		assert.Contains(t, result.Message, "Invoice not found: 2099-999")
	})

	t.Run("missing number", func(t *testing.T) {
		result := e.Execute(context.Background(), Parse(`open invoice`))
		assert.False(t, result.Success)
		assert.Contains(t, result.Message, "Invoice number required")
	})
}

func TestExecuteDuplicate(t *testing.T) {
	store := newFakeStore()
	original := invoice.New(constants.TypeTax, "KRW")
	original.InvoiceNo = "2025-001"
	original.CustomerName = "ABC Corp"
	require.NoError(t, original.AddItem("Widget", 5, 1200))
	original.CalculateTotals()
	store.invoices["2025-001"] = original
	e := NewExecutor(store, "KRW", nil)

	result := e.Execute(context.Background(), Parse(`duplicate invoice 번호="2025-001"`))

	require.True(t, result.Success)
	assert.Contains(t, result.Message, "Duplicated invoice 2025-001 as")

	dup := result.Data.(*invoice.Invoice)
	assert.NotEqual(t, original.InvoiceNo, dup.InvoiceNo)
	assert.Equal(t, original.Total, dup.Total)
	assert.Equal(t, "ABC Corp", dup.CustomerName)
}

func TestExecuteUnknownReturnsHelp(t *testing.T) {
	e := NewExecutor(newFakeStore(), "KRW", nil)

	result := e.Execute(context.Background(), Parse("do something clever"))

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "new tax invoice")
}

func TestExecuteStoreErrorBecomesResult(t *testing.T) {
	store := newFakeStore()
	store.failWith = errors.New("disk on fire")
	e := NewExecutor(store, "KRW", nil)

	result := e.Execute(context.Background(), Parse(`search invoice 고객="ABC"`))

	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "Error executing command")
	assert.Contains(t, result.Message, "disk on fire")
}

func TestExecuteObservers(t *testing.T) {
	e := NewExecutor(newFakeStore(), "KRW", nil)

	var created []*invoice.Invoice
	e.On(constants.EventInvoiceCreated, func(data any) {
		if inv, ok := data.(*invoice.Invoice); ok {
			created = append(created, inv)
		}
	})

	e.Execute(context.Background(), Parse(`new tax invoice customer="ABC"`))
	e.Execute(context.Background(), Parse(`new normal invoice customer="DEF"`))

	require.Len(t, created, 2)
	assert.Equal(t, "ABC", created[0].CustomerName)
	assert.Equal(t, "DEF", created[1].CustomerName)
}

func TestExecuteRecoversPanic(t *testing.T) {
	e := NewExecutor(newFakeStore(), "KRW", nil)

	var dispatched Result
	e.On(constants.EventInvoiceCreated, func(any) { panic("observer exploded") })
	dispatched = e.Execute(context.Background(), Parse(`new tax invoice customer="ABC"`))

	assert.False(t, dispatched.Success)
	assert.Contains(t, dispatched.Message, "Error executing command")
}
