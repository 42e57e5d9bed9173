package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/suh004757/AI-Invoice-Generator/constants"
	"github.com/suh004757/AI-Invoice-Generator/internal/invoice"
	"github.com/suh004757/AI-Invoice-Generator/internal/repository"
)

// Result is the uniform envelope every directive resolves to. User-visible
// behavior downstream of setup is always a structured outcome, never an
// unhandled fault.
type Result struct {
	Success bool
	Message string
	Data    any
}

// Observer receives event payloads from the dispatcher.
type Observer func(data any)

// Executor routes parsed directives to domain actions against the financial
// model and the storage collaborator.
type Executor struct {
	store           repository.Store
	defaultCurrency string
	observers       map[string][]Observer
	logger          *slog.Logger
}

// NewExecutor wires a dispatcher over the given store.
func NewExecutor(store repository.Store, defaultCurrency string, logger *slog.Logger) *Executor {
	if defaultCurrency == "" {
		defaultCurrency = constants.DefaultCurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		store:           store,
		defaultCurrency: defaultCurrency,
		observers:       map[string][]Observer{},
		logger:          logger,
	}
}

// On registers an observer for an event name. Unobserved events are silently
// dropped at notify time.
func (e *Executor) On(event string, fn Observer) {
	e.observers[event] = append(e.observers[event], fn)
}

func (e *Executor) notify(event string, data any) {
	for _, fn := range e.observers[event] {
		fn(data)
	}
}

// Execute routes a parsed directive to its handler. Handler faults of any
// kind, panics included, come back as a failure result; Execute itself never
// raises.
func (e *Executor) Execute(ctx context.Context, parsed *ParsedCommand) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("command.execute.panic", "command", parsed.Type, "raw", parsed.Raw, "panic", r)
			result = Result{Success: false, Message: fmt.Sprintf("Error executing command: %v", r)}
		}
	}()

	start := time.Now()

	if parsed.Type == CmdUnknown {
		return Result{Success: false, Message: parsed.Help}
	}

	var err error
	switch parsed.Type {
	case CmdNewTax:
		result, err = e.handleNewInvoice(ctx, parsed.Params, constants.TypeTax)
	case CmdNewNormal:
		result, err = e.handleNewInvoice(ctx, parsed.Params, constants.TypeNormal)
	case CmdSearch:
		result, err = e.handleSearch(ctx, parsed.Params)
	case CmdOpen:
		result, err = e.handleOpen(ctx, parsed.Params)
	case CmdDuplicate:
		result, err = e.handleDuplicate(ctx, parsed.Params)
	default:
		return Result{Success: false, Message: "No handler for command type: " + string(parsed.Type)}
	}
	if err != nil {
		e.logger.Error("command.execute.error", "command", parsed.Type, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return Result{Success: false, Message: "Error executing command: " + err.Error()}
	}

	e.logger.Info("command.execute.ok", "command", parsed.Type, "success", result.Success,
		"elapsed_ms", time.Since(start).Milliseconds())
	return result
}

func (e *Executor) handleNewInvoice(ctx context.Context, params map[string]any, invoiceType constants.InvoiceType) (Result, error) {
	currency, ok := lookupString(params, "currency")
	if !ok {
		currency = e.defaultCurrency
	}
	inv := invoice.New(invoiceType, currency)

	number, err := e.store.NextInvoiceNumber(ctx, time.Now().Year())
	if err != nil {
		return Result{}, fmt.Errorf("allocate invoice number: %w", err)
	}
	inv.InvoiceNo = number

	if name, ok := lookupString(params, "customer"); ok && name != "" {
		inv.CustomerName = name
		customer, err := e.store.GetCustomerByName(ctx, name)
		if err != nil {
			return Result{}, fmt.Errorf("look up customer: %w", err)
		}
		if customer != nil {
			inv.CustomerID = &customer.ID
		}
	}

	if total, ok := lookupAmount(params, "total"); ok {
		inv.CalculateFromTotal(total)
	}

	e.notify(constants.EventInvoiceCreated, inv)

	return Result{
		Success: true,
		Message: fmt.Sprintf("Created new %s invoice: %s", inv.Type, inv.InvoiceNo),
		Data:    inv,
	}, nil
}

func (e *Executor) handleSearch(ctx context.Context, params map[string]any) (Result, error) {
	var filters repository.Filters
	if v, ok := lookupString(params, "customer"); ok {
		filters.Customer = v
	}
	if v, ok := lookupString(params, "month"); ok {
		filters.Month = v
	}
	if v, ok := lookupString(params, "type"); ok {
		filters.Type = v
	}
	if v, ok := lookupString(params, "date_from"); ok {
		filters.DateFrom = v
	}
	if v, ok := lookupString(params, "date_to"); ok {
		filters.DateTo = v
	}

	results, err := e.store.SearchInvoices(ctx, filters)
	if err != nil {
		return Result{}, fmt.Errorf("search invoices: %w", err)
	}

	e.notify(constants.EventSearchResults, results)

	return Result{
		Success: true,
		Message: fmt.Sprintf("Found %d invoice(s)", len(results)),
		Data:    results,
	}, nil
}

func (e *Executor) handleOpen(ctx context.Context, params map[string]any) (Result, error) {
	number, ok := lookupString(params, "number")
	if !ok || number == "" {
		return Result{Success: false, Message: `Invoice number required. Use: open invoice 번호="2025-001"`}, nil
	}

	inv, err := e.store.GetInvoiceByNumber(ctx, number)
	if err != nil {
		return Result{}, fmt.Errorf("load invoice: %w", err)
	}
	if inv == nil {
		return Result{Success: false, Message: "Invoice not found: " + number}, nil
	}

	e.notify(constants.EventInvoiceLoaded, inv)

	return Result{
		Success: true,
		Message: "Opened invoice: " + number,
		Data:    inv,
	}, nil
}

func (e *Executor) handleDuplicate(ctx context.Context, params map[string]any) (Result, error) {
	number, ok := lookupString(params, "number")
	if !ok || number == "" {
		return Result{Success: false, Message: `Invoice number required. Use: duplicate invoice 번호="2025-001"`}, nil
	}

	original, err := e.store.GetInvoiceByNumber(ctx, number)
	if err != nil {
		return Result{}, fmt.Errorf("load invoice: %w", err)
	}
	if original == nil {
		return Result{Success: false, Message: "Invoice not found: " + number}, nil
	}

	newNumber, err := e.store.NextInvoiceNumber(ctx, time.Now().Year())
	if err != nil {
		return Result{}, fmt.Errorf("allocate invoice number: %w", err)
	}

	duplicate := original.Duplicate(newNumber, time.Now())

	e.notify(constants.EventInvoiceCreated, duplicate)

	return Result{
		Success: true,
		Message: fmt.Sprintf("Duplicated invoice %s as %s", number, newNumber),
		Data:    duplicate,
	}, nil
}
