package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/suh004757/AI-Invoice-Generator/constants"
	"github.com/suh004757/AI-Invoice-Generator/internal/command"
	"github.com/suh004757/AI-Invoice-Generator/internal/common"
	"github.com/suh004757/AI-Invoice-Generator/internal/export"
	"github.com/suh004757/AI-Invoice-Generator/internal/extract"
	"github.com/suh004757/AI-Invoice-Generator/internal/ingest"
	"github.com/suh004757/AI-Invoice-Generator/internal/invoice"
	"github.com/suh004757/AI-Invoice-Generator/internal/llm"
	"github.com/suh004757/AI-Invoice-Generator/internal/pipeline"
	"github.com/suh004757/AI-Invoice-Generator/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	extractPath := flag.String("extract", "", "extract an invoice from a purchase-order text file and exit")
	invoiceType := flag.String("type", "", "invoice type for -extract: Tax or Normal (default from config)")
	flag.Parse()

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := repository.Open(ctx, cfg.Database.DSN, logger)
	cancel()
	if err != nil {
		logger.Error("open store", "dsn", cfg.Database.DSN, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	client, err := llm.NewClient(cfg.LLM, logger)
	if err != nil {
		logger.Error("create llm client", "provider", cfg.LLM.Provider, "error", err)
		os.Exit(1)
	}

	exporter := export.NewService(cfg.Invoice.OutputDir, logger)

	if *extractPath != "" {
		invType := constants.ParseInvoiceType(cfg.Invoice.DefaultType)
		if *invoiceType != "" {
			invType = constants.ParseInvoiceType(*invoiceType)
		}
		processor := pipeline.NewProcessor(
			store,
			ingest.NewIngestor(store, logger),
			extract.NewExtractor(client, logger),
			exporter,
			pipeline.Config{
				InvoiceType:     invType,
				DefaultCurrency: cfg.Invoice.DefaultCurrency,
				Provider:        cfg.LLM.Provider,
				SelfCheck:       true,
			},
			logger,
		)
		inv, err := processor.ProcessFile(context.Background(), *extractPath)
		if err != nil {
			logger.Error("extraction failed", "path", *extractPath, "error", err)
			os.Exit(1)
		}
		if inv == nil {
			fmt.Println("Already invoiced:", *extractPath)
			return
		}
		confidence := 0.0
		if inv.ExtractionConfidence != nil {
			confidence = *inv.ExtractionConfidence
		}
		fmt.Printf("Created %s invoice %s for %s (%s %s), confidence %.2f\n",
			inv.Type, inv.InvoiceNo, inv.CustomerName, inv.Currency,
			invoice.FormatCurrency(inv.Total, inv.Currency), confidence)
		fmt.Println("Exported:", inv.FilePath)
		return
	}

	executor := command.NewExecutor(store, cfg.Invoice.DefaultCurrency, logger)
	executor.On(constants.EventInvoiceCreated, func(data any) {
		inv, ok := data.(*invoice.Invoice)
		if !ok {
			return
		}
		ctx := context.Background()
		if inv.ID == 0 {
			if _, err := store.AddInvoice(ctx, inv); err != nil {
				logger.Error("persist invoice", "invoice_no", inv.InvoiceNo, "error", err)
				return
			}
		}
		path, err := exporter.ExportInvoiceXLSX(inv)
		if err != nil {
			logger.Error("export invoice", "invoice_no", inv.InvoiceNo, "error", err)
			return
		}
		inv.FilePath = path
		if err := store.UpdateInvoice(ctx, inv); err != nil {
			logger.Error("record export path", "invoice_no", inv.InvoiceNo, "error", err)
		}
	})

	runInteractive(executor, logger)
}

// runInteractive reads directives from stdin until exit/quit or EOF.
func runInteractive(executor *command.Executor, logger *slog.Logger) {
	fmt.Println("Invoice Studio. Type 'help' for commands, 'exit' to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "exit", "quit":
			return
		}

		parsed := command.Parse(line)
		if parsed.Type == command.CmdUnknown {
			fmt.Println(parsed.Help)
			fmt.Println("Did you mean:")
			for _, sg := range command.Suggest(line) {
				fmt.Println("  " + sg)
			}
			continue
		}

		result := executor.Execute(context.Background(), parsed)
		fmt.Println(result.Message)
		if invs, ok := result.Data.([]*invoice.Invoice); ok {
			for _, inv := range invs {
				fmt.Printf("  %s  %s  %-6s  %s %s\n",
					inv.InvoiceNo, inv.Date.Format("2006-01-02"), inv.Type,
					inv.Currency, invoice.FormatCurrency(inv.Total, inv.Currency))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		logger.Error("read stdin", "error", err)
	}
}
