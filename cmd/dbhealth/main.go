package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/suh004757/AI-Invoice-Generator/internal/common"
	"github.com/suh004757/AI-Invoice-Generator/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	store, err := repository.Open(openCtx, cfg.Database.DSN, logger)
	if err != nil {
		logger.Error("db health: FAIL", "dsn", cfg.Database.DSN, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// A cheap typed query proves the schema is usable, not just reachable.
	next, err := store.NextInvoiceNumber(ctx, time.Now().Year())
	if err != nil {
		logger.Error("db health: schema FAIL", "error", err)
		os.Exit(1)
	}

	logger.Info("db health: OK", "next_invoice_no", next)
}
