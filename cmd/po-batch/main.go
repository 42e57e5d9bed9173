package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/suh004757/AI-Invoice-Generator/constants"
	"github.com/suh004757/AI-Invoice-Generator/internal/async"
	"github.com/suh004757/AI-Invoice-Generator/internal/common"
	"github.com/suh004757/AI-Invoice-Generator/internal/export"
	"github.com/suh004757/AI-Invoice-Generator/internal/extract"
	"github.com/suh004757/AI-Invoice-Generator/internal/ingest"
	"github.com/suh004757/AI-Invoice-Generator/internal/llm"
	"github.com/suh004757/AI-Invoice-Generator/internal/pipeline"
	"github.com/suh004757/AI-Invoice-Generator/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	var (
		dir         = flag.String("dir", "", "directory of purchase-order text files (required)")
		watch       = flag.Bool("watch", false, "keep watching the directory for new files")
		workers     = flag.Int("workers", 2, "concurrent extraction workers")
		invoiceType = flag.String("type", "", "invoice type: Tax or Normal (default from config)")
	)
	flag.Parse()

	if *dir == "" {
		logger.Error("usage: po-batch --dir <inbox> [--watch] [--workers N] [--type Tax|Normal]")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	invType := constants.ParseInvoiceType(cfg.Invoice.DefaultType)
	if *invoiceType != "" {
		invType = constants.ParseInvoiceType(*invoiceType)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := repository.Open(ctx, cfg.Database.DSN, logger)
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

	processor := pipeline.NewProcessor(
		store,
		ingest.NewIngestor(store, logger),
		extract.NewExtractor(client, logger),
		export.NewService(cfg.Invoice.OutputDir, logger),
		pipeline.Config{
			InvoiceType:     invType,
			DefaultCurrency: cfg.Invoice.DefaultCurrency,
			Provider:        cfg.LLM.Provider,
		},
		logger,
	)

	pool := async.NewPool(ctx, *workers, *workers*4, func(ctx context.Context, job async.Job) error {
		_, err := processor.ProcessFile(ctx, job.Path)
		return err
	}, logger)

	if !*watch {
		runOnce(ctx, *dir, pool, logger)
		pool.Shutdown()
		return
	}

	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{*dir},
		InitialScan: true,
		Debounce:    500 * time.Millisecond,
	}, logger)
	if err != nil {
		logger.Error("start watcher", "dir", *dir, "error", err)
		os.Exit(1)
	}
	logger.Info("watching", "dir", *dir, "workers", *workers)

	for {
		select {
		case <-ctx.Done():
			pool.Shutdown()
			return
		case err, ok := <-errs:
			if ok {
				logger.Error("watch error", "error", err)
			}
		case path, ok := <-events:
			if !ok {
				pool.Shutdown()
				return
			}
			if err := pool.Enqueue(ctx, async.Job{Path: path}); err != nil {
				logger.Error("enqueue", "path", path, "error", err)
			}
		}
	}
}

// runOnce enqueues every matching file under dir and waits for the pool to
// drain.
func runOnce(ctx context.Context, dir string, pool *async.Pool, logger *slog.Logger) {
	paths, err := ingest.ListFiles(dir)
	if err != nil {
		logger.Error("scan directory", "dir", dir, "error", err)
		os.Exit(1)
	}
	logger.Info("batch.start", "dir", dir, "files", len(paths))
	for _, p := range paths {
		if err := pool.Enqueue(ctx, async.Job{Path: p}); err != nil {
			logger.Error("enqueue", "path", p, "error", err)
			return
		}
	}
}
