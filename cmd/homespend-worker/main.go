package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"homespend/internal/amqp"
	"homespend/internal/config"
	"homespend/internal/etl"
	"homespend/internal/log"
	"homespend/internal/source"
	"homespend/internal/source/graph"
	"homespend/internal/source/memory"
	"homespend/internal/source/sheets"
	"homespend/internal/storage"
	"homespend/internal/worker"
)

func main() {
	// Load .env for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.Setup(log.ComponentWorker)
	logger.Info("Starting homespend-worker")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	fetcher, err := buildFetcher(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize table source", "error", err, "source", cfg.TableSource)
		os.Exit(1)
	}
	logger.Info("Table source initialized", "source", cfg.TableSource)

	processor, err := etl.NewProcessor(cfg.Rules, cfg.FixedExpenses, cfg.Location())
	if err != nil {
		logger.Error("Failed to build processing engine", "error", err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	refreshWorker := worker.NewRefreshWorker(fetcher, processor, repo, amqpClient)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeRefreshRequests(gctx, func(msg *amqp.RefreshRequestMessage) error {
			return refreshWorker.HandleRefreshMessage(gctx, msg)
		})
	})

	g.Go(func() error {
		return refreshWorker.RunPeriodic(gctx, cfg.RefreshInterval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker stopped gracefully")
}

// buildFetcher selects the raw-table source from configuration.
func buildFetcher(ctx context.Context, cfg *config.Config) (source.TableFetcher, error) {
	switch cfg.TableSource {
	case "sheets":
		return sheets.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
	case "graph":
		return graph.New(ctx, graph.Config{
			ClientID:     cfg.GraphClientID,
			ClientSecret: cfg.GraphClientSecret,
			TenantID:     cfg.GraphTenantID,
			TokenFile:    cfg.GraphTokenFile,
			FilePath:     cfg.GraphFilePath,
			Worksheet:    cfg.GraphWorksheet,
		})
	case "memory":
		return memory.NewSample(), nil
	default:
		return nil, fmt.Errorf("unknown table source %q", cfg.TableSource)
	}
}
