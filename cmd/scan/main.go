package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mohamedkhairy/market-scanner/internal/config"
	"github.com/mohamedkhairy/market-scanner/internal/data"
	"github.com/mohamedkhairy/market-scanner/internal/marketenv"
	"github.com/mohamedkhairy/market-scanner/internal/models"
	"github.com/mohamedkhairy/market-scanner/internal/pipeline"
	"github.com/mohamedkhairy/market-scanner/internal/report"
	"github.com/mohamedkhairy/market-scanner/internal/scanner"
	"github.com/mohamedkhairy/market-scanner/internal/watchlist"
	"github.com/mohamedkhairy/market-scanner/pkg/logger"
)

func main() {
	date := flag.String("date", time.Now().Format(models.DateLayout), "trading date to scan (YYYY-MM-DD)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting one-shot scan",
		logger.String("date", *date),
		logger.String("provider", cfg.MarketData.Provider),
		logger.Int("workers", cfg.Scan.Workers),
	)

	p, cleanup, err := buildPipeline(cfg)
	if err != nil {
		logger.Fatal("Failed to build pipeline", logger.ErrorField(err))
	}
	defer cleanup()

	payload, err := p.Run(context.Background(), *date)
	if err != nil {
		logger.Fatal("Scan failed", logger.ErrorField(err))
	}

	logger.Info("Scan complete",
		logger.String("run_id", payload.RunID),
		logger.Int("discovered", payload.Stats.Discovered),
		logger.Int("added", len(payload.Added)),
		logger.Int("removed", len(payload.Removed)),
	)
}

func buildPipeline(cfg *config.Config) (*pipeline.Pipeline, func(), error) {
	factory := data.NewProviderFactory()
	provider, err := factory.Create(cfg.MarketData.Provider, cfg.MarketData)
	if err != nil {
		return nil, nil, err
	}

	fetcher := data.NewFetcher(provider, cfg.Scan.LookbackDays)
	gate := marketenv.NewGate(fetcher, cfg.MarketData.IndexSymbol)
	orchestrator := scanner.NewOrchestrator(fetcher, gate, cfg.Scan)
	manager := watchlist.NewManager(watchlist.NewStore(cfg.Watchlist.FilePath), cfg.Scan.MinRetainScore)

	cleanup := func() {}
	var sink report.Sink = report.NewLogSink()
	if cfg.Notify.Sink == "redis" {
		redisSink, err := report.NewRedisSink(cfg.Redis, cfg.Notify.StreamName)
		if err != nil {
			return nil, nil, err
		}
		sink = redisSink
		cleanup = func() { redisSink.Close() }
	}

	return pipeline.New(cfg, fetcher, orchestrator, manager, sink), cleanup, nil
}
