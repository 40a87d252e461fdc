package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mohamedkhairy/market-scanner/internal/config"
	"github.com/mohamedkhairy/market-scanner/internal/data"
	"github.com/mohamedkhairy/market-scanner/internal/marketenv"
	"github.com/mohamedkhairy/market-scanner/internal/pipeline"
	"github.com/mohamedkhairy/market-scanner/internal/report"
	"github.com/mohamedkhairy/market-scanner/internal/scanner"
	"github.com/mohamedkhairy/market-scanner/internal/scheduler"
	"github.com/mohamedkhairy/market-scanner/internal/watchlist"
	"github.com/mohamedkhairy/market-scanner/pkg/logger"
)

func main() {
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

	logger.Info("Starting scan scheduler service",
		logger.String("cron", cfg.Scheduler.CronSpec),
		logger.Bool("run_on_start", cfg.Scheduler.RunOnStart),
		logger.String("provider", cfg.MarketData.Provider),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	factory := data.NewProviderFactory()
	provider, err := factory.Create(cfg.MarketData.Provider, cfg.MarketData)
	if err != nil {
		logger.Fatal("Failed to create market data provider", logger.ErrorField(err))
	}

	fetcher := data.NewFetcher(provider, cfg.Scan.LookbackDays)
	gate := marketenv.NewGate(fetcher, cfg.MarketData.IndexSymbol)
	orchestrator := scanner.NewOrchestrator(fetcher, gate, cfg.Scan)
	manager := watchlist.NewManager(watchlist.NewStore(cfg.Watchlist.FilePath), cfg.Scan.MinRetainScore)

	var sink report.Sink = report.NewLogSink()
	if cfg.Notify.Sink == "redis" {
		redisSink, err := report.NewRedisSink(cfg.Redis, cfg.Notify.StreamName)
		if err != nil {
			logger.Fatal("Failed to initialize Redis sink", logger.ErrorField(err))
		}
		defer redisSink.Close()
		sink = redisSink
	}

	p := pipeline.New(cfg, fetcher, orchestrator, manager, sink)

	sched := scheduler.New(ctx, p)
	if err := sched.Register(cfg.Scheduler.CronSpec); err != nil {
		logger.Fatal("Failed to register scan job", logger.ErrorField(err))
	}
	sched.Start()
	defer sched.Stop()

	if cfg.Scheduler.RunOnStart {
		go sched.RunNow()
	}

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	logger.Info("Shutting down scan scheduler service")
}
