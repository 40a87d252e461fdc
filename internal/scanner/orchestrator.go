package scanner

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mohamedkhairy/market-scanner/internal/config"
	"github.com/mohamedkhairy/market-scanner/internal/data"
	"github.com/mohamedkhairy/market-scanner/internal/marketenv"
	"github.com/mohamedkhairy/market-scanner/internal/models"
	"github.com/mohamedkhairy/market-scanner/internal/scoring"
	"github.com/mohamedkhairy/market-scanner/pkg/logger"
)

var (
	symbolsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scan_symbols_processed_total",
		Help: "Total number of symbols processed by scan runs",
	})
	symbolsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scan_symbols_failed_total",
		Help: "Total number of symbols that failed to fetch or score",
	})
	symbolsFiltered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scan_symbols_filtered_total",
		Help: "Total number of symbols dropped by price or liquidity filters",
	})
	symbolsDiscovered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scan_symbols_discovered_total",
		Help: "Total number of symbols retained by scan runs",
	})
	scanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "scan_duration_seconds",
		Help:    "Wall-clock duration of full scan runs",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})
)

// Row is one retained symbol in a scan report.
type Row struct {
	Code     string                 `json:"code"`
	Name     string                 `json:"name"`
	Score    *scoring.Result        `json:"score"`
	Snapshot *models.SymbolSnapshot `json:"snapshot"`
	TopTier  bool                   `json:"top_tier"`
	Tier     models.Tier            `json:"tier"`
	Advice   string                 `json:"advice"`
	Trend    string                 `json:"trend"`
}

// Stats summarizes one scan run.
type Stats struct {
	Total      int           `json:"total"`
	Processed  int           `json:"processed"`
	Failed     int           `json:"failed"`
	Filtered   int           `json:"filtered"`
	Discovered int           `json:"discovered"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Report is the full outcome of one scan run.
type Report struct {
	RunID       string                `json:"run_id"`
	Date        string                `json:"date"`
	Environment *marketenv.Assessment `json:"environment"`
	Rows        []Row                 `json:"rows"`
	Stats       Stats                 `json:"stats"`
}

// Orchestrator fans a symbol universe out over a bounded worker pool,
// scoring each symbol independently and ranking the survivors.
type Orchestrator struct {
	fetcher *data.Fetcher
	gate    *marketenv.Gate
	cfg     config.ScanConfig
}

func NewOrchestrator(fetcher *data.Fetcher, gate *marketenv.Gate, cfg config.ScanConfig) *Orchestrator {
	return &Orchestrator{fetcher: fetcher, gate: gate, cfg: cfg}
}

// Run scans the universe for one trading date. Individual symbol failures
// are counted, not fatal; the scan always runs to completion.
func (o *Orchestrator) Run(ctx context.Context, date string, universe []string) *Report {
	start := time.Now()
	symbols := dedupe(universe)
	env := o.gate.Assess(ctx)
	scorer := scoring.ForVariant(env.Params.Variant)

	logger.Info("scan started",
		logger.String("date", date),
		logger.Int("universe", len(symbols)),
		logger.Int("workers", o.cfg.Workers),
		logger.String("variant", string(env.Params.Variant)))

	var (
		processed int64
		failed    int64
		filtered  int64
		mu        sync.Mutex
		rows      []Row
	)

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < o.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				row, ok := o.scanOne(ctx, symbol, env.Params, scorer, &failed, &filtered)
				n := atomic.AddInt64(&processed, 1)
				if ok {
					mu.Lock()
					rows = append(rows, row)
					mu.Unlock()
					symbolsDiscovered.Inc()
				}
				if o.cfg.ProgressEvery > 0 && n%int64(o.cfg.ProgressEvery) == 0 {
					mu.Lock()
					discovered := len(rows)
					mu.Unlock()
					logger.Info("scan progress",
						logger.Int64("processed", n),
						logger.Int("total", len(symbols)),
						logger.Int("discovered", discovered))
				}
			}
		}()
	}

	for _, symbol := range symbols {
		jobs <- symbol
	}
	close(jobs)
	wg.Wait()

	rank(rows, o.cfg.TopTierScore)

	elapsed := time.Since(start)
	scanDuration.Observe(elapsed.Seconds())

	report := &Report{
		RunID:       uuid.New().String(),
		Date:        date,
		Environment: env,
		Rows:        rows,
		Stats: Stats{
			Total:      len(symbols),
			Processed:  int(processed),
			Failed:     int(failed),
			Filtered:   int(filtered),
			Discovered: len(rows),
			Elapsed:    elapsed,
		},
	}

	logger.Info("scan finished",
		logger.String("run_id", report.RunID),
		logger.Int("processed", report.Stats.Processed),
		logger.Int("failed", report.Stats.Failed),
		logger.Int("filtered", report.Stats.Filtered),
		logger.Int("discovered", report.Stats.Discovered),
		logger.Duration("elapsed", elapsed))

	return report
}

// scanOne processes a single symbol end to end. A panic in indicator or
// scoring code is contained to the symbol it occurred on.
func (o *Orchestrator) scanOne(ctx context.Context, symbol string, params marketenv.Params, scorer scoring.Scorer, failed, filtered *int64) (row Row, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			atomic.AddInt64(failed, 1)
			symbolsFailed.Inc()
			logger.Error("symbol scan panicked",
				logger.String("symbol", symbol),
				logger.Any("panic", r))
			ok = false
		}
	}()
	symbolsProcessed.Inc()

	snap, err := o.fetcher.Fetch(ctx, symbol)
	if err != nil {
		atomic.AddInt64(failed, 1)
		symbolsFailed.Inc()
		logger.Debug("symbol fetch failed",
			logger.String("symbol", symbol),
			logger.ErrorField(err))
		return Row{}, false
	}

	if snap.Bar.Close < params.PriceFloor || snap.Indicators.VolumeRatio < params.MinVolumeRatio {
		atomic.AddInt64(filtered, 1)
		symbolsFiltered.Inc()
		return Row{}, false
	}

	res := scorer.Score(snap)
	if res.Total < o.cfg.MinRetainScore {
		return Row{}, false
	}

	return Row{
		Code:     snap.Symbol,
		Name:     snap.Name,
		Score:    res,
		Snapshot: snap,
		Tier:     models.TierForScore(res.Total),
		Advice:   scoring.AdviceForScore(res.Total),
		Trend:    scoring.TrendLabel(snap.Indicators, snap.Bar.Close),
	}, true
}

// dedupe returns the unique symbols in sorted order so scans over the same
// universe dispatch work deterministically.
func dedupe(universe []string) []string {
	seen := make(map[string]struct{}, len(universe))
	out := make([]string, 0, len(universe))
	for _, s := range universe {
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
