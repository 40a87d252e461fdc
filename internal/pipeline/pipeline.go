package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mohamedkhairy/market-scanner/internal/config"
	"github.com/mohamedkhairy/market-scanner/internal/data"
	"github.com/mohamedkhairy/market-scanner/internal/models"
	"github.com/mohamedkhairy/market-scanner/internal/report"
	"github.com/mohamedkhairy/market-scanner/internal/scanner"
	"github.com/mohamedkhairy/market-scanner/internal/scoring"
	"github.com/mohamedkhairy/market-scanner/internal/watchlist"
	"github.com/mohamedkhairy/market-scanner/pkg/logger"
)

// Pipeline runs one full scan cycle: re-validate yesterday's watchlist,
// scan the universe, record new discoveries, purge expired partitions,
// write the CSV report and publish the payload.
type Pipeline struct {
	cfg          *config.Config
	fetcher      *data.Fetcher
	orchestrator *scanner.Orchestrator
	manager      *watchlist.Manager
	sink         report.Sink
}

func New(cfg *config.Config, fetcher *data.Fetcher, orchestrator *scanner.Orchestrator, manager *watchlist.Manager, sink report.Sink) *Pipeline {
	return &Pipeline{
		cfg:          cfg,
		fetcher:      fetcher,
		orchestrator: orchestrator,
		manager:      manager,
		sink:         sink,
	}
}

// Run executes the cycle for one trading date. Notification and report
// writing failures are logged, never fatal; the watchlist mutations are the
// part that must succeed.
func (p *Pipeline) Run(ctx context.Context, date string) (*report.Payload, error) {
	universe, err := p.Universe()
	if err != nil {
		return nil, err
	}

	rep := p.orchestrator.Run(ctx, date, universe)
	scorer := scoring.ForVariant(rep.Environment.Params.Variant)

	rescore := func(ctx context.Context, symbol string) (int, string, error) {
		snap, err := p.fetcher.Fetch(ctx, symbol)
		if err != nil {
			return 0, "", err
		}
		res := scorer.Score(snap)
		return res.Total, scoring.AdviceForScore(res.Total), nil
	}

	validation, err := p.manager.ValidatePrevious(ctx, date, rescore)
	if err != nil {
		return nil, fmt.Errorf("validate previous watchlist: %w", err)
	}

	existing, err := p.manager.Entries(date)
	if err != nil {
		return nil, fmt.Errorf("load watchlist partition: %w", err)
	}
	present := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		present[e.Code] = struct{}{}
	}

	entries := make([]models.WatchlistEntry, 0, len(rep.Rows))
	codes := make([]string, 0, len(rep.Rows))
	for _, row := range rep.Rows {
		if _, dup := present[row.Code]; dup {
			continue
		}
		entries = append(entries, models.WatchlistEntry{
			Code:            row.Code,
			Name:            row.Name,
			Score:           row.Score.Total,
			Trend:           row.Trend,
			OperationAdvice: row.Advice,
		})
		codes = append(codes, row.Code)
	}
	if _, err := p.manager.Add(date, entries); err != nil {
		return nil, fmt.Errorf("add discoveries: %w", err)
	}

	if _, err := p.manager.Cleanup(date, p.cfg.Watchlist.RetainDays); err != nil {
		logger.Error("watchlist cleanup failed", logger.ErrorField(err))
	}

	if _, err := report.SaveCSV(p.cfg.Scan.OutputDir, rep); err != nil {
		logger.Error("report write failed", logger.ErrorField(err))
	}

	payload := report.NewPayload(rep, codes, validation, p.cfg.Notify.TopN)
	if err := p.sink.Publish(ctx, payload); err != nil {
		logger.Error("report publish failed",
			logger.String("sink", p.sink.Name()),
			logger.ErrorField(err))
	}

	return payload, nil
}

// RunToday runs the cycle for the current date.
func (p *Pipeline) RunToday(ctx context.Context) (*report.Payload, error) {
	return p.Run(ctx, time.Now().Format(models.DateLayout))
}

// Universe resolves the symbol universe from config: the inline list, the
// universe file, or both.
func (p *Pipeline) Universe() ([]string, error) {
	symbols := append([]string{}, p.cfg.Scan.Universe...)

	if p.cfg.Scan.UniverseFile != "" {
		fromFile, err := readUniverseFile(p.cfg.Scan.UniverseFile)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, fromFile...)
	}

	if len(symbols) == 0 {
		return nil, fmt.Errorf("empty symbol universe: set SCAN_UNIVERSE or SCAN_UNIVERSE_FILE")
	}
	return symbols, nil
}

// readUniverseFile reads one symbol per line, skipping blanks and # comments.
func readUniverseFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open universe file %s: %w", path, err)
	}
	defer f.Close()

	var symbols []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		symbols = append(symbols, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read universe file %s: %w", path, err)
	}
	return symbols, nil
}
