package data

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mohamedkhairy/market-scanner/internal/models"
	"github.com/mohamedkhairy/market-scanner/pkg/indicator"
)

var fetchFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "scan_fetch_failures_total",
		Help: "Total number of per-symbol fetch failures by reason",
	},
	[]string{"reason"},
)

// Fetcher turns one symbol into a SymbolSnapshot: provider history plus
// computed indicators. Every failure is returned as an error on that symbol;
// nothing here can fail a whole batch, and there is no retry at this layer
// (retries belong to the provider client).
type Fetcher struct {
	provider HistoryProvider
	lookback int
}

// NewFetcher creates a fetcher over the given provider
func NewFetcher(provider HistoryProvider, lookbackDays int) *Fetcher {
	if lookbackDays < indicator.MinBars {
		lookbackDays = indicator.MinBars
	}
	return &Fetcher{
		provider: provider,
		lookback: lookbackDays,
	}
}

// Fetch retrieves and enriches one symbol
func (f *Fetcher) Fetch(ctx context.Context, symbol string) (*models.SymbolSnapshot, error) {
	bars, err := f.provider.History(ctx, symbol, f.lookback)
	if err != nil {
		fetchFailures.WithLabelValues(reasonFor(err)).Inc()
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		fetchFailures.WithLabelValues("no_data").Inc()
		return nil, fmt.Errorf("fetch %s: %w", symbol, ErrNoData)
	}
	if len(bars) < indicator.MinBars {
		fetchFailures.WithLabelValues("insufficient_history").Inc()
		return nil, fmt.Errorf("fetch %s: %w", symbol, ErrInsufficientHistory)
	}

	ind, err := indicator.Compute(bars)
	if err != nil {
		fetchFailures.WithLabelValues("insufficient_history").Inc()
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}

	return &models.SymbolSnapshot{
		Symbol:     symbol,
		Name:       symbol,
		Bar:        bars[len(bars)-1],
		Indicators: ind,
	}, nil
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, ErrNoData):
		return "no_data"
	case errors.Is(err, ErrInsufficientHistory):
		return "insufficient_history"
	default:
		return "provider_error"
	}
}
