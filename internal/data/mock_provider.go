package data

import (
	"context"
	"hash/fnv"
	"math"
	"sync"
	"time"

	"github.com/mohamedkhairy/market-scanner/internal/models"
)

// MockProvider implements HistoryProvider with deterministic synthetic
// histories. Useful for tests and dry runs: the same symbol always produces
// the same bars, and individual symbols can be forced to fail.
type MockProvider struct {
	mu       sync.RWMutex
	bars     map[string][]models.Bar
	failures map[string]error
	anchor   time.Time
}

// NewMockProvider creates a mock history provider
func NewMockProvider() *MockProvider {
	return &MockProvider{
		bars:     make(map[string][]models.Bar),
		failures: make(map[string]error),
		anchor:   time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC),
	}
}

// Name returns the provider type
func (p *MockProvider) Name() string { return "mock" }

// SetBars installs a handcrafted history for a symbol
func (p *MockProvider) SetBars(symbol string, bars []models.Bar) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bars[symbol] = bars
}

// FailSymbol forces History to return err for the given symbol
func (p *MockProvider) FailSymbol(symbol string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[symbol] = err
}

// History returns the installed or generated history for a symbol
func (p *MockProvider) History(_ context.Context, symbol string, lookbackDays int) ([]models.Bar, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if err, ok := p.failures[symbol]; ok {
		return nil, err
	}
	if bars, ok := p.bars[symbol]; ok {
		return bars, nil
	}
	return p.generate(symbol, lookbackDays), nil
}

// generate produces a deterministic pseudo-random walk seeded by the symbol
func (p *MockProvider) generate(symbol string, lookbackDays int) []models.Bar {
	n := lookbackDays
	if n > 60 {
		n = 60
	}
	if n < 1 {
		n = 1
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))
	seed := h.Sum64()

	price := 5.0 + float64(seed%96)
	bars := make([]models.Bar, 0, n)
	for i := 0; i < n; i++ {
		seed = seed*6364136223846793005 + 1442695040888963407
		drift := float64(int64(seed%201)-100) / 100.0 // -1.00 .. +1.00

		open := price
		close := price * (1 + drift/50)
		high := math.Max(open, close) * 1.01
		low := math.Min(open, close) * 0.99
		volume := 1e6 + float64(seed%9_000_000)

		bars = append(bars, models.Bar{
			Date:   p.anchor.AddDate(0, 0, i-n+1).Format(models.DateLayout),
			Open:   open,
			High:   high,
			Low:    low,
			Close:  close,
			Volume: volume,
		})
		price = close
	}
	return bars
}
