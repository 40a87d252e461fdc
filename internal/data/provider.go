package data

import (
	"context"
	"errors"

	"github.com/mohamedkhairy/market-scanner/internal/config"
	"github.com/mohamedkhairy/market-scanner/internal/models"
)

var (
	// ErrNoData is returned when the provider has no bars for a symbol
	ErrNoData = errors.New("no data for symbol")
	// ErrInsufficientHistory is returned when the history is shorter than the minimum usable window
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrProvider is returned for transport or upstream failures
	ErrProvider = errors.New("provider error")
)

// HistoryProvider retrieves daily OHLCV history for one symbol. Providers are
// treated as untrusted: any shape mismatch or timeout surfaces as an error on
// that symbol only.
type HistoryProvider interface {
	// History returns ordered (oldest -> newest) daily bars covering the
	// lookback window. One outbound call per invocation.
	History(ctx context.Context, symbol string, lookbackDays int) ([]models.Bar, error)

	// Name returns the provider type (e.g., "yahoo", "mock")
	Name() string
}

// ProviderFactory creates provider instances by type name
type ProviderFactory struct {
	factories map[string]func(config.MarketDataConfig) (HistoryProvider, error)
}

// NewProviderFactory creates a factory with the built-in providers registered
func NewProviderFactory() *ProviderFactory {
	f := &ProviderFactory{
		factories: make(map[string]func(config.MarketDataConfig) (HistoryProvider, error)),
	}
	f.Register("yahoo", func(cfg config.MarketDataConfig) (HistoryProvider, error) {
		return NewYahooProvider(cfg), nil
	})
	f.Register("mock", func(cfg config.MarketDataConfig) (HistoryProvider, error) {
		return NewMockProvider(), nil
	})
	return f
}

// Register registers a provider factory function, replacing any existing one
func (f *ProviderFactory) Register(providerType string, factoryFunc func(config.MarketDataConfig) (HistoryProvider, error)) {
	f.factories[providerType] = factoryFunc
}

// Create creates a new provider instance of the given type
func (f *ProviderFactory) Create(providerType string, cfg config.MarketDataConfig) (HistoryProvider, error) {
	factoryFunc, exists := f.factories[providerType]
	if !exists {
		return nil, errors.New("unknown provider type: " + providerType)
	}
	return factoryFunc(cfg)
}

// List returns the registered provider types
func (f *ProviderFactory) List() []string {
	providers := make([]string, 0, len(f.factories))
	for providerType := range f.factories {
		providers = append(providers, providerType)
	}
	return providers
}
