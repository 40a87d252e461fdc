package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mohamedkhairy/market-scanner/internal/config"
	"github.com/mohamedkhairy/market-scanner/internal/models"
)

// YahooProvider implements HistoryProvider using the Yahoo Finance chart API.
type YahooProvider struct {
	client  *http.Client
	baseURL string
	retry   RetryPolicy
}

// NewYahooProvider creates a Yahoo Finance history provider
func NewYahooProvider(cfg config.MarketDataConfig) *YahooProvider {
	transport := &http.Transport{}
	if cfg.ProxyURL != "" {
		if u, err := url.Parse(cfg.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	retry := RetryPolicy{MaxAttempts: cfg.RetryAttempts, Delay: cfg.RetryDelay}
	if retry.MaxAttempts == 0 {
		retry = DefaultRetryPolicy()
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://query1.finance.yahoo.com"
	}

	return &YahooProvider{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		baseURL: baseURL,
		retry:   retry,
	}
}

// Name returns the provider type
func (p *YahooProvider) Name() string { return "yahoo" }

// chartResponse is the response structure from the Yahoo chart API.
// Prices arrive as interface{} because the API emits nulls for halted days.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// History fetches the daily bar history for one symbol
func (p *YahooProvider) History(ctx context.Context, symbol string, lookbackDays int) ([]models.Bar, error) {
	var bars []models.Bar

	err := p.retry.Do(ctx, func() error {
		var fetchErr error
		bars, fetchErr = p.fetchChart(ctx, symbol, rangeFor(lookbackDays))
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	return bars, nil
}

func (p *YahooProvider) fetchChart(ctx context.Context, symbol, rng string) ([]models.Bar, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		p.baseURL, url.PathEscape(symbol), rng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrProvider, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNoData
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrProvider, resp.StatusCode)
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrProvider, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrProvider, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, ErrNoData
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, ErrNoData
	}
	quote := result.Indicators.Quote[0]

	// The API occasionally ships quote arrays shorter than the timestamp
	// axis. Walk only indexes covered by every series so a ragged response
	// cannot index out of range.
	n := len(result.Timestamp)
	for _, series := range [][]interface{}{quote.Open, quote.High, quote.Low, quote.Close, quote.Volume} {
		if len(series) < n {
			n = len(series)
		}
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: empty quote series for %s", ErrProvider, symbol)
	}

	bars := make([]models.Bar, 0, n)
	for i := 0; i < n; i++ {
		closePrice := toFloat(quote.Close[i])
		if closePrice == 0 {
			// null bar (halted / holiday), skip it
			continue
		}
		bars = append(bars, models.Bar{
			Date:   time.Unix(result.Timestamp[i], 0).UTC().Format(models.DateLayout),
			Open:   toFloat(quote.Open[i]),
			High:   toFloat(quote.High[i]),
			Low:    toFloat(quote.Low[i]),
			Close:  closePrice,
			Volume: toFloat(quote.Volume[i]),
		})
	}
	return bars, nil
}

// rangeFor maps a lookback in calendar days to the nearest chart API range
func rangeFor(lookbackDays int) string {
	switch {
	case lookbackDays <= 30:
		return "1mo"
	case lookbackDays <= 90:
		return "3mo"
	case lookbackDays <= 180:
		return "6mo"
	default:
		return "1y"
	}
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}
