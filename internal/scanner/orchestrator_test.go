package scanner

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedkhairy/market-scanner/internal/config"
	"github.com/mohamedkhairy/market-scanner/internal/data"
	"github.com/mohamedkhairy/market-scanner/internal/marketenv"
	"github.com/mohamedkhairy/market-scanner/internal/models"
)

const testIndex = "000001.SS"

func scanConfig() config.ScanConfig {
	return config.ScanConfig{
		Workers:        8,
		LookbackDays:   60,
		MinRetainScore: 6,
		TopTierScore:   8,
		ProgressEvery:  200,
	}
}

func risingBars(n int) []models.Bar {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, 0, n)
	for i := 0; i < n; i++ {
		c := 10.0 + 0.1*float64(i)
		bars = append(bars, models.Bar{
			Date:   start.AddDate(0, 0, i).Format(models.DateLayout),
			Open:   c - 0.05,
			High:   c + 0.08,
			Low:    c - 0.09,
			Close:  c,
			Volume: 1_000_000,
		})
	}
	return bars
}

// strongBars ends with a high-volume bullish breakout bar on top of a steady
// uptrend, which scores the full 10 on the trend engine.
func strongBars() []models.Bar {
	bars := risingBars(24)
	last := bars[len(bars)-1]
	date, _ := time.Parse(models.DateLayout, last.Date)
	bars = append(bars, models.Bar{
		Date:   date.AddDate(0, 0, 1).Format(models.DateLayout),
		Open:   12.40,
		High:   12.95,
		Low:    12.38,
		Close:  12.90,
		Volume: 3_000_000,
	})
	return bars
}

func flatBars(n int) []models.Bar {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]models.Bar, 0, n)
	for i := 0; i < n; i++ {
		bars = append(bars, models.Bar{
			Date:   start.AddDate(0, 0, i).Format(models.DateLayout),
			Open:   10.02,
			High:   10.05,
			Low:    9.95,
			Close:  10.0,
			Volume: 1_000_000,
		})
	}
	return bars
}

func newOrchestrator(provider *data.MockProvider, cfg config.ScanConfig) *Orchestrator {
	fetcher := data.NewFetcher(provider, cfg.LookbackDays)
	gate := marketenv.NewGate(fetcher, testIndex)
	return NewOrchestrator(fetcher, gate, cfg)
}

func TestRunRetainsAndRanks(t *testing.T) {
	provider := data.NewMockProvider()
	provider.SetBars(testIndex, risingBars(30))
	provider.SetBars("600519.SS", strongBars())
	provider.SetBars("600036.SS", strongBars())
	provider.SetBars("601398.SS", flatBars(30))

	o := newOrchestrator(provider, scanConfig())
	report := o.Run(context.Background(), "2026-01-30", []string{"600519.SS", "600036.SS", "601398.SS"})

	require.NotNil(t, report)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "2026-01-30", report.Date)
	assert.True(t, report.Environment.Permissive)

	require.Len(t, report.Rows, 2)
	// identical scores, ties broken by symbol ascending
	assert.Equal(t, "600036.SS", report.Rows[0].Code)
	assert.Equal(t, "600519.SS", report.Rows[1].Code)
	for _, row := range report.Rows {
		assert.Equal(t, 10, row.Score.Total)
		assert.True(t, row.TopTier)
		assert.Equal(t, models.TierS, row.Tier)
		assert.Equal(t, "buy", row.Advice)
	}

	assert.Equal(t, 3, report.Stats.Processed)
	assert.Equal(t, 2, report.Stats.Discovered)
	assert.Equal(t, 0, report.Stats.Failed)
}

func TestRunAppliesPriceFloor(t *testing.T) {
	provider := data.NewMockProvider()
	provider.SetBars(testIndex, risingBars(30))

	// strong setup but the price is below any floor the gate can produce
	cheap := strongBars()
	for i := range cheap {
		cheap[i].Open /= 10
		cheap[i].High /= 10
		cheap[i].Low /= 10
		cheap[i].Close /= 10
	}
	provider.SetBars("002001.SZ", cheap)

	o := newOrchestrator(provider, scanConfig())
	report := o.Run(context.Background(), "2026-01-30", []string{"002001.SZ"})

	assert.Empty(t, report.Rows)
	assert.Equal(t, 1, report.Stats.Filtered)
}

func TestRunDeduplicatesUniverse(t *testing.T) {
	provider := data.NewMockProvider()
	provider.SetBars(testIndex, risingBars(30))
	provider.SetBars("600519.SS", strongBars())

	o := newOrchestrator(provider, scanConfig())
	report := o.Run(context.Background(), "2026-01-30", []string{"600519.SS", "600519.SS", "", "600519.SS"})

	assert.Equal(t, 1, report.Stats.Total)
	assert.Equal(t, 1, report.Stats.Processed)
	require.Len(t, report.Rows, 1)
}

func TestRunSurvivesFailuresAtScale(t *testing.T) {
	provider := data.NewMockProvider()
	provider.SetBars(testIndex, risingBars(30))

	universe := make([]string, 0, 1000)
	for i := 0; i < 1000; i++ {
		universe = append(universe, fmt.Sprintf("SYM%04d", i))
	}
	for i := 0; i < 200; i++ {
		provider.FailSymbol(fmt.Sprintf("SYM%04d", i*5), errors.New("connection reset"))
	}

	cfg := scanConfig()
	cfg.Workers = 20
	o := newOrchestrator(provider, cfg)
	report := o.Run(context.Background(), "2026-01-30", universe)

	assert.Equal(t, 1000, report.Stats.Total)
	assert.Equal(t, 1000, report.Stats.Processed)
	assert.Equal(t, 200, report.Stats.Failed)
	assert.Equal(t, len(report.Rows), report.Stats.Discovered)

	for i := 1; i < len(report.Rows); i++ {
		prev, cur := report.Rows[i-1], report.Rows[i]
		if prev.Score.Total == cur.Score.Total {
			assert.Less(t, prev.Code, cur.Code)
		} else {
			assert.Greater(t, prev.Score.Total, cur.Score.Total)
		}
	}
}

func TestRunIsDeterministic(t *testing.T) {
	build := func() *Report {
		provider := data.NewMockProvider()
		provider.SetBars(testIndex, risingBars(30))
		universe := make([]string, 0, 300)
		for i := 0; i < 300; i++ {
			universe = append(universe, fmt.Sprintf("SYM%04d", i))
		}
		cfg := scanConfig()
		cfg.MinRetainScore = 0
		return newOrchestrator(provider, cfg).Run(context.Background(), "2026-01-30", universe)
	}

	first := build()
	second := build()

	assert.Equal(t, first.Stats.Discovered, second.Stats.Discovered)
	require.Equal(t, len(first.Rows), len(second.Rows))
	for i := range first.Rows {
		assert.Equal(t, first.Rows[i].Code, second.Rows[i].Code)
		assert.Equal(t, first.Rows[i].Score.Total, second.Rows[i].Score.Total)
	}
}

func TestTopTierAndTopN(t *testing.T) {
	report := &Report{Rows: []Row{
		{Code: "A", TopTier: true},
		{Code: "B", TopTier: true},
		{Code: "C"},
	}}
	assert.Len(t, report.TopTier(), 2)
	assert.Len(t, report.TopN(1), 1)
	assert.Len(t, report.TopN(0), 3)
	assert.Len(t, report.TopN(10), 3)
}
