package indicator

import (
	"time"

	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"

	"github.com/mohamedkhairy/market-scanner/internal/models"
)

// LowerBand computes the lower statistical band (window-mean minus
// sigma * stdev) of the closing prices, evaluated at the latest bar.
// Returns 0 when there are fewer bars than the window.
func LowerBand(bars []models.Bar, window int, sigma float64) float64 {
	if len(bars) < window {
		return 0
	}

	series := buildSeries(bars)
	closePrice := techan.NewClosePriceIndicator(series)
	lower := techan.NewBollingerLowerBandIndicator(closePrice, window, sigma)

	return lower.Calculate(series.LastIndex()).Float()
}

// buildSeries converts a daily bar history into a techan time series.
func buildSeries(bars []models.Bar) *techan.TimeSeries {
	series := techan.NewTimeSeries()
	for _, b := range bars {
		day, _ := time.Parse(models.DateLayout, b.Date)
		candle := techan.NewCandle(techan.NewTimePeriod(day, 24*time.Hour))
		candle.OpenPrice = big.NewDecimal(b.Open)
		candle.MaxPrice = big.NewDecimal(b.High)
		candle.MinPrice = big.NewDecimal(b.Low)
		candle.ClosePrice = big.NewDecimal(b.Close)
		candle.Volume = big.NewDecimal(b.Volume)
		series.AddCandle(candle)
	}
	return series
}
