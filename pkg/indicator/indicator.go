package indicator

import (
	"math"

	"github.com/mohamedkhairy/market-scanner/internal/models"
)

// MinBars is the minimum usable history for a full indicator set.
const MinBars = 20

// Compute derives the full indicator set for the most recent bar of an
// ordered (oldest -> newest) daily history. It is a pure function: the same
// bar sequence always yields the same indicators, and no I/O or clock access
// happens here.
func Compute(bars []models.Bar) (*models.Indicators, error) {
	if len(bars) < MinBars {
		return nil, models.ErrNotEnoughBars
	}

	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		volumes[i] = b.Volume
	}

	today := bars[len(bars)-1]
	prev := bars[len(bars)-2]

	ind := &models.Indicators{
		MA5:  SMA(closes, 5),
		MA10: SMA(closes, 10),
		MA20: SMA(closes, 20),
		RSI6: RSI(closes, 6),
	}

	// Previous-day MA20 needs one extra bar; fall back to today's when the
	// history is exactly the minimum.
	if len(closes) > MinBars {
		ind.PrevMA20 = SMA(closes[:len(closes)-1], 20)
	} else {
		ind.PrevMA20 = ind.MA20
	}

	volMA5 := SMA(volumes, 5)
	if volMA5 > 0 {
		ind.VolumeRatio = today.Volume / volMA5
	}

	if ind.MA20 > 0 {
		ind.Bias20 = (today.Close - ind.MA20) / ind.MA20 * 100
	}

	body := math.Abs(today.Close - today.Open)
	totalRange := today.High - today.Low
	ind.IsBullish = today.Close > today.Open
	if totalRange > 0 {
		ind.BodyRatio = body / totalRange * 100
		ind.UpperShadowRatio = (today.High - math.Max(today.Close, today.Open)) / totalRange * 100
		ind.LowerShadowRatio = (math.Min(today.Close, today.Open) - today.Low) / totalRange * 100
		ind.ClosePosition = (today.Close - today.Low) / totalRange * 100
	} else {
		ind.ClosePosition = 50
	}

	if prev.Close > 0 {
		ind.Amplitude = totalRange / prev.Close * 100
		ind.ChangePct = (today.Close - prev.Close) / prev.Close * 100
	}

	ind.LowerBand = LowerBand(bars, 20, 2.0)
	if ind.LowerBand > 0 {
		ind.DistanceToLowerBand = (today.Close - ind.LowerBand) / ind.LowerBand * 100
	} else {
		ind.DistanceToLowerBand = 100
	}

	return ind, nil
}

// SMA returns the simple moving average of the trailing window, or 0 when
// there is not enough data.
func SMA(values []float64, window int) float64 {
	if window <= 0 || len(values) < window {
		return 0
	}
	var sum float64
	for _, v := range values[len(values)-window:] {
		sum += v
	}
	return sum / float64(window)
}

// RSI computes the simple-average relative strength index over the trailing
// window of close-to-close deltas: average gain over average loss, converted
// to 0-100. A window with no losses is exactly 100. Histories too short for
// a full window return the neutral value 50.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return 50
	}

	var sumGain, sumLoss float64
	for i := len(closes) - period; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			sumGain += change
		} else {
			sumLoss -= change
		}
	}

	avgGain := sumGain / float64(period)
	avgLoss := sumLoss / float64(period)
	if avgLoss == 0 {
		return 100
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
