package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mohamedkhairy/market-scanner/internal/models"
)

func snapshot(bar models.Bar, ind models.Indicators) *models.SymbolSnapshot {
	return &models.SymbolSnapshot{
		Symbol:     "600000.SS",
		Name:       "600000.SS",
		Bar:        bar,
		Indicators: &ind,
	}
}

func TestTrendScorerPerfectSetup(t *testing.T) {
	snap := snapshot(
		models.Bar{Date: "2026-01-30", Open: 11.5, High: 12.3, Low: 11.4, Close: 12.2, Volume: 1_800_000},
		models.Indicators{
			MA5:              12,
			MA10:             11,
			MA20:             10,
			IsBullish:        true,
			BodyRatio:        70,
			UpperShadowRatio: 10,
			VolumeRatio:      1.8,
			Amplitude:        4,
			ClosePosition:    85,
		},
	)

	res := (&TrendScorer{}).Score(snap)

	assert.Equal(t, 10, res.Total)
	assert.Equal(t, res.Total, res.Sum())
	assert.Len(t, res.Dimensions, 6)

	points := make(map[string]int)
	for _, d := range res.Dimensions {
		points[d.Name] = d.Points
		assert.NotEmpty(t, d.Reason)
	}
	assert.Equal(t, 2, points["trend"])
	assert.Equal(t, 2, points["candle"])
	assert.Equal(t, 2, points["volume"])
	assert.Equal(t, 1, points["intraday"])
	assert.Equal(t, 1, points["range"])
	assert.Equal(t, 2, points["closing"])
}

func TestTrendScorerPartialCredit(t *testing.T) {
	// close above MA5 without full alignment, bearish candle, quiet volume
	snap := snapshot(
		models.Bar{Date: "2026-01-30", Open: 10.6, High: 10.7, Low: 10.3, Close: 10.5, Volume: 900_000},
		models.Indicators{
			MA5:           10.2,
			MA10:          10.4,
			MA20:          10.1,
			IsBullish:     false,
			VolumeRatio:   0.9,
			Amplitude:     1.5,
			ClosePosition: 40,
		},
	)

	res := (&TrendScorer{}).Score(snap)

	assert.Equal(t, 1, res.Total)
	assert.Equal(t, res.Total, res.Sum())
}

func TestOversoldScorerDeepOversold(t *testing.T) {
	snap := snapshot(
		models.Bar{Date: "2026-01-30", Open: 8, High: 8.4, Low: 7.6, Close: 8.3, Volume: 2_000_000},
		models.Indicators{
			Bias20:              -22,
			RSI6:                18,
			IsBullish:           true,
			ChangePct:           4.2,
			VolumeRatio:         1.7,
			DistanceToLowerBand: 2.5,
		},
	)

	res := (&OversoldScorer{}).Score(snap)

	assert.Equal(t, 10, res.Total)
	assert.Equal(t, res.Total, res.Sum())
	assert.Len(t, res.Dimensions, 5)
}

func TestOversoldScorerHammer(t *testing.T) {
	snap := snapshot(
		models.Bar{Date: "2026-01-30", Open: 9.1, High: 9.2, Low: 8.5, Close: 9.0, Volume: 1_000_000},
		models.Indicators{
			Bias20:              -12,
			RSI6:                35,
			IsBullish:           false,
			ChangePct:           -0.5,
			LowerShadowRatio:    65,
			BodyRatio:           15,
			VolumeRatio:         1.0,
			DistanceToLowerBand: 8,
		},
	)

	res := (&OversoldScorer{}).Score(snap)

	// bias 1 + rsi 1 + hammer 2
	assert.Equal(t, 4, res.Total)
	assert.Equal(t, res.Total, res.Sum())
}

func TestScoreBoundsAndSumInvariant(t *testing.T) {
	cases := []models.Indicators{
		{},
		{MA5: 5, MA10: 4, MA20: 3, IsBullish: true, BodyRatio: 90, VolumeRatio: 3, Amplitude: 5, ClosePosition: 99},
		{Bias20: -30, RSI6: 5, VolumeRatio: 2, DistanceToLowerBand: 1},
		{MA5: 1, MA10: 2, MA20: 3, Amplitude: 12, ClosePosition: 10},
	}
	for _, ind := range cases {
		for _, sc := range []Scorer{&TrendScorer{}, &OversoldScorer{}} {
			res := sc.Score(snapshot(models.Bar{Date: "2026-01-30", Open: 1, High: 1, Low: 1, Close: 1, Volume: 1}, ind))
			assert.GreaterOrEqual(t, res.Total, 0)
			assert.LessOrEqual(t, res.Total, 10)
			assert.Equal(t, res.Total, res.Sum())
		}
	}
}

func TestAdviceForScore(t *testing.T) {
	assert.Equal(t, AdviceBuy, AdviceForScore(10))
	assert.Equal(t, AdviceBuy, AdviceForScore(8))
	assert.Equal(t, AdviceAdd, AdviceForScore(7))
	assert.Equal(t, AdviceAdd, AdviceForScore(6))
	assert.Equal(t, AdviceHold, AdviceForScore(5))
	assert.Equal(t, AdviceWatch, AdviceForScore(4))
	assert.Equal(t, AdviceAvoid, AdviceForScore(3))
	assert.Equal(t, AdviceAvoid, AdviceForScore(0))
}

func TestIsActionable(t *testing.T) {
	assert.True(t, IsActionable(AdviceBuy))
	assert.True(t, IsActionable(AdviceAdd))
	assert.True(t, IsActionable(AdviceHold))
	assert.False(t, IsActionable(AdviceWatch))
	assert.False(t, IsActionable(AdviceAvoid))
	assert.False(t, IsActionable(""))
}

func TestForVariant(t *testing.T) {
	assert.Equal(t, VariantTrend, ForVariant(VariantTrend).Variant())
	assert.Equal(t, VariantOversold, ForVariant(VariantOversold).Variant())
	assert.Equal(t, VariantTrend, ForVariant("unknown").Variant())
}

func TestTrendLabel(t *testing.T) {
	assert.Equal(t, "uptrend", TrendLabel(&models.Indicators{MA5: 3, MA10: 2, MA20: 1, PrevMA20: 0.9}, 3.1))
	assert.Equal(t, "consolidation", TrendLabel(&models.Indicators{MA5: 3, MA10: 2, MA20: 1, PrevMA20: 1.5}, 3.1),
		"aligned averages over a falling MA20 are not an uptrend")
	assert.Equal(t, "consolidation", TrendLabel(&models.Indicators{MA5: 1, MA10: 2, MA20: 3}, 3.5))
	assert.Equal(t, "oversold", TrendLabel(&models.Indicators{MA5: 1, MA10: 2, MA20: 3, Bias20: -15}, 2))
	assert.Equal(t, "downtrend", TrendLabel(&models.Indicators{MA5: 1, MA10: 2, MA20: 3, Bias20: -5}, 2))
}
