package scoring

import (
	"fmt"

	"github.com/mohamedkhairy/market-scanner/internal/models"
)

// TrendScorer scores a symbol on six capped dimensions of trend strength.
// The dimension caps (2/2/2/1/1/2) bound the total to 10 by construction.
type TrendScorer struct{}

func (s *TrendScorer) Variant() Variant { return VariantTrend }

func (s *TrendScorer) Score(snap *models.SymbolSnapshot) *Result {
	ind := snap.Indicators
	bar := snap.Bar
	res := &Result{Variant: VariantTrend}

	switch {
	case ind.MA5 > ind.MA10 && ind.MA10 > ind.MA20:
		res.add("trend", 2, fmt.Sprintf("bullish alignment MA5 %.2f > MA10 %.2f > MA20 %.2f", ind.MA5, ind.MA10, ind.MA20))
	case bar.Close > ind.MA5:
		res.add("trend", 1, fmt.Sprintf("close %.2f above MA5 %.2f", bar.Close, ind.MA5))
	default:
		res.add("trend", 0, "no trend alignment")
	}

	switch {
	case ind.IsBullish && ind.BodyRatio > 50 && ind.UpperShadowRatio < 25:
		res.add("candle", 2, fmt.Sprintf("strong bullish body %.0f%%, upper shadow %.0f%%", ind.BodyRatio, ind.UpperShadowRatio))
	case ind.IsBullish:
		res.add("candle", 1, "bullish candle")
	default:
		res.add("candle", 0, "bearish candle")
	}

	switch {
	case ind.IsBullish && ind.VolumeRatio > 1.5:
		res.add("volume", 2, fmt.Sprintf("bullish expansion, volume ratio %.2f", ind.VolumeRatio))
	case ind.VolumeRatio > 1.2:
		res.add("volume", 1, fmt.Sprintf("volume ratio %.2f", ind.VolumeRatio))
	default:
		res.add("volume", 0, fmt.Sprintf("volume ratio %.2f below threshold", ind.VolumeRatio))
	}

	if bar.Close > bar.Open {
		res.add("intraday", 1, "close above open")
	} else {
		res.add("intraday", 0, "close at or below open")
	}

	if ind.Amplitude > 2 && ind.Amplitude < 8 {
		res.add("range", 1, fmt.Sprintf("amplitude %.1f%% in healthy band", ind.Amplitude))
	} else {
		res.add("range", 0, fmt.Sprintf("amplitude %.1f%% outside 2-8%%", ind.Amplitude))
	}

	switch {
	case ind.ClosePosition > 80:
		res.add("closing", 2, fmt.Sprintf("closed at %.0f%% of range", ind.ClosePosition))
	case ind.ClosePosition > 60:
		res.add("closing", 1, fmt.Sprintf("closed at %.0f%% of range", ind.ClosePosition))
	default:
		res.add("closing", 0, fmt.Sprintf("weak close at %.0f%% of range", ind.ClosePosition))
	}

	return res
}
