package scoring

import (
	"fmt"

	"github.com/mohamedkhairy/market-scanner/internal/models"
)

// OversoldScorer scores bounce candidates in defensive markets. Five
// dimensions capped at 3/3/2/1/1 sum to a 0-10 total.
type OversoldScorer struct{}

func (s *OversoldScorer) Variant() Variant { return VariantOversold }

func (s *OversoldScorer) Score(snap *models.SymbolSnapshot) *Result {
	ind := snap.Indicators
	res := &Result{Variant: VariantOversold}

	switch {
	case ind.Bias20 < -20:
		res.add("bias", 3, fmt.Sprintf("deeply stretched %.1f%% below MA20", ind.Bias20))
	case ind.Bias20 < -15:
		res.add("bias", 2, fmt.Sprintf("%.1f%% below MA20", ind.Bias20))
	case ind.Bias20 < -10:
		res.add("bias", 1, fmt.Sprintf("%.1f%% below MA20", ind.Bias20))
	default:
		res.add("bias", 0, fmt.Sprintf("bias %.1f%% not oversold", ind.Bias20))
	}

	switch {
	case ind.RSI6 < 20:
		res.add("rsi", 3, fmt.Sprintf("RSI6 %.1f extremely oversold", ind.RSI6))
	case ind.RSI6 < 30:
		res.add("rsi", 2, fmt.Sprintf("RSI6 %.1f oversold", ind.RSI6))
	case ind.RSI6 < 40:
		res.add("rsi", 1, fmt.Sprintf("RSI6 %.1f weak", ind.RSI6))
	default:
		res.add("rsi", 0, fmt.Sprintf("RSI6 %.1f not oversold", ind.RSI6))
	}

	hammer := ind.LowerShadowRatio > 50 && ind.BodyRatio < 30
	reversal := ind.ChangePct > 3 && ind.IsBullish
	switch {
	case hammer || reversal:
		reason := "hammer with long lower shadow"
		if reversal {
			reason = fmt.Sprintf("same-day reversal +%.1f%%", ind.ChangePct)
		}
		res.add("candle", 2, reason)
	case ind.IsBullish && ind.ChangePct > 0:
		res.add("candle", 1, "bullish candle with positive change")
	default:
		res.add("candle", 0, "no reversal pattern")
	}

	if ind.VolumeRatio > 1.5 {
		res.add("volume", 1, fmt.Sprintf("volume ratio %.2f", ind.VolumeRatio))
	} else {
		res.add("volume", 0, fmt.Sprintf("volume ratio %.2f below 1.5", ind.VolumeRatio))
	}

	if ind.DistanceToLowerBand < 5 {
		res.add("band", 1, fmt.Sprintf("%.1f%% from lower band", ind.DistanceToLowerBand))
	} else {
		res.add("band", 0, fmt.Sprintf("%.1f%% from lower band", ind.DistanceToLowerBand))
	}

	return res
}
