package marketenv

import (
	"context"
	"fmt"

	"github.com/mohamedkhairy/market-scanner/internal/data"
	"github.com/mohamedkhairy/market-scanner/internal/scoring"
	"github.com/mohamedkhairy/market-scanner/pkg/logger"
)

// Params is the run configuration selected by the environment score. Weaker
// markets tighten the price floor and liquidity requirement and switch the
// scorer to the oversold-bounce variant.
type Params struct {
	PriceFloor     float64         `json:"price_floor"`
	MinVolumeRatio float64         `json:"min_volume_ratio"`
	Variant        scoring.Variant `json:"variant"`
}

// ParamsFor maps an environment score to scan parameters. It is a total
// function of the score, recomputed every run.
func ParamsFor(score int) Params {
	switch {
	case score >= 8:
		return Params{PriceFloor: 5.0, MinVolumeRatio: 0.5, Variant: scoring.VariantTrend}
	case score >= 5:
		return Params{PriceFloor: 8.0, MinVolumeRatio: 0.6, Variant: scoring.VariantTrend}
	default:
		return Params{PriceFloor: 10.0, MinVolumeRatio: 0.8, Variant: scoring.VariantOversold}
	}
}

// Assessment is the outcome of one index check.
type Assessment struct {
	IndexSymbol string   `json:"index_symbol"`
	Permissive  bool     `json:"permissive"`
	Score       int      `json:"score"`
	Reasons     []string `json:"reasons,omitempty"`
	Params      Params   `json:"params"`
}

// Gate classifies the broad market by inspecting a single index snapshot.
type Gate struct {
	fetcher *data.Fetcher
	index   string
}

func NewGate(fetcher *data.Fetcher, indexSymbol string) *Gate {
	return &Gate{fetcher: fetcher, index: indexSymbol}
}

// Assess fetches the index and applies the decision rule: permissive iff
// close > MA20 and MA5 > MA10. Both conditions holding scores 9, one failing
// scores 6, both failing scores 4. If the index cannot be fetched the gate
// degrades to a permissive assessment rather than blocking the scan.
func (g *Gate) Assess(ctx context.Context) *Assessment {
	snap, err := g.fetcher.Fetch(ctx, g.index)
	if err != nil {
		logger.Warn("index fetch failed, assuming permissive market",
			logger.String("index", g.index),
			logger.ErrorField(err))
		return &Assessment{
			IndexSymbol: g.index,
			Permissive:  true,
			Score:       9,
			Reasons:     []string{"index unavailable"},
			Params:      ParamsFor(9),
		}
	}

	ind := snap.Indicators
	a := &Assessment{IndexSymbol: g.index}

	if snap.Bar.Close <= ind.MA20 {
		a.Reasons = append(a.Reasons, fmt.Sprintf("index close %.2f at or below MA20 %.2f", snap.Bar.Close, ind.MA20))
	}
	if ind.MA5 <= ind.MA10 {
		a.Reasons = append(a.Reasons, fmt.Sprintf("index MA5 %.2f at or below MA10 %.2f", ind.MA5, ind.MA10))
	}

	switch len(a.Reasons) {
	case 0:
		a.Permissive = true
		a.Score = 9
	case 1:
		a.Score = 6
	default:
		a.Score = 4
	}
	a.Params = ParamsFor(a.Score)

	logger.Info("market environment assessed",
		logger.String("index", g.index),
		logger.Bool("permissive", a.Permissive),
		logger.Int("score", a.Score),
		logger.String("variant", string(a.Params.Variant)))

	return a
}
