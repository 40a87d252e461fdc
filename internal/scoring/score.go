package scoring

import (
	"github.com/mohamedkhairy/market-scanner/internal/models"
)

// Variant selects which scoring engine a scan run uses.
type Variant string

const (
	// VariantTrend is the six-dimension trend-strength score
	VariantTrend Variant = "trend"
	// VariantOversold is the oversold-bounce score, used in defensive markets
	VariantOversold Variant = "oversold"
)

// Dimension is one scored dimension with its point delta and a short
// human-readable justification for auditability.
type Dimension struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
	Reason string `json:"reason"`
}

// Result is a complete score for one symbol. Total always equals the sum of
// the dimension deltas and lies in [0,10] by construction of the dimension
// caps; a mismatch is a programming error caught by tests.
type Result struct {
	Variant    Variant     `json:"variant"`
	Total      int         `json:"total"`
	Dimensions []Dimension `json:"dimensions"`
}

// Sum returns the sum of the recorded dimension deltas
func (r *Result) Sum() int {
	sum := 0
	for _, d := range r.Dimensions {
		sum += d.Points
	}
	return sum
}

// add records a dimension and accumulates its points into the total
func (r *Result) add(name string, points int, reason string) {
	r.Dimensions = append(r.Dimensions, Dimension{Name: name, Points: points, Reason: reason})
	r.Total += points
}

// Scorer scores one snapshot. Implementations are pure and safe for
// concurrent use.
type Scorer interface {
	Variant() Variant
	Score(snap *models.SymbolSnapshot) *Result
}

// ForVariant returns the scorer for a variant, defaulting to trend
func ForVariant(v Variant) Scorer {
	if v == VariantOversold {
		return &OversoldScorer{}
	}
	return &TrendScorer{}
}

// Operation advice labels. The first three are considered actionable: a
// watchlist entry whose advice degrades outside this set is retired.
const (
	AdviceBuy   = "buy"
	AdviceAdd   = "add"
	AdviceHold  = "hold"
	AdviceWatch = "watch"
	AdviceAvoid = "avoid"
)

// AdviceForScore maps a 0-10 total score to an operation-advice label
func AdviceForScore(score int) string {
	switch {
	case score >= 8:
		return AdviceBuy
	case score >= 6:
		return AdviceAdd
	case score >= 5:
		return AdviceHold
	case score >= 4:
		return AdviceWatch
	default:
		return AdviceAvoid
	}
}

// IsActionable reports whether an advice label still justifies tracking
func IsActionable(advice string) bool {
	switch advice {
	case AdviceBuy, AdviceAdd, AdviceHold:
		return true
	}
	return false
}

// TrendLabel summarizes the moving-average posture of a snapshot.
// An uptrend needs aligned averages and a rising MA20; alignment over a
// falling MA20 is treated as consolidation.
func TrendLabel(ind *models.Indicators, close float64) string {
	switch {
	case ind.MA5 > ind.MA10 && ind.MA10 > ind.MA20 && ind.MA20 > ind.PrevMA20:
		return "uptrend"
	case close > ind.MA20:
		return "consolidation"
	case ind.Bias20 < -10:
		return "oversold"
	default:
		return "downtrend"
	}
}
