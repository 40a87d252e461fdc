package report

import (
	"github.com/mohamedkhairy/market-scanner/internal/scanner"
	"github.com/mohamedkhairy/market-scanner/internal/watchlist"
)

// RowSummary is a compact view of one ranked row for downstream consumers.
type RowSummary struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Score  int     `json:"score"`
	Advice string  `json:"advice"`
	Trend  string  `json:"trend"`
	Close  float64 `json:"close"`
}

// Removal records one watchlist retirement with its reason.
type Removal struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// Payload is the notification emitted after a scan run: top discoveries,
// watchlist churn, and run statistics.
type Payload struct {
	RunID    string        `json:"run_id"`
	Date     string        `json:"date"`
	EnvScore int           `json:"env_score"`
	Variant  string        `json:"variant"`
	Top      []RowSummary  `json:"top"`
	Added    []string      `json:"added,omitempty"`
	Removed  []Removal     `json:"removed,omitempty"`
	Stats    scanner.Stats `json:"stats"`
}

// NewPayload assembles the notification for one run. validation may be nil
// when no prior partition existed.
func NewPayload(rep *scanner.Report, added []string, validation *watchlist.ValidationSummary, topN int) *Payload {
	p := &Payload{
		RunID:    rep.RunID,
		Date:     rep.Date,
		EnvScore: rep.Environment.Score,
		Variant:  string(rep.Environment.Params.Variant),
		Added:    added,
		Stats:    rep.Stats,
	}
	for _, row := range rep.TopN(topN) {
		p.Top = append(p.Top, RowSummary{
			Code:   row.Code,
			Name:   row.Name,
			Score:  row.Score.Total,
			Advice: row.Advice,
			Trend:  row.Trend,
			Close:  row.Snapshot.Bar.Close,
		})
	}
	if validation != nil {
		for _, e := range validation.Removed {
			p.Removed = append(p.Removed, Removal{Code: e.Code, Reason: e.RemovalReason})
		}
	}
	return p
}
