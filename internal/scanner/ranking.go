package scanner

import "sort"

// rank orders retained rows by score descending, ties broken by symbol
// ascending so repeated runs over identical data produce identical reports,
// and flags rows at or above the top-tier threshold.
func rank(rows []Row, topTierScore int) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score.Total != rows[j].Score.Total {
			return rows[i].Score.Total > rows[j].Score.Total
		}
		return rows[i].Code < rows[j].Code
	})
	for i := range rows {
		rows[i].TopTier = rows[i].Score.Total >= topTierScore
	}
}

// TopTier returns the rows flagged at or above the top-tier threshold.
// Rows are already ranked, so the slice is a prefix of the report.
func (r *Report) TopTier() []Row {
	out := make([]Row, 0)
	for _, row := range r.Rows {
		if !row.TopTier {
			break
		}
		out = append(out, row)
	}
	return out
}

// TopN returns at most n leading rows of the ranked report.
func (r *Report) TopN(n int) []Row {
	if n <= 0 || n >= len(r.Rows) {
		return r.Rows
	}
	return r.Rows[:n]
}
