package models

// Tier buckets a total score for downstream reporting.
type Tier string

const (
	TierS Tier = "S"
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
)

// TierForScore maps a 0-10 score to its reporting tier:
// S >= 8, A 6-7, B 4-5, C < 4.
func TierForScore(score int) Tier {
	switch {
	case score >= 8:
		return TierS
	case score >= 6:
		return TierA
	case score >= 4:
		return TierB
	default:
		return TierC
	}
}
