package models

import (
	"time"
)

// DateLayout is the canonical day format used for watchlist partitions
// and report file names.
const DateLayout = "2006-01-02"

// Bar represents a single daily OHLCV bar
type Bar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// Validate validates a Bar
func (b *Bar) Validate() error {
	if _, err := time.Parse(DateLayout, b.Date); err != nil {
		return ErrInvalidTimestamp
	}
	if b.High < b.Low {
		return ErrInvalidBar
	}
	if b.Close <= 0 {
		return ErrInvalidPrice
	}
	if b.Volume < 0 {
		return ErrInvalidVolume
	}
	return nil
}

// Indicators holds the derived technical values for one symbol on one day.
// Computed once from a bar history and never mutated afterwards.
type Indicators struct {
	MA5      float64 `json:"ma5"`
	MA10     float64 `json:"ma10"`
	MA20     float64 `json:"ma20"`
	PrevMA20 float64 `json:"prev_ma20"`

	RSI6 float64 `json:"rsi_6"`

	// VolumeRatio is today's volume over the trailing 5-bar average
	VolumeRatio float64 `json:"volume_ratio"`

	// Bias20 is the percentage deviation of close from MA20
	Bias20 float64 `json:"bias_20"`

	IsBullish        bool    `json:"is_bullish"`
	BodyRatio        float64 `json:"body_ratio"`
	UpperShadowRatio float64 `json:"upper_shadow_ratio"`
	LowerShadowRatio float64 `json:"lower_shadow_ratio"`

	// ClosePosition is where the close sits inside the day's range, 0-100
	ClosePosition float64 `json:"close_position"`

	// Amplitude is (high - low) / previous close, in percent
	Amplitude float64 `json:"amplitude"`

	// ChangePct is today's close vs yesterday's close, in percent
	ChangePct float64 `json:"change_pct"`

	// LowerBand is the 20-bar statistical lower band (mean - 2*stdev)
	LowerBand float64 `json:"lower_band"`

	// DistanceToLowerBand is the percentage distance of close above LowerBand
	DistanceToLowerBand float64 `json:"distance_to_lower_band"`
}

// SymbolSnapshot is one symbol on one trading day: the latest bar plus its
// derived indicators. Snapshots are produced fresh on every scan and are
// never mutated in place.
type SymbolSnapshot struct {
	Symbol     string      `json:"symbol"`
	Name       string      `json:"name"`
	Bar        Bar         `json:"bar"`
	Indicators *Indicators `json:"indicators"`
}

// Validate validates a SymbolSnapshot
func (s *SymbolSnapshot) Validate() error {
	if s.Symbol == "" {
		return ErrInvalidSymbol
	}
	return s.Bar.Validate()
}

// EntryStatus is the lifecycle state of a watchlist entry.
type EntryStatus string

const (
	StatusActive  EntryStatus = "active"
	StatusRemoved EntryStatus = "removed"
)

// WatchlistEntry is one tracked symbol inside a date partition of the
// watchlist. Status only ever transitions active -> removed; a symbol that
// re-qualifies later appears as a new entry under a later date.
type WatchlistEntry struct {
	Code            string      `json:"code"`
	Name            string      `json:"name"`
	Score           int         `json:"score"`
	Trend           string      `json:"trend"`
	OperationAdvice string      `json:"operation_advice"`
	AddedDate       string      `json:"added_date"`
	LastCheck       string      `json:"last_check"`
	Status          EntryStatus `json:"status"`
	RemovalReason   string      `json:"removal_reason,omitempty"`
}

// Validate validates a WatchlistEntry
func (e *WatchlistEntry) Validate() error {
	if e.Code == "" {
		return ErrInvalidSymbol
	}
	if e.AddedDate == "" {
		return ErrInvalidDate
	}
	if e.Status != StatusActive && e.Status != StatusRemoved {
		return ErrInvalidStatus
	}
	return nil
}

// IsActive reports whether the entry is still under active tracking.
func (e *WatchlistEntry) IsActive() bool {
	return e.Status == StatusActive
}
