package watchlist

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mohamedkhairy/market-scanner/internal/models"
	"github.com/mohamedkhairy/market-scanner/internal/scoring"
	"github.com/mohamedkhairy/market-scanner/pkg/logger"
)

var (
	activeEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "watchlist_active_entries",
		Help: "Number of active watchlist entries across all dates",
	})
	removedEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "watchlist_removed_entries",
		Help: "Number of removed watchlist entries across all dates",
	})
	datePartitions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "watchlist_date_partitions",
		Help: "Number of date partitions in the watchlist store",
	})
)

// RescoreFunc re-evaluates one symbol and returns its fresh score and
// operation advice. Used by validation passes.
type RescoreFunc func(ctx context.Context, symbol string) (score int, advice string, err error)

// ValidationSummary reports the outcome of one validation pass.
type ValidationSummary struct {
	Date    string                  `json:"date"`
	Checked int                     `json:"checked"`
	Kept    int                     `json:"kept"`
	Removed []models.WatchlistEntry `json:"removed,omitempty"`
}

// Stats is a point-in-time summary of the store.
type Stats struct {
	Dates      int    `json:"dates"`
	Active     int    `json:"active"`
	Removed    int    `json:"removed"`
	LatestDate string `json:"latest_date,omitempty"`
}

// Manager owns the watchlist lifecycle. All mutating operations serialize
// through a single mutex around the load-modify-save cycle, so concurrent
// scan runs cannot lose updates.
type Manager struct {
	mu       sync.Mutex
	store    *Store
	minScore int
}

func NewManager(store *Store, minScore int) *Manager {
	return &Manager{store: store, minScore: minScore}
}

// Add inserts entries under a date partition, skipping symbols already
// present for that date. Returns the number actually inserted.
func (m *Manager) Add(date string, entries []models.WatchlistEntry) (int, error) {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidDate, date)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	all, err := m.store.Load()
	if err != nil {
		return 0, err
	}

	present := make(map[string]struct{}, len(all[date]))
	for _, e := range all[date] {
		present[e.Code] = struct{}{}
	}

	added := 0
	for _, e := range entries {
		if _, dup := present[e.Code]; dup {
			continue
		}
		if e.AddedDate == "" {
			e.AddedDate = date
		}
		if e.LastCheck == "" {
			e.LastCheck = date
		}
		if e.Status == "" {
			e.Status = models.StatusActive
		}
		if err := e.Validate(); err != nil {
			return added, fmt.Errorf("entry %s: %w", e.Code, err)
		}
		all[date] = append(all[date], e)
		present[e.Code] = struct{}{}
		added++
	}

	if added == 0 {
		return 0, nil
	}
	if err := m.store.Save(all); err != nil {
		return 0, err
	}
	m.publishMetrics(all)

	logger.Info("watchlist entries added",
		logger.String("date", date),
		logger.Int("added", added),
		logger.Int("skipped", len(entries)-added))
	return added, nil
}

// ValidatePrevious re-scores every active entry from the most recent
// partition before today. Entries whose score falls below the qualifying
// threshold, or whose advice degrades to a non-actionable label, transition
// to removed with a recorded reason. Removal is one-directional: a removed
// entry never reactivates. Every checked entry has its last-check date
// updated regardless of outcome.
func (m *Manager) ValidatePrevious(ctx context.Context, today string, rescore RescoreFunc) (*ValidationSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all, err := m.store.Load()
	if err != nil {
		return nil, err
	}

	prev := latestBefore(all, today)
	if prev == "" {
		return &ValidationSummary{Date: ""}, nil
	}

	summary := &ValidationSummary{Date: prev}
	entries := all[prev]
	for i := range entries {
		e := &entries[i]
		if !e.IsActive() {
			continue
		}
		summary.Checked++
		e.LastCheck = today

		score, advice, err := rescore(ctx, e.Code)
		if err != nil {
			logger.Warn("revalidation fetch failed, keeping entry",
				logger.String("symbol", e.Code),
				logger.ErrorField(err))
			summary.Kept++
			continue
		}

		e.Score = score
		e.OperationAdvice = advice

		switch {
		case score < m.minScore:
			e.Status = models.StatusRemoved
			e.RemovalReason = fmt.Sprintf("score dropped to %d", score)
		case !scoring.IsActionable(advice):
			e.Status = models.StatusRemoved
			e.RemovalReason = fmt.Sprintf("advice degraded to %s", advice)
		default:
			summary.Kept++
			continue
		}
		summary.Removed = append(summary.Removed, *e)
		logger.Info("watchlist entry removed",
			logger.String("symbol", e.Code),
			logger.String("reason", e.RemovalReason))
	}
	all[prev] = entries

	if err := m.store.Save(all); err != nil {
		return nil, err
	}
	m.publishMetrics(all)
	return summary, nil
}

// Cleanup purges whole date partitions older than the retention horizon,
// counted back from today. Irreversible.
func (m *Manager) Cleanup(today string, retainDays int) (int, error) {
	ref, err := time.Parse(models.DateLayout, today)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", models.ErrInvalidDate, today)
	}
	cutoff := ref.AddDate(0, 0, -retainDays).Format(models.DateLayout)

	m.mu.Lock()
	defer m.mu.Unlock()

	all, err := m.store.Load()
	if err != nil {
		return 0, err
	}

	purged := 0
	for date := range all {
		if date < cutoff {
			delete(all, date)
			purged++
		}
	}
	if purged == 0 {
		return 0, nil
	}
	if err := m.store.Save(all); err != nil {
		return 0, err
	}
	m.publishMetrics(all)

	logger.Info("watchlist partitions purged",
		logger.String("cutoff", cutoff),
		logger.Int("purged", purged))
	return purged, nil
}

// Entries returns the partition for one date.
func (m *Manager) Entries(date string) ([]models.WatchlistEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	return all[date], nil
}

// Dates returns all partition dates in ascending order.
func (m *Manager) Dates() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all, err := m.store.Load()
	if err != nil {
		return nil, err
	}
	dates := make([]string, 0, len(all))
	for date := range all {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates, nil
}

// GetStats summarizes the store.
func (m *Manager) GetStats() (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all, err := m.store.Load()
	if err != nil {
		return nil, err
	}

	stats := &Stats{Dates: len(all)}
	for date, entries := range all {
		if date > stats.LatestDate {
			stats.LatestDate = date
		}
		for _, e := range entries {
			if e.IsActive() {
				stats.Active++
			} else {
				stats.Removed++
			}
		}
	}
	return stats, nil
}

// latestBefore returns the most recent partition date strictly before today.
// Dates are ISO formatted so string order is chronological order.
func latestBefore(all map[string][]models.WatchlistEntry, today string) string {
	best := ""
	for date := range all {
		if date < today && date > best {
			best = date
		}
	}
	return best
}

func (m *Manager) publishMetrics(all map[string][]models.WatchlistEntry) {
	active, removed := 0, 0
	for _, entries := range all {
		for _, e := range entries {
			if e.IsActive() {
				active++
			} else {
				removed++
			}
		}
	}
	activeEntries.Set(float64(active))
	removedEntries.Set(float64(removed))
	datePartitions.Set(float64(len(all)))
}
