package watchlist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohamedkhairy/market-scanner/internal/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "watchlist.json")
	return NewManager(NewStore(path), 6)
}

func entry(code string, score int) models.WatchlistEntry {
	return models.WatchlistEntry{
		Code:            code,
		Name:            code,
		Score:           score,
		Trend:           "uptrend",
		OperationAdvice: "buy",
	}
}

func TestAddIsIdempotentPerDate(t *testing.T) {
	m := newTestManager(t)

	added, err := m.Add("2026-01-30", []models.WatchlistEntry{entry("600519.SS", 9), entry("600036.SS", 8)})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	added, err = m.Add("2026-01-30", []models.WatchlistEntry{entry("600519.SS", 9), entry("601398.SS", 7)})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	entries, err := m.Entries("2026-01-30")
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	// same symbol on a different date is a new entry
	added, err = m.Add("2026-02-02", []models.WatchlistEntry{entry("600519.SS", 9)})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
}

func TestAddRejectsInvalidDate(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Add("30/01/2026", []models.WatchlistEntry{entry("600519.SS", 9)})
	assert.ErrorIs(t, err, models.ErrInvalidDate)
}

func TestAddFillsLifecycleDefaults(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Add("2026-01-30", []models.WatchlistEntry{entry("600519.SS", 9)})
	require.NoError(t, err)

	entries, err := m.Entries("2026-01-30")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2026-01-30", entries[0].AddedDate)
	assert.Equal(t, "2026-01-30", entries[0].LastCheck)
	assert.Equal(t, models.StatusActive, entries[0].Status)
}

func TestValidatePreviousRemovesOnLowScore(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Add("2026-01-29", []models.WatchlistEntry{entry("600519.SS", 9), entry("600036.SS", 8)})
	require.NoError(t, err)

	rescore := func(_ context.Context, symbol string) (int, string, error) {
		if symbol == "600519.SS" {
			return 3, "avoid", nil
		}
		return 8, "buy", nil
	}

	summary, err := m.ValidatePrevious(context.Background(), "2026-01-30", rescore)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-29", summary.Date)
	assert.Equal(t, 2, summary.Checked)
	assert.Equal(t, 1, summary.Kept)
	require.Len(t, summary.Removed, 1)
	assert.Equal(t, "600519.SS", summary.Removed[0].Code)
	assert.Contains(t, summary.Removed[0].RemovalReason, "score dropped")

	entries, err := m.Entries("2026-01-29")
	require.NoError(t, err)
	for _, e := range entries {
		assert.Equal(t, "2026-01-30", e.LastCheck)
		if e.Code == "600519.SS" {
			assert.Equal(t, models.StatusRemoved, e.Status)
			assert.Equal(t, 3, e.Score)
		} else {
			assert.Equal(t, models.StatusActive, e.Status)
		}
	}
}

func TestValidatePreviousRemovesOnDegradedAdvice(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Add("2026-01-29", []models.WatchlistEntry{entry("600519.SS", 9)})
	require.NoError(t, err)

	summary, err := m.ValidatePrevious(context.Background(), "2026-01-30",
		func(_ context.Context, _ string) (int, string, error) { return 7, "watch", nil })
	require.NoError(t, err)
	require.Len(t, summary.Removed, 1)
	assert.Contains(t, summary.Removed[0].RemovalReason, "advice degraded")
}

func TestValidatePreviousKeepsOnFetchError(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Add("2026-01-29", []models.WatchlistEntry{entry("600519.SS", 9)})
	require.NoError(t, err)

	summary, err := m.ValidatePrevious(context.Background(), "2026-01-30",
		func(_ context.Context, _ string) (int, string, error) { return 0, "", errors.New("timeout") })
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Kept)
	assert.Empty(t, summary.Removed)

	entries, err := m.Entries("2026-01-29")
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, entries[0].Status)
	assert.Equal(t, "2026-01-30", entries[0].LastCheck)
}

func TestRemovalIsOneDirectional(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Add("2026-01-29", []models.WatchlistEntry{entry("600519.SS", 9)})
	require.NoError(t, err)

	// first pass removes it
	_, err = m.ValidatePrevious(context.Background(), "2026-01-30",
		func(_ context.Context, _ string) (int, string, error) { return 2, "avoid", nil })
	require.NoError(t, err)

	// a later pass re-qualifying the symbol must not resurrect the entry
	summary, err := m.ValidatePrevious(context.Background(), "2026-01-30",
		func(_ context.Context, _ string) (int, string, error) { return 10, "buy", nil })
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Checked)

	entries, err := m.Entries("2026-01-29")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRemoved, entries[0].Status)
}

func TestValidatePreviousPicksMostRecentPriorDate(t *testing.T) {
	m := newTestManager(t)
	for _, date := range []string{"2026-01-27", "2026-01-28", "2026-01-29"} {
		_, err := m.Add(date, []models.WatchlistEntry{entry("600519.SS", 9)})
		require.NoError(t, err)
	}

	checked := map[string]bool{}
	summary, err := m.ValidatePrevious(context.Background(), "2026-01-29",
		func(_ context.Context, symbol string) (int, string, error) {
			checked[symbol] = true
			return 9, "buy", nil
		})
	require.NoError(t, err)
	assert.Equal(t, "2026-01-28", summary.Date)
	assert.Equal(t, 1, summary.Checked)
}

func TestValidatePreviousNoPriorDate(t *testing.T) {
	m := newTestManager(t)
	summary, err := m.ValidatePrevious(context.Background(), "2026-01-30",
		func(_ context.Context, _ string) (int, string, error) { return 9, "buy", nil })
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Checked)
	assert.Empty(t, summary.Date)
}

func TestCleanupPurgesOldPartitions(t *testing.T) {
	m := newTestManager(t)
	for _, date := range []string{"2025-12-01", "2026-01-05", "2026-01-29"} {
		_, err := m.Add(date, []models.WatchlistEntry{entry("600519.SS", 9)})
		require.NoError(t, err)
	}

	purged, err := m.Cleanup("2026-01-30", 30)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	dates, err := m.Dates()
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-01-05", "2026-01-29"}, dates)
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.json")
	store := NewStore(path)

	want := map[string][]models.WatchlistEntry{
		"2026-01-30": {
			{
				Code: "600519.SS", Name: "Kweichow Moutai", Score: 9,
				Trend: "uptrend", OperationAdvice: "buy",
				AddedDate: "2026-01-30", LastCheck: "2026-01-30",
				Status: models.StatusActive,
			},
			{
				Code: "600036.SS", Name: "CMB", Score: 5,
				Trend: "downtrend", OperationAdvice: "watch",
				AddedDate: "2026-01-28", LastCheck: "2026-01-30",
				Status: models.StatusRemoved, RemovalReason: "score dropped to 5",
			},
		},
		"2026-01-29": {
			{
				Code: "601398.SS", Name: "ICBC", Score: 7,
				Trend: "consolidation", OperationAdvice: "add",
				AddedDate: "2026-01-29", LastCheck: "2026-01-30",
				Status: models.StatusActive,
			},
		},
		"2026-01-28": {
			{
				Code: "000002.SZ", Name: "Vanke", Score: 6,
				Trend: "oversold", OperationAdvice: "add",
				AddedDate: "2026-01-28", LastCheck: "2026-01-28",
				Status: models.StatusActive,
			},
		},
	}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.json"))
	got, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStoreLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watchlist.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	got, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetStats(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Add("2026-01-29", []models.WatchlistEntry{entry("600519.SS", 9), entry("600036.SS", 8)})
	require.NoError(t, err)
	_, err = m.Add("2026-01-30", []models.WatchlistEntry{entry("601398.SS", 7)})
	require.NoError(t, err)

	_, err = m.ValidatePrevious(context.Background(), "2026-01-30",
		func(_ context.Context, symbol string) (int, string, error) {
			if symbol == "600036.SS" {
				return 1, "avoid", nil
			}
			return 9, "buy", nil
		})
	require.NoError(t, err)

	stats, err := m.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Dates)
	assert.Equal(t, 2, stats.Active)
	assert.Equal(t, 1, stats.Removed)
	assert.Equal(t, "2026-01-30", stats.LatestDate)
}
