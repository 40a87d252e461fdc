package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohamedkhairy/market-scanner/internal/models"
	"github.com/mohamedkhairy/market-scanner/internal/watchlist"
)

// WatchlistHandler serves read-only views over the watchlist store
type WatchlistHandler struct {
	manager *watchlist.Manager
}

// NewWatchlistHandler creates a new watchlist handler
func NewWatchlistHandler(manager *watchlist.Manager) *WatchlistHandler {
	return &WatchlistHandler{manager: manager}
}

// GetWatchlist handles GET /api/v1/watchlist?date=YYYY-MM-DD
// Without a date it returns the most recent partition.
func (h *WatchlistHandler) GetWatchlist(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		stats, err := h.manager.GetStats()
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to load watchlist")
			return
		}
		date = stats.LatestDate
	} else if _, err := time.Parse(models.DateLayout, date); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		return
	}

	entries, err := h.manager.Entries(date)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load watchlist")
		return
	}
	if entries == nil {
		entries = []models.WatchlistEntry{}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"date":    date,
		"entries": entries,
		"count":   len(entries),
	})
}

// GetDates handles GET /api/v1/watchlist/dates
func (h *WatchlistHandler) GetDates(w http.ResponseWriter, r *http.Request) {
	dates, err := h.manager.Dates()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load watchlist")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"dates": dates,
		"count": len(dates),
	})
}

// GetStats handles GET /api/v1/watchlist/stats
func (h *WatchlistHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.manager.GetStats()
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load watchlist")
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NewRouter wires all routes behind the standard middleware chain
func NewRouter(manager *watchlist.Manager) *mux.Router {
	h := NewWatchlistHandler(manager)

	router := mux.NewRouter()
	router.HandleFunc("/health", HealthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/watchlist", h.GetWatchlist).Methods("GET")
	v1.HandleFunc("/watchlist/dates", h.GetDates).Methods("GET")
	v1.HandleFunc("/watchlist/stats", h.GetStats).Methods("GET")

	chain := ChainMiddleware(
		LoggingMiddleware(),
		ErrorHandlingMiddleware(),
		CORSMiddleware(),
	)
	router.Use(mux.MiddlewareFunc(chain))

	return router
}
