package api

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Services  healthServices `json:"services"`
}

type healthServices struct {
	Database string `json:"database"`
	Prices   string `json:"prices"`
	CoinList string `json:"coinList"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	dbStatus := "connected"
	if err := s.pool.Ping(ctx); err != nil {
		dbStatus = "disconnected"
	}

	// A snapshot older than three refresh intervals means the scheduler is
	// stuck or CoinGecko is down.
	priceStatus := "fresh"
	if ts, err := s.priceRepo.LastUpdated(ctx); err != nil || ts.IsZero() {
		priceStatus = "empty"
	} else if time.Since(ts) > 15*time.Minute {
		priceStatus = "stale"
	}

	listStatus := "loaded"
	if n, err := s.coinRepo.Count(ctx); err != nil || n == 0 {
		listStatus = "empty"
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services: healthServices{
			Database: dbStatus,
			Prices:   priceStatus,
			CoinList: listStatus,
		},
	})
}
