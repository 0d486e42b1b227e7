package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/eulaly/discoin-backend/internal/external"
)

const defaultMarketDays = 90

func (s *Server) handleMarketSeries(w http.ResponseWriter, r *http.Request) {
	coin := strings.ToLower(r.PathValue("coin"))
	if !s.coinExists(r.Context(), w, coin) {
		return
	}

	series, err := s.gecko.MarketChart(r.Context(), coin, parseDays(r, defaultMarketDays))
	if err != nil {
		fmt.Printf("[API] Market data fetch failed for %s: %v\n", coin, err)
		writeError(w, http.StatusBadGateway, "market data unavailable")
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) handleMarketChart(w http.ResponseWriter, r *http.Request) {
	coin := strings.ToLower(r.PathValue("coin"))
	if !s.coinExists(r.Context(), w, coin) {
		return
	}

	series, err := s.gecko.MarketChart(r.Context(), coin, parseDays(r, defaultMarketDays))
	if err != nil {
		fmt.Printf("[API] Market data fetch failed for %s: %v\n", coin, err)
		writeError(w, http.StatusBadGateway, "market data unavailable")
		return
	}

	png, err := s.charts.LineChart(r.Context(), series.Dates, []external.Dataset{
		{Label: coin + " % change", Data: series.PctChange},
	})
	if err != nil {
		fmt.Printf("[API] Market chart render failed for %s: %v\n", coin, err)
		writeError(w, http.StatusBadGateway, "chart service unavailable")
		return
	}
	writePNG(w, png)
}

func (s *Server) handleMarketHistory(w http.ResponseWriter, r *http.Request) {
	coin := strings.ToLower(r.PathValue("coin"))
	if !s.coinExists(r.Context(), w, coin) {
		return
	}

	daysAgo, err := strconv.Atoi(r.URL.Query().Get("daysAgo"))
	if err != nil || daysAgo < 1 {
		writeError(w, http.StatusBadRequest, "daysAgo query parameter must be a positive integer")
		return
	}

	price, err := s.gecko.HistoricalPrice(r.Context(), coin, daysAgo)
	if err != nil {
		fmt.Printf("[API] Historical price fetch failed for %s: %v\n", coin, err)
		writeError(w, http.StatusBadGateway, "historical price unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"coin":    coin,
		"daysAgo": daysAgo,
		"usd":     price,
	})
}

// handleMarketCompareChart overlays two coins' percent-change series. When
// one coin is younger than the requested window both series are refetched
// over the shorter history so the comparison starts from a shared date.
func (s *Server) handleMarketCompareChart(w http.ResponseWriter, r *http.Request) {
	coinA := strings.ToLower(r.URL.Query().Get("a"))
	coinB := strings.ToLower(r.URL.Query().Get("b"))
	if coinA == "" || coinB == "" {
		writeError(w, http.StatusBadRequest, "a and b query parameters are required")
		return
	}
	if coinA == coinB {
		writeError(w, http.StatusBadRequest, "cannot compare a coin with itself")
		return
	}
	ctx := r.Context()
	if !s.coinExists(ctx, w, coinA) || !s.coinExists(ctx, w, coinB) {
		return
	}

	days := parseDays(r, defaultMarketDays)
	seriesA, err := s.gecko.MarketChart(ctx, coinA, days)
	if err != nil {
		fmt.Printf("[API] Market data fetch failed for %s: %v\n", coinA, err)
		writeError(w, http.StatusBadGateway, "market data unavailable")
		return
	}
	seriesB, err := s.gecko.MarketChart(ctx, coinB, days)
	if err != nil {
		fmt.Printf("[API] Market data fetch failed for %s: %v\n", coinB, err)
		writeError(w, http.StatusBadGateway, "market data unavailable")
		return
	}

	shared := days
	if seriesA.Truncated && seriesA.OldestDays < shared {
		shared = seriesA.OldestDays
	}
	if seriesB.Truncated && seriesB.OldestDays < shared {
		shared = seriesB.OldestDays
	}
	if shared != days {
		fmt.Printf("[API] Clamping %s/%s comparison to %d days\n", coinA, coinB, shared)
		if seriesA, err = s.gecko.MarketChart(ctx, coinA, shared); err != nil {
			writeError(w, http.StatusBadGateway, "market data unavailable")
			return
		}
		if seriesB, err = s.gecko.MarketChart(ctx, coinB, shared); err != nil {
			writeError(w, http.StatusBadGateway, "market data unavailable")
			return
		}
	}

	png, err := s.charts.LineChart(ctx, seriesA.Dates, []external.Dataset{
		{Label: coinA, Data: seriesA.PctChange},
		{Label: coinB, Data: seriesB.PctChange},
	})
	if err != nil {
		fmt.Printf("[API] Compare chart render failed for %s/%s: %v\n", coinA, coinB, err)
		writeError(w, http.StatusBadGateway, "chart service unavailable")
		return
	}
	writePNG(w, png)
}
