package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/eulaly/discoin-backend/internal/external"
	"github.com/eulaly/discoin-backend/internal/portfolio"
	"github.com/eulaly/discoin-backend/internal/valuation"
)

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")

	res, err := s.portfolio.Get(r.Context(), owner)
	if err != nil {
		writePortfolioError(w, owner, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handlePortfolioChart(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")

	res, err := s.portfolio.Get(r.Context(), owner)
	if err != nil {
		writePortfolioError(w, owner, err)
		return
	}

	labels, data := portfolio.ROIChartSeries(res)
	png, err := s.charts.BarChart(r.Context(), labels, external.Dataset{
		Label: "% gain/loss per coin",
		Data:  data,
	})
	if err != nil {
		fmt.Printf("[API] Portfolio chart render failed for %s: %v\n", owner, err)
		writeError(w, http.StatusBadGateway, "chart service unavailable")
		return
	}
	writePNG(w, png)
}

func writePortfolioError(w http.ResponseWriter, owner string, err error) {
	var mpe *valuation.MissingPriceError
	switch {
	case errors.Is(err, portfolio.ErrNoOrders):
		writeError(w, http.StatusNotFound, "no orders found")
	case errors.As(err, &mpe):
		writeError(w, http.StatusServiceUnavailable,
			fmt.Sprintf("no price data for %s yet, try again after the next refresh", mpe.Coin))
	default:
		fmt.Printf("[API] Portfolio lookup failed for %s: %v\n", owner, err)
		writeError(w, http.StatusInternalServerError, "failed to compute portfolio")
	}
}
