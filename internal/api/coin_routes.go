package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/eulaly/discoin-backend/internal/repository"
)

func (s *Server) handleCoinSearch(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.URL.Query().Get("q"))
	if keyword == "" {
		writeError(w, http.StatusBadRequest, "q query parameter is required")
		return
	}

	matches, err := s.coinRepo.Search(r.Context(), keyword, maxSearchLimit)
	if err != nil {
		fmt.Printf("[API] Coin search failed for %q: %v\n", keyword, err)
		writeError(w, http.StatusInternalServerError, "failed to search coin list")
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

// coinExists verifies a coin id against the cached listing. On a miss it
// writes a 404 carrying up to 5 close matches, the same nudge the search
// endpoint gives, and returns false.
func (s *Server) coinExists(ctx context.Context, w http.ResponseWriter, coinID string) bool {
	_, err := s.coinRepo.GetByID(ctx, coinID)
	if err == nil {
		return true
	}
	if !errors.Is(err, repository.ErrNotFound) {
		fmt.Printf("[API] Coin lookup failed for %q: %v\n", coinID, err)
		writeError(w, http.StatusInternalServerError, "failed to verify coin")
		return false
	}

	suggestions, serr := s.coinRepo.Search(ctx, coinID, 5)
	if serr != nil {
		suggestions = nil
	}
	ids := make([]string, len(suggestions))
	for i, c := range suggestions {
		ids[i] = c.CoinID
	}
	writeJSON(w, http.StatusNotFound, map[string]any{
		"error":       fmt.Sprintf("coin %q not found", coinID),
		"suggestions": ids,
	})
	return false
}
