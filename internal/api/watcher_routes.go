package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/eulaly/discoin-backend/internal/alerts"
	"github.com/eulaly/discoin-backend/internal/models"
	"github.com/eulaly/discoin-backend/internal/repository"
)

type watcherRequest struct {
	Currency string `json:"currency"`
	Rule     string `json:"rule"`
	Days     int    `json:"days"`
}

func (s *Server) handleCreateWatcher(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	ctx := r.Context()

	var req watcherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if _, err := alerts.ParseRule(req.Rule); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		writeError(w, http.StatusBadRequest, "currency is required")
		return
	}
	if !s.coinExists(ctx, w, currency) {
		return
	}

	life := s.watcherLife
	if req.Days > 0 {
		life = time.Duration(req.Days) * 24 * time.Hour
	}

	created, err := s.watcherRepo.Insert(ctx, &models.Watcher{
		Owner:     owner,
		Currency:  currency,
		Rule:      req.Rule,
		ExpiresAt: time.Now().Add(life),
	})
	if err != nil {
		fmt.Printf("[API] Watcher insert failed for %s: %v\n", owner, err)
		writeError(w, http.StatusInternalServerError, "failed to create watcher")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListWatchers(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")

	watchers, err := s.watcherRepo.GetByOwner(r.Context(), owner)
	if err != nil {
		fmt.Printf("[API] Watcher list failed for %s: %v\n", owner, err)
		writeError(w, http.StatusInternalServerError, "failed to fetch watchers")
		return
	}
	writeJSON(w, http.StatusOK, watchers)
}

func (s *Server) handleDeleteWatcher(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	id := r.PathValue("id")

	err := s.watcherRepo.Delete(r.Context(), id, owner)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "watcher not found")
		return
	}
	if err != nil {
		fmt.Printf("[API] Watcher delete failed for %s: %v\n", owner, err)
		writeError(w, http.StatusInternalServerError, "failed to delete watcher")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}
