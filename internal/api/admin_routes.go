package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/eulaly/discoin-backend/internal/access"
	"github.com/eulaly/discoin-backend/internal/repository"
)

// blockKind reads the ?kind= query parameter, defaulting to "write".
// Only kinds the gatekeeper checks are accepted.
func blockKind(r *http.Request) (string, error) {
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		return access.KindWrite, nil
	}
	if kind != access.KindWrite && kind != access.KindImport {
		return "", fmt.Errorf("unknown block kind %q", kind)
	}
	return kind, nil
}

// handleBlockUser adds a user to the blocklist for a kind of action.
// Blocking an already blocked user succeeds.
func (s *Server) handleBlockUser(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")
	kind, err := blockKind(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.blocklist.Block(r.Context(), user, kind); err != nil {
		fmt.Printf("[API] Block failed for %s/%s: %v\n", user, kind, err)
		writeError(w, http.StatusInternalServerError, "failed to block user")
		return
	}

	fmt.Printf("[API] Blocked %s for %s\n", user, kind)
	writeJSON(w, http.StatusOK, map[string]string{"blocked": user, "kind": kind})
}

// handleUnblockUser lifts a block. 404 when no matching entry exists.
func (s *Server) handleUnblockUser(w http.ResponseWriter, r *http.Request) {
	user := r.PathValue("user")
	kind, err := blockKind(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.blocklist.Unblock(r.Context(), user, kind); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user is not blocked for that kind")
			return
		}
		fmt.Printf("[API] Unblock failed for %s/%s: %v\n", user, kind, err)
		writeError(w, http.StatusInternalServerError, "failed to unblock user")
		return
	}

	fmt.Printf("[API] Unblocked %s for %s\n", user, kind)
	writeJSON(w, http.StatusOK, map[string]string{"unblocked": user, "kind": kind})
}
