package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/eulaly/discoin-backend/internal/access"
	"github.com/eulaly/discoin-backend/internal/models"
	"github.com/eulaly/discoin-backend/internal/repository"
)

type transactionRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Price    float64 `json:"price"`
	Date     string  `json:"date"`
}

func (s *Server) handleRecordBuy(w http.ResponseWriter, r *http.Request) {
	s.recordTransaction(w, r, false)
}

// A sale is a buy with both legs negated: coins leave the ledger, USD
// comes back in.
func (s *Server) handleRecordSale(w http.ResponseWriter, r *http.Request) {
	s.recordTransaction(w, r, true)
}

func (s *Server) recordTransaction(w http.ResponseWriter, r *http.Request, sale bool) {
	owner := r.PathValue("owner")
	ctx := r.Context()

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if req.Price < 0 {
		writeError(w, http.StatusBadRequest, "price must not be negative")
		return
	}
	if req.Date != "" && !validateDate(req.Date) {
		writeError(w, http.StatusBadRequest, "invalid date format, expected YYYY-MM-DD")
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

	if err := s.gate.CheckWrite(ctx, owner, access.KindWrite, 1); err != nil {
		writeGateError(w, err)
		return
	}

	txn := models.Transaction{
		Amount:   req.Amount,
		Currency: currency,
		Price:    req.Price,
		Date:     req.Date,
		Owner:    owner,
	}
	if sale {
		txn.Amount = -txn.Amount
		txn.Price = -txn.Price
	}

	created, err := s.txnRepo.Insert(ctx, &txn)
	if err != nil {
		fmt.Printf("[API] Transaction insert failed for %s: %v\n", owner, err)
		writeError(w, http.StatusInternalServerError, "failed to record transaction")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	currency := strings.ToLower(r.URL.Query().Get("currency"))

	txns, err := s.txnRepo.GetByOwner(r.Context(), owner, currency)
	if err != nil {
		fmt.Printf("[API] Transaction list failed for %s: %v\n", owner, err)
		writeError(w, http.StatusInternalServerError, "failed to fetch transactions")
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

func (s *Server) handleExportTransactions(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")

	txns, err := s.txnRepo.GetByOwner(r.Context(), owner, "")
	if err != nil {
		fmt.Printf("[API] Transaction export failed for %s: %v\n", owner, err)
		writeError(w, http.StatusInternalServerError, "failed to fetch transactions")
		return
	}

	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="transactions-%s.json"`, owner))
	writeJSON(w, http.StatusOK, map[string]any{"txns": txns})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	id := r.PathValue("id")

	err := s.txnRepo.Delete(r.Context(), id, owner)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		fmt.Printf("[API] Transaction delete failed for %s: %v\n", owner, err)
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (s *Server) handleWipeTransactions(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")

	count, err := s.txnRepo.DeleteAllForOwner(r.Context(), owner)
	if err != nil {
		fmt.Printf("[API] Ledger wipe failed for %s: %v\n", owner, err)
		writeError(w, http.StatusInternalServerError, "failed to wipe ledger")
		return
	}
	fmt.Printf("[API] Wiped %d transactions for %s\n", count, owner)
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": count})
}

func writeGateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, access.ErrBlocked):
		writeError(w, http.StatusForbidden, "user is blocked from recording transactions")
	case errors.Is(err, access.ErrLedgerFull):
		writeError(w, http.StatusTooManyRequests, "transaction limit reached, delete old entries first")
	default:
		fmt.Printf("[API] Gatekeeper check failed: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to verify write permission")
	}
}
