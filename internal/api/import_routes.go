package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/eulaly/discoin-backend/internal/access"
	"github.com/eulaly/discoin-backend/internal/importer"
	"github.com/eulaly/discoin-backend/internal/models"
	"github.com/eulaly/discoin-backend/internal/repository"
)

// handleImport ingests an exchange CSV export for the owner. The file may
// arrive as a multipart "file" field or as the raw request body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	ctx := r.Context()

	source := r.URL.Query().Get("source")
	if source != "" && source != "coinbase" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported import source %q", source))
		return
	}

	body, err := importBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer body.Close()

	txns, err := importer.ParseCoinbase(io.LimitReader(body, maxImportBody), owner)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("could not parse csv: %v", err))
		return
	}
	if len(txns) == 0 {
		writeError(w, http.StatusBadRequest, "no complete orders found in file")
		return
	}

	txns, skipped, err := resolveImportSymbols(ctx, s.coinRepo, txns)
	if err != nil {
		fmt.Printf("[API] Symbol resolution failed for %s: %v\n", owner, err)
		writeError(w, http.StatusInternalServerError, "failed to resolve coin symbols")
		return
	}
	if len(txns) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":          "no importable orders: no symbol matched a known coin",
			"skippedSymbols": skipped,
		})
		return
	}

	if err := s.gate.CheckWrite(ctx, owner, access.KindImport, len(txns)); err != nil {
		writeGateError(w, err)
		return
	}

	inserted := 0
	for i := range txns {
		if _, err := s.txnRepo.Insert(ctx, &txns[i]); err != nil {
			fmt.Printf("[API] Import insert failed for %s after %d rows: %v\n", owner, inserted, err)
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"error":    "import aborted partway through",
				"imported": inserted,
			})
			return
		}
		inserted++
	}

	fmt.Printf("[API] Imported %d transactions for %s (%d symbols skipped)\n", inserted, owner, len(skipped))
	writeJSON(w, http.StatusCreated, map[string]any{
		"imported":       inserted,
		"skippedSymbols": skipped,
	})
}

// symbolResolver is the slice of CoinListRepo the import path needs.
type symbolResolver interface {
	GetBySymbol(ctx context.Context, symbol string) (*models.CoinListing, error)
}

// resolveImportSymbols rewrites each transaction's currency from the
// exchange ticker the statement carries ("eth") to the coin id the ledger
// and price cache key on ("ethereum"). Rows whose symbol matches no listing
// are dropped and reported rather than poisoning the ledger with coins the
// scheduler can never price.
func resolveImportSymbols(ctx context.Context, coins symbolResolver, txns []models.Transaction) ([]models.Transaction, []string, error) {
	resolved := make(map[string]string) // symbol -> coin id, "" = no match
	skipped := []string{}

	var out []models.Transaction
	for _, t := range txns {
		id, seen := resolved[t.Currency]
		if !seen {
			listing, err := coins.GetBySymbol(ctx, t.Currency)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				resolved[t.Currency] = ""
				skipped = append(skipped, t.Currency)
				continue
			case err != nil:
				return nil, nil, err
			}
			id = listing.CoinID
			resolved[t.Currency] = id
		}
		if id == "" {
			continue
		}
		t.Currency = id
		out = append(out, t)
	}
	return out, skipped, nil
}

func importBody(r *http.Request) (io.ReadCloser, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, nil
	}

	if err := r.ParseMultipartForm(maxImportBody); err != nil {
		return nil, fmt.Errorf("could not parse upload: %v", err)
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("multipart upload requires a \"file\" field")
	}
	return file, nil
}
