package api

import (
	"context"
	"testing"

	"github.com/eulaly/discoin-backend/internal/models"
	"github.com/eulaly/discoin-backend/internal/repository"
)

type fakeSymbols map[string]string // symbol -> coin id

func (f fakeSymbols) GetBySymbol(ctx context.Context, symbol string) (*models.CoinListing, error) {
	id, ok := f[symbol]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &models.CoinListing{CoinID: id, Symbol: symbol}, nil
}

func TestResolveImportSymbols(t *testing.T) {
	coins := fakeSymbols{"eth": "ethereum", "btc": "bitcoin"}
	txns := []models.Transaction{
		{Currency: "eth", Amount: 0.05, Price: 100},
		{Currency: "btc", Amount: 0.01, Price: 500},
		{Currency: "eth", Amount: -0.02, Price: -60},
	}

	out, skipped, err := resolveImportSymbols(context.Background(), coins, txns)
	if err != nil {
		t.Fatalf("resolveImportSymbols: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("nothing should be skipped, got %v", skipped)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(out))
	}
	if out[0].Currency != "ethereum" || out[1].Currency != "bitcoin" || out[2].Currency != "ethereum" {
		t.Fatalf("currencies not rewritten to coin ids: %+v", out)
	}
}

func TestResolveImportSymbols_UnknownSkipped(t *testing.T) {
	coins := fakeSymbols{"eth": "ethereum"}
	txns := []models.Transaction{
		{Currency: "eth", Amount: 0.05, Price: 100},
		{Currency: "wat", Amount: 1, Price: 5},
		{Currency: "wat", Amount: 2, Price: 10},
	}

	out, skipped, err := resolveImportSymbols(context.Background(), coins, txns)
	if err != nil {
		t.Fatalf("resolveImportSymbols: %v", err)
	}
	if len(out) != 1 || out[0].Currency != "ethereum" {
		t.Fatalf("expected the eth row only, got %+v", out)
	}
	// The unknown symbol is reported once, not per row.
	if len(skipped) != 1 || skipped[0] != "wat" {
		t.Fatalf("skipped: got %v, want [wat]", skipped)
	}
}

func TestResolveImportSymbols_NothingResolves(t *testing.T) {
	out, skipped, err := resolveImportSymbols(context.Background(), fakeSymbols{}, []models.Transaction{
		{Currency: "wat", Amount: 1, Price: 5},
	})
	if err != nil {
		t.Fatalf("resolveImportSymbols: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no transactions, got %+v", out)
	}
	if len(skipped) != 1 {
		t.Fatalf("skipped: got %v", skipped)
	}
}
