package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eulaly/discoin-backend/internal/models"
)

type CoinListRepo struct {
	pool *pgxpool.Pool
}

func NewCoinListRepo(pool *pgxpool.Pool) *CoinListRepo {
	return &CoinListRepo{pool: pool}
}

// ReplaceAll swaps the coin reference list for a fresh one. Callers only
// invoke this after a successful fetch, so a CoinGecko outage keeps the
// previous list instead of truncating it.
func (r *CoinListRepo) ReplaceAll(ctx context.Context, listings []models.CoinListing) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM coin_listings`); err != nil {
		return err
	}
	for _, l := range listings {
		if _, err := tx.Exec(ctx,
			`INSERT INTO coin_listings (coin_id, symbol, name) VALUES ($1, $2, $3)
			 ON CONFLICT (coin_id) DO NOTHING`,
			l.CoinID, l.Symbol, l.Name,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetByID looks up one listing by canonical coin id, ErrNotFound if absent.
func (r *CoinListRepo) GetByID(ctx context.Context, coinID string) (*models.CoinListing, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT coin_id, symbol, name FROM coin_listings WHERE coin_id = $1`, coinID)

	var l models.CoinListing
	if err := row.Scan(&l.CoinID, &l.Symbol, &l.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// GetBySymbol resolves an exchange ticker symbol ("eth") to a listing.
// Symbols are not unique on CoinGecko (wrapped and bridged variants reuse
// them); the shortest coin id wins, which in practice picks the canonical
// asset over its derivatives.
func (r *CoinListRepo) GetBySymbol(ctx context.Context, symbol string) (*models.CoinListing, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT coin_id, symbol, name FROM coin_listings
		 WHERE LOWER(symbol) = LOWER($1)
		 ORDER BY char_length(coin_id) ASC, coin_id ASC
		 LIMIT 1`, symbol)

	var l models.CoinListing
	if err := row.Scan(&l.CoinID, &l.Symbol, &l.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// Search matches keyword against symbol, name and id. Exact symbol matches
// sort first because symbols ("eth", "btc") give the best results.
func (r *CoinListRepo) Search(ctx context.Context, keyword string, limit int) ([]models.CoinListing, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT coin_id, symbol, name FROM coin_listings
		 WHERE symbol ILIKE $1 OR name ILIKE '%' || $1 || '%' OR coin_id ILIKE '%' || $1 || '%'
		 ORDER BY (LOWER(symbol) = LOWER($1)) DESC, coin_id ASC
		 LIMIT $2`,
		keyword, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CoinListing
	for rows.Next() {
		var l models.CoinListing
		if err := rows.Scan(&l.CoinID, &l.Symbol, &l.Name); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Count reports the size of the reference list (0 means never refreshed).
func (r *CoinListRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM coin_listings`).Scan(&n)
	return n, err
}
