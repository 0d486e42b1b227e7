package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eulaly/discoin-backend/internal/models"
)

type PriceRepo struct {
	pool *pgxpool.Pool
}

func NewPriceRepo(pool *pgxpool.Pool) *PriceRepo {
	return &PriceRepo{pool: pool}
}

// ReplaceAll swaps the entire latest-price cache for a fresh batch in one
// transaction, so readers never observe a half-written refresh.
func (r *PriceRepo) ReplaceAll(ctx context.Context, prices map[string]float64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM coin_latest`); err != nil {
		return err
	}

	now := time.Now()
	for currency, usd := range prices {
		if _, err := tx.Exec(ctx,
			`INSERT INTO coin_latest (currency, usd, updated_at) VALUES ($1, $2, $3)`,
			currency, usd, now,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Snapshot returns the whole cache as a coin id -> USD price map, the shape
// the valuation engine consumes.
func (r *PriceRepo) Snapshot(ctx context.Context) (map[string]float64, error) {
	rows, err := r.pool.Query(ctx, `SELECT currency, usd FROM coin_latest`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var currency string
		var usd float64
		if err := rows.Scan(&currency, &usd); err != nil {
			return nil, err
		}
		out[currency] = usd
	}
	return out, rows.Err()
}

// Get returns the cached price for one coin, or ErrNotFound.
func (r *PriceRepo) Get(ctx context.Context, currency string) (*models.CoinPrice, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT currency, usd, updated_at FROM coin_latest WHERE currency = $1`, currency)

	var p models.CoinPrice
	if err := row.Scan(&p.Currency, &p.USD, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// LastUpdated reports when the cache was last refreshed, zero time when the
// cache is empty.
func (r *PriceRepo) LastUpdated(ctx context.Context) (time.Time, error) {
	var ts *time.Time
	err := r.pool.QueryRow(ctx, `SELECT MAX(updated_at) FROM coin_latest`).Scan(&ts)
	if err != nil {
		return time.Time{}, err
	}
	if ts == nil {
		return time.Time{}, nil
	}
	return *ts, nil
}
