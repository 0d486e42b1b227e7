package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eulaly/discoin-backend/internal/models"
)

type WatcherRepo struct {
	pool *pgxpool.Pool
}

func NewWatcherRepo(pool *pgxpool.Pool) *WatcherRepo {
	return &WatcherRepo{pool: pool}
}

func (r *WatcherRepo) Insert(ctx context.Context, w *models.Watcher) (*models.Watcher, error) {
	id := uuid.NewString()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO watchers (id, owner, currency, rule, expires_at)
		 VALUES ($1,$2,$3,$4,$5)
		 RETURNING id, owner, currency, rule, created_at, expires_at`,
		id, w.Owner, w.Currency, w.Rule, w.ExpiresAt,
	)

	var out models.Watcher
	if err := row.Scan(&out.ID, &out.Owner, &out.Currency, &out.Rule, &out.CreatedAt, &out.ExpiresAt); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *WatcherRepo) GetByOwner(ctx context.Context, owner string) ([]models.Watcher, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner, currency, rule, created_at, expires_at
		 FROM watchers WHERE owner = $1 ORDER BY created_at DESC`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWatchers(rows)
}

// GetActive returns all watchers that have not expired. The alert service
// evaluates exactly this set after every price refresh.
func (r *WatcherRepo) GetActive(ctx context.Context) ([]models.Watcher, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner, currency, rule, created_at, expires_at
		 FROM watchers WHERE expires_at > $1 ORDER BY created_at ASC`, time.Now())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWatchers(rows)
}

func (r *WatcherRepo) Delete(ctx context.Context, id, owner string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM watchers WHERE id = $1 AND owner = $2`, id, owner)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DistinctCurrencies lists coins referenced by active watchers so the price
// scheduler can include them even when nobody holds them yet.
func (r *WatcherRepo) DistinctCurrencies(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT currency FROM watchers WHERE expires_at > $1`, time.Now())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func collectWatchers(rows rowsIter) ([]models.Watcher, error) {
	var out []models.Watcher
	for rows.Next() {
		var w models.Watcher
		if err := rows.Scan(&w.ID, &w.Owner, &w.Currency, &w.Rule, &w.CreatedAt, &w.ExpiresAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
