package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eulaly/discoin-backend/internal/models"
)

type TransactionRepo struct {
	pool *pgxpool.Pool
}

func NewTransactionRepo(pool *pgxpool.Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Insert stores a new transaction and returns it with its generated id.
// The date defaults to today (UTC) when empty, matching the chat front
// end's "no date provided" behavior.
func (r *TransactionRepo) Insert(ctx context.Context, t *models.Transaction) (*models.Transaction, error) {
	if t.Date == "" {
		t.Date = time.Now().UTC().Format("2006-01-02")
	}
	id := uuid.NewString()

	row := r.pool.QueryRow(ctx,
		`INSERT INTO transactions (id, amount, currency, price, date, owner)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING id, amount, currency, price, date, owner, created_at`,
		id, t.Amount, t.Currency, t.Price, t.Date, t.Owner,
	)
	return scanTransaction(row)
}

// GetByOwner returns the owner's full ledger, newest first. An empty
// currency matches all coins.
func (r *TransactionRepo) GetByOwner(ctx context.Context, owner, currency string) ([]models.Transaction, error) {
	query := `SELECT id, amount, currency, price, date, owner, created_at
	          FROM transactions WHERE owner = $1`
	args := []any{owner}
	if currency != "" {
		query += ` AND currency = $2`
		args = append(args, currency)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// Delete removes a single transaction by id, scoped to its owner.
// Returns ErrNotFound when no row matches.
func (r *TransactionRepo) Delete(ctx context.Context, id, owner string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM transactions WHERE id = $1 AND owner = $2`, id, owner)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAllForOwner wipes the owner's entire ledger and reports how many
// rows were removed.
func (r *TransactionRepo) DeleteAllForOwner(ctx context.Context, owner string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE owner = $1`, owner)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DistinctCurrencies returns every coin id present in any user's ledger.
// The price scheduler refreshes exactly this set.
func (r *TransactionRepo) DistinctCurrencies(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT currency FROM transactions ORDER BY currency`)
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

// CountForOwner returns the size of the owner's ledger (used by the access
// gatekeeper's per-user cap).
func (r *TransactionRepo) CountForOwner(ctx context.Context, owner string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE owner = $1`, owner).Scan(&count)
	return count, err
}

// --- scan helpers ---

func scanTransaction(row scannable) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.Amount, &t.Currency, &t.Price, &t.Date, &t.Owner, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func collectTransactions(rows rowsIter) ([]models.Transaction, error) {
	var out []models.Transaction
	for rows.Next() {
		var t models.Transaction
		if err := rows.Scan(&t.ID, &t.Amount, &t.Currency, &t.Price, &t.Date, &t.Owner, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
