package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type BlocklistRepo struct {
	pool *pgxpool.Pool
}

func NewBlocklistRepo(pool *pgxpool.Pool) *BlocklistRepo {
	return &BlocklistRepo{pool: pool}
}

// Block records a user as blocked for a given kind of action ("write",
// "import", ...). Idempotent.
func (r *BlocklistRepo) Block(ctx context.Context, userID, kind string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO blocked_users (userid, kind) VALUES ($1, $2)
		 ON CONFLICT (userid, kind) DO NOTHING`,
		userID, kind,
	)
	return err
}

// Unblock removes a block entry. ErrNotFound when none existed.
func (r *BlocklistRepo) Unblock(ctx context.Context, userID, kind string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM blocked_users WHERE userid = $1 AND kind = $2`, userID, kind)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BlocklistRepo) IsBlocked(ctx context.Context, userID, kind string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM blocked_users WHERE userid = $1 AND kind = $2)`,
		userID, kind,
	).Scan(&exists)
	return exists, err
}
