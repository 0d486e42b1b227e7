package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS transactions (
		id         UUID PRIMARY KEY,
		amount     DOUBLE PRECISION NOT NULL,
		currency   TEXT NOT NULL,
		price      DOUBLE PRECISION NOT NULL,
		date       TEXT NOT NULL,
		owner      TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_owner ON transactions (owner)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_owner_currency ON transactions (owner, currency)`,
	`CREATE TABLE IF NOT EXISTS coin_latest (
		currency   TEXT PRIMARY KEY,
		usd        DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS coin_listings (
		coin_id TEXT PRIMARY KEY,
		symbol  TEXT NOT NULL,
		name    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS blocked_users (
		userid     TEXT NOT NULL,
		kind       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (userid, kind)
	)`,
	`CREATE TABLE IF NOT EXISTS watchers (
		id         UUID PRIMARY KEY,
		owner      TEXT NOT NULL,
		currency   TEXT NOT NULL,
		rule       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_watchers_owner ON watchers (owner)`,
}

// InitSchema creates all tables and indexes if missing. Statements are
// idempotent so this runs unconditionally at startup.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
