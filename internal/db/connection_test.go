package db_test

import (
	"context"
	"testing"

	"github.com/eulaly/discoin-backend/internal/db"
	"github.com/eulaly/discoin-backend/internal/testutil"
)

func TestConnect(t *testing.T) {
	ctx := context.Background()

	pool, err := db.Connect(ctx, testutil.DSN())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer pool.Close()

	// Pool tuning survives ParseConfig
	cfg := pool.Config()
	if cfg.MaxConns != 10 {
		t.Fatalf("MaxConns: got %d, want 10", cfg.MaxConns)
	}
	if cfg.MinConns != 2 {
		t.Fatalf("MinConns: got %d, want 2", cfg.MinConns)
	}

	if err := db.TestConnection(ctx, pool); err != nil {
		t.Fatalf("TestConnection: %v", err)
	}
}

func TestConnect_BadDSN(t *testing.T) {
	if _, err := db.Connect(context.Background(), "not a dsn"); err == nil {
		t.Fatal("expected error for malformed dsn")
	}
}
