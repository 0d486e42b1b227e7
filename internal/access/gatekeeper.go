// Package access guards mutating operations: blocklisted users are refused
// outright, and each user's ledger is capped so one caller cannot grow the
// transactions table without bound.
package access

import (
	"context"
	"errors"
	"fmt"
)

// Kind of action being gated, matching blocklist entries.
const (
	KindWrite  = "write"
	KindImport = "import"
)

var (
	ErrBlocked    = errors.New("user is blocked")
	ErrLedgerFull = errors.New("ledger cap reached")
)

// BlockChecker abstracts the blocklist lookup so Gatekeeper can be tested
// without a real database.
type BlockChecker interface {
	IsBlocked(ctx context.Context, userID, kind string) (bool, error)
}

// LedgerCounter reports the current size of a user's ledger.
type LedgerCounter interface {
	CountForOwner(ctx context.Context, owner string) (int, error)
}

// Limits holds the gate thresholds from config. Zero disables a check.
type Limits struct {
	MaxTxnsPerUser int
}

type Gatekeeper struct {
	limits  Limits
	blocks  BlockChecker
	counter LedgerCounter
}

func NewGatekeeper(limits Limits, blocks BlockChecker, counter LedgerCounter) *Gatekeeper {
	return &Gatekeeper{limits: limits, blocks: blocks, counter: counter}
}

// CheckWrite validates that owner may append `adding` new transactions.
// Returns nil when allowed; an error wrapping ErrBlocked or ErrLedgerFull
// when refused.
func (g *Gatekeeper) CheckWrite(ctx context.Context, owner, kind string, adding int) error {
	if g.blocks != nil {
		blocked, err := g.blocks.IsBlocked(ctx, owner, kind)
		if err != nil {
			return fmt.Errorf("write refused: unable to verify blocklist: %w", err)
		}
		if blocked {
			return fmt.Errorf("write refused for %s: %w", owner, ErrBlocked)
		}
	}

	if g.limits.MaxTxnsPerUser > 0 && g.counter != nil {
		count, err := g.counter.CountForOwner(ctx, owner)
		if err != nil {
			return fmt.Errorf("write refused: unable to verify ledger size: %w", err)
		}
		if count+adding > g.limits.MaxTxnsPerUser {
			return fmt.Errorf("write refused for %s: %d existing + %d new exceeds cap %d: %w",
				owner, count, adding, g.limits.MaxTxnsPerUser, ErrLedgerFull)
		}
	}

	return nil
}
