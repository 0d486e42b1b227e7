// Package portfolio assembles a user's valuation from the persisted ledger
// and the latest-price cache, and shapes it for presentation.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/eulaly/discoin-backend/internal/models"
	"github.com/eulaly/discoin-backend/internal/valuation"
)

// ErrNoOrders signals an empty ledger. The valuation engine is never
// invoked in that case; callers show the "no orders found" onboarding hint.
var ErrNoOrders = errors.New("no orders found")

// TransactionSource is the ledger read side. Satisfied by
// repository.TransactionRepo.
type TransactionSource interface {
	GetByOwner(ctx context.Context, owner, currency string) ([]models.Transaction, error)
}

// SnapshotSource is the latest-price cache read side. Satisfied by
// repository.PriceRepo.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (map[string]float64, error)
}

type Service struct {
	txns   TransactionSource
	prices SnapshotSource
}

func NewService(txns TransactionSource, prices SnapshotSource) *Service {
	return &Service{txns: txns, prices: prices}
}

// Get computes the owner's portfolio. Coins come back sorted by current
// value descending, ready for display. A *valuation.MissingPriceError
// passes through untouched so the caller can suggest retrying after the
// next price refresh.
func (s *Service) Get(ctx context.Context, owner string) (*valuation.Result, error) {
	txns, err := s.txns.GetByOwner(ctx, owner, "")
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	if len(txns) == 0 {
		return nil, ErrNoOrders
	}

	snapshot, err := s.prices.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load price snapshot: %w", err)
	}

	res, err := valuation.Compute(txns, snapshot)
	if err != nil {
		return nil, err
	}

	sort.Slice(res.Coins, func(i, j int) bool {
		return res.Coins[i].CurrentValueUSD > res.Coins[j].CurrentValueUSD
	})
	return res, nil
}

// ROIChartSeries extracts the per-coin ROI bar chart inputs from a computed
// portfolio, in display order.
func ROIChartSeries(res *valuation.Result) (labels []string, data []float64) {
	labels = make([]string, len(res.Coins))
	data = make([]float64, len(res.Coins))
	for i, c := range res.Coins {
		labels[i] = c.Coin
		data[i] = c.PercentGainLoss
	}
	return labels, data
}
