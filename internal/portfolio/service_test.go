package portfolio_test

import (
	"context"
	"errors"
	"testing"

	"github.com/eulaly/discoin-backend/internal/models"
	"github.com/eulaly/discoin-backend/internal/portfolio"
	"github.com/eulaly/discoin-backend/internal/valuation"
)

type fakeLedger map[string][]models.Transaction

func (f fakeLedger) GetByOwner(ctx context.Context, owner, currency string) ([]models.Transaction, error) {
	return f[owner], nil
}

type fakeSnapshot map[string]float64

func (f fakeSnapshot) Snapshot(ctx context.Context) (map[string]float64, error) {
	return f, nil
}

func TestGet_EmptyLedger(t *testing.T) {
	svc := portfolio.NewService(fakeLedger{}, fakeSnapshot{})

	_, err := svc.Get(context.Background(), "nobody")
	if !errors.Is(err, portfolio.ErrNoOrders) {
		t.Fatalf("expected ErrNoOrders, got %v", err)
	}
}

func TestGet_SortsByValueDescending(t *testing.T) {
	ledger := fakeLedger{
		"alice": {
			{Amount: 1, Currency: "dogecoin", Price: 10, Owner: "alice"},
			{Amount: 2, Currency: "bitcoin", Price: 100, Owner: "alice"},
			{Amount: 5, Currency: "ethereum", Price: 50, Owner: "alice"},
		},
	}
	snapshot := fakeSnapshot{"dogecoin": 0.2, "bitcoin": 60000, "ethereum": 2600}

	svc := portfolio.NewService(ledger, snapshot)
	res, err := svc.Get(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if len(res.Coins) != 3 {
		t.Fatalf("expected 3 coins, got %d", len(res.Coins))
	}
	want := []string{"bitcoin", "ethereum", "dogecoin"}
	for i, w := range want {
		if res.Coins[i].Coin != w {
			t.Fatalf("position %d: got %s, want %s", i, res.Coins[i].Coin, w)
		}
	}
}

func TestGet_MissingPricePassesThrough(t *testing.T) {
	ledger := fakeLedger{
		"alice": {{Amount: 1, Currency: "xcoin", Price: 10, Owner: "alice"}},
	}

	svc := portfolio.NewService(ledger, fakeSnapshot{})
	_, err := svc.Get(context.Background(), "alice")

	var mpe *valuation.MissingPriceError
	if !errors.As(err, &mpe) {
		t.Fatalf("expected MissingPriceError, got %v", err)
	}
	if mpe.Coin != "xcoin" {
		t.Fatalf("coin: got %q", mpe.Coin)
	}
}

func TestROIChartSeries(t *testing.T) {
	res := &valuation.Result{Coins: []valuation.CoinStat{
		{Coin: "bitcoin", PercentGainLoss: 20},
		{Coin: "ethereum", PercentGainLoss: -5},
	}}

	labels, data := portfolio.ROIChartSeries(res)
	if len(labels) != 2 || len(data) != 2 {
		t.Fatalf("series length mismatch: %d labels, %d points", len(labels), len(data))
	}
	if labels[0] != "bitcoin" || data[0] != 20 {
		t.Fatalf("first entry: %s %f", labels[0], data[0])
	}
	if labels[1] != "ethereum" || data[1] != -5 {
		t.Fatalf("second entry: %s %f", labels[1], data[1])
	}
}
