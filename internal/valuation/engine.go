// Package valuation turns a user's transaction ledger into per-coin and
// aggregate portfolio statistics. It is pure computation: no I/O, no mutation
// of inputs, safe to call concurrently for different users.
package valuation

import (
	"fmt"

	"github.com/eulaly/discoin-backend/internal/models"
)

// Snapshot maps a coingecko coin id to its latest known USD unit price.
// Entries may be up to one refresh interval stale; the engine treats them
// as current and never substitutes defaults for missing coins.
type Snapshot map[string]float64

// CoinStat holds the derived statistics for a single coin.
type CoinStat struct {
	Coin            string  `json:"coin"`
	UnitPriceUSD    float64 `json:"unitPriceUsd"`
	AmountOwned     float64 `json:"amountOwned"`
	USDSpent        float64 `json:"usdSpent"`
	AvgBuyPrice     float64 `json:"avgBuyPrice"`
	USDProfit       float64 `json:"usdProfit"` // realized sale proceeds
	AvgSalePrice    float64 `json:"avgSalePrice"`
	CurrentValueUSD float64 `json:"currentValueUsd"`
	PercentGainLoss float64 `json:"percentGainLoss"`
}

// Summary aggregates across all coins in the ledger.
type Summary struct {
	TotalValueUSD  float64 `json:"totalValueUsd"`
	TotalSpentUSD  float64 `json:"totalSpentUsd"`
	TotalProfitUSD float64 `json:"totalProfitUsd"`
	TotalGainUSD   float64 `json:"totalGainUsd"`
	NetInvestedUSD float64 `json:"netInvestedUsd"`
	ROI            float64 `json:"roi"` // fraction, not percent
}

// Result is the full output of one valuation. Coins is unordered; callers
// that display it sort by CurrentValueUSD descending.
type Result struct {
	Summary Summary    `json:"summary"`
	Coins   []CoinStat `json:"coinStats"`
}

// MissingPriceError reports a coin present in the ledger but absent from the
// price snapshot. The caller should retry after the next price refresh.
type MissingPriceError struct {
	Coin string
}

func (e *MissingPriceError) Error() string {
	return fmt.Sprintf("no price data for coin %q", e.Coin)
}

// Compute derives per-coin stats and a portfolio summary from a transaction
// ledger and a price snapshot.
//
// Accounting convention: a transaction with price >= 0 is a buy (mined and
// airdropped credits count as zero-cost buys), price < 0 is a sale. Sale
// amounts and prices are stored negative, so plain sums yield net holdings
// and negated sale sums yield realized proceeds.
//
// Zero-denominator policy: avgBuyPrice is 0 for a coin with no buys (e.g.
// imported legacy data holding only sales), avgSalePrice is 0 with no sales,
// percentGainLoss is 0 when avgBuyPrice is 0, and ROI is 0 when net invested
// is 0. These resolve to explicit zeros rather than errors so one odd coin
// cannot take down the whole portfolio view.
func Compute(txns []models.Transaction, prices Snapshot) (*Result, error) {
	byCoin := make(map[string][]models.Transaction)
	for _, t := range txns {
		byCoin[t.Currency] = append(byCoin[t.Currency], t)
	}

	for coin := range byCoin {
		if _, ok := prices[coin]; !ok {
			return nil, &MissingPriceError{Coin: coin}
		}
	}

	res := &Result{Coins: make([]CoinStat, 0, len(byCoin))}
	for coin, coinTxns := range byCoin {
		stat := computeCoin(coin, coinTxns, prices[coin])
		res.Coins = append(res.Coins, stat)

		res.Summary.TotalSpentUSD += stat.USDSpent
		res.Summary.TotalValueUSD += stat.CurrentValueUSD
		res.Summary.TotalProfitUSD += stat.USDProfit
	}

	s := &res.Summary
	s.TotalGainUSD = s.TotalValueUSD - s.TotalSpentUSD
	s.NetInvestedUSD = s.TotalSpentUSD - s.TotalProfitUSD
	if s.NetInvestedUSD != 0 {
		s.ROI = (s.TotalValueUSD - s.NetInvestedUSD) / s.NetInvestedUSD
	}

	return res, nil
}

func computeCoin(coin string, txns []models.Transaction, unitPrice float64) CoinStat {
	stat := CoinStat{Coin: coin, UnitPriceUSD: unitPrice}

	var buyAmount, saleAmount float64
	for _, t := range txns {
		stat.AmountOwned += t.Amount
		if t.Price >= 0 {
			stat.USDSpent += t.Price
			buyAmount += t.Amount
		} else {
			stat.USDProfit += -t.Price
			saleAmount += -t.Amount
		}
	}

	if buyAmount != 0 {
		stat.AvgBuyPrice = stat.USDSpent / buyAmount
	}
	if saleAmount != 0 {
		stat.AvgSalePrice = stat.USDProfit / saleAmount
	}

	stat.CurrentValueUSD = stat.AmountOwned * unitPrice
	if stat.CurrentValueUSD > 0 && stat.AvgBuyPrice > 0 {
		// Per-unit gain against average buy price, deliberately insulated
		// from partial sales (total-value / total-spend would swing on
		// every disposal).
		stat.PercentGainLoss = (unitPrice - stat.AvgBuyPrice) / stat.AvgBuyPrice * 100
	}

	return stat
}
