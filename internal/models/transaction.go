package models

import "time"

// Transaction is a single ledger entry for one user.
//
// Sign convention (load-bearing for the valuation engine):
// positive Amount/Price = acquisition (buy, mining or airdrop credit),
// negative Amount/Price = disposal (sale). A sale is recorded by negating
// both fields of a buy, never by a separate record shape.
type Transaction struct {
	ID        string    `json:"id"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"` // coingecko coin id, case-sensitive
	Price     float64   `json:"price"`    // USD exchanged
	Date      string    `json:"date"`     // YYYY-MM-DD, informational
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
}
