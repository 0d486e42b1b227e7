package models

import "time"

// CoinPrice is one row of the latest-price cache. The cache is replaced
// wholesale on every scheduler refresh, so UpdatedAt is uniform per batch.
type CoinPrice struct {
	Currency  string    `json:"currency"`
	USD       float64   `json:"usd"`
	UpdatedAt time.Time `json:"updatedAt"`
}
