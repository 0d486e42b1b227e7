package models

// CoinListing is one entry of the CoinGecko reference list, refreshed daily.
// CoinID is the canonical id users must supply when recording transactions.
type CoinListing struct {
	CoinID string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}
