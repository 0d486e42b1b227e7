package models

import "time"

// Watcher is a user-defined price alert rule for a single coin.
//
// Rule grammar:
//
//	"+10"          notify when the coin gains 10% between refreshes
//	"-5"           notify when the coin drops 5% between refreshes
//	"floor:2000"   notify when the price falls to or below $2000
//	"ceiling:4000" notify when the price rises to or above $4000
type Watcher struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Currency  string    `json:"currency"`
	Rule      string    `json:"rule"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}
