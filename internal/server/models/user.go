// Package models defines the records stored in the key-value namespace.
package models

// UserRecord is a client-reported progress snapshot, stored at key = Username.
// Coins, Hours and LastUpdated are client-supplied and not validated beyond
// presence.
type UserRecord struct {
	Username    string   `json:"username"`
	Coins       float64  `json:"coins"`
	Hours       *float64 `json:"hours,omitempty"`
	LastUpdated int64    `json:"lastUpdated"`
}
