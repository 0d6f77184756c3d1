// Package snapshot defines the persisted shape of the application state
// and the port the persistence adapters implement.
package snapshot

import (
	"context"

	"fairshare/internal/core"
)

// DefaultCurrency is used when a snapshot carries no currency code.
const DefaultCurrency = "EUR"

// Snapshot is the full persisted state: the ledger data plus the display
// settings the core stores but never interprets.
type Snapshot struct {
	Participants []string       `json:"participants"`
	Expenses     []core.Expense `json:"expenses"`
	CurrencyCode string         `json:"currency"`
	DarkMode     bool           `json:"darkMode"`
}

// Empty returns the startup fallback state.
func Empty() Snapshot {
	return Snapshot{CurrencyCode: DefaultCurrency}
}

// Store loads the snapshot at startup and saves it after every ledger
// mutation. Load must degrade to an empty snapshot when the persisted
// data is missing or corrupt; it never fails startup.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, s Snapshot) error
	Close() error
}
