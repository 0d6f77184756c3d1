package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

// Expense is a single payment made by one participant on behalf of the
// whole group. Expenses are immutable once created; the only mutation
// the ledger supports is delete-and-recreate.
type Expense struct {
	ID          string    `json:"id"`
	Payer       string    `json:"payer"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Date        time.Time `json:"date"`
}

var (
	ErrEmptyName            = errors.New("empty participant name")
	ErrDuplicateParticipant = errors.New("duplicate participant name")
	ErrUnknownPayer         = errors.New("unknown payer")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrEmptyDescription     = errors.New("empty description")
)

// NormalizeName trims a participant name. Uniqueness comparisons are
// case-insensitive but the stored name keeps the caller's casing.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// EqualNames reports whether two participant names collide under the
// ledger's case-insensitive uniqueness rule.
func EqualNames(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Validate checks the entity invariants enforced at insertion time.
// The payer reference is checked by the ledger itself, since only the
// ledger knows the current participant set.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.Payer) == "" {
		return ErrUnknownPayer
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if !ValidAmount(e.Amount) {
		return ErrInvalidAmount
	}
	return nil
}

// ValidAmount reports whether v is a finite number greater than zero.
func ValidAmount(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
