package core

import (
	"time"

	"github.com/google/uuid"
)

// Ledger is the authoritative in-memory record of participants and
// expenses. It is a single-owner mutable aggregate: callers that mutate
// it concurrently must serialize access themselves (the HTTP layer holds
// one mutex around every mutation).
//
// All operations are all-or-nothing: a rejected operation leaves the
// ledger unchanged.
type Ledger struct {
	participants []string
	expenses     []Expense // newest first
	revision     uint64

	now   func() time.Time
	newID func() string
}

// NewLedger returns an empty ledger using the wall clock and UUID ids.
func NewLedger() *Ledger {
	return &Ledger{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// AddParticipant trims the name and appends it to the participant set.
// Returns the stored name.
func (l *Ledger) AddParticipant(name string) (string, error) {
	name = NormalizeName(name)
	if name == "" {
		return "", ErrEmptyName
	}
	for _, p := range l.participants {
		if EqualNames(p, name) {
			return "", ErrDuplicateParticipant
		}
	}
	l.participants = append(l.participants, name)
	l.revision++
	return name, nil
}

// RemoveParticipant removes the named participant and, as a single
// logical operation, every expense paid by them. Removing an absent name
// is a no-op. Returns whether the participant existed and how many
// expenses were cascaded away.
func (l *Ledger) RemoveParticipant(name string) (found bool, cascaded int) {
	name = NormalizeName(name)
	kept := l.participants[:0]
	for _, p := range l.participants {
		if p == name {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		return false, 0
	}
	l.participants = kept

	keptExp := l.expenses[:0]
	for _, e := range l.expenses {
		if e.Payer == name {
			cascaded++
			continue
		}
		keptExp = append(keptExp, e)
	}
	l.expenses = keptExp
	l.revision++
	return true, cascaded
}

// AddExpense validates and prepends a new expense (newest first). The
// payer may be given in any casing and is stored under the matched
// participant's recorded spelling. The date defaults to today when
// zero.
func (l *Ledger) AddExpense(payer, description string, amount float64, date time.Time) (Expense, error) {
	e := Expense{
		Payer:       NormalizeName(payer),
		Description: NormalizeName(description),
		Amount:      amount,
		Date:        date,
	}
	if err := e.Validate(); err != nil {
		return Expense{}, err
	}
	canonical, ok := l.canonicalName(e.Payer)
	if !ok {
		return Expense{}, ErrUnknownPayer
	}
	e.Payer = canonical
	if e.Date.IsZero() {
		e.Date = l.today()
	}
	e.ID = l.newID()
	l.expenses = append([]Expense{e}, l.expenses...)
	l.revision++
	return e, nil
}

// RemoveExpense removes the expense with the given id if present.
// Removing an absent id is a no-op.
func (l *Ledger) RemoveExpense(id string) bool {
	for i, e := range l.expenses {
		if e.ID == id {
			l.expenses = append(l.expenses[:i], l.expenses[i+1:]...)
			l.revision++
			return true
		}
	}
	return false
}

// Clear empties both collections. Only invoked after an explicit user
// confirmation, never implicitly.
func (l *Ledger) Clear() {
	l.participants = nil
	l.expenses = nil
	l.revision++
}

// Restore rebuilds the ledger from persisted data, re-establishing the
// entity invariants: duplicate or empty names and expenses with an
// unknown payer or invalid amount are dropped rather than trusted.
// Expenses missing an id (older snapshots) get a fresh one.
func (l *Ledger) Restore(participants []string, expenses []Expense) {
	l.participants = nil
	l.expenses = nil
	for _, name := range participants {
		name = NormalizeName(name)
		if name == "" || l.hasParticipant(name) {
			continue
		}
		l.participants = append(l.participants, name)
	}
	for _, e := range expenses {
		e.Payer = NormalizeName(e.Payer)
		e.Description = NormalizeName(e.Description)
		if e.Validate() != nil {
			continue
		}
		canonical, ok := l.canonicalName(e.Payer)
		if !ok {
			continue
		}
		e.Payer = canonical
		if e.ID == "" {
			e.ID = l.newID()
		}
		if e.Date.IsZero() {
			e.Date = l.today()
		}
		l.expenses = append(l.expenses, e)
	}
	l.revision++
}

// Participants returns a copy of the ordered participant set.
func (l *Ledger) Participants() []string {
	return append([]string(nil), l.participants...)
}

// Expenses returns a copy of the expense sequence, newest first.
func (l *Ledger) Expenses() []Expense {
	return append([]Expense(nil), l.expenses...)
}

// Revision increases by one on every successful mutation. It keys the
// summary cache and the change notifications published after saves.
func (l *Ledger) Revision() uint64 {
	return l.revision
}

func (l *Ledger) hasParticipant(name string) bool {
	_, ok := l.canonicalName(name)
	return ok
}

// canonicalName resolves a name to the stored participant spelling,
// matching case-insensitively. Expenses always record that spelling so
// that cascade deletes and balance attribution match it exactly.
func (l *Ledger) canonicalName(name string) (string, bool) {
	for _, p := range l.participants {
		if EqualNames(p, name) {
			return p, true
		}
	}
	return "", false
}

// today truncates the ledger clock to a calendar date.
func (l *Ledger) today() time.Time {
	y, m, d := l.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
