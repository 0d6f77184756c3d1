// Package settle computes group balances and a minimum-transaction
// settlement plan from a ledger snapshot. It is a pure function of its
// input: no I/O, no errors, deterministic for a given snapshot.
package settle

import (
	"math"
	"sort"

	"fairshare/internal/core"
)

// Epsilon is the tolerance for floating-point noise, in currency units.
// Balances within Epsilon of zero are treated as exactly settled. It is
// used consistently for partitioning and for loop termination; using two
// different tolerances can loop on a near-zero residual.
const Epsilon = 0.01

// Balance is one participant's position relative to the equal per-head
// share. Positive = owed money, negative = owes money.
type Balance struct {
	Name    string  `json:"name"`
	Paid    float64 `json:"paid"`
	Balance float64 `json:"balance"`
}

// Transaction is one payment of the settlement plan: From owes To the
// given amount.
type Transaction struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// Result is the full output of a settlement computation.
type Result struct {
	TotalSpent float64       `json:"totalSpent"`
	FairShare  float64       `json:"fairShare"`
	Balances   []Balance     `json:"balances"`
	Debts      []Transaction `json:"debts"`
}

// Compute derives every participant's balance and the greedy
// minimum-transaction plan that zeroes them out.
//
// Algorithm:
//   - totalSpent = sum of expense amounts, fairShare = totalSpent/n
//     (0 when there are no participants; division by zero is avoided,
//     not permitted to produce Inf/NaN)
//   - balance = paid - fairShare per participant
//   - debtors (balance < -Epsilon) sorted most negative first and
//     creditors (balance > +Epsilon) sorted largest first are matched
//     greedily: each step transfers min(|debtor|, creditor) and fully
//     resolves at least one party, so the loop emits at most
//     len(debtors)+len(creditors)-1 transactions.
func Compute(participants []string, expenses []core.Expense) Result {
	var totalSpent float64
	for _, e := range expenses {
		totalSpent += e.Amount
	}

	var fairShare float64
	if len(participants) > 0 {
		fairShare = totalSpent / float64(len(participants))
	}

	paidBy := make(map[string]float64, len(participants))
	for _, p := range participants {
		paidBy[p] = 0
	}
	for _, e := range expenses {
		if _, ok := paidBy[e.Payer]; ok {
			paidBy[e.Payer] += e.Amount
		}
	}

	balances := make([]Balance, 0, len(participants))
	for _, p := range participants {
		balances = append(balances, Balance{
			Name:    p,
			Paid:    paidBy[p],
			Balance: paidBy[p] - fairShare,
		})
	}

	return Result{
		TotalSpent: totalSpent,
		FairShare:  fairShare,
		Balances:   balances,
		Debts:      simplify(balances),
	}
}

// simplify runs the greedy largest-remaining matching over a working
// copy of the balances. Pairing the largest debtor with the largest
// creditor minimizes the number of transactions for this class of
// balance distributions.
func simplify(balances []Balance) []Transaction {
	var debtors, creditors []Balance
	for _, b := range balances {
		switch {
		case b.Balance < -Epsilon:
			debtors = append(debtors, b)
		case b.Balance > Epsilon:
			creditors = append(creditors, b)
		}
	}
	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].Balance < debtors[j].Balance
	})
	sort.SliceStable(creditors, func(i, j int) bool {
		return creditors[i].Balance > creditors[j].Balance
	})

	debts := make([]Transaction, 0)
	for len(debtors) > 0 && len(creditors) > 0 {
		debtor := &debtors[0]
		creditor := &creditors[0]

		amount := math.Min(-debtor.Balance, creditor.Balance)
		debts = append(debts, Transaction{
			From:   debtor.Name,
			To:     creditor.Name,
			Amount: amount,
		})

		debtor.Balance += amount
		creditor.Balance -= amount

		if math.Abs(debtor.Balance) < Epsilon {
			debtors = debtors[1:]
		}
		if creditor.Balance < Epsilon {
			creditors = creditors[1:]
		}
	}
	return debts
}

// Apply executes a settlement plan against a copy of the balances and
// returns the residual positions. Applying the plan Compute produced
// drives every balance to within Epsilon of zero.
func Apply(balances []Balance, debts []Transaction) []Balance {
	out := append([]Balance(nil), balances...)
	idx := make(map[string]int, len(out))
	for i, b := range out {
		idx[b.Name] = i
	}
	for _, d := range debts {
		if i, ok := idx[d.From]; ok {
			out[i].Balance += d.Amount
		}
		if i, ok := idx[d.To]; ok {
			out[i].Balance -= d.Amount
		}
	}
	return out
}
