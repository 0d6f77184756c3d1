package settle

import (
	"math"
	"testing"
	"time"

	"fairshare/internal/core"
)

func exp(payer string, amount float64) core.Expense {
	return core.Expense{Payer: payer, Description: "x", Amount: amount}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

func TestComputeTwoPeople(t *testing.T) {
	res := Compute([]string{"Alice", "Bob"}, []core.Expense{exp("Alice", 100)})

	if !approx(res.TotalSpent, 100) || !approx(res.FairShare, 50) {
		t.Fatalf("total=%v fairShare=%v", res.TotalSpent, res.FairShare)
	}
	if len(res.Balances) != 2 {
		t.Fatalf("expected 2 balances, got %+v", res.Balances)
	}
	if !approx(res.Balances[0].Balance, 50) || !approx(res.Balances[1].Balance, -50) {
		t.Fatalf("balances = %+v", res.Balances)
	}
	if len(res.Debts) != 1 {
		t.Fatalf("expected one transaction, got %+v", res.Debts)
	}
	d := res.Debts[0]
	if d.From != "Bob" || d.To != "Alice" || !approx(d.Amount, 50) {
		t.Fatalf("debt = %+v", d)
	}
}

func TestComputeThreePeople(t *testing.T) {
	res := Compute(
		[]string{"A", "B", "C"},
		[]core.Expense{exp("A", 90), exp("B", 30)},
	)

	if !approx(res.TotalSpent, 120) || !approx(res.FairShare, 40) {
		t.Fatalf("total=%v fairShare=%v", res.TotalSpent, res.FairShare)
	}
	wantBalances := map[string]float64{"A": 50, "B": -10, "C": -40}
	for _, b := range res.Balances {
		if !approx(b.Balance, wantBalances[b.Name]) {
			t.Fatalf("balance %s = %v, want %v", b.Name, b.Balance, wantBalances[b.Name])
		}
	}

	// Largest debtor pairs with largest creditor first: two transactions,
	// not three.
	if len(res.Debts) != 2 {
		t.Fatalf("expected 2 transactions, got %+v", res.Debts)
	}
	if d := res.Debts[0]; d.From != "C" || d.To != "A" || !approx(d.Amount, 40) {
		t.Fatalf("first debt = %+v", d)
	}
	if d := res.Debts[1]; d.From != "B" || d.To != "A" || !approx(d.Amount, 10) {
		t.Fatalf("second debt = %+v", d)
	}
}

func TestComputeAllSettled(t *testing.T) {
	res := Compute(
		[]string{"A", "B", "C"},
		[]core.Expense{exp("A", 40), exp("B", 40), exp("C", 40)},
	)
	if len(res.Debts) != 0 {
		t.Fatalf("expected all settled, got %+v", res.Debts)
	}
}

func TestComputeEdgeCases(t *testing.T) {
	tests := []struct {
		name         string
		participants []string
		expenses     []core.Expense
		wantTotal    float64
		wantShare    float64
		wantBalances int
		wantDebts    int
	}{
		{"zero participants", nil, []core.Expense{exp("A", 10)}, 10, 0, 0, 0},
		{"zero expenses", []string{"A", "B"}, nil, 0, 0, 2, 0},
		{"single participant", []string{"A"}, []core.Expense{exp("A", 99.99)}, 99.99, 99.99, 1, 0},
		{"empty ledger", nil, nil, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Compute(tt.participants, tt.expenses)
			if !approx(res.TotalSpent, tt.wantTotal) {
				t.Errorf("totalSpent = %v, want %v", res.TotalSpent, tt.wantTotal)
			}
			if !approx(res.FairShare, tt.wantShare) {
				t.Errorf("fairShare = %v, want %v", res.FairShare, tt.wantShare)
			}
			if len(res.Balances) != tt.wantBalances {
				t.Errorf("balances = %+v, want %d entries", res.Balances, tt.wantBalances)
			}
			if len(res.Debts) != tt.wantDebts {
				t.Errorf("debts = %+v, want %d entries", res.Debts, tt.wantDebts)
			}
		})
	}
}

func TestNonPayerOwesFullShare(t *testing.T) {
	res := Compute([]string{"A", "B"}, []core.Expense{exp("A", 60)})
	for _, b := range res.Balances {
		if b.Name == "B" {
			if !approx(b.Paid, 0) || !approx(b.Balance, -30) {
				t.Fatalf("B = %+v", b)
			}
		}
	}
}

func TestTotalInvariantUnderPermutation(t *testing.T) {
	participants := []string{"A", "B", "C"}
	expenses := []core.Expense{exp("A", 12.30), exp("B", 7.45), exp("C", 0.99), exp("A", 3.21)}
	reversed := make([]core.Expense, len(expenses))
	for i, e := range expenses {
		reversed[len(expenses)-1-i] = e
	}

	a := Compute(participants, expenses)
	b := Compute(participants, reversed)
	if !approx(a.TotalSpent, b.TotalSpent) {
		t.Fatalf("total depends on insertion order: %v vs %v", a.TotalSpent, b.TotalSpent)
	}
	for i := range a.Balances {
		if !approx(a.Balances[i].Balance, b.Balances[i].Balance) {
			t.Fatalf("balance %s depends on insertion order", a.Balances[i].Name)
		}
	}
}

func TestBalancesNetToZero(t *testing.T) {
	participants := []string{"A", "B", "C", "D", "E"}
	expenses := []core.Expense{
		exp("A", 101.13), exp("B", 0.07), exp("C", 55.55),
		exp("A", 9.99), exp("E", 33.33),
	}
	res := Compute(participants, expenses)

	var sum float64
	for _, b := range res.Balances {
		sum += b.Balance
	}
	if math.Abs(sum) > Epsilon*float64(len(participants)) {
		t.Fatalf("balances do not net out: %v", sum)
	}
}

func TestBalancesNetToZeroWithLedgerInput(t *testing.T) {
	// The ledger stores payers under each participant's recorded
	// spelling even when the expense arrived in a different casing, so
	// every amount is attributed to someone.
	l := core.NewLedger()
	l.AddParticipant("Alice")
	l.AddParticipant("Bob")
	if _, err := l.AddExpense("alice", "dinner", 100, time.Time{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res := Compute(l.Participants(), l.Expenses())

	var sum float64
	for _, b := range res.Balances {
		sum += b.Balance
	}
	if math.Abs(sum) > Epsilon {
		t.Fatalf("balances do not net out: %+v", res.Balances)
	}
	if len(res.Debts) != 1 || res.Debts[0].From != "Bob" || res.Debts[0].To != "Alice" {
		t.Fatalf("expected Bob to owe Alice, got %+v", res.Debts)
	}
}

func TestApplyPlanSettlesEveryone(t *testing.T) {
	participants := []string{"A", "B", "C", "D"}
	expenses := []core.Expense{
		exp("A", 120), exp("B", 30.50), exp("C", 9.25),
	}
	res := Compute(participants, expenses)

	residual := Apply(res.Balances, res.Debts)
	for _, b := range residual {
		if math.Abs(b.Balance) >= Epsilon {
			t.Fatalf("%s not settled after applying plan: %v", b.Name, b.Balance)
		}
	}
}

func TestTransactionBound(t *testing.T) {
	participants := []string{"A", "B", "C", "D", "E", "F"}
	expenses := []core.Expense{exp("A", 60), exp("B", 42), exp("C", 18)}
	res := Compute(participants, expenses)

	var debtors, creditors int
	for _, b := range res.Balances {
		switch {
		case b.Balance < -Epsilon:
			debtors++
		case b.Balance > Epsilon:
			creditors++
		}
	}
	if max := debtors + creditors - 1; len(res.Debts) > max {
		t.Fatalf("plan has %d transactions, bound is %d", len(res.Debts), max)
	}
}
