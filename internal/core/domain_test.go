package core

import (
	"math"
	"testing"
	"time"
)

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Payer:       "Alice",
		Description: "dinner",
		Amount:      42.50,
		Date:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Expense{
		{Payer: "", Description: "a", Amount: 1},
		{Payer: "Alice", Description: "   ", Amount: 1},
		{Payer: "Alice", Description: "a", Amount: 0},
		{Payer: "Alice", Description: "a", Amount: -3},
		{Payer: "Alice", Description: "a", Amount: math.NaN()},
		{Payer: "Alice", Description: "a", Amount: math.Inf(1)},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestEqualNames(t *testing.T) {
	if !EqualNames("Alice", "alice") {
		t.Fatalf("expected case-insensitive match")
	}
	if EqualNames("Alice", "Bob") {
		t.Fatalf("unexpected match")
	}
}
