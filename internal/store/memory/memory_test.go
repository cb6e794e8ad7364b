package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/store"
)

func TestMemoryStoreFindAndList(t *testing.T) {
	s := New(store.Dataset{
		Accounts: []core.Account{{User: "alice", Balance: core.MustMoney("10")}},
		Records: []core.Record{
			{User: "alice", Type: core.Expense, Category: "Food", Amount: core.MustMoney("1"), Date: "01/02/2024"},
			{User: "alice", Type: core.Income, Category: "Pay", Amount: core.MustMoney("5"), Date: "01/02/2024"},
			{User: "bob", Type: core.Expense, Category: "Food", Amount: core.MustMoney("2"), Date: "01/02/2024"},
		},
	})
	ctx := context.Background()

	a, err := s.FindAccount(ctx, "alice")
	if err != nil || a.Balance.Plain() != "10.00" {
		t.Fatalf("unexpected account: %+v err=%v", a, err)
	}
	if _, err := s.FindAccount(ctx, "carol"); !errors.Is(err, core.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	recs, err := s.ListTransactions(ctx, store.Query{User: "alice", Type: core.Expense})
	if err != nil || len(recs) != 1 || recs[0].Category != "Food" {
		t.Fatalf("unexpected records: %+v err=%v", recs, err)
	}
	recs, _ = s.ListTransactions(ctx, store.Query{User: "alice", Categories: []string{"Pay"}})
	if len(recs) != 1 || recs[0].Type != core.Income {
		t.Fatalf("unexpected category filter result: %+v", recs)
	}
}

func TestNewFromFile(t *testing.T) {
	s, err := NewFromFile("")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.FindAccount(context.Background(), DemoUser); err != nil {
		t.Fatalf("demo user missing: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "seed.yaml")
	content := `users:
  - username: alice
    balance: -3.5
    balance_info: {active: true, budget: "50", duration: Week}
logs:
  - user: alice
    type: expense
    category: Food
    amount: 12.50
    date: 03/14/2024
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err = NewFromFile(path)
	if err != nil {
		t.Fatal(err)
	}
	a, err := s.FindAccount(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	if a.Balance.Plain() != "-3.50" || !a.Budget.Active || a.Budget.Duration != core.Week {
		t.Fatalf("unexpected account: %+v", a)
	}
	recs, _ := s.ListTransactions(context.Background(), store.Query{User: "alice"})
	if len(recs) != 1 || recs[0].Amount.Plain() != "12.50" || recs[0].Date != "03/14/2024" {
		t.Fatalf("unexpected records: %+v", recs)
	}

	if _, err := NewFromFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestListHonoursCancelledContext(t *testing.T) {
	s := New(DemoDataset())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.ListTransactions(ctx, store.Query{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
