package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/store"
)

// fakeStore serves fixed records and counts queries.
type fakeStore struct {
	accounts map[string]core.Account
	records  []core.Record
	listErr  error

	lookups int
	queries []store.Query
}

func (f *fakeStore) FindAccount(_ context.Context, user string) (core.Account, error) {
	f.lookups++
	acct, ok := f.accounts[user]
	if !ok {
		return core.Account{}, core.ErrAccountNotFound
	}
	return acct, nil
}

func (f *fakeStore) ListTransactions(_ context.Context, q store.Query) ([]core.Record, error) {
	f.queries = append(f.queries, q)
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []core.Record
	for _, r := range f.records {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

var testNow = time.Date(2024, time.March, 15, 18, 30, 0, 0, time.UTC)

func newTestEngine(records ...core.Record) (*Engine, *fakeStore) {
	fs := &fakeStore{
		accounts: map[string]core.Account{
			"alice": {User: "alice", Balance: core.MustMoney("120.00")},
			"bob":   {User: "bob", Balance: core.Zero},
		},
		records: records,
	}
	return NewEngine(fs, fs, WithClock(func() time.Time { return testNow })), fs
}

func rec(user string, typ core.TxType, cat, amt, date string) core.Record {
	return core.Record{User: user, Type: typ, Category: cat, Amount: core.MustMoney(amt), Date: date}
}

func TestLoad_FiltersByUserAndType(t *testing.T) {
	e, fs := newTestEngine(
		rec("alice", core.Expense, "Food", "12.50", "03/14/2024"),
		rec("alice", core.Income, "Salary", "1000", "03/01/2024"),
		rec("bob", core.Expense, "Food", "3.00", "03/14/2024"),
	)

	loaded, err := e.Load(context.Background(), "alice", core.Expense)
	require.NoError(t, err)
	require.Len(t, loaded.Transactions, 1)
	assert.Equal(t, "Food", loaded.Transactions[0].Category)
	assert.True(t, loaded.Transactions[0].DateOK)
	assert.Equal(t, 0, loaded.Malformed)
	require.Len(t, fs.queries, 1)
	assert.Equal(t, store.Query{User: "alice", Type: core.Expense}, fs.queries[0])
}

func TestLoad_UnknownUserHaltsBeforeQuery(t *testing.T) {
	e, fs := newTestEngine(rec("alice", core.Expense, "Food", "1", "03/14/2024"))

	for _, user := range []string{"mallory", "", "   "} {
		_, err := e.Load(context.Background(), user, core.Expense)
		assert.ErrorIs(t, err, core.ErrAccountNotFound, "user %q", user)
	}
	assert.Empty(t, fs.queries)
}

func TestLoad_InvalidType(t *testing.T) {
	e, _ := newTestEngine()
	_, err := e.Load(context.Background(), "alice", core.TxType("Transfer"))
	assert.ErrorIs(t, err, core.ErrInvalidType)
}

func TestLoad_CountsMalformedDates(t *testing.T) {
	e, _ := newTestEngine(
		rec("alice", core.Expense, "Food", "1.00", "03/14/2024"),
		rec("alice", core.Expense, "Food", "2.00", "2024-03-14"),
		rec("alice", core.Expense, "Fun", "3.00", ""),
	)

	loaded, err := e.Load(context.Background(), "alice", core.Expense)
	require.NoError(t, err)
	assert.Len(t, loaded.Transactions, 3)
	assert.Equal(t, 2, loaded.Malformed)
}

func TestLoad_StoreFailurePropagates(t *testing.T) {
	e, fs := newTestEngine()
	boom := errors.New("connection refused")
	fs.listErr = boom

	_, err := e.Load(context.Background(), "alice", core.Expense)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, core.ErrAccountNotFound)
}

func TestAccount(t *testing.T) {
	e, _ := newTestEngine()

	acct, err := e.Account(context.Background(), " alice ")
	require.NoError(t, err)
	assert.Equal(t, "120.00", acct.Balance.Plain())

	_, err = e.Account(context.Background(), "nobody")
	assert.ErrorIs(t, err, core.ErrAccountNotFound)
}

func TestBalanceCard(t *testing.T) {
	tests := []struct {
		amount string
		tone   Tone
		show   string
	}{
		{"120", TonePositive, "$120.00"},
		{"-4.5", ToneNegative, "-$4.50"},
		{"0", ToneNeutral, "$0.00"},
		{"0.004", ToneNeutral, "$0.00"},
		{"-0.006", ToneNegative, "-$0.01"},
	}
	for _, tt := range tests {
		card := NewBalanceCard(core.MustMoney(tt.amount))
		assert.Equal(t, tt.tone, card.Tone, tt.amount)
		assert.Equal(t, tt.show, card.Display(), tt.amount)
	}
	assert.Equal(t, ToneNeutral, NewBalanceCard(core.Money{}).Tone)
}
