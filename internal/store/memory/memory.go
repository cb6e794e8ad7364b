// Package memory is an in-process store for local development and tests.
package memory

import (
	"context"
	"sync"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/store"
)

type Store struct {
	mu       sync.RWMutex
	accounts map[string]core.Account
	records  []core.Record
}

func New(ds store.Dataset) *Store {
	s := &Store{accounts: make(map[string]core.Account, len(ds.Accounts))}
	for _, a := range ds.Accounts {
		s.accounts[a.User] = a
	}
	s.records = append(s.records, ds.Records...)
	return s
}

// NewFromFile seeds the store from a YAML or JSON file. An empty path yields
// the built-in demo dataset.
func NewFromFile(path string) (*Store, error) {
	if path == "" {
		return New(DemoDataset()), nil
	}
	ds, err := store.LoadDataset(path)
	if err != nil {
		return nil, err
	}
	return New(ds), nil
}

func (s *Store) FindAccount(_ context.Context, user string) (core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[user]
	if !ok {
		return core.Account{}, core.ErrAccountNotFound
	}
	return a, nil
}

func (s *Store) ListTransactions(ctx context.Context, q store.Query) ([]core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.Record
	for _, r := range s.records {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}
