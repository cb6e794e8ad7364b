// Package store defines the read-only query ports the reporting engine
// consumes. Backends live in the subpackages.
package store

import (
	"context"

	"budgetbuddy/internal/core"
)

// Query selects transaction records. Zero-valued fields do not filter.
type Query struct {
	User       string
	Type       core.TxType
	Categories []string
}

// Ports for outbound adapters.
type (
	// AccountReader performs the point lookup of a user's account record.
	AccountReader interface {
		// FindAccount returns core.ErrAccountNotFound when the user has no account.
		FindAccount(ctx context.Context, user string) (core.Account, error)
	}

	// TransactionReader returns raw transaction records. Dates are returned
	// as stored; parsing belongs to the caller.
	TransactionReader interface {
		ListTransactions(ctx context.Context, q Query) ([]core.Record, error)
	}

	// Pinger is implemented by backends that can report connectivity.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)

// Matches reports whether r satisfies q. Backends that cannot push a filter
// down to the database use it to post-filter.
func (q Query) Matches(r core.Record) bool {
	if q.User != "" && r.User != q.User {
		return false
	}
	if q.Type != "" && r.Type != q.Type {
		return false
	}
	if len(q.Categories) > 0 {
		for _, c := range q.Categories {
			if c == r.Category {
				return true
			}
		}
		return false
	}
	return true
}
