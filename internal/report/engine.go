// Package report turns a user's raw transaction log into the figures the
// balance page shows: category summaries, budget compliance and filtered
// exports.
//
// Every operation takes the user identifier explicitly. Nothing is cached:
// each call reads a fresh snapshot from the store.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/store"
)

// Engine reads from the store ports and derives reports.
type Engine struct {
	accounts store.AccountReader
	txs      store.TransactionReader
	logger   *log.Logger
	now      func() time.Time
}

// Option customises an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for data-quality warnings.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l.WithComponent(log.ComponentReport)
		}
	}
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine builds an engine over the given readers.
func NewEngine(accounts store.AccountReader, txs store.TransactionReader, opts ...Option) *Engine {
	e := &Engine{
		accounts: accounts,
		txs:      txs,
		logger:   log.Default(log.ComponentReport),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine's current time.
func (e *Engine) Now() time.Time {
	return e.now()
}

// Loaded is the result of a load: parsed transactions plus the number of
// records whose stored date failed to parse.
type Loaded struct {
	User         string
	Type         core.TxType
	Transactions []core.Transaction
	Malformed    int
}

// Empty reports whether nothing matched the filter.
func (l Loaded) Empty() bool {
	return len(l.Transactions) == 0
}

// Account performs the point lookup of the user's account.
func (e *Engine) Account(ctx context.Context, user string) (core.Account, error) {
	user = strings.TrimSpace(user)
	if user == "" {
		return core.Account{}, core.ErrAccountNotFound
	}
	acct, err := e.accounts.FindAccount(ctx, user)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			return core.Account{}, err
		}
		return core.Account{}, fmt.Errorf("find account %q: %w", user, err)
	}
	return acct, nil
}

// Load returns every transaction of the given type for user. The user must
// resolve to an account; otherwise core.ErrAccountNotFound is returned and
// no transaction query is issued.
func (e *Engine) Load(ctx context.Context, user string, typ core.TxType) (Loaded, error) {
	if !typ.Valid() {
		return Loaded{}, fmt.Errorf("%w: %q", core.ErrInvalidType, typ)
	}
	if _, err := e.Account(ctx, user); err != nil {
		return Loaded{}, err
	}
	return e.load(ctx, strings.TrimSpace(user), typ)
}

// load queries the transactions of an already resolved user.
func (e *Engine) load(ctx context.Context, user string, typ core.TxType) (Loaded, error) {
	recs, err := e.txs.ListTransactions(ctx, store.Query{User: user, Type: typ})
	if err != nil {
		return Loaded{}, fmt.Errorf("list %s transactions: %w", typ, err)
	}
	txs, malformed := e.parse(ctx, user, recs)
	return Loaded{User: user, Type: typ, Transactions: txs, Malformed: malformed}, nil
}

// parse converts records once, counting and logging unparseable dates.
func (e *Engine) parse(ctx context.Context, user string, recs []core.Record) ([]core.Transaction, int) {
	txs := make([]core.Transaction, 0, len(recs))
	malformed := 0
	for _, r := range recs {
		tx, err := r.Parse()
		if err != nil {
			malformed++
			e.logger.DebugContext(ctx, "Unparseable transaction date",
				log.FieldUser, user, "id", r.ID, "date", r.Date)
		}
		txs = append(txs, tx)
	}
	if malformed > 0 {
		e.logger.WarnContext(ctx, "Transactions with malformed dates will be left out of date windows",
			log.FieldUser, user,
			log.FieldMalformed, malformed,
			log.FieldCount, len(recs),
			"error_type", log.ErrorTypeDataQuality)
	}
	return txs, malformed
}
