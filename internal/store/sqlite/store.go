// Package sqlite is an embedded store backed by modernc.org/sqlite. The
// schema mirrors the users and logs collections of the document store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/store"
)

type Store struct {
	db     *sql.DB
	logger *log.Logger
}

// Open creates the database file if needed, applies migrations and returns
// a ready store.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, logger: log.Default(log.ComponentStore).With(log.FieldBackend, "sqlite")}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) FindAccount(ctx context.Context, user string) (core.Account, error) {
	const q = `SELECT username, balance, budget_active, budget_amount, budget_duration FROM users WHERE username = ?`

	var (
		a                         core.Account
		balance, amount, duration string
		active                    bool
	)
	err := s.db.QueryRowContext(ctx, q, user).Scan(&a.User, &balance, &active, &amount, &duration)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.ErrAccountNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("query user: %w", err)
	}

	if a.Balance, err = core.ParseMoney(balance); err != nil {
		return core.Account{}, fmt.Errorf("user %q balance %q: %w", user, balance, err)
	}
	if a.Budget.Budget, err = core.ParseMoney(amount); err != nil {
		return core.Account{}, fmt.Errorf("user %q budget %q: %w", user, amount, err)
	}
	a.Budget.Active = active
	a.Budget.Duration = core.DurationOr(duration, core.Month)
	return a, nil
}

func (s *Store) ListTransactions(ctx context.Context, q store.Query) ([]core.Record, error) {
	query, args := buildListQuery(q)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		var (
			id     int64
			r      core.Record
			typ    string
			amount string
		)
		if err := rows.Scan(&id, &r.User, &typ, &r.Category, &amount, &r.Date, &r.Description); err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		r.ID = strconv.FormatInt(id, 10)
		r.Type = core.TxType(typ)
		if r.Amount, err = core.ParseMoney(amount); err != nil {
			s.logger.WarnContext(ctx, "Skipping log with unparseable amount",
				"id", id, "amount", amount, "error_type", log.ErrorTypeDataQuality)
			continue
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate logs: %w", err)
	}
	return out, nil
}

func buildListQuery(q store.Query) (string, []any) {
	var (
		where []string
		args  []any
	)
	if q.User != "" {
		where = append(where, "user = ?")
		args = append(args, q.User)
	}
	if q.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(q.Type))
	}
	if len(q.Categories) > 0 {
		marks := strings.TrimSuffix(strings.Repeat("?,", len(q.Categories)), ",")
		where = append(where, "category IN ("+marks+")")
		for _, c := range q.Categories {
			args = append(args, c)
		}
	}

	query := `SELECT id, user, type, category, amount, date, description FROM logs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	return query + " ORDER BY id", args
}

// SeedIfEmpty seeds ds only when no account exists yet, so reopening a
// seeded database does not append the log twice. It reports whether it
// wrote anything.
func (s *Store) SeedIfEmpty(ctx context.Context, ds store.Dataset) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return false, nil
	}
	if err := s.Seed(ctx, ds); err != nil {
		return false, err
	}
	return true, nil
}

// Seed writes a dataset in one transaction. Accounts are upserted; records
// are appended.
func (s *Store) Seed(ctx context.Context, ds store.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, a := range ds.Accounts {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (username, balance, budget_active, budget_amount, budget_duration)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(username) DO UPDATE SET
				balance = excluded.balance,
				budget_active = excluded.budget_active,
				budget_amount = excluded.budget_amount,
				budget_duration = excluded.budget_duration`,
			a.User, a.Balance.String(), a.Budget.Active, a.Budget.Budget.String(), string(a.Budget.Duration))
		if err != nil {
			return fmt.Errorf("insert user %q: %w", a.User, err)
		}
	}
	for _, r := range ds.Records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("record %s: %w", r.ID, err)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO logs (user, type, category, amount, date, description) VALUES (?, ?, ?, ?, ?, ?)`,
			r.User, string(r.Type), r.Category, r.Amount.String(), r.Date, r.Description)
		if err != nil {
			return fmt.Errorf("insert log for %q: %w", r.User, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	s.logger.InfoContext(ctx, "Seeded SQLite store",
		"accounts", len(ds.Accounts), log.FieldCount, len(ds.Records))
	return nil
}
