package report

import (
	"context"
	"fmt"
	"time"

	"budgetbuddy/internal/core"
)

// Window is a closed range of calendar days: both Start and End count.
type Window struct {
	Start core.Date
	End   core.Date
}

// WindowFor returns the duration's window ending today: [today - days, today].
func WindowFor(d core.Duration, now time.Time) Window {
	end := core.DateOf(now)
	return Window{Start: end.AddDays(-d.Days()), End: end}
}

// Validate refuses a window that ends before it starts.
func (w Window) Validate() error {
	if w.End.Before(w.Start) {
		return fmt.Errorf("%w: ends %s before it starts %s", core.ErrInvalidRange, w.End.ISO(), w.Start.ISO())
	}
	return nil
}

// Contains reports whether the transaction has a parsed date inside w.
func (w Window) Contains(tx core.Transaction) bool {
	return tx.DateOK && tx.Date.Between(w.Start, w.End)
}

// BudgetStatus is the outcome of a budget evaluation.
type BudgetStatus struct {
	Active   bool
	Duration core.Duration
	Budget   core.Money
	Spent    core.Money
	Over     core.Money // Spent - Budget when Exceeded, zero otherwise
	Exceeded bool
	Window   Window
	Counted  int // expense transactions inside the window
	Skipped  int // expense transactions left out because their date did not parse
}

// EvaluateTransactions sums Expense transactions inside cfg's window ending
// at now and compares the total against the budget. The comparison is
// strict: spending exactly the budget is within budget.
func EvaluateTransactions(txs []core.Transaction, cfg core.BudgetConfig, now time.Time) BudgetStatus {
	w := WindowFor(cfg.Duration, now)
	st := BudgetStatus{
		Active:   true,
		Duration: cfg.Duration,
		Budget:   cfg.Budget,
		Spent:    core.Zero,
		Over:     core.Zero,
		Window:   w,
	}
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		if !tx.DateOK {
			st.Skipped++
			continue
		}
		if !w.Contains(tx) {
			continue
		}
		st.Spent = st.Spent.Add(tx.Amount)
		st.Counted++
	}
	if st.Spent.GreaterThan(cfg.Budget) {
		st.Exceeded = true
		st.Over = st.Spent.Sub(cfg.Budget)
	}
	return st
}

// Evaluate loads the user's expenses and evaluates cfg against them at now.
// An inactive configuration returns a status with Active=false without
// querying the store.
func (e *Engine) Evaluate(ctx context.Context, user string, cfg core.BudgetConfig, now time.Time) (BudgetStatus, error) {
	if !cfg.Active {
		return inactiveStatus(cfg), nil
	}
	loaded, err := e.Load(ctx, user, core.Expense)
	if err != nil {
		return BudgetStatus{}, fmt.Errorf("evaluate budget: %w", err)
	}
	return e.evaluate(ctx, user, cfg, now, loaded.Transactions), nil
}

func inactiveStatus(cfg core.BudgetConfig) BudgetStatus {
	return BudgetStatus{Duration: cfg.Duration, Budget: cfg.Budget}
}

// evaluate runs an active configuration over expenses that are already loaded.
func (e *Engine) evaluate(ctx context.Context, user string, cfg core.BudgetConfig, now time.Time, expenses []core.Transaction) BudgetStatus {
	if !cfg.Duration.Valid() {
		cfg.Duration = core.Month
	}
	st := EvaluateTransactions(expenses, cfg, now)
	e.logger.DebugContext(ctx, "Budget evaluated",
		"user", user,
		"duration", cfg.Duration,
		"window_start", st.Window.Start.ISO(),
		"window_end", st.Window.End.ISO(),
		"spent", st.Spent.Plain(),
		"budget", st.Budget.Plain(),
		"exceeded", st.Exceeded,
		"skipped", st.Skipped)
	return st
}

// Message renders the user-facing status line.
func (s BudgetStatus) Message() string {
	if !s.Active {
		return ""
	}
	if s.Exceeded {
		return fmt.Sprintf("You exceeded your %s budget of %s by %s, spending %s.",
			s.Duration.Adjective(), s.Budget.Format(), s.Over.Format(), s.Spent.Format())
	}
	return fmt.Sprintf("You're within your %s budget of %s. You've spent %s.",
		s.Duration.Adjective(), s.Budget.Format(), s.Spent.Format())
}

// Remaining returns how much of the budget is left, or zero when exceeded.
func (s BudgetStatus) Remaining() core.Money {
	if s.Exceeded {
		return core.Zero
	}
	return s.Budget.Sub(s.Spent)
}
