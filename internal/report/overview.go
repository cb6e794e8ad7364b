package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"budgetbuddy/internal/core"
)

// Overview is everything the balance page shows for one user and one
// transaction type.
type Overview struct {
	Account   core.Account
	Card      BalanceCard
	Type      core.TxType
	Summary   Summary
	Empty     bool // no transactions of Type; Summary is zero
	Malformed int
	Budget    BudgetStatus
}

// Overview runs the account lookup, the breakdown for typ and the budget
// evaluation in one pass. The account is read once, and the expense query is
// shared with the budget when typ is Expense. An empty breakdown is not an
// error: Empty is set and the budget is still evaluated.
func (e *Engine) Overview(ctx context.Context, user string, typ core.TxType) (Overview, error) {
	if !typ.Valid() {
		return Overview{}, fmt.Errorf("%w: %q", core.ErrInvalidType, typ)
	}
	acct, err := e.Account(ctx, user)
	if err != nil {
		return Overview{}, err
	}
	user = strings.TrimSpace(user)

	loaded, err := e.load(ctx, user, typ)
	if err != nil {
		return Overview{}, err
	}

	ov := Overview{
		Account:   acct,
		Card:      NewBalanceCard(acct.Balance),
		Type:      typ,
		Malformed: loaded.Malformed,
		Budget:    inactiveStatus(acct.Budget),
	}

	ov.Summary, err = Aggregate(loaded.Transactions)
	switch {
	case errors.Is(err, core.ErrEmptyDataset):
		ov.Empty = true
	case err != nil:
		return Overview{}, err
	}

	if acct.Budget.Active {
		expenses := loaded
		if typ != core.Expense {
			if expenses, err = e.load(ctx, user, core.Expense); err != nil {
				return Overview{}, fmt.Errorf("evaluate budget: %w", err)
			}
		}
		ov.Budget = e.evaluate(ctx, user, acct.Budget, e.Now(), expenses.Transactions)
	}
	return ov, nil
}
