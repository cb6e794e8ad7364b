package memory

import (
	"time"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/store"
)

// DemoUser owns the built-in dataset.
const DemoUser = "demo"

// DemoDataset returns a small dataset dated relative to today.
func DemoDataset() store.Dataset {
	today := core.DateOf(time.Now())
	day := func(n int) string { return today.AddDays(-n).Format() }

	add := func(ds *store.Dataset, typ core.TxType, cat, amt string, ago int, desc string) {
		ds.Records = append(ds.Records, core.Record{
			User:        DemoUser,
			Type:        typ,
			Category:    cat,
			Amount:      core.MustMoney(amt),
			Date:        day(ago),
			Description: desc,
		})
	}

	ds := store.Dataset{
		Accounts: []core.Account{{
			User:    DemoUser,
			Balance: core.MustMoney("1843.27"),
			Budget:  core.BudgetConfig{Active: true, Budget: core.MustMoney("250"), Duration: core.Week},
		}},
	}
	add(&ds, core.Income, "Salary", "2400.00", 20, "Monthly pay")
	add(&ds, core.Income, "Freelance", "350.00", 4, "Logo work")
	add(&ds, core.Expense, "Rent", "900.00", 19, "")
	add(&ds, core.Expense, "Food", "62.35", 1, "Groceries")
	add(&ds, core.Expense, "Food", "18.90", 3, "Lunch")
	add(&ds, core.Expense, "Transport", "45.00", 5, "Fuel")
	add(&ds, core.Expense, "Fun", "120.00", 6, "Concert tickets")
	add(&ds, core.Expense, "Utilities", "74.48", 12, "Electricity")
	for i := range ds.Records {
		ds.Records[i].ID = "demo:" + string(rune('a'+i))
	}
	return ds
}
