package http

import (
	"fmt"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/report"
)

// User-facing messages
const (
	msgUserNotFound   = "User not found. Please log in again."
	msgEmptyDataset   = "No transactions found. Add some to get started!"
	msgEmptySelection = "Select at least one category to download."
	msgNoMatches      = "No matching transactions found."
	msgUnavailable    = "Your data is temporarily unavailable. Please try again shortly."
)

var tips = []string{
	"Track income and expenses weekly",
	"Set both short-term and long-term financial goals",
	"Follow the 50/30/20 rule for spending",
	"Build an emergency savings buffer",
	"Avoid impulse spending: sleep on it!",
}

type breakdownRow struct {
	Name    string
	Amount  string
	Percent string
	Count   int
	Width   int
}

type breakdownView struct {
	Type      string
	Other     string
	Empty     bool
	Message   string
	Total     string
	Rows      []breakdownRow
	Malformed int
}

type budgetView struct {
	Active    bool
	Exceeded  bool
	Message   string
	Remaining string
	Window    string
	Skipped   int
}

type exportView struct {
	Categories []string
	Frames     []string
	Frame      string
}

type dashboardView struct {
	User      string
	Balance   string
	Tone      string
	Type      string
	Breakdown breakdownView
	Budget    budgetView
	Export    exportView
	Tips      []string
}

type messageView struct {
	Title   string
	Message string
	Status  int
}

func otherType(t core.TxType) core.TxType {
	if t == core.Income {
		return core.Expense
	}
	return core.Income
}

func newBreakdownView(typ core.TxType, sum report.Summary, empty bool, malformed int) breakdownView {
	v := breakdownView{
		Type:      string(typ),
		Other:     string(otherType(typ)),
		Empty:     empty,
		Malformed: malformed,
	}
	if empty {
		v.Message = msgEmptyDataset
		return v
	}

	v.Total = sum.Total.Format()
	points := sum.Points()
	for i, row := range sum.Rows() {
		pct := points[i].Percent
		width := int(pct + 0.5)
		switch {
		case pct > 0 && width < 2:
			width = 2
		case width < 0:
			width = 0
		case width > 100:
			width = 100
		}
		v.Rows = append(v.Rows, breakdownRow{
			Name:    row.Name,
			Amount:  row.Amount.Format(),
			Percent: fmt.Sprintf("%.1f%%", pct),
			Count:   row.Count,
			Width:   width,
		})
	}
	return v
}

func newBudgetView(st report.BudgetStatus) budgetView {
	if !st.Active {
		return budgetView{}
	}
	return budgetView{
		Active:    true,
		Exceeded:  st.Exceeded,
		Message:   st.Message(),
		Remaining: st.Remaining().Format(),
		Window:    st.Window.Start.Format() + " to " + st.Window.End.Format(),
		Skipped:   st.Skipped,
	}
}

func newExportView(sum report.Summary) exportView {
	return exportView{
		Categories: sum.Categories(),
		Frames:     []string{string(core.Week), string(core.Month), string(core.Year)},
		Frame:      string(core.Week),
	}
}
