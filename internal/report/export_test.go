package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"budgetbuddy/internal/core"
)

func exportFixture() (*Engine, *fakeStore) {
	return newTestEngine(
		core.Record{ID: "1", User: "alice", Type: core.Expense, Category: "Food", Amount: core.MustMoney("12.5"), Date: "03/14/2024", Description: "lunch, with Bob"},
		core.Record{ID: "2", User: "alice", Type: core.Income, Category: "Salary", Amount: core.MustMoney("1000"), Date: "03/01/2024"},
		core.Record{ID: "3", User: "alice", Type: core.Expense, Category: "Fun", Amount: core.MustMoney("10"), Date: "03/08/2024"},
		core.Record{ID: "4", User: "alice", Type: core.Expense, Category: "Food", Amount: core.MustMoney("7.5"), Date: "03/08/2024"},
		core.Record{ID: "5", User: "alice", Type: core.Expense, Category: "Food", Amount: core.MustMoney("3"), Date: "not a date"},
		core.Record{ID: "6", User: "bob", Type: core.Expense, Category: "Food", Amount: core.MustMoney("99"), Date: "03/14/2024"},
	)
}

func TestExport_EmptySelectionRefusedBeforeStore(t *testing.T) {
	e, fs := exportFixture()

	for _, cats := range [][]string{nil, {}, {"", "  "}} {
		x, err := e.Export(context.Background(), ExportRequest{User: "alice", Window: WindowFor(core.Week, testNow), Categories: cats})
		assert.ErrorIs(t, err, core.ErrEmptySelection)
		assert.Nil(t, x)
	}
	assert.Zero(t, fs.lookups)
	assert.Empty(t, fs.queries)
}

func TestExport_NoMatches(t *testing.T) {
	e, _ := exportFixture()

	w := Window{Start: core.NewDate(2023, 1, 1), End: core.NewDate(2023, 1, 31)}
	x, err := e.Export(context.Background(), ExportRequest{User: "alice", Window: w, Categories: []string{"Food"}})
	assert.ErrorIs(t, err, core.ErrNoMatchingTransactions)
	assert.Nil(t, x)
}

func TestExport_FiltersAndSorts(t *testing.T) {
	e, fs := exportFixture()

	x, err := e.Export(context.Background(), ExportRequest{
		User:       "alice",
		Window:     WindowFor(core.Week, testNow),
		Categories: []string{"Food", "Fun", "Salary"},
	})
	require.NoError(t, err)

	require.Len(t, x.Rows, 3)
	assert.Equal(t, "4", x.Rows[0].ID)
	assert.Equal(t, "3", x.Rows[1].ID)
	assert.Equal(t, "1", x.Rows[2].ID)
	assert.Equal(t, 1, x.Skipped)
	assert.Equal(t, "30.00", x.Total().Plain())

	require.Len(t, fs.queries, 1)
	assert.Equal(t, "alice", fs.queries[0].User)
	assert.Empty(t, fs.queries[0].Type)
}

func TestExport_IncludesAllTypes(t *testing.T) {
	e, _ := exportFixture()

	w := Window{Start: core.NewDate(2024, 3, 1), End: core.NewDate(2024, 3, 1)}
	x, err := e.Export(context.Background(), ExportRequest{User: "alice", Window: w, Categories: []string{"Salary"}})
	require.NoError(t, err)
	require.Len(t, x.Rows, 1)
	assert.Equal(t, core.Income, x.Rows[0].Type)
}

func TestExport_WindowEndsInclusive(t *testing.T) {
	e, _ := exportFixture()

	w := Window{Start: core.NewDate(2024, 3, 8), End: core.NewDate(2024, 3, 14)}
	x, err := e.Export(context.Background(), ExportRequest{User: "alice", Window: w, Categories: []string{"Food", "Fun"}})
	require.NoError(t, err)
	assert.Len(t, x.Rows, 3)
}

func TestExport_InvertedWindow(t *testing.T) {
	e, _ := exportFixture()

	w := Window{Start: core.NewDate(2024, 3, 14), End: core.NewDate(2024, 3, 8)}
	_, err := e.Export(context.Background(), ExportRequest{User: "alice", Window: w, Categories: []string{"Food"}})
	assert.ErrorIs(t, err, core.ErrInvalidRange)
}

func TestExport_CategoryLabelsAreOpaque(t *testing.T) {
	e, _ := newTestEngine(
		core.Record{ID: "1", User: "alice", Type: core.Expense, Category: "Food, Drinks", Amount: core.MustMoney("4"), Date: "03/14/2024"},
		core.Record{ID: "2", User: "alice", Type: core.Expense, Category: "Gym ", Amount: core.MustMoney("9"), Date: "03/14/2024"},
		core.Record{ID: "3", User: "alice", Type: core.Expense, Category: "Gym", Amount: core.MustMoney("1"), Date: "03/14/2024"},
	)
	w := WindowFor(core.Week, testNow)

	for _, label := range []string{"Food, Drinks", "Gym "} {
		x, err := e.Export(context.Background(), ExportRequest{User: "alice", Window: w, Categories: []string{label}})
		require.NoError(t, err, label)
		require.Len(t, x.Rows, 1, label)
		assert.Equal(t, label, x.Rows[0].Category)
	}
}

func TestExport_UnknownUser(t *testing.T) {
	e, _ := exportFixture()
	_, err := e.Export(context.Background(), ExportRequest{User: "eve", Window: WindowFor(core.Year, testNow), Categories: []string{"Food"}})
	assert.ErrorIs(t, err, core.ErrAccountNotFound)
}

func TestExport_WriteCSV(t *testing.T) {
	e, _ := exportFixture()
	x, err := e.Export(context.Background(), ExportRequest{User: "alice", Window: WindowFor(core.Week, testNow), Categories: []string{"Food"}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, x.WriteCSV(&buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Date", "Type", "Category", "Amount", "Description"},
		{"03/08/2024", "Expense", "Food", "7.50", ""},
		{"03/14/2024", "Expense", "Food", "12.50", "lunch, with Bob"},
	}, rows)
	assert.NotContains(t, buf.String(), "alice")
}

func TestExport_WriteXLSX(t *testing.T) {
	e, _ := exportFixture()
	x, err := e.Export(context.Background(), ExportRequest{User: "alice", Window: WindowFor(core.Week, testNow), Categories: []string{"Food", "Fun"}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, x.WriteXLSX(&buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, ExportColumns, rows[0])
	assert.Equal(t, "Fun", rows[2][2])

	summary, err := f.GetRows(xlsxSummarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 4)
	assert.Equal(t, "Total", summary[3][0])
}

func TestFilterExport_SkipsMalformedOnlyInSelection(t *testing.T) {
	txs := []core.Transaction{
		{Category: "Food", RawDate: "bad"},
		{Category: "Rent", RawDate: "bad"},
		tx(core.Expense, "Food", "1", core.NewDate(2024, 3, 10)),
	}
	x, err := FilterExport(txs, WindowFor(core.Week, testNow), []string{"Food", "Food"})
	require.NoError(t, err)
	assert.Len(t, x.Rows, 1)
	assert.Equal(t, 1, x.Skipped)
}
