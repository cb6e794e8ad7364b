package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/store"
)

// Download filenames offered to the browser.
const (
	CSVFilename  = "Transaction_Summary.csv"
	XLSXFilename = "Transaction_Summary.xlsx"
)

// ExportColumns are the user-facing columns. Row ids, the user id and the
// parsed date never leave the engine.
var ExportColumns = []string{"Date", "Type", "Category", "Amount", "Description"}

// ExportRequest selects the transactions to export.
type ExportRequest struct {
	User       string
	Window     Window
	Categories []string
}

// Export holds the filtered rows ready for serialisation.
type Export struct {
	Window  Window
	Rows    []core.Transaction
	Skipped int // matching-category rows left out because their date did not parse
}

// Export filters the user's transactions (any type) to the request's window
// and categories. An empty category set is refused with
// core.ErrEmptySelection before the store is queried; a filter with no
// matches returns core.ErrNoMatchingTransactions instead of an empty file.
func (e *Engine) Export(ctx context.Context, req ExportRequest) (*Export, error) {
	cats := normaliseCategories(req.Categories)
	if len(cats) == 0 {
		return nil, core.ErrEmptySelection
	}
	if err := req.Window.Validate(); err != nil {
		return nil, err
	}
	if _, err := e.Account(ctx, req.User); err != nil {
		return nil, err
	}
	user := strings.TrimSpace(req.User)

	recs, err := e.txs.ListTransactions(ctx, store.Query{User: user, Categories: cats})
	if err != nil {
		return nil, fmt.Errorf("list transactions for export: %w", err)
	}
	txs, _ := e.parse(ctx, user, recs)
	return FilterExport(txs, req.Window, cats)
}

// FilterExport applies the window and category filters to already-loaded
// transactions.
func FilterExport(txs []core.Transaction, w Window, categories []string) (*Export, error) {
	cats := normaliseCategories(categories)
	if len(cats) == 0 {
		return nil, core.ErrEmptySelection
	}
	allowed := make(map[string]struct{}, len(cats))
	for _, c := range cats {
		allowed[c] = struct{}{}
	}

	out := &Export{Window: w}
	for _, tx := range txs {
		if _, ok := allowed[tx.Category]; !ok {
			continue
		}
		if !tx.DateOK {
			out.Skipped++
			continue
		}
		if w.Contains(tx) {
			out.Rows = append(out.Rows, tx)
		}
	}
	if len(out.Rows) == 0 {
		return nil, core.ErrNoMatchingTransactions
	}
	sort.SliceStable(out.Rows, func(i, j int) bool {
		a, b := out.Rows[i], out.Rows[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Category < b.Category
	})
	return out, nil
}

// exportRecord returns the serialised columns of one row.
func exportRecord(tx core.Transaction) []string {
	return []string{
		tx.Date.Format(),
		tx.Type.String(),
		tx.Category,
		tx.Amount.Plain(),
		tx.Description,
	}
}

// WriteCSV writes a header row followed by one row per transaction.
func (x *Export) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(ExportColumns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, tx := range x.Rows {
		if err := cw.Write(exportRecord(tx)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Total returns the sum of exported amounts.
func (x *Export) Total() core.Money {
	total := core.Zero
	for _, tx := range x.Rows {
		total = total.Add(tx.Amount)
	}
	return total
}

// normaliseCategories drops blank and repeated labels. Labels are opaque:
// surrounding spaces and commas are part of the stored value.
func normaliseCategories(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, c := range in {
		if strings.TrimSpace(c) == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
