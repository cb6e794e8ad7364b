package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"budgetbuddy/internal/core"
)

var hundred = decimal.NewFromInt(100)

// Summary maps each category to the exact sum of its amounts.
type Summary struct {
	byCategory map[string]core.CategoryAmount
	Total      core.Money
	Count      int
}

// Aggregate folds transactions by category. An empty input returns
// core.ErrEmptyDataset rather than a summary with no rows, so callers can
// show a prompt instead of an empty chart.
func Aggregate(txs []core.Transaction) (Summary, error) {
	if len(txs) == 0 {
		return Summary{}, core.ErrEmptyDataset
	}
	s := Summary{byCategory: make(map[string]core.CategoryAmount), Total: core.Zero}
	for _, tx := range txs {
		row := s.byCategory[tx.Category]
		row.Name = tx.Category
		row.Amount = row.Amount.Add(tx.Amount)
		row.Count++
		s.byCategory[tx.Category] = row
		s.Total = s.Total.Add(tx.Amount)
		s.Count++
	}
	return s, nil
}

// Amount returns the summed amount for category.
func (s Summary) Amount(category string) (core.Money, bool) {
	row, ok := s.byCategory[category]
	return row.Amount, ok
}

// Len returns the number of distinct categories.
func (s Summary) Len() int {
	return len(s.byCategory)
}

// Rows returns the per-category sums ordered by category name.
func (s Summary) Rows() []core.CategoryAmount {
	rows := make([]core.CategoryAmount, 0, len(s.byCategory))
	for _, row := range s.byCategory {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows
}

// Categories returns the distinct category labels in name order.
func (s Summary) Categories() []string {
	rows := s.Rows()
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row.Name
	}
	return out
}

// Points returns chart-ready slices. Percentages are relative to the total
// and computed from the exact sums; they are rounded to one decimal.
func (s Summary) Points() []core.ChartPoint {
	rows := s.Rows()
	points := make([]core.ChartPoint, 0, len(rows))
	for _, row := range rows {
		pct := 0.0
		if !s.Total.IsZero() {
			pct, _ = row.Amount.Decimal.Mul(hundred).Div(s.Total.Decimal).Round(1).Float64()
		}
		points = append(points, core.ChartPoint{
			Label:   row.Name,
			Value:   row.Amount.Rounded().Float(),
			Percent: pct,
		})
	}
	return points
}
