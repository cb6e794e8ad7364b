package gsheets

import (
	"fmt"
	"strconv"
	"strings"

	"budgetbuddy/internal/core"
)

// parseAccounts expects headers username, balance and optionally active,
// budget and duration.
func parseAccounts(values [][]interface{}) ([]core.Account, error) {
	if len(values) == 0 {
		return nil, nil
	}
	headers := toStrings(values[0])
	colUser := indexOf(headers, "username")
	colBalance := indexOf(headers, "balance")
	if colUser == -1 || colBalance == -1 {
		return nil, fmt.Errorf("unexpected accounts header: need username and balance; got headers=%v", headers)
	}
	colActive := indexOf(headers, "active")
	colBudget := indexOf(headers, "budget")
	colDuration := indexOf(headers, "duration")

	var out []core.Account
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		user := safeGet(row, colUser)
		if user == "" {
			continue
		}
		balance, err := parseAmount(safeGet(row, colBalance))
		if err != nil {
			return nil, fmt.Errorf("row %d balance: %w", i+1, err)
		}
		budget, err := parseAmount(safeGet(row, colBudget))
		if err != nil {
			return nil, fmt.Errorf("row %d budget: %w", i+1, err)
		}
		out = append(out, core.Account{
			User:    user,
			Balance: balance,
			Budget: core.BudgetConfig{
				Active:   parseBool(safeGet(row, colActive)),
				Budget:   budget,
				Duration: core.DurationOr(safeGet(row, colDuration), core.Month),
			},
		})
	}
	return out, nil
}

// parseRecords expects headers user, type, category, amount and date, plus
// optional id and description. Rows with an unknown type or unreadable
// amount are counted and left out.
func parseRecords(values [][]interface{}) ([]core.Record, int, error) {
	if len(values) == 0 {
		return nil, 0, nil
	}
	headers := toStrings(values[0])
	required := []string{"user", "type", "category", "amount", "date"}
	cols := make(map[string]int, len(required))
	var missing []string
	for _, h := range required {
		idx := indexOf(headers, h)
		if idx == -1 {
			missing = append(missing, h)
		}
		cols[h] = idx
	}
	if len(missing) > 0 {
		return nil, 0, fmt.Errorf("unexpected transactions header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}
	colID := indexOf(headers, "id")
	colDesc := indexOf(headers, "description")

	var (
		out     []core.Record
		skipped int
	)
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if safeGet(row, cols["user"]) == "" {
			continue
		}
		typ, err := core.ParseTxType(safeGet(row, cols["type"]))
		if err != nil {
			skipped++
			continue
		}
		amount, err := parseAmount(safeGet(row, cols["amount"]))
		if err != nil {
			skipped++
			continue
		}
		id := safeGet(row, colID)
		if id == "" {
			id = "row:" + strconv.Itoa(i+1)
		}
		out = append(out, core.Record{
			ID:          id,
			User:        safeGet(row, cols["user"]),
			Type:        typ,
			Category:    safeGet(row, cols["category"]),
			Amount:      amount,
			Date:        safeGet(row, cols["date"]),
			Description: safeGet(row, colDesc),
		})
	}
	return out, skipped, nil
}

// parseAmount accepts unformatted numbers; empty cells are zero.
func parseAmount(s string) (core.Money, error) {
	if s == "" {
		return core.Zero, nil
	}
	return core.ParseMoney(s)
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.ToLower(s))
	if err != nil {
		return strings.EqualFold(s, "yes")
	}
	return b
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch x := v.(type) {
		case float64:
			out[i] = strconv.FormatFloat(x, 'f', -1, 64)
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return out
}

func indexOf(headers []string, target string) int {
	for i, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h), target) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
