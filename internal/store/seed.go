package store

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"budgetbuddy/internal/core"
)

// Dataset is a snapshot of accounts and transaction records, used to seed the
// in-memory and SQLite backends.
type Dataset struct {
	Accounts []core.Account
	Records  []core.Record
}

// seedFile mirrors the document layout of the users and logs collections so
// a dump of the primary store can be used as a seed.
type seedFile struct {
	Users []struct {
		Username    string    `yaml:"username"`
		Balance     seedMoney `yaml:"balance"`
		BalanceInfo struct {
			Active   bool      `yaml:"active"`
			Budget   seedMoney `yaml:"budget"`
			Duration string    `yaml:"duration"`
		} `yaml:"balance_info"`
	} `yaml:"users"`
	Logs []struct {
		ID          string    `yaml:"id"`
		User        string    `yaml:"user"`
		Type        string    `yaml:"type"`
		Category    string    `yaml:"category"`
		Amount      seedMoney `yaml:"amount"`
		Date        string    `yaml:"date"`
		Description string    `yaml:"description"`
	} `yaml:"logs"`
}

// seedMoney decodes numeric and quoted amounts without going through float64.
type seedMoney struct{ core.Money }

func (m *seedMoney) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", n.Line)
	}
	v, err := core.ParseMoney(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w: %q", n.Line, err, n.Value)
	}
	m.Money = v
	return nil
}

// ParseDataset decodes a YAML (or JSON) seed document.
func ParseDataset(data []byte) (Dataset, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Dataset{}, fmt.Errorf("decode seed: %w", err)
	}

	var ds Dataset
	for _, u := range f.Users {
		name := strings.TrimSpace(u.Username)
		if name == "" {
			return Dataset{}, fmt.Errorf("seed user without username")
		}
		ds.Accounts = append(ds.Accounts, core.Account{
			User:    name,
			Balance: u.Balance.Money,
			Budget: core.BudgetConfig{
				Active:   u.BalanceInfo.Active,
				Budget:   u.BalanceInfo.Budget.Money,
				Duration: core.DurationOr(u.BalanceInfo.Duration, core.Month),
			},
		})
	}
	for i, l := range f.Logs {
		typ, err := core.ParseTxType(l.Type)
		if err != nil {
			return Dataset{}, fmt.Errorf("seed log %d: %w", i, err)
		}
		id := l.ID
		if id == "" {
			id = fmt.Sprintf("seed:%d", i+1)
		}
		r := core.Record{
			ID:          id,
			User:        strings.TrimSpace(l.User),
			Type:        typ,
			Category:    strings.TrimSpace(l.Category),
			Amount:      l.Amount.Money,
			Date:        strings.TrimSpace(l.Date),
			Description: l.Description,
		}
		if err := r.Validate(); err != nil {
			return Dataset{}, fmt.Errorf("seed log %d: %w", i, err)
		}
		ds.Records = append(ds.Records, r)
	}
	return ds, nil
}

// LoadDataset reads and decodes a seed file.
func LoadDataset(path string) (Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dataset{}, fmt.Errorf("read seed %s: %w", path, err)
	}
	return ParseDataset(data)
}
