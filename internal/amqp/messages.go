package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"budgetbuddy/internal/core"
)

// BudgetExceededMessage is published when a user's spending inside the
// active window goes over the configured budget. Amounts travel as plain
// decimal strings so consumers never see float rounding.
type BudgetExceededMessage struct {
	User        string    `json:"user"`
	Duration    string    `json:"duration"`
	Budget      string    `json:"budget"`
	Spent       string    `json:"spent"`
	Over        string    `json:"over"`
	WindowStart string    `json:"window_start"`
	WindowEnd   string    `json:"window_end"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewBudgetExceededMessage builds an alert for user.
func NewBudgetExceededMessage(user string, d core.Duration, budget, spent, over core.Money, start, end core.Date) *BudgetExceededMessage {
	return &BudgetExceededMessage{
		User:        user,
		Duration:    string(d),
		Budget:      budget.Plain(),
		Spent:       spent.Plain(),
		Over:        over.Plain(),
		WindowStart: start.ISO(),
		WindowEnd:   end.ISO(),
		Timestamp:   time.Now(),
	}
}

// Validate checks the fields a consumer relies on.
func (m *BudgetExceededMessage) Validate() error {
	if m.User == "" {
		return fmt.Errorf("missing user")
	}
	for name, v := range map[string]string{"budget": m.Budget, "spent": m.Spent, "over": m.Over} {
		if _, err := core.ParseMoney(v); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
	}
	return nil
}

// Text renders the alert as a single human-readable line.
func (m *BudgetExceededMessage) Text() string {
	d := core.DurationOr(m.Duration, core.Month)
	budget, _ := core.ParseMoney(m.Budget)
	spent, _ := core.ParseMoney(m.Spent)
	over, _ := core.ParseMoney(m.Over)
	return fmt.Sprintf("%s exceeded their %s budget of %s by %s, spending %s.",
		m.User, d.Adjective(), budget.Format(), over.Format(), spent.Format())
}

// ToJSON converts the message to JSON bytes
func (m *BudgetExceededMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetExceededMessageFromJSON decodes and validates a message.
func BudgetExceededMessageFromJSON(data []byte) (*BudgetExceededMessage, error) {
	var msg BudgetExceededMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
