package report

import "budgetbuddy/internal/core"

// Tone is the colour hint for the balance card.
type Tone string

const (
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
	ToneNeutral  Tone = "neutral"
)

// BalanceCard is the headline figure shown above the charts.
type BalanceCard struct {
	Amount core.Money
	Tone   Tone
}

// NewBalanceCard rounds the balance to cents and picks the tone from the
// sign of the rounded value.
func NewBalanceCard(balance core.Money) BalanceCard {
	balance = balance.Rounded()
	tone := ToneNeutral
	switch balance.Sign() {
	case 1:
		tone = TonePositive
	case -1:
		tone = ToneNegative
	}
	return BalanceCard{Amount: balance, Tone: tone}
}

// Display returns the formatted amount.
func (b BalanceCard) Display() string {
	return b.Amount.Format()
}
