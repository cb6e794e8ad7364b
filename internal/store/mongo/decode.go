package mongo

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"budgetbuddy/internal/core"
)

// userDoc is a document of the users collection.
type userDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Username    string             `bson:"username"`
	Balance     bson.RawValue      `bson:"balance"`
	BalanceInfo struct {
		Active   bool          `bson:"active"`
		Budget   bson.RawValue `bson:"budget"`
		Duration string        `bson:"duration"`
	} `bson:"balance_info"`
}

// logDoc is a document of the logs collection.
type logDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	User        string             `bson:"user"`
	Type        string             `bson:"type"`
	Category    string             `bson:"category"`
	Amount      bson.RawValue      `bson:"amount"`
	Date        bson.RawValue      `bson:"date"`
	Description string             `bson:"description,omitempty"`
}

func (d userDoc) account() (core.Account, error) {
	balance, err := moneyFromRaw(d.Balance)
	if err != nil {
		return core.Account{}, fmt.Errorf("balance: %w", err)
	}
	budget, err := moneyFromRaw(d.BalanceInfo.Budget)
	if err != nil {
		return core.Account{}, fmt.Errorf("budget: %w", err)
	}
	return core.Account{
		User:    d.Username,
		Balance: balance,
		Budget: core.BudgetConfig{
			Active:   d.BalanceInfo.Active,
			Budget:   budget,
			Duration: core.DurationOr(d.BalanceInfo.Duration, core.Month),
		},
	}, nil
}

func (d logDoc) record() (core.Record, error) {
	amount, err := moneyFromRaw(d.Amount)
	if err != nil {
		return core.Record{}, fmt.Errorf("amount: %w", err)
	}
	typ, err := core.ParseTxType(d.Type)
	if err != nil {
		return core.Record{}, err
	}
	r := core.Record{
		User:        d.User,
		Type:        typ,
		Category:    d.Category,
		Amount:      amount,
		Date:        dateFromRaw(d.Date),
		Description: d.Description,
	}
	if !d.ID.IsZero() {
		r.ID = d.ID.Hex()
	}
	return r, nil
}

// moneyFromRaw accepts the numeric encodings a document may carry. Missing
// and null values are zero.
func moneyFromRaw(v bson.RawValue) (core.Money, error) {
	switch v.Type {
	case 0, bson.TypeNull, bson.TypeUndefined:
		return core.Zero, nil
	case bson.TypeDouble:
		return core.MoneyFromFloat(v.Double()), nil
	case bson.TypeInt32:
		return core.NewMoney(decimal.NewFromInt32(v.Int32())), nil
	case bson.TypeInt64:
		return core.NewMoney(decimal.NewFromInt(v.Int64())), nil
	case bson.TypeDecimal128:
		d, err := decimal.NewFromString(v.Decimal128().String())
		if err != nil {
			return core.Money{}, core.ErrInvalidAmount
		}
		return core.NewMoney(d), nil
	case bson.TypeString:
		return core.ParseMoney(v.StringValue())
	}
	return core.Money{}, fmt.Errorf("%w: unsupported bson type %s", core.ErrInvalidAmount, v.Type)
}

// dateFromRaw returns the stored date string. BSON datetimes are rendered in
// the storage layout; anything else becomes an empty, unparseable date.
func dateFromRaw(v bson.RawValue) string {
	switch v.Type {
	case bson.TypeString:
		return strings.TrimSpace(v.StringValue())
	case bson.TypeDateTime:
		return core.DateOf(v.Time().UTC()).Format()
	}
	return ""
}
